package emit_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dshills/fluxgraph/emit"
)

func TestLogEmitterTextMode(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewLogEmitter(&buf, false)

	e.Emit(emit.Event{FlowID: "f1", Tick: 3, NodeID: "n1", Msg: "node_start"})

	out := buf.String()
	if !strings.Contains(out, "[node_start]") || !strings.Contains(out, "flowID=f1") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestLogEmitterJSONMode(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewLogEmitter(&buf, true)

	e.Emit(emit.Event{FlowID: "f1", NodeID: "n1", Msg: "node_end"})

	out := buf.String()
	if !strings.Contains(out, `"msg":"node_end"`) {
		t.Fatalf("unexpected json output: %q", out)
	}
}

func TestNullEmitterDiscards(t *testing.T) {
	e := emit.NewNullEmitter()
	e.Emit(emit.Event{Msg: "anything"})
	if err := e.EmitBatch(context.Background(), []emit.Event{{Msg: "x"}}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestBufferedEmitterHistoryAndFilter(t *testing.T) {
	e := emit.NewBufferedEmitter()
	e.Emit(emit.Event{FlowID: "f1", NodeID: "a", Msg: "node_start", Tick: 1})
	e.Emit(emit.Event{FlowID: "f1", NodeID: "b", Msg: "node_error", Tick: 1})
	e.Emit(emit.Event{FlowID: "f2", NodeID: "a", Msg: "node_start", Tick: 1})

	all := e.GetHistory("f1")
	if len(all) != 2 {
		t.Fatalf("expected 2 events for f1, got %d", len(all))
	}

	errOnly := e.GetHistoryWithFilter("f1", emit.HistoryFilter{Msg: "node_error"})
	if len(errOnly) != 1 || errOnly[0].NodeID != "b" {
		t.Fatalf("unexpected filtered result: %+v", errOnly)
	}

	e.Clear("f1")
	if len(e.GetHistory("f1")) != 0 {
		t.Fatalf("expected f1 history cleared")
	}
	if len(e.GetHistory("f2")) != 1 {
		t.Fatalf("expected f2 history untouched")
	}
}
