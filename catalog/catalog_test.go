package catalog_test

import (
	"context"
	"testing"

	"github.com/dshills/fluxgraph/catalog"
	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
)

func TestArithAdd(t *testing.T) {
	reg := command.NewRegistry()
	catalog.Register(reg)

	cmd, err := reg.Build(command.Descriptor{Kind: "arith", Static: map[string]store.Value{"op": store.VString("+")}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := cmd.Run(context.Background(), nil, map[string]store.Value{
		"a": store.VU64(3),
		"b": store.VU64(2),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out["res"].U64 != 5 {
		t.Fatalf("expected 5, got %#v", out["res"])
	}
}

func TestCompareKindMismatch(t *testing.T) {
	reg := command.NewRegistry()
	catalog.Register(reg)

	cmd, err := reg.Build(command.Descriptor{Kind: "compare"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = cmd.Run(context.Background(), nil, map[string]store.Value{
		"a":  store.VU64(1),
		"b":  store.VString("x"),
		"op": store.VOperator(store.OpEq),
	})
	var cmpErr *store.ComparisonError
	if err == nil {
		t.Fatalf("expected ComparisonError")
	}
	if !asComparisonError(err, &cmpErr) {
		t.Fatalf("expected *store.ComparisonError, got %T: %v", err, err)
	}
}

func asComparisonError(err error, target **store.ComparisonError) bool {
	ce, ok := err.(*store.ComparisonError)
	if !ok {
		return false
	}
	*target = ce
	return true
}

func TestConstEmitsStaticValue(t *testing.T) {
	reg := command.NewRegistry()
	catalog.Register(reg)

	cmd, err := reg.Build(command.Descriptor{Kind: "const", Static: map[string]store.Value{"value": store.VString("hi")}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := cmd.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out["res"].Str != "hi" {
		t.Fatalf("unexpected output %#v", out["res"])
	}
}

func TestWalletInsertRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	backend, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	s := store.New(backend)
	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	wallet := catalog.Wallet{Store: s, Graph: graphID}
	if _, err := wallet.Insert(ctx, "alice", make([]byte, 64), make([]byte, 32)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := wallet.Insert(ctx, "alice", make([]byte, 64), make([]byte, 32)); err == nil {
		t.Fatalf("expected duplicate name to be rejected")
	}
}
