// Package catalog is the reference command set: pure arithmetic and
// comparison commands, a print sink, three LLM-backed completion
// commands, and a keypair generator writing into the wallet-graph
// convention (spec §5/§9). Register installs all of them into a
// command.Registry; an application is free to shadow any entry with its
// own factory under the same Kind.
package catalog

import (
	"context"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
)

// Register installs every reference command factory into reg.
func Register(reg *command.Registry) {
	reg.Register("const", newConstCommand)
	reg.Register("arith", newArithCommand)
	reg.Register("compare", newCompareCommand)
	reg.Register("print", newPrintCommand)
	reg.Register("anthropic_complete", newAnthropicCommand)
	reg.Register("openai_complete", newOpenAICommand)
	reg.Register("gemini_complete", newGeminiCommand)
	reg.Register("keygen", newKeygenCommand)
}

// constCommand emits its descriptor's static "value" field unchanged.
// It has no dynamic inputs, matching the start-node/constant-source role
// scenario S5 assigns it.
type constCommand struct {
	value store.Value
}

func newConstCommand(desc command.Descriptor) (command.Command, error) {
	v, ok := desc.Static["value"]
	if !ok {
		return nil, &store.ArgumentNotFound{Name: "value"}
	}
	return constCommand{value: v}, nil
}

func (c constCommand) Run(_ context.Context, _ *command.Context, _ map[string]store.Value) (map[string]store.Value, error) {
	return map[string]store.Value{"res": c.value.Clone()}, nil
}
