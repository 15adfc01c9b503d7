package catalog

import (
	"context"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/telemetry"
)

// printCommand logs the kind of its single input "p" via telemetry and forwards it
// unchanged as output "p" — a pass-through sink used by scenario S5 to
// observe a flow's computed values.
type printCommand struct {
	desc command.Descriptor
}

func newPrintCommand(desc command.Descriptor) (command.Command, error) {
	return printCommand{desc: desc}, nil
}

func (c printCommand) Run(_ context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	v, err := c.desc.Resolve("p", inputs)
	if err != nil {
		return nil, err
	}
	telemetry.Log.Info().Str("kind", string(v.Kind)).Msg("print")
	return map[string]store.Value{"p": v.Clone()}, nil
}
