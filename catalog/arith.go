package catalog

import (
	"context"
	"fmt"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
)

// arithCommand computes "a op b -> res" over numeric Values (spec §8
// scenario S5's add nodes). The operator is a static descriptor field
// ("+", "-", "*", "/"); a and b are read dynamic-first, static-fallback
// per command.Descriptor.Resolve.
type arithCommand struct {
	desc command.Descriptor
	op   string
}

func newArithCommand(desc command.Descriptor) (command.Command, error) {
	opVal, ok := desc.Static["op"]
	if !ok {
		return nil, &store.ArgumentNotFound{Name: "op"}
	}
	return arithCommand{desc: desc, op: opVal.Str}, nil
}

func (c arithCommand) Run(_ context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	a, err := c.desc.Resolve("a", inputs)
	if err != nil {
		return nil, err
	}
	b, err := c.desc.Resolve("b", inputs)
	if err != nil {
		return nil, err
	}

	af, err := asFloat(a)
	if err != nil {
		return nil, err
	}
	bf, err := asFloat(b)
	if err != nil {
		return nil, err
	}

	var res float64
	switch c.op {
	case "+":
		res = af + bf
	case "-":
		res = af - bf
	case "*":
		res = af * bf
	case "/":
		if bf == 0 {
			return nil, fmt.Errorf("catalog: division by zero")
		}
		res = af / bf
	default:
		return nil, fmt.Errorf("catalog: unknown arith operator %q", c.op)
	}

	return map[string]store.Value{"res": fromFloat(res, a.Kind)}, nil
}

func asFloat(v store.Value) (float64, error) {
	switch v.Kind {
	case store.KindU8:
		return float64(v.U8), nil
	case store.KindU16:
		return float64(v.U16), nil
	case store.KindU64:
		return float64(v.U64), nil
	case store.KindI64:
		return float64(v.I64), nil
	case store.KindF32:
		return float64(v.F32), nil
	case store.KindF64:
		return v.F64, nil
	default:
		return 0, fmt.Errorf("catalog: value of kind %q is not numeric", v.Kind)
	}
}

func fromFloat(f float64, kind store.Kind) store.Value {
	switch kind {
	case store.KindU8:
		return store.Value{Kind: kind, U8: uint8(f)}
	case store.KindU16:
		return store.Value{Kind: kind, U16: uint16(f)}
	case store.KindU64:
		return store.VU64(uint64(f))
	case store.KindI64:
		return store.VI64(int64(f))
	case store.KindF32:
		return store.Value{Kind: kind, F32: float32(f)}
	default:
		return store.VF64(f)
	}
}
