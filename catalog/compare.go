package catalog

import (
	"context"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
)

// compareCommand compares inputs "a" and "b" under the operator "op" (a
// store.Value of kind KindOperator), each read dynamic-first,
// static-fallback per command.Descriptor.Resolve, failing with
// store.ComparisonError when the operand
// kinds are not mutually comparable (spec §4.4).
type compareCommand struct {
	desc command.Descriptor
}

func newCompareCommand(desc command.Descriptor) (command.Command, error) {
	return compareCommand{desc: desc}, nil
}

func (c compareCommand) Run(_ context.Context, _ *command.Context, inputs map[string]store.Value) (map[string]store.Value, error) {
	a, err := c.desc.Resolve("a", inputs)
	if err != nil {
		return nil, err
	}
	b, err := c.desc.Resolve("b", inputs)
	if err != nil {
		return nil, err
	}
	opVal, err := c.desc.Resolve("op", inputs)
	if err != nil {
		return nil, err
	}

	result, err := evalCompare(a, opVal.Op, b)
	if err != nil {
		return nil, err
	}
	return map[string]store.Value{"res": store.VBool(result)}, nil
}

func evalCompare(a store.Value, op store.CompareOp, b store.Value) (bool, error) {
	if a.Kind != b.Kind {
		return false, &store.ComparisonError{AKind: a.Kind, Op: op, BKind: b.Kind}
	}

	switch a.Kind {
	case store.KindU8, store.KindU16, store.KindU64, store.KindI64, store.KindF32, store.KindF64:
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return compareOrdered(af, bf, op)
	case store.KindString:
		return compareOrdered(a.Str, b.Str, op)
	case store.KindBool:
		if op != store.OpEq && op != store.OpNe {
			return false, &store.ComparisonError{AKind: a.Kind, Op: op, BKind: b.Kind}
		}
		eq := a.Bool == b.Bool
		if op == store.OpNe {
			eq = !eq
		}
		return eq, nil
	default:
		return false, &store.ComparisonError{AKind: a.Kind, Op: op, BKind: b.Kind}
	}
}

func compareOrdered[T float64 | string](a, b T, op store.CompareOp) (bool, error) {
	switch op {
	case store.OpEq:
		return a == b, nil
	case store.OpNe:
		return a != b, nil
	case store.OpLt:
		return a < b, nil
	case store.OpLe:
		return a <= b, nil
	case store.OpGt:
		return a > b, nil
	case store.OpGe:
		return a >= b, nil
	default:
		return false, &store.ComparisonError{Op: op}
	}
}
