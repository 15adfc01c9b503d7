// Package command defines the contract every flow-node body implements
// (spec §4.4): a uniform inputs-to-outputs operation, a descriptor that
// names a command's kind and its static configuration, and a registry
// keyed by that kind so the catalog stays open for extension.
package command

import (
	"context"

	"github.com/dshills/fluxgraph/store"
)

// Command is a single tagged variant exposing one operation — run — that
// consumes the values collected from its declared inputs and produces
// the values the scheduler fans out to each declared output.
type Command interface {
	// Run executes the command. inputs holds one Value per input name
	// that actually arrived on a channel this tick; a command whose
	// declared input is satisfied only by a static descriptor field will
	// not find it here and must fall back to Descriptor.Static.
	Run(ctx context.Context, ctxGraph *Context, inputs map[string]store.Value) (map[string]store.Value, error)
}

// Context gives a running command access to the store and to
// catalog-specific caches, per spec §4.4 ("context gives access to the
// store and to catalog-specific caches").
type Context struct {
	Store *store.Store
	Graph store.GraphID
}

// Descriptor is the JSON shape stored under a flow node's reserved
// "command" property (spec §6). Kind selects the Factory from the
// Registry; Static carries per-node configuration fields a command may
// use in place of a dynamic input of the same name (spec §4.4: "declared
// inputs may be sourced either from the inputs map (dynamic) or from
// fields in the command descriptor (static)").
type Descriptor struct {
	Kind   string                  `json:"kind"`
	Static map[string]store.Value `json:"static,omitempty"`
}

// Resolve returns the value for name, preferring the dynamic inputs map
// and falling back to the descriptor's static fields. It reports
// store.ArgumentNotFound if name is absent from both.
func (d Descriptor) Resolve(name string, inputs map[string]store.Value) (store.Value, error) {
	if v, ok := inputs[name]; ok {
		return v, nil
	}
	if v, ok := d.Static[name]; ok {
		return v, nil
	}
	return store.Value{}, &store.ArgumentNotFound{Name: name}
}

// Factory builds a fresh Command from its parsed descriptor. Factories
// are registered under the descriptor's Kind tag.
type Factory func(desc Descriptor) (Command, error)

// Registry maps a descriptor's Kind tag to the Factory that builds it
// (spec §9: "keep it open for extension via a registry keyed by the
// command's serialised tag").
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs factory under kind, overwriting any prior entry —
// the same convention application code uses to shadow a reference
// catalog command with a custom one.
func (r *Registry) Register(kind string, factory Factory) {
	r.factories[kind] = factory
}

// Build looks up desc.Kind and constructs the command. It returns
// ErrUnknownKind if no factory is registered for that kind.
func (r *Registry) Build(desc Descriptor) (Command, error) {
	factory, ok := r.factories[desc.Kind]
	if !ok {
		return nil, &ErrUnknownKind{Kind: desc.Kind}
	}
	return factory(desc)
}

// ErrUnknownKind is returned by Registry.Build when no command is
// registered under the descriptor's Kind tag.
type ErrUnknownKind struct{ Kind string }

func (e *ErrUnknownKind) Error() string { return "command: unknown kind " + e.Kind }
