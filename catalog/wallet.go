package catalog

import (
	"context"

	"github.com/dshills/fluxgraph/store"
)

// Wallet scans a graph's direct children for NAME_MARKER collisions
// before inserting a new keypair/pubkey node, implementing §5's "the
// keypair and pubkey tables are represented as nodes in the user's
// wallet graph … uniqueness of names is enforced by scanning the graph
// on insert." No process-memory singleton table exists; every lookup
// goes back through the store.
type Wallet struct {
	Store *store.Store
	Graph store.GraphID
}

// ErrNameAlreadyInUse is returned by Insert when a node with the same
// NAME_MARKER already exists under the wallet graph (spec §7's
// catalog-specific "NameAlreadyInUse").
type ErrNameAlreadyInUse struct{ Name string }

func (e *ErrNameAlreadyInUse) Error() string { return "catalog: name already in use: " + e.Name }

// FindByName scans the wallet graph's direct children and returns the
// node whose NAME_MARKER property equals name, if any.
func (w *Wallet) FindByName(ctx context.Context, name string) (store.NodeID, store.Properties, bool, error) {
	reply, err := w.Store.Execute(ctx, store.QueryAction{Kind: store.ReadGraph{GraphID: w.Graph}})
	if err != nil {
		return store.NodeID{}, nil, false, err
	}
	graph := reply.(store.ReplyGraph).Graph
	for _, node := range graph.Nodes {
		raw, ok := node.Properties[store.KeyNameMarker]
		if !ok {
			continue
		}
		nodeName, err := store.AsString(raw)
		if err != nil {
			continue
		}
		if nodeName == name {
			return node.ID, node.Properties, true, nil
		}
	}
	return store.NodeID{}, nil, false, nil
}

// Insert creates a node carrying name/keypair/pubkey markers under the
// wallet graph, failing with ErrNameAlreadyInUse if name is taken.
func (w *Wallet) Insert(ctx context.Context, name string, keypair, pubkey []byte) (store.NodeID, error) {
	if _, _, found, err := w.FindByName(ctx, name); err != nil {
		return store.NodeID{}, err
	} else if found {
		return store.NodeID{}, &ErrNameAlreadyInUse{Name: name}
	}

	props := store.Properties{
		store.KeyNameMarker:    store.PropString(name),
		store.KeyKeypairMarker: mustValueJSON(store.Value{Kind: store.KindKeypair, Keypair: to64(keypair)}),
		store.KeyPubkeyMarker:  mustValueJSON(store.Value{Kind: store.KindPubkey, Pubkey: to32(pubkey)}),
	}

	reply, err := w.Store.Execute(ctx, store.MutateAction{
		GraphID: w.Graph,
		Kind:    store.CreateNode{Props: props},
	})
	if err != nil {
		return store.NodeID{}, err
	}
	return store.NodeID(reply.(store.ReplyID).ID), nil
}

func mustValueJSON(v store.Value) []byte {
	raw, err := v.ToJSON()
	if err != nil {
		// Every Kind Value defines is JSON-representable; this would
		// only fail for a caller-constructed Value with a bogus Kind.
		panic(err)
	}
	return raw
}

func to32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

func to64(b []byte) [64]byte {
	var out [64]byte
	copy(out[:], b)
	return out
}
