// Package storebadger implements store.Backend on top of an embedded
// BadgerDB instance. Keys follow the prefix-plus-id scheme used
// throughout the graph-database examples this module draws on: a single
// byte tags the kind of record, and indexes are separate key ranges
// rather than secondary tables.
package storebadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

const (
	prefixVertex byte = 0x01 // vertex record: uuid -> properties
	prefixEdge   byte = 0x02 // edge record: from+type+to -> properties
	prefixOut    byte = 0x03 // outbound index: from+type+to -> empty
	prefixIn     byte = 0x04 // inbound index: to+type+from -> empty
	prefixRoot   byte = 0x05 // graph-root marker: uuid -> empty
	prefixChild  byte = 0x06 // graph-root -> child index: root+child -> empty
)

// Backend wraps a *badger.DB to satisfy store.Backend.
type Backend struct {
	db *badger.DB
}

// Open starts (or creates) a BadgerDB instance rooted at dir. Pass ""
// for an in-memory instance, matching badger's own convention for
// ephemeral tests.
func Open(dir string) (*Backend, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, store.WrapErr(store.ErrDatastoreCreate, err)
	}
	return &Backend{db: db}, nil
}

// Close releases the underlying database handle.
func (b *Backend) Close() error { return b.db.Close() }

func vertexKey(id store.NodeID) []byte {
	return append([]byte{prefixVertex}, id[:]...)
}

func rootKey(id store.GraphID) []byte {
	return append([]byte{prefixRoot}, id[:]...)
}

func childKey(graph store.GraphID, child store.NodeID) []byte {
	key := make([]byte, 0, 1+16+16)
	key = append(key, prefixChild)
	key = append(key, graph[:]...)
	key = append(key, child[:]...)
	return key
}

func childPrefix(graph store.GraphID) []byte {
	key := make([]byte, 0, 1+16)
	key = append(key, prefixChild)
	key = append(key, graph[:]...)
	return key
}

func edgeKey(e store.Edge) []byte {
	key := make([]byte, 0, 1+16+16+16)
	key = append(key, prefixEdge)
	key = append(key, e.From[:]...)
	key = append(key, e.Type[:]...)
	key = append(key, e.To[:]...)
	return key
}

func outKey(e store.Edge) []byte {
	key := make([]byte, 0, 1+16+16+16)
	key = append(key, prefixOut)
	key = append(key, e.From[:]...)
	key = append(key, e.Type[:]...)
	key = append(key, e.To[:]...)
	return key
}

func outPrefix(from store.NodeID) []byte {
	return append([]byte{prefixOut}, from[:]...)
}

func inKey(e store.Edge) []byte {
	key := make([]byte, 0, 1+16+16+16)
	key = append(key, prefixIn)
	key = append(key, e.To[:]...)
	key = append(key, e.Type[:]...)
	key = append(key, e.From[:]...)
	return key
}

func inPrefix(to store.NodeID) []byte {
	return append([]byte{prefixIn}, to[:]...)
}

func decodeEdgeFromOutKey(from store.NodeID, key []byte) store.Edge {
	// key = prefixOut(1) + from(16) + type(16) + to(16)
	rest := key[1+16:]
	var typ uuid.UUID
	copy(typ[:], rest[:16])
	var to uuid.UUID
	copy(to[:], rest[16:32])
	return store.Edge{From: from, To: store.NodeID(to), Type: store.EdgeType(typ)}
}

func decodeEdgeFromInKey(to store.NodeID, key []byte) store.Edge {
	rest := key[1+16:]
	var typ uuid.UUID
	copy(typ[:], rest[:16])
	var from uuid.UUID
	copy(from[:], rest[16:32])
	return store.Edge{From: store.NodeID(from), To: to, Type: store.EdgeType(typ)}
}

func (b *Backend) GetVertexProperties(_ context.Context, _ store.GraphID, id store.NodeID) (store.Properties, error) {
	var props store.Properties
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(vertexKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return store.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &props)
		})
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

func (b *Backend) ListGraphRoots(_ context.Context) ([]store.NodeID, error) {
	var ids []store.NodeID
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixRoot}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var id uuid.UUID
			copy(id[:], key[1:])
			ids = append(ids, store.NodeID(id))
		}
		return nil
	})
	return ids, err
}

func (b *Backend) ListChildren(_ context.Context, graph store.GraphID) ([]store.NodeID, error) {
	var ids []store.NodeID
	prefix := childPrefix(graph)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var id uuid.UUID
			copy(id[:], key[1+16:])
			ids = append(ids, store.NodeID(id))
		}
		return nil
	})
	return ids, err
}

func (b *Backend) GetEdges(_ context.Context, _ store.GraphID, id store.NodeID) (outbound, inbound []store.Edge, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		op := outPrefix(id)
		oit := txn.NewIterator(badger.IteratorOptions{Prefix: op})
		defer oit.Close()
		for oit.Seek(op); oit.ValidForPrefix(op); oit.Next() {
			outbound = append(outbound, decodeEdgeFromOutKey(id, oit.Item().KeyCopy(nil)))
		}

		ip := inPrefix(id)
		iit := txn.NewIterator(badger.IteratorOptions{Prefix: ip})
		defer iit.Close()
		for iit.Seek(ip); iit.ValidForPrefix(ip); iit.Next() {
			inbound = append(inbound, decodeEdgeFromInKey(id, iit.Item().KeyCopy(nil)))
		}
		return nil
	})
	return outbound, inbound, err
}

func (b *Backend) GetEdgeProperties(_ context.Context, _ store.GraphID, e store.Edge) (store.Properties, error) {
	var props store.Properties
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(e))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return store.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &props)
		})
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

// ResolveNodeGraph scans the child index for id's owning root. Nodes
// created directly under a root (the only shape Store ever produces)
// are found in one pass; a vertex that is itself a root resolves to
// itself.
func (b *Backend) ResolveNodeGraph(_ context.Context, id store.NodeID) (store.GraphID, error) {
	var found store.GraphID
	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(rootKey(store.GraphID(id))); err == nil {
			found = store.GraphID(id)
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixChild}
		it := txn.NewIterator(opts)
		defer it.Close()
		needle := id[:]
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			childPart := key[1+16:]
			if bytes.Equal(childPart, needle) {
				var root uuid.UUID
				copy(root[:], key[1:1+16])
				found = store.GraphID(root)
				return nil
			}
		}
		return store.ErrNotFound
	})
	if err != nil {
		return store.GraphID{}, err
	}
	return found, nil
}

func (b *Backend) Begin(_ context.Context) (store.Tx, error) {
	return &tx{txn: b.db.NewTransaction(true)}, nil
}

// tx adapts a *badger.Txn to store.Tx. Badger transactions are already
// atomic and isolated, so no extra buffering is needed beyond what
// badger.Txn itself provides.
type tx struct {
	txn *badger.Txn
}

func (t *tx) CreateVertex(_ context.Context, graph store.GraphID, id store.NodeID, props store.Properties) error {
	data, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	if err := t.txn.Set(vertexKey(id), data); err != nil {
		return err
	}
	if store.GraphID(id) == graph {
		if err := t.txn.Set(rootKey(graph), []byte{}); err != nil {
			return err
		}
		return nil
	}
	return t.txn.Set(childKey(graph, id), []byte{})
}

func (t *tx) SetVertexProperties(_ context.Context, _ store.GraphID, id store.NodeID, props store.Properties) error {
	data, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	return t.txn.Set(vertexKey(id), data)
}

func (t *tx) DeleteVertex(_ context.Context, graph store.GraphID, id store.NodeID) error {
	if err := t.txn.Delete(vertexKey(id)); err != nil {
		return err
	}
	if store.GraphID(id) == graph {
		return t.txn.Delete(rootKey(graph))
	}
	return t.txn.Delete(childKey(graph, id))
}

func (t *tx) CreateEdge(_ context.Context, _ store.GraphID, e store.Edge, props store.Properties) (bool, error) {
	if _, err := t.txn.Get(edgeKey(e)); err == nil {
		return false, nil
	} else if err != badger.ErrKeyNotFound {
		return false, err
	}

	data, err := json.Marshal(props)
	if err != nil {
		return false, store.WrapErr(store.ErrJSON, err)
	}
	if err := t.txn.Set(edgeKey(e), data); err != nil {
		return false, err
	}
	if err := t.txn.Set(outKey(e), []byte{}); err != nil {
		return false, err
	}
	if err := t.txn.Set(inKey(e), []byte{}); err != nil {
		return false, err
	}
	return true, nil
}

func (t *tx) SetEdgeProperties(_ context.Context, _ store.GraphID, e store.Edge, props store.Properties) error {
	data, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	return t.txn.Set(edgeKey(e), data)
}

func (t *tx) DeleteEdge(_ context.Context, _ store.GraphID, e store.Edge) error {
	if err := t.txn.Delete(edgeKey(e)); err != nil {
		return err
	}
	if err := t.txn.Delete(outKey(e)); err != nil {
		return err
	}
	return t.txn.Delete(inKey(e))
}

// DeleteGraph removes the root, every direct child, and every edge
// touching the root or a child. Children and edges are read through this
// transaction's own iterators (scanChildren/scanEdges) before any delete
// is issued. Badger transactions cap the number of pending writes, so a
// large enough graph makes this transaction fail.
func (t *tx) DeleteGraph(ctx context.Context, graph store.GraphID) error {
	rootID := store.NodeID(graph)

	children, err := t.scanChildren(graph)
	if err != nil {
		return err
	}
	all := append([]store.NodeID{rootID}, children...)

	seen := make(map[store.Edge]struct{})
	for _, id := range all {
		out, in, err := t.scanEdges(id)
		if err != nil {
			return err
		}
		for _, e := range append(out, in...) {
			seen[e] = struct{}{}
		}
	}
	for e := range seen {
		if err := t.DeleteEdge(ctx, graph, e); err != nil {
			return err
		}
	}
	for _, id := range all {
		if err := t.DeleteVertex(ctx, graph, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) scanChildren(graph store.GraphID) ([]store.NodeID, error) {
	var ids []store.NodeID
	prefix := childPrefix(graph)
	it := t.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		var id uuid.UUID
		copy(id[:], key[1+16:])
		ids = append(ids, store.NodeID(id))
	}
	return ids, nil
}

func (t *tx) scanEdges(id store.NodeID) (outbound, inbound []store.Edge, err error) {
	op := outPrefix(id)
	oit := t.txn.NewIterator(badger.IteratorOptions{Prefix: op})
	defer oit.Close()
	for oit.Seek(op); oit.ValidForPrefix(op); oit.Next() {
		outbound = append(outbound, decodeEdgeFromOutKey(id, oit.Item().KeyCopy(nil)))
	}

	ip := inPrefix(id)
	iit := t.txn.NewIterator(badger.IteratorOptions{Prefix: ip})
	defer iit.Close()
	for iit.Seek(ip); iit.ValidForPrefix(ip); iit.Next() {
		inbound = append(inbound, decodeEdgeFromInKey(id, iit.Item().KeyCopy(nil)))
	}
	return outbound, inbound, nil
}

func (t *tx) Commit(_ context.Context) error {
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("storebadger: commit: %w", err)
	}
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	t.txn.Discard()
	return nil
}

var _ store.Backend = (*Backend)(nil)
