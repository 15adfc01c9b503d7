// Package storesql implements store.Backend on top of SQLite, one row
// per vertex and one row per edge with a JSON properties column,
// following the graph-database examples' relational layout rather than
// the embedded key-value prefix scheme storebadger uses.
package storesql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dshills/fluxgraph/store"
)

// Backend wraps a *sql.DB to satisfy store.Backend.
type Backend struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path, enables WAL mode
// and a busy timeout so a long-running writer doesn't starve readers,
// and creates the schema if absent. Pass ":memory:" for an ephemeral
// in-process database, SQLite's own convention for tests.
func Open(path string) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, store.WrapErr(store.ErrDatastoreCreate, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, store.WrapErr(store.ErrDatastoreCreate, err)
		}
	}

	b := &Backend{db: db}
	if err := b.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) createSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vertices (
			graph_id TEXT NOT NULL,
			node_id  TEXT NOT NULL PRIMARY KEY,
			is_root  INTEGER NOT NULL DEFAULT 0,
			props    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vertices_graph ON vertices(graph_id)`,
		`CREATE TABLE IF NOT EXISTS edges (
			graph_id  TEXT NOT NULL,
			from_id   TEXT NOT NULL,
			edge_type TEXT NOT NULL,
			to_id     TEXT NOT NULL,
			props     TEXT NOT NULL,
			PRIMARY KEY (from_id, edge_type, to_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return store.WrapErr(store.ErrDatastoreCreate, fmt.Errorf("schema: %w", err))
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (b *Backend) Close() error { return b.db.Close() }

func encodeProps(props store.Properties) (string, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return "", store.WrapErr(store.ErrJSON, err)
	}
	return string(data), nil
}

func decodeProps(raw string) (store.Properties, error) {
	var props store.Properties
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, store.WrapErr(store.ErrJSON, err)
	}
	return props, nil
}

func (b *Backend) GetVertexProperties(ctx context.Context, _ store.GraphID, id store.NodeID) (store.Properties, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT props FROM vertices WHERE node_id = ?`, id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProps(raw)
}

func (b *Backend) ListGraphRoots(ctx context.Context) ([]store.NodeID, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT node_id FROM vertices WHERE is_root = 1`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []store.NodeID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := parseNodeID(idStr)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (b *Backend) ListChildren(ctx context.Context, graph store.GraphID) ([]store.NodeID, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT node_id FROM vertices WHERE graph_id = ? AND is_root = 0`, store.NodeID(graph).String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []store.NodeID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := parseNodeID(idStr)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (b *Backend) GetEdges(ctx context.Context, _ store.GraphID, id store.NodeID) (outbound, inbound []store.Edge, err error) {
	outbound, err = b.queryEdges(ctx, `SELECT from_id, edge_type, to_id FROM edges WHERE from_id = ?`, id.String())
	if err != nil {
		return nil, nil, err
	}
	inbound, err = b.queryEdges(ctx, `SELECT from_id, edge_type, to_id FROM edges WHERE to_id = ?`, id.String())
	if err != nil {
		return nil, nil, err
	}
	return outbound, inbound, nil
}

func (b *Backend) queryEdges(ctx context.Context, query, arg string) ([]store.Edge, error) {
	rows, err := b.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var edges []store.Edge
	for rows.Next() {
		var fromStr, typeStr, toStr string
		if err := rows.Scan(&fromStr, &typeStr, &toStr); err != nil {
			return nil, err
		}
		e, err := parseEdge(fromStr, typeStr, toStr)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (b *Backend) GetEdgeProperties(ctx context.Context, _ store.GraphID, e store.Edge) (store.Properties, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		`SELECT props FROM edges WHERE from_id = ? AND edge_type = ? AND to_id = ?`,
		e.From.String(), e.Type.String(), e.To.String(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProps(raw)
}

func (b *Backend) ResolveNodeGraph(ctx context.Context, id store.NodeID) (store.GraphID, error) {
	var graphIDStr string
	err := b.db.QueryRowContext(ctx, `SELECT graph_id FROM vertices WHERE node_id = ?`, id.String()).Scan(&graphIDStr)
	if errors.Is(err, sql.ErrNoRows) {
		return store.GraphID{}, store.ErrNotFound
	}
	if err != nil {
		return store.GraphID{}, err
	}
	nid, err := parseNodeID(graphIDStr)
	if err != nil {
		return store.GraphID{}, err
	}
	return store.GraphID(nid), nil
}

func (b *Backend) Begin(ctx context.Context) (store.Tx, error) {
	sqlTx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.WrapErr(store.ErrCreateTransaction, err)
	}
	return &tx{tx: sqlTx}, nil
}

// tx adapts a *sql.Tx to store.Tx.
type tx struct {
	tx *sql.Tx
}

func (t *tx) CreateVertex(ctx context.Context, graph store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := encodeProps(props)
	if err != nil {
		return err
	}
	isRoot := 0
	if store.GraphID(id) == graph {
		isRoot = 1
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO vertices (graph_id, node_id, is_root, props) VALUES (?, ?, ?, ?)`,
		store.NodeID(graph).String(), id.String(), isRoot, raw,
	)
	return err
}

func (t *tx) SetVertexProperties(ctx context.Context, _ store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := encodeProps(props)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `UPDATE vertices SET props = ? WHERE node_id = ?`, raw, id.String())
	return err
}

func (t *tx) DeleteVertex(ctx context.Context, _ store.GraphID, id store.NodeID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM vertices WHERE node_id = ?`, id.String())
	return err
}

func (t *tx) CreateEdge(ctx context.Context, graph store.GraphID, e store.Edge, props store.Properties) (bool, error) {
	var exists int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM edges WHERE from_id = ? AND edge_type = ? AND to_id = ?`,
		e.From.String(), e.Type.String(), e.To.String(),
	).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	raw, err := encodeProps(props)
	if err != nil {
		return false, err
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO edges (graph_id, from_id, edge_type, to_id, props) VALUES (?, ?, ?, ?, ?)`,
		store.NodeID(graph).String(), e.From.String(), e.Type.String(), e.To.String(), raw,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *tx) SetEdgeProperties(ctx context.Context, _ store.GraphID, e store.Edge, props store.Properties) error {
	raw, err := encodeProps(props)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE edges SET props = ? WHERE from_id = ? AND edge_type = ? AND to_id = ?`,
		raw, e.From.String(), e.Type.String(), e.To.String(),
	)
	return err
}

func (t *tx) DeleteEdge(ctx context.Context, _ store.GraphID, e store.Edge) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM edges WHERE from_id = ? AND edge_type = ? AND to_id = ?`,
		e.From.String(), e.Type.String(), e.To.String(),
	)
	return err
}

// DeleteGraph removes every vertex under graph and every edge touching
// one of them, matching storebadger's cascade policy.
func (t *tx) DeleteGraph(ctx context.Context, graph store.GraphID) error {
	rows, err := t.tx.QueryContext(ctx, `SELECT node_id FROM vertices WHERE graph_id = ?`, store.NodeID(graph).String())
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx, `DELETE FROM edges WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
			return err
		}
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM vertices WHERE graph_id = ?`, store.NodeID(graph).String()); err != nil {
		return err
	}
	return nil
}

func (t *tx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *tx) Rollback(context.Context) error { return t.tx.Rollback() }

func parseNodeID(s string) (store.NodeID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return store.NodeID{}, err
	}
	return store.NodeID(u), nil
}

var _ store.Backend = (*Backend)(nil)
