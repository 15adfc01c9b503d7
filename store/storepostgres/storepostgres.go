// Package storepostgres implements store.Backend on top of PostgreSQL,
// mirroring storesql's one-row-per-vertex/one-row-per-edge layout but
// storing properties as JSONB and using pgx's native transaction type
// instead of database/sql.
package storepostgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshills/fluxgraph/store"
)

// Querier abstracts the pgx query methods Backend needs. Both
// *pgxpool.Pool and pgxmock's mock pool satisfy it, so unit tests can
// swap in a mock without touching a live database.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner extends Querier with transaction support. *pgxpool.Pool and
// pgxmock's pool both satisfy it.
type TxBeginner interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Backend wraps a TxBeginner to satisfy store.Backend.
type Backend struct {
	db TxBeginner
}

// New wraps an existing pool or mock in a Backend.
func New(db TxBeginner) *Backend {
	return &Backend{db: db}
}

// Open connects to PostgreSQL at connString, ensures the schema exists,
// and returns a ready Backend backed by a connection pool.
func Open(ctx context.Context, connString string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, store.WrapErr(store.ErrDatastoreCreate, err)
	}
	b := &Backend{db: pool}
	if err := b.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, store.WrapErr(store.ErrDatastoreCreate, err)
	}
	return b, nil
}

// Close releases the underlying pool, if this Backend owns one.
func (b *Backend) Close() {
	if pool, ok := b.db.(*pgxpool.Pool); ok {
		pool.Close()
	}
}

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
	err := b.db.QueryRow(ctx, `SELECT props::text FROM fluxgraph_vertices WHERE node_id = $1`, id.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProps(raw)
}

func (b *Backend) ListGraphRoots(ctx context.Context) ([]store.NodeID, error) {
	rows, err := b.db.Query(ctx, `SELECT node_id FROM fluxgraph_vertices WHERE is_root`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	rows, err := b.db.Query(ctx, `SELECT node_id FROM fluxgraph_vertices WHERE graph_id = $1 AND NOT is_root`, store.NodeID(graph).String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	outbound, err = b.queryEdges(ctx, `SELECT from_id, edge_type, to_id FROM fluxgraph_edges WHERE from_id = $1`, id.String())
	if err != nil {
		return nil, nil, err
	}
	inbound, err = b.queryEdges(ctx, `SELECT from_id, edge_type, to_id FROM fluxgraph_edges WHERE to_id = $1`, id.String())
	if err != nil {
		return nil, nil, err
	}
	return outbound, inbound, nil
}

func (b *Backend) queryEdges(ctx context.Context, query, arg string) ([]store.Edge, error) {
	rows, err := b.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	err := b.db.QueryRow(ctx,
		`SELECT props::text FROM fluxgraph_edges WHERE from_id = $1 AND edge_type = $2 AND to_id = $3`,
		e.From.String(), e.Type.String(), e.To.String(),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProps(raw)
}

func (b *Backend) ResolveNodeGraph(ctx context.Context, id store.NodeID) (store.GraphID, error) {
	var graphIDStr string
	err := b.db.QueryRow(ctx, `SELECT graph_id FROM fluxgraph_vertices WHERE node_id = $1`, id.String()).Scan(&graphIDStr)
	if errors.Is(err, pgx.ErrNoRows) {
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
	pgxTx, err := b.db.Begin(ctx)
	if err != nil {
		return nil, store.WrapErr(store.ErrCreateTransaction, err)
	}
	return &tx{tx: pgxTx}, nil
}

// tx adapts a pgx.Tx to store.Tx.
type tx struct {
	tx pgx.Tx
}

func (t *tx) CreateVertex(ctx context.Context, graph store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := encodeProps(props)
	if err != nil {
		return err
	}
	isRoot := store.GraphID(id) == graph
	_, err = t.tx.Exec(ctx,
		`INSERT INTO fluxgraph_vertices (graph_id, node_id, is_root, props) VALUES ($1, $2, $3, $4::jsonb)`,
		store.NodeID(graph).String(), id.String(), isRoot, raw,
	)
	return err
}

func (t *tx) SetVertexProperties(ctx context.Context, _ store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := encodeProps(props)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `UPDATE fluxgraph_vertices SET props = $1::jsonb WHERE node_id = $2`, raw, id.String())
	return err
}

func (t *tx) DeleteVertex(ctx context.Context, _ store.GraphID, id store.NodeID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM fluxgraph_vertices WHERE node_id = $1`, id.String())
	return err
}

func (t *tx) CreateEdge(ctx context.Context, graph store.GraphID, e store.Edge, props store.Properties) (bool, error) {
	var exists int
	err := t.tx.QueryRow(ctx,
		`SELECT 1 FROM fluxgraph_edges WHERE from_id = $1 AND edge_type = $2 AND to_id = $3`,
		e.From.String(), e.Type.String(), e.To.String(),
	).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	raw, err := encodeProps(props)
	if err != nil {
		return false, err
	}
	_, err = t.tx.Exec(ctx,
		`INSERT INTO fluxgraph_edges (graph_id, from_id, edge_type, to_id, props) VALUES ($1, $2, $3, $4, $5::jsonb)`,
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
	_, err = t.tx.Exec(ctx,
		`UPDATE fluxgraph_edges SET props = $1::jsonb WHERE from_id = $2 AND edge_type = $3 AND to_id = $4`,
		raw, e.From.String(), e.Type.String(), e.To.String(),
	)
	return err
}

func (t *tx) DeleteEdge(ctx context.Context, _ store.GraphID, e store.Edge) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM fluxgraph_edges WHERE from_id = $1 AND edge_type = $2 AND to_id = $3`,
		e.From.String(), e.Type.String(), e.To.String(),
	)
	return err
}

// DeleteGraph removes every vertex under graph and every edge touching
// one of them, matching storebadger's and storesql's cascade policy.
func (t *tx) DeleteGraph(ctx context.Context, graph store.GraphID) error {
	rows, err := t.tx.Query(ctx, `SELECT node_id FROM fluxgraph_vertices WHERE graph_id = $1`, store.NodeID(graph).String())
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range ids {
		if _, err := t.tx.Exec(ctx, `DELETE FROM fluxgraph_edges WHERE from_id = $1 OR to_id = $1`, id); err != nil {
			return err
		}
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM fluxgraph_vertices WHERE graph_id = $1`, store.NodeID(graph).String()); err != nil {
		return err
	}
	return nil
}

func (t *tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

var _ store.Backend = (*Backend)(nil)
