package storepostgres

import "context"

const createVerticesSQL = `CREATE TABLE IF NOT EXISTS fluxgraph_vertices (
	graph_id TEXT NOT NULL,
	node_id  TEXT NOT NULL PRIMARY KEY,
	is_root  BOOLEAN NOT NULL DEFAULT FALSE,
	props    JSONB NOT NULL
)`

const createVerticesGraphIdxSQL = `CREATE INDEX IF NOT EXISTS idx_fluxgraph_vertices_graph
	ON fluxgraph_vertices (graph_id)`

const createEdgesSQL = `CREATE TABLE IF NOT EXISTS fluxgraph_edges (
	graph_id  TEXT NOT NULL,
	from_id   TEXT NOT NULL,
	edge_type TEXT NOT NULL,
	to_id     TEXT NOT NULL,
	props     JSONB NOT NULL,
	PRIMARY KEY (from_id, edge_type, to_id)
)`

const createEdgesFromIdxSQL = `CREATE INDEX IF NOT EXISTS idx_fluxgraph_edges_from ON fluxgraph_edges (from_id)`
const createEdgesToIdxSQL = `CREATE INDEX IF NOT EXISTS idx_fluxgraph_edges_to ON fluxgraph_edges (to_id)`

// EnsureSchema creates the vertices and edges tables and their indexes if
// they do not already exist. Production deployments should manage schema
// changes with dedicated migration tooling instead.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{
		createVerticesSQL,
		createVerticesGraphIdxSQL,
		createEdgesSQL,
		createEdgesFromIdxSQL,
		createEdgesToIdxSQL,
	} {
		if _, err := b.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
