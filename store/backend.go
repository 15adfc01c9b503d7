package store

import "context"

// Backend is the plug-in storage contract from spec §6 ("Backend
// interface (plug-in)"). Any type implementing Backend — an embedded
// key-value engine, a relational database, or a remote graph service
// reached over HTTP — is admissible; Store never talks to the underlying
// engine except through this interface.
//
// A graph's root vertex shares its NodeID with the graph's GraphID: the
// graph "is" its root vertex plus everything reachable from it, so
// CreateGraph is just CreateVertex with is_graph_root=true at id
// NodeID(graphID).
type Backend interface {
	// Begin starts a transaction. All of a Backend's mutating methods are
	// called on the returned Tx; Commit or Rollback ends it. Every
	// Backend method below that is not on Tx is a read with no
	// transactional requirement.
	Begin(ctx context.Context) (Tx, error)

	// ListGraphRoots returns every vertex across the whole backend whose
	// properties carry is_graph_root=true, for Store.ListGraphs.
	ListGraphRoots(ctx context.Context) ([]NodeID, error)

	// GetVertexProperties reads a single vertex's property map.
	GetVertexProperties(ctx context.Context, graph GraphID, id NodeID) (Properties, error)

	// ListChildren returns the direct children of the graph root: every
	// NodeID reachable by exactly one outbound edge from NodeID(graph).
	ListChildren(ctx context.Context, graph GraphID) ([]NodeID, error)

	// GetEdges returns every edge incident to id within graph, split into
	// outbound (id is From) and inbound (id is To).
	GetEdges(ctx context.Context, graph GraphID, id NodeID) (outbound, inbound []Edge, err error)

	// GetEdgeProperties reads a single edge's property map.
	GetEdgeProperties(ctx context.Context, graph GraphID, e Edge) (Properties, error)

	// ResolveNodeGraph finds which graph a node belongs to. It backs the
	// read_node and read_edge_properties queries, whose spec signatures
	// carry only a NodeID/Edge with no graph parameter (spec §6).
	ResolveNodeGraph(ctx context.Context, id NodeID) (GraphID, error)
}

// Tx is the transactional mutation surface of a Backend. Every method
// corresponds to one of spec §6's primitives (create_vertex,
// delete_vertices, set_vertex_properties, create_edge, ...).
type Tx interface {
	CreateVertex(ctx context.Context, graph GraphID, id NodeID, props Properties) error
	SetVertexProperties(ctx context.Context, graph GraphID, id NodeID, props Properties) error
	DeleteVertex(ctx context.Context, graph GraphID, id NodeID) error

	// CreateEdge reports false (not an error) if the backend refuses to
	// create a duplicate (from, to, edgeType) triple; Store maps that
	// into ErrCreateEdgeFailed.
	CreateEdge(ctx context.Context, graph GraphID, e Edge, props Properties) (bool, error)
	SetEdgeProperties(ctx context.Context, graph GraphID, e Edge, props Properties) error
	DeleteEdge(ctx context.Context, graph GraphID, e Edge) error

	// DeleteGraph removes every vertex and edge under graph, including
	// the root, per the cascade policy Store.DeleteGraph implements
	// (spec §9 open question 1).
	DeleteGraph(ctx context.Context, graph GraphID) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
