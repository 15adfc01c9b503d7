package store

import "github.com/google/uuid"

// GraphID identifies a graph. All ids in this package are UUID v1 values
// generated by newID, which uses uuid.NewUUID — seeded from a
// monotonic, process-local clock sequence per spec §6.
type GraphID uuid.UUID

func (g GraphID) String() string { return uuid.UUID(g).String() }

// NodeID identifies a node within exactly one graph.
type NodeID uuid.UUID

func (n NodeID) String() string { return uuid.UUID(n).String() }

// EdgeType is the UUID the store assigns to an edge at creation time. It
// exists specifically to distinguish parallel edges between the same
// pair of nodes (spec §3, §4.1 "Algorithmic notes").
type EdgeType uuid.UUID

func (t EdgeType) String() string { return uuid.UUID(t).String() }

// Edge identifies a directed edge by its endpoints and edge type.
type Edge struct {
	From NodeID
	To   NodeID
	Type EdgeType
}

// newID generates a fresh UUID v1 value. Backends never invent ids
// themselves; the core always calls this so every id in a given process
// comes from the same monotonic clock sequence.
func newID() (uuid.UUID, error) {
	return uuid.NewUUID()
}
