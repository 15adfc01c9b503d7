package storepostgres

import (
	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

func parseNodeID(s string) (store.NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return store.NodeID{}, store.WrapErr(store.ErrInvalidID, err)
	}
	return store.NodeID(u), nil
}

func parseEdge(fromStr, typeStr, toStr string) (store.Edge, error) {
	from, err := parseNodeID(fromStr)
	if err != nil {
		return store.Edge{}, err
	}
	typUUID, err := uuid.Parse(typeStr)
	if err != nil {
		return store.Edge{}, store.WrapErr(store.ErrInvalidID, err)
	}
	to, err := parseNodeID(toStr)
	if err != nil {
		return store.Edge{}, err
	}
	return store.Edge{From: from, To: to, Type: store.EdgeType(typUUID)}, nil
}
