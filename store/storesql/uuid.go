package storesql

import (
	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

func parseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, store.WrapErr(store.ErrInvalidID, err)
	}
	return u, nil
}

func parseEdge(fromStr, typeStr, toStr string) (store.Edge, error) {
	from, err := parseUUID(fromStr)
	if err != nil {
		return store.Edge{}, err
	}
	typ, err := parseUUID(typeStr)
	if err != nil {
		return store.Edge{}, err
	}
	to, err := parseUUID(toStr)
	if err != nil {
		return store.Edge{}, err
	}
	return store.Edge{From: store.NodeID(from), To: store.NodeID(to), Type: store.EdgeType(typ)}, nil
}
