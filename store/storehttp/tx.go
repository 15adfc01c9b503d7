package storehttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dshills/fluxgraph/store"
)

// tx addresses one server-side transaction by id. Every method is one
// HTTP request scoped to /v1/tx/{id}/...; the server holds the actual
// store.Tx open between requests.
type tx struct {
	backend *Backend
	id      string
}

func (t *tx) CreateVertex(ctx context.Context, graph store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	path := fmt.Sprintf("/v1/tx/%s/vertices", t.id)
	req := createVertexRequest{GraphID: graph.String(), NodeID: id.String(), Props: raw}
	return t.backend.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (t *tx) SetVertexProperties(ctx context.Context, graph store.GraphID, id store.NodeID, props store.Properties) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	path := fmt.Sprintf("/v1/tx/%s/vertices/%s", t.id, id.String())
	req := setPropsRequest{GraphID: graph.String(), Props: raw}
	return t.backend.doJSON(ctx, http.MethodPut, path, req, nil)
}

func (t *tx) DeleteVertex(ctx context.Context, graph store.GraphID, id store.NodeID) error {
	path := fmt.Sprintf("/v1/tx/%s/vertices/%s?graph=%s", t.id, id.String(), graph.String())
	return t.backend.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (t *tx) CreateEdge(ctx context.Context, graph store.GraphID, e store.Edge, props store.Properties) (bool, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return false, store.WrapErr(store.ErrJSON, err)
	}
	path := fmt.Sprintf("/v1/tx/%s/edges", t.id)
	req := createEdgeRequest{
		GraphID: graph.String(),
		Edge:    edgeWire{From: e.From.String(), Type: e.Type.String(), To: e.To.String()},
		Props:   raw,
	}
	var resp createEdgeResponse
	if err := t.backend.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return false, err
	}
	return resp.Created, nil
}

func (t *tx) SetEdgeProperties(ctx context.Context, graph store.GraphID, e store.Edge, props store.Properties) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	path := fmt.Sprintf("/v1/tx/%s/edges/%s/%s/%s", t.id, e.From.String(), e.Type.String(), e.To.String())
	req := setPropsRequest{GraphID: graph.String(), Props: raw}
	return t.backend.doJSON(ctx, http.MethodPut, path, req, nil)
}

func (t *tx) DeleteEdge(ctx context.Context, graph store.GraphID, e store.Edge) error {
	path := fmt.Sprintf("/v1/tx/%s/edges/%s/%s/%s?graph=%s", t.id, e.From.String(), e.Type.String(), e.To.String(), graph.String())
	return t.backend.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (t *tx) DeleteGraph(ctx context.Context, graph store.GraphID) error {
	path := fmt.Sprintf("/v1/tx/%s/delete-graph", t.id)
	req := deleteGraphRequest{GraphID: graph.String()}
	return t.backend.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (t *tx) Commit(ctx context.Context) error {
	path := fmt.Sprintf("/v1/tx/%s/commit", t.id)
	return t.backend.doJSON(ctx, http.MethodPost, path, nil, nil)
}

func (t *tx) Rollback(ctx context.Context) error {
	path := fmt.Sprintf("/v1/tx/%s/rollback", t.id)
	return t.backend.doJSON(ctx, http.MethodPost, path, nil, nil)
}

var _ store.Tx = (*tx)(nil)
