package storehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dshills/fluxgraph/store"
)

// Backend reaches a remote graph store over HTTP. Every Backend/Tx
// method becomes one request against baseURL.
type Backend struct {
	baseURL string
	client  *http.Client
}

// Open wraps baseURL (no trailing slash) in a Backend. A nil client
// installs http.DefaultClient, same as the teacher's NewHTTPTool
// defaulting to an unconfigured *http.Client.
func Open(baseURL string, client *http.Client) *Backend {
	if client == nil {
		client = http.DefaultClient
	}
	return &Backend{baseURL: baseURL, client: client}
}

// doJSON sends method/path with body JSON-encoded (nil for no body),
// decodes a 2xx response's JSON body into out (nil to discard it), maps
// 404 to store.ErrNotFound, and maps any other status to
// *store.ErrHTTPStatus — the same
// status-code-to-error shape the teacher's HTTPTool surfaces to callers
// via the status_code output field, just returned as a Go error instead
// of a map entry.
func (b *Backend) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return store.WrapErr(store.ErrJSON, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return store.WrapErr(store.ErrHTTPClient, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return store.WrapErr(store.ErrHTTPClient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.WrapErr(store.ErrHTTPClient, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return store.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		msg := string(respBody)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &store.ErrHTTPStatus{Code: resp.StatusCode, Body: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return store.WrapErr(store.ErrJSON, err)
	}
	return nil
}

func (b *Backend) GetVertexProperties(ctx context.Context, graph store.GraphID, id store.NodeID) (store.Properties, error) {
	var resp vertexPropsResponse
	path := fmt.Sprintf("/v1/graphs/%s/vertices/%s", graph.String(), id.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return decodePropsJSON(resp.Props)
}

func (b *Backend) ListGraphRoots(ctx context.Context) ([]store.NodeID, error) {
	var resp nodeIDListResponse
	if err := b.doJSON(ctx, http.MethodGet, "/v1/graphs", nil, &resp); err != nil {
		return nil, err
	}
	return parseNodeIDs(resp.IDs)
}

func (b *Backend) ListChildren(ctx context.Context, graph store.GraphID) ([]store.NodeID, error) {
	var resp nodeIDListResponse
	path := fmt.Sprintf("/v1/graphs/%s/children", graph.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return parseNodeIDs(resp.IDs)
}

func (b *Backend) GetEdges(ctx context.Context, graph store.GraphID, id store.NodeID) (outbound, inbound []store.Edge, err error) {
	var resp edgesResponse
	path := fmt.Sprintf("/v1/graphs/%s/vertices/%s/edges", graph.String(), id.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, nil, err
	}
	if outbound, err = parseEdges(resp.Outbound); err != nil {
		return nil, nil, err
	}
	if inbound, err = parseEdges(resp.Inbound); err != nil {
		return nil, nil, err
	}
	return outbound, inbound, nil
}

func (b *Backend) GetEdgeProperties(ctx context.Context, graph store.GraphID, e store.Edge) (store.Properties, error) {
	var resp vertexPropsResponse
	path := fmt.Sprintf("/v1/graphs/%s/edges/%s/%s/%s", graph.String(), e.From.String(), e.Type.String(), e.To.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return decodePropsJSON(resp.Props)
}

func (b *Backend) ResolveNodeGraph(ctx context.Context, id store.NodeID) (store.GraphID, error) {
	var resp graphIDResponse
	path := fmt.Sprintf("/v1/vertices/%s/graph", id.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return store.GraphID{}, err
	}
	nid, err := parseNodeID(resp.GraphID)
	if err != nil {
		return store.GraphID{}, err
	}
	return store.GraphID(nid), nil
}

func (b *Backend) Begin(ctx context.Context) (store.Tx, error) {
	var resp beginResponse
	if err := b.doJSON(ctx, http.MethodPost, "/v1/tx", nil, &resp); err != nil {
		return nil, store.WrapErr(store.ErrCreateTransaction, err)
	}
	return &tx{backend: b, id: resp.TxID}, nil
}

var _ store.Backend = (*Backend)(nil)
