// Package storehttp implements store.Backend over HTTP: every Backend
// and Tx method becomes one JSON request against a configurable base
// URL, mirroring the teacher's HTTPTool's context-aware request
// construction and status-code handling, pointed at the graph store's
// own wire protocol instead of an arbitrary caller-supplied URL.
package storehttp

import "encoding/json"

// vertexPropsResponse carries a single vertex's property map.
type vertexPropsResponse struct {
	Props json.RawMessage `json:"props"`
}

// nodeIDListResponse carries a list of node ids as strings.
type nodeIDListResponse struct {
	IDs []string `json:"ids"`
}

// graphIDResponse carries a single graph id.
type graphIDResponse struct {
	GraphID string `json:"graph_id"`
}

// edgeWire is an edge's endpoints and type as strings, the wire
// representation of store.Edge.
type edgeWire struct {
	From string `json:"from"`
	Type string `json:"type"`
	To   string `json:"to"`
}

// edgesResponse carries the outbound/inbound split GetEdges returns.
type edgesResponse struct {
	Outbound []edgeWire `json:"outbound"`
	Inbound  []edgeWire `json:"inbound"`
}

// beginResponse carries the server-assigned transaction id a client
// must attach to every subsequent Tx call.
type beginResponse struct {
	TxID string `json:"tx_id"`
}

// createVertexRequest is the body of POST /v1/tx/{id}/vertices.
type createVertexRequest struct {
	GraphID string          `json:"graph_id"`
	NodeID  string          `json:"node_id"`
	Props   json.RawMessage `json:"props"`
}

// setPropsRequest is the body of the vertex/edge property-update routes.
type setPropsRequest struct {
	GraphID string          `json:"graph_id"`
	Props   json.RawMessage `json:"props"`
}

// createEdgeRequest is the body of POST /v1/tx/{id}/edges.
type createEdgeRequest struct {
	GraphID string          `json:"graph_id"`
	Edge    edgeWire        `json:"edge"`
	Props   json.RawMessage `json:"props"`
}

// createEdgeResponse reports whether the edge was newly created.
type createEdgeResponse struct {
	Created bool `json:"created"`
}

// deleteGraphRequest is the body of POST /v1/tx/{id}/delete-graph.
type deleteGraphRequest struct {
	GraphID string `json:"graph_id"`
}

// errorResponse is the JSON body of a non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
