package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

type vertexPropsResponse struct {
	Props json.RawMessage `json:"props"`
}

type nodeIDListResponse struct {
	IDs []string `json:"ids"`
}

type graphIDResponse struct {
	GraphID string `json:"graph_id"`
}

type edgeWire struct {
	From string `json:"from"`
	Type string `json:"type"`
	To   string `json:"to"`
}

type edgesResponse struct {
	Outbound []edgeWire `json:"outbound"`
	Inbound  []edgeWire `json:"inbound"`
}

type beginResponse struct {
	TxID string `json:"tx_id"`
}

type createVertexRequest struct {
	GraphID string          `json:"graph_id"`
	NodeID  string          `json:"node_id"`
	Props   json.RawMessage `json:"props"`
}

type setPropsRequest struct {
	GraphID string          `json:"graph_id"`
	Props   json.RawMessage `json:"props"`
}

type createEdgeRequest struct {
	GraphID string          `json:"graph_id"`
	Edge    edgeWire        `json:"edge"`
	Props   json.RawMessage `json:"props"`
}

type createEdgeResponse struct {
	Created bool `json:"created"`
}

type deleteGraphRequest struct {
	GraphID string `json:"graph_id"`
}

func parseNodeID(w http.ResponseWriter, s string) (store.NodeID, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return store.NodeID{}, false
	}
	return store.NodeID(u), true
}

func parseGraphID(w http.ResponseWriter, s string) (store.GraphID, bool) {
	id, ok := parseNodeID(w, s)
	return store.GraphID(id), ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Body == nil {
		return true
	}
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func decodeProps(w http.ResponseWriter, raw json.RawMessage) (store.Properties, bool) {
	var props store.Properties
	if len(raw) == 0 {
		return store.Properties{}, true
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return props, true
}

func (s *Server) handleListGraphRoots(w http.ResponseWriter, r *http.Request) {
	ids, err := s.backend.ListGraphRoots(r.Context())
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nodeIDListResponse{IDs: idsToStrings(ids)})
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	graph, ok := parseGraphID(w, r.PathValue("graph"))
	if !ok {
		return
	}
	ids, err := s.backend.ListChildren(r.Context(), graph)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nodeIDListResponse{IDs: idsToStrings(ids)})
}

func (s *Server) handleGetVertexProperties(w http.ResponseWriter, r *http.Request) {
	graph, ok := parseGraphID(w, r.PathValue("graph"))
	if !ok {
		return
	}
	id, ok := parseNodeID(w, r.PathValue("id"))
	if !ok {
		return
	}
	props, err := s.backend.GetVertexProperties(r.Context(), graph, id)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	raw, err := json.Marshal(props)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, vertexPropsResponse{Props: raw})
}

func (s *Server) handleGetEdges(w http.ResponseWriter, r *http.Request) {
	graph, ok := parseGraphID(w, r.PathValue("graph"))
	if !ok {
		return
	}
	id, ok := parseNodeID(w, r.PathValue("id"))
	if !ok {
		return
	}
	outbound, inbound, err := s.backend.GetEdges(r.Context(), graph, id)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, edgesResponse{Outbound: edgesToWire(outbound), Inbound: edgesToWire(inbound)})
}

func (s *Server) handleGetEdgeProperties(w http.ResponseWriter, r *http.Request) {
	graph, ok := parseGraphID(w, r.PathValue("graph"))
	if !ok {
		return
	}
	edge, ok := parseEdgePath(w, r)
	if !ok {
		return
	}
	props, err := s.backend.GetEdgeProperties(r.Context(), graph, edge)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	raw, err := json.Marshal(props)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, vertexPropsResponse{Props: raw})
}

func (s *Server) handleResolveNodeGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r.PathValue("id"))
	if !ok {
		return
	}
	graph, err := s.backend.ResolveNodeGraph(r.Context(), id)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, graphIDResponse{GraphID: graph.String()})
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Begin(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	id := newTxID()
	s.mu.Lock()
	s.txs[id] = t
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, beginResponse{TxID: id})
}

func (s *Server) handleCreateVertex(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	var req createVertexRequest
	if !decodeBody(w, r, &req) {
		return
	}
	graph, ok := parseGraphID(w, req.GraphID)
	if !ok {
		return
	}
	id, ok := parseNodeID(w, req.NodeID)
	if !ok {
		return
	}
	props, ok := decodeProps(w, req.Props)
	if !ok {
		return
	}
	if err := t.CreateVertex(r.Context(), graph, id, props); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleSetVertexProperties(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	id, ok := parseNodeID(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req setPropsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	graph, ok := parseGraphID(w, req.GraphID)
	if !ok {
		return
	}
	props, ok := decodeProps(w, req.Props)
	if !ok {
		return
	}
	if err := t.SetVertexProperties(r.Context(), graph, id, props); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteVertex(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	id, ok := parseNodeID(w, r.PathValue("id"))
	if !ok {
		return
	}
	graph, ok := parseGraphID(w, r.URL.Query().Get("graph"))
	if !ok {
		return
	}
	if err := t.DeleteVertex(r.Context(), graph, id); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	var req createEdgeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	graph, ok := parseGraphID(w, req.GraphID)
	if !ok {
		return
	}
	edge, ok := wireToEdge(w, req.Edge)
	if !ok {
		return
	}
	props, ok := decodeProps(w, req.Props)
	if !ok {
		return
	}
	created, err := t.CreateEdge(r.Context(), graph, edge, props)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, createEdgeResponse{Created: created})
}

func (s *Server) handleSetEdgeProperties(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	edge, ok := parseEdgePath(w, r)
	if !ok {
		return
	}
	var req setPropsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	graph, ok := parseGraphID(w, req.GraphID)
	if !ok {
		return
	}
	props, ok := decodeProps(w, req.Props)
	if !ok {
		return
	}
	if err := t.SetEdgeProperties(r.Context(), graph, edge, props); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	edge, ok := parseEdgePath(w, r)
	if !ok {
		return
	}
	graph, ok := parseGraphID(w, r.URL.Query().Get("graph"))
	if !ok {
		return
	}
	if err := t.DeleteEdge(r.Context(), graph, edge); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	var req deleteGraphRequest
	if !decodeBody(w, r, &req) {
		return
	}
	graph, ok := parseGraphID(w, req.GraphID)
	if !ok {
		return
	}
	if err := t.DeleteGraph(r.Context(), graph); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	defer s.dropTx(r.PathValue("tx"))
	if err := t.Commit(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTx(w, r)
	if !ok {
		return
	}
	defer s.dropTx(r.PathValue("tx"))
	if err := t.Rollback(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func parseEdgePath(w http.ResponseWriter, r *http.Request) (store.Edge, bool) {
	from, ok := parseNodeID(w, r.PathValue("from"))
	if !ok {
		return store.Edge{}, false
	}
	typ, err := uuid.Parse(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return store.Edge{}, false
	}
	to, ok := parseNodeID(w, r.PathValue("to"))
	if !ok {
		return store.Edge{}, false
	}
	return store.Edge{From: from, Type: store.EdgeType(typ), To: to}, true
}

func wireToEdge(w http.ResponseWriter, e edgeWire) (store.Edge, bool) {
	from, ok := parseNodeID(w, e.From)
	if !ok {
		return store.Edge{}, false
	}
	typ, err := uuid.Parse(e.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return store.Edge{}, false
	}
	to, ok := parseNodeID(w, e.To)
	if !ok {
		return store.Edge{}, false
	}
	return store.Edge{From: from, Type: store.EdgeType(typ), To: to}, true
}

func idsToStrings(ids []store.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func edgesToWire(edges []store.Edge) []edgeWire {
	out := make([]edgeWire, len(edges))
	for i, e := range edges {
		out[i] = edgeWire{From: e.From.String(), Type: e.Type.String(), To: e.To.String()}
	}
	return out
}
