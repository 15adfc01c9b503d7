// Package httpserver exposes any store.Backend over the wire protocol
// storehttp's client speaks: one route per Backend/Tx method, JSON
// request and response bodies, net/http's pattern-matching ServeMux
// (no third-party router — the teacher's own HTTP code is stdlib-only,
// see DESIGN.md).
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

// errUnknownTx is returned when a request names a transaction id the
// server has no record of, either because it was never opened or
// because it already committed or rolled back.
var errUnknownTx = errors.New("storehttp: unknown transaction id")

// Server adapts backend to HTTP, tracking live transactions between
// requests by a server-generated id.
type Server struct {
	backend store.Backend

	mu  sync.Mutex
	txs map[string]store.Tx
}

// New builds a Server fronting backend.
func New(backend store.Backend) *Server {
	return &Server{backend: backend, txs: make(map[string]store.Tx)}
}

// Handler builds the routed mux. Exposed separately from New so callers
// can mount it under a prefix or wrap it in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/graphs", s.handleListGraphRoots)
	mux.HandleFunc("GET /v1/graphs/{graph}/children", s.handleListChildren)
	mux.HandleFunc("GET /v1/graphs/{graph}/vertices/{id}", s.handleGetVertexProperties)
	mux.HandleFunc("GET /v1/graphs/{graph}/vertices/{id}/edges", s.handleGetEdges)
	mux.HandleFunc("GET /v1/graphs/{graph}/edges/{from}/{type}/{to}", s.handleGetEdgeProperties)
	mux.HandleFunc("GET /v1/vertices/{id}/graph", s.handleResolveNodeGraph)

	mux.HandleFunc("POST /v1/tx", s.handleBegin)
	mux.HandleFunc("POST /v1/tx/{tx}/vertices", s.handleCreateVertex)
	mux.HandleFunc("PUT /v1/tx/{tx}/vertices/{id}", s.handleSetVertexProperties)
	mux.HandleFunc("DELETE /v1/tx/{tx}/vertices/{id}", s.handleDeleteVertex)
	mux.HandleFunc("POST /v1/tx/{tx}/edges", s.handleCreateEdge)
	mux.HandleFunc("PUT /v1/tx/{tx}/edges/{from}/{type}/{to}", s.handleSetEdgeProperties)
	mux.HandleFunc("DELETE /v1/tx/{tx}/edges/{from}/{type}/{to}", s.handleDeleteEdge)
	mux.HandleFunc("POST /v1/tx/{tx}/delete-graph", s.handleDeleteGraph)
	mux.HandleFunc("POST /v1/tx/{tx}/commit", s.handleCommit)
	mux.HandleFunc("POST /v1/tx/{tx}/rollback", s.handleRollback)

	return mux
}

func (s *Server) lookupTx(w http.ResponseWriter, r *http.Request) (store.Tx, bool) {
	id := r.PathValue("tx")
	s.mu.Lock()
	t, ok := s.txs[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, errUnknownTx)
		return nil, false
	}
	return t, true
}

func (s *Server) dropTx(id string) {
	s.mu.Lock()
	delete(s.txs, id)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusForErr(err error) int {
	if err == store.ErrNotFound || err == store.ErrGraphNotFound || err == store.ErrNodeNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func newTxID() string {
	return uuid.NewString()
}
