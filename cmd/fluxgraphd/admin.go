package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/scheduler"
	"github.com/dshills/fluxgraph/store"
)

// adminMux exposes scheduler control (deploy/undeploy) over HTTP
// alongside storehttp's store wire protocol. It is deliberately kept
// separate from storehttp/httpserver: that package fronts any
// store.Backend for remote storage access, while this one is specific
// to the single in-process scheduler.FlowContext a "serve" invocation
// owns.
func adminMux(fc *scheduler.FlowContext) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /admin/deploy", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GraphID  string `json:"graph_id"`
			PeriodMS int64  `json:"period_ms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		graphID, err := parseGraphID(req.GraphID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		priorTicks, err := fc.Deploy(r.Context(), graphID, time.Duration(req.PeriodMS)*time.Millisecond)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]int{"prior_ticks": priorTicks})
	})

	mux.HandleFunc("POST /admin/undeploy", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GraphID string `json:"graph_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		graphID, err := parseGraphID(req.GraphID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fc.Undeploy(graphID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "undeployed"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func parseGraphID(s string) (store.GraphID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return store.GraphID{}, err
	}
	return store.GraphID(u), nil
}
