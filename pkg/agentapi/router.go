// Package agentapi implements the agent's HTTP facade of spec.md §6: the
// routes the master's scheduler and reconciler call against a node agent.
// Routing follows gorilla/mux's ordinary HandleFunc/Methods style, the
// same router used by the master facade (pkg/masterapi).
package agentapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lapla-cogito/kago/pkg/agent"
	"github.com/lapla-cogito/kago/pkg/kerrors"
)

// Handler wires an agent.State to HTTP routes.
type Handler struct {
	state *agent.State
	log   logr.Logger
}

// NewRouter builds the agent's mux.Router (spec.md §6: health, pods
// create/list/delete).
func NewRouter(state *agent.State, log logr.Logger) *mux.Router {
	h := &Handler{state: state, log: log.WithValues("component", "agentapi")}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/pods", h.createPod).Methods(http.MethodPost)
	r.HandleFunc("/pods", h.listPods).Methods(http.MethodGet)
	r.HandleFunc("/pods/{name}", h.deletePod).Methods(http.MethodDelete)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeValidationError writes a 400 for malformed request bodies/fields,
// wrapping kerrors.ErrValidation so validation failures carry the same
// sentinel error kind (spec.md §7) the other facades use for their kinds.
func writeValidationError(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", kerrors.ErrValidation, msg).Error())
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
