// Package masterapi implements the master's HTTP facade of spec.md §6:
// deployments, pods, and nodes CRUD plus node registration/heartbeat.
// Routed with gorilla/mux, the same router shape as pkg/agentapi.
package masterapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lapla-cogito/kago/pkg/kerrors"
	"github.com/lapla-cogito/kago/pkg/metrics"
	"github.com/lapla-cogito/kago/pkg/reconciler"
	"github.com/lapla-cogito/kago/pkg/store"
)

// Handler wires the store and reconciler to HTTP routes.
type Handler struct {
	store      *store.Store
	reconciler *reconciler.Reconciler
	metrics    *metrics.Master
	log        logr.Logger
}

// NewRouter builds the master's mux.Router (spec.md §6). m may be nil, in
// which case heartbeat-age observations are skipped.
func NewRouter(s *store.Store, r *reconciler.Reconciler, m *metrics.Master, log logr.Logger) *mux.Router {
	h := &Handler{store: s, reconciler: r, metrics: m, log: log.WithValues("component", "masterapi")}

	router := mux.NewRouter()
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/deployments", h.listDeployments).Methods(http.MethodGet)
	router.HandleFunc("/deployments", h.createDeployment).Methods(http.MethodPost)
	router.HandleFunc("/deployments/{name}", h.getDeployment).Methods(http.MethodGet)
	router.HandleFunc("/deployments/{name}", h.updateDeployment).Methods(http.MethodPut)
	router.HandleFunc("/deployments/{name}", h.deleteDeployment).Methods(http.MethodDelete)

	router.HandleFunc("/pods", h.listPods).Methods(http.MethodGet)
	router.HandleFunc("/pods/{uuid}", h.getPod).Methods(http.MethodGet)
	router.HandleFunc("/pods/{uuid}", h.deletePod).Methods(http.MethodDelete)

	router.HandleFunc("/nodes", h.listNodes).Methods(http.MethodGet)
	router.HandleFunc("/nodes/register", h.registerNode).Methods(http.MethodPost)
	router.HandleFunc("/nodes/{name}", h.getNode).Methods(http.MethodGet)
	router.HandleFunc("/nodes/{name}", h.deleteNode).Methods(http.MethodDelete)
	router.HandleFunc("/nodes/{name}/heartbeat", h.nodeHeartbeat).Methods(http.MethodPost)

	return router
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
