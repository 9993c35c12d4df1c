package masterapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

func (h *Handler) listPods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListPods())
}

func (h *Handler) getPod(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		writeValidationError(w, "invalid pod id")
		return
	}
	p := h.store.GetPod(id)
	if p == nil {
		writeError(w, http.StatusNotFound, "pod not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// deletePod implements DELETE /pods/{uuid} (spec.md §6, §9): it only sets
// the pod to Terminating. The reconciler performs the actual agent RPC
// and terminal-state transition on its next tick.
func (h *Handler) deletePod(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		writeValidationError(w, "invalid pod id")
		return
	}
	p := h.store.GetPod(id)
	if p == nil {
		writeError(w, http.StatusNotFound, "pod not found")
		return
	}
	h.store.UpdatePodStatus(id, v1.PodTerminating)
	h.log.Info("pod marked terminating", "pod", p.Name, "podID", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "pod terminating"})
}
