package agentapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
)

// createPod implements POST /pods (spec.md §6): 409 on a duplicate pod
// id, 201 with the final status on success, 500 if the runtime failed to
// start the container.
func (h *Handler) createPod(w http.ResponseWriter, r *http.Request) {
	var req v1.CreatePodOnNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.Image == "" {
		writeValidationError(w, "name and image are required")
		return
	}

	h.log.Info("create pod request", "pod", req.Name, "podID", req.PodID)
	err := h.state.CreatePod(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{
			"pod_id": req.PodID,
			"name":   req.Name,
			"status": v1.PodRunning,
		})
	case kerrors.Is(err, kerrors.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// listPods implements GET /pods (spec.md §6).
func (h *Handler) listPods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state.ListPods())
}

// deletePod implements DELETE /pods/{name} (spec.md §6): 404 if the pod
// is not managed here, 200 on success.
func (h *Handler) deletePod(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.log.Info("delete pod request", "pod", name)

	err := h.state.DeletePod(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "pod '" + name + "' deleted"})
	case kerrors.Is(err, kerrors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
