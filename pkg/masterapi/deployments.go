package masterapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

func (h *Handler) listDeployments(w http.ResponseWriter, _ *http.Request) {
	deployments := h.store.ListDeployments()
	out := make([]v1.DeploymentResponse, 0, len(deployments))
	for _, d := range deployments {
		out = append(out, v1.NewDeploymentResponse(d, h.store.CountRunningForDeployment(d.Name)))
	}
	writeJSON(w, http.StatusOK, out)
}

// createDeployment implements POST /deployments (spec.md §6): 400 on
// empty name/image, 409 if the deployment already exists, else 201 with
// the created deployment at revision 1.
func (h *Handler) createDeployment(w http.ResponseWriter, r *http.Request) {
	var req v1.CreateDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Image) == "" {
		writeValidationError(w, "name and image are required")
		return
	}
	if req.Replicas == 0 {
		req.Replicas = 1
	}

	if existing := h.store.GetDeployment(req.Name); existing != nil {
		writeError(w, http.StatusConflict, "deployment '"+req.Name+"' already exists")
		return
	}

	rollingUpdate := v1.DefaultRollingUpdatePolicy()
	if req.RollingUpdate != nil {
		rollingUpdate = *req.RollingUpdate
	}

	d := &v1.Deployment{
		Name:          req.Name,
		Image:         req.Image,
		Replicas:      req.Replicas,
		Resources:     req.Resources,
		RollingUpdate: rollingUpdate,
		Revision:      1,
	}
	h.store.UpsertDeployment(d)
	h.log.Info("deployment created", "name", d.Name, "replicas", d.Replicas)

	writeJSON(w, http.StatusCreated, v1.NewDeploymentResponse(d, 0))
}

func (h *Handler) getDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	d := h.store.GetDeployment(name)
	if d == nil {
		writeError(w, http.StatusNotFound, "deployment '"+name+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, v1.NewDeploymentResponse(d, h.store.CountRunningForDeployment(name)))
}

// updateDeployment implements PUT /deployments/{name} (spec.md §6, §9):
// replicas may change freely; an actual image change bumps revision,
// triggering a rolling update on the next reconcile tick.
func (h *Handler) updateDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	d := h.store.GetDeployment(name)
	if d == nil {
		writeError(w, http.StatusNotFound, "deployment '"+name+"' not found")
		return
	}

	var req v1.UpdateDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body: "+err.Error())
		return
	}

	if err := d.ApplyUpdate(req.Replicas, req.Image); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.store.UpsertDeployment(d)
	h.log.Info("deployment updated", "name", d.Name, "replicas", d.Replicas, "revision", d.Revision)

	writeJSON(w, http.StatusOK, v1.NewDeploymentResponse(d, h.store.CountRunningForDeployment(name)))
}

// deleteDeployment implements DELETE /deployments/{name} (spec.md §6):
// removes the deployment and marks its owned pods Terminating; actual
// agent calls happen on the reconciler's next tick (spec.md §9).
func (h *Handler) deleteDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if h.store.GetDeployment(name) == nil {
		writeError(w, http.StatusNotFound, "deployment '"+name+"' not found")
		return
	}

	h.reconciler.TerminateDeploymentPods(name)
	h.store.DeleteDeployment(name)
	h.log.Info("deployment deleted", "name", name)

	writeJSON(w, http.StatusOK, map[string]string{"message": "deployment '" + name + "' deleted"})
}
