package masterapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

func (h *Handler) listNodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListNodes())
}

// registerNode implements POST /nodes/register (spec.md §6, §4.1):
// overwrites an existing node of the same name, per the store's
// register-node contract.
func (h *Handler) registerNode(w http.ResponseWriter, r *http.Request) {
	var req v1.RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidationError(w, "node name cannot be empty")
		return
	}

	if h.store.GetNode(req.Name) != nil {
		h.log.Info("node re-registering", "node", req.Name)
	}
	node := h.store.RegisterNode(req.Name, req.Address, req.Port, req.Capacity, time.Now())
	h.log.Info("node registered", "node", node.Name, "capacity", node.Capacity)

	writeJSON(w, http.StatusCreated, node)
}

func (h *Handler) getNode(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	n := h.store.GetNode(name)
	if n == nil {
		writeError(w, http.StatusNotFound, "node '"+name+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// deleteNode implements DELETE /nodes/{name} (spec.md §6, §8 scenario 5):
// removes the node record only. Pods previously assigned to it are left
// untouched -- there is no automatic reschedule.
func (h *Handler) deleteNode(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !h.store.DeleteNode(name) {
		writeError(w, http.StatusNotFound, "node '"+name+"' not found")
		return
	}
	h.log.Info("node deleted", "node", name)
	writeJSON(w, http.StatusOK, map[string]string{"message": "node '" + name + "' deleted"})
}

// nodeHeartbeat implements POST /nodes/{name}/heartbeat (spec.md §6):
// updates last_heartbeat and used, and for each reported pod -- if it
// exists in the store and is not Terminated/Terminating -- copies over
// status and container_id.
func (h *Handler) nodeHeartbeat(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if h.store.GetNode(name) == nil {
		writeError(w, http.StatusNotFound, "node '"+name+"' not found")
		return
	}

	var req v1.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body: "+err.Error())
		return
	}

	h.store.UpdateHeartbeat(name, time.Now())
	h.store.UpdateUsedResources(name, req.Used)
	if h.metrics != nil {
		h.metrics.NodeHeartbeatAge.WithLabelValues(name).Set(0)
	}

	for _, report := range req.PodStatuses {
		pod := h.store.GetPod(report.PodID)
		if pod == nil || pod.Status == v1.PodTerminated || pod.Status == v1.PodTerminating {
			continue
		}
		if pod.Status != report.Status {
			h.store.UpdatePodStatus(report.PodID, report.Status)
		}
		if report.ContainerID != nil {
			h.store.SetContainerID(report.PodID, *report.ContainerID)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
