package v1

import "github.com/google/uuid"

// RegisterNodeRequest is the body of POST /nodes/register (spec §6).
type RegisterNodeRequest struct {
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Port     int       `json:"port"`
	Capacity Resources `json:"capacity"`
}

// PodStatusReport is one entry of a heartbeat's observed pod state,
// reported by the agent for every pod it currently manages.
type PodStatusReport struct {
	PodID       uuid.UUID `json:"pod_id"`
	Status      PodStatus `json:"status"`
	ContainerID *string   `json:"container_id,omitempty"`
}

// HeartbeatRequest is the body of POST /nodes/{name}/heartbeat (spec §6).
type HeartbeatRequest struct {
	Used        Resources         `json:"used"`
	PodStatuses []PodStatusReport `json:"pod_statuses"`
}

// CreatePodOnNodeRequest is the body of POST /pods sent by the scheduler
// to an agent (spec §6); mirrors agentclient.CreatePodRequest's wire shape.
type CreatePodOnNodeRequest struct {
	PodID     uuid.UUID `json:"pod_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Resources Resources `json:"resources"`
}

// AgentPodStatus is one entry of GET /pods on the agent facade.
type AgentPodStatus struct {
	PodID       uuid.UUID `json:"pod_id"`
	Name        string    `json:"name"`
	Status      PodStatus `json:"status"`
	ContainerID *string   `json:"container_id,omitempty"`
}
