package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewPodID allocates a fresh 128-bit pod identifier (spec §3).
func NewPodID() uuid.UUID {
	return uuid.New()
}

// PodName computes the "<deployment>-<index>" name for a pod (spec §3).
func PodName(deployment string, index int) string {
	return fmt.Sprintf("%s-%d", deployment, index)
}

// Pod is a single managed container instance.
type Pod struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	Resources      Resources `json:"resources"`
	DeploymentName *string   `json:"deployment_name,omitempty"`
	NodeName       *string   `json:"node_name,omitempty"`
	Status         PodStatus `json:"status"`
	ContainerID    *string   `json:"container_id,omitempty"`
	Revision       uint64    `json:"revision"`
	CreatedAt      time.Time `json:"created_at"`
}

// Clone returns a deep copy suitable for handing to a caller outside the
// store's lock (spec §5: "read -> clone-what-is-needed -> drop-lock -> use").
func (p *Pod) Clone() *Pod {
	if p == nil {
		return nil
	}
	cp := *p
	if p.DeploymentName != nil {
		v := *p.DeploymentName
		cp.DeploymentName = &v
	}
	if p.NodeName != nil {
		v := *p.NodeName
		cp.NodeName = &v
	}
	if p.ContainerID != nil {
		v := *p.ContainerID
		cp.ContainerID = &v
	}
	return &cp
}

// RequiresNode reports the invariant "a pod with status in
// {Running, Creating} must have a node_name assigned" (spec §3).
func (p *Pod) RequiresNode() bool {
	return p.Status == PodRunning || p.Status == PodCreating
}
