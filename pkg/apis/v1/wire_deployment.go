package v1

// UpdateDeploymentRequest is the body of PUT /deployments/{name} (spec §6).
// Replicas may change freely; Image, when set and different, bumps
// Revision (see Deployment.ApplyUpdate).
type UpdateDeploymentRequest struct {
	Replicas *uint32 `json:"replicas,omitempty"`
	Image    *string `json:"image,omitempty"`
}

// DeploymentResponse is the GET/POST/PUT /deployments wire shape (spec §6),
// adding the server-computed ReadyReplicas count the Deployment type itself
// does not track.
type DeploymentResponse struct {
	Name          string              `json:"name"`
	Image         string              `json:"image"`
	Replicas      uint32              `json:"replicas"`
	Resources     Resources           `json:"resources"`
	RollingUpdate RollingUpdatePolicy `json:"rolling_update"`
	Revision      uint64              `json:"revision"`
	ReadyReplicas uint32              `json:"ready_replicas"`
}

// NewDeploymentResponse builds the response shape for d, given the number
// of its pods currently Running.
func NewDeploymentResponse(d *Deployment, readyReplicas int) DeploymentResponse {
	return DeploymentResponse{
		Name:          d.Name,
		Image:         d.Image,
		Replicas:      d.Replicas,
		Resources:     d.Resources,
		RollingUpdate: d.RollingUpdate,
		Revision:      d.Revision,
		ReadyReplicas: uint32(readyReplicas),
	}
}
