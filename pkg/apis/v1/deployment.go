package v1

import hashstructure "github.com/mitchellh/hashstructure/v2"

// RollingUpdatePolicy bounds a deployment's rolling-update behavior
// (spec §3, §4.3.2).
type RollingUpdatePolicy struct {
	MaxSurge       uint32 `json:"max_surge"`
	MaxUnavailable uint32 `json:"max_unavailable"`
}

// DefaultRollingUpdatePolicy matches spec §3's defaults.
func DefaultRollingUpdatePolicy() RollingUpdatePolicy {
	return RollingUpdatePolicy{MaxSurge: 1, MaxUnavailable: 0}
}

// Deployment is a declarative spec of a desired replica set (spec §3).
type Deployment struct {
	Name          string              `json:"name"`
	Image         string              `json:"image"`
	Replicas      uint32              `json:"replicas"`
	Resources     Resources           `json:"resources"`
	RollingUpdate RollingUpdatePolicy `json:"rolling_update"`
	Revision      uint64              `json:"revision"`
}

// specHash hashes the fields that define a pod template: image and
// resources. Used only internally by the PUT handler to decide whether an
// update actually changes the template (and therefore must bump Revision)
// rather than being a pure replica-count change (spec §3, §9).
type podTemplate struct {
	Image     string
	Resources Resources
}

func (d *Deployment) specHash() (uint64, error) {
	return hashstructure.Hash(podTemplate{Image: d.Image, Resources: d.Resources}, hashstructure.FormatV2, nil)
}

// ApplyUpdate mutates d in place per the PUT /deployments/{name} semantics
// of spec §6/§9: replicas may change freely; when image changes, Revision
// is incremented; a no-op image "change" (same value, or omitted) must not
// bump Revision.
func (d *Deployment) ApplyUpdate(replicas *uint32, image *string) error {
	if replicas != nil {
		d.Replicas = *replicas
	}
	if image != nil && *image != d.Image {
		before, err := d.specHash()
		if err != nil {
			return err
		}
		d.Image = *image
		after, err := d.specHash()
		if err != nil {
			return err
		}
		if after != before {
			d.Revision++
		}
	}
	return nil
}

// Clone returns a deep copy of the deployment.
func (d *Deployment) Clone() *Deployment {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
