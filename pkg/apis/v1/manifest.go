package v1

import (
	"fmt"
	"strconv"
	"strings"

	"sigs.k8s.io/yaml"
)

// Manifest is the CLI/manifest surface consumed by cmd/kagoctl and fed
// into POST /deployments (spec §6).
type Manifest struct {
	Kind string       `json:"kind"`
	Spec ManifestSpec `json:"spec"`
}

type ManifestSpec struct {
	Name      string             `json:"name"`
	Image     string             `json:"image"`
	Replicas  *uint32            `json:"replicas,omitempty"`
	Resources *ManifestResources `json:"resources,omitempty"`
}

type ManifestResources struct {
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
}

// ParseManifest decodes a YAML (or JSON, since YAML is a JSON superset)
// manifest document into a Manifest using sigs.k8s.io/yaml, the same
// YAML-via-JSON technique the teacher's config loader uses.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Kind != "Deployment" {
		return nil, fmt.Errorf("unsupported manifest kind %q", m.Kind)
	}
	if strings.TrimSpace(m.Spec.Name) == "" {
		return nil, fmt.Errorf("manifest spec.name is required")
	}
	if strings.TrimSpace(m.Spec.Image) == "" {
		return nil, fmt.Errorf("manifest spec.image is required")
	}
	return &m, nil
}

// ToDeploymentRequest resolves the manifest's resource unit strings into a
// Resources value and defaults replicas to 1, ready to become a
// CreateDeploymentRequest. RollingUpdate is left nil, so the master applies
// its default policy.
func (m *Manifest) ToDeploymentRequest() (CreateDeploymentRequest, error) {
	req := CreateDeploymentRequest{
		Name:     m.Spec.Name,
		Image:    m.Spec.Image,
		Replicas: 1,
	}
	if m.Spec.Replicas != nil {
		req.Replicas = *m.Spec.Replicas
	}
	if m.Spec.Resources != nil {
		var res Resources
		if m.Spec.Resources.CPU != "" {
			cpu, err := ParseCPUMillis(m.Spec.Resources.CPU)
			if err != nil {
				return req, fmt.Errorf("spec.resources.cpu: %w", err)
			}
			res.CPUMillis = cpu
		}
		if m.Spec.Resources.Memory != "" {
			mem, err := ParseMemoryMB(m.Spec.Resources.Memory)
			if err != nil {
				return req, fmt.Errorf("spec.resources.memory: %w", err)
			}
			res.MemoryMB = mem
		}
		req.Resources = res
	}
	return req, nil
}

// CreateDeploymentRequest is the body of POST /deployments (spec §6).
type CreateDeploymentRequest struct {
	Name          string               `json:"name"`
	Image         string               `json:"image"`
	Replicas      uint32               `json:"replicas"`
	Resources     Resources            `json:"resources"`
	RollingUpdate *RollingUpdatePolicy `json:"rolling_update,omitempty"`
}

// ParseCPUMillis accepts an integer millis value, "<n>m", or a fractional
// core count "<f>" (cores * 1000), per spec §6.
func ParseCPUMillis(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "m") {
		n, err := strconv.ParseUint(strings.TrimSuffix(s, "m"), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid cpu millis %q: %w", s, err)
		}
		return uint32(n), nil
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cpu value %q: %w", s, err)
	}
	return uint32(f * 1000), nil
}

// ParseMemoryMB accepts an integer MB, "<n>Mi", "<n>Gi" (x1024), "<n>M",
// "<n>G" (x1024), or a bare integer MB, per spec §6.
func ParseMemoryMB(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	switch {
	case strings.HasSuffix(s, "Gi"):
		return parseUnitMB(s, "Gi", 1024)
	case strings.HasSuffix(s, "Mi"):
		return parseUnitMB(s, "Mi", 1)
	case strings.HasSuffix(s, "G"):
		return parseUnitMB(s, "G", 1024)
	case strings.HasSuffix(s, "M"):
		return parseUnitMB(s, "M", 1)
	default:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid memory value %q: %w", s, err)
		}
		return uint32(n), nil
	}
}

func parseUnitMB(s, suffix string, multiplier uint64) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSuffix(s, suffix), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid memory value %q: %w", s, err)
	}
	return uint32(n * multiplier), nil
}
