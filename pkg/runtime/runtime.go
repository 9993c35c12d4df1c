// Package runtime defines the node agent's container-runtime abstraction
// (spec.md §1, §4.4): a narrow interface the agent drives to run, stop,
// remove, and inspect containers, with a concrete github.com/docker/docker
// implementation and an in-memory fake for tests.
package runtime

import (
	"context"
	"strings"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// ContainerStatus mirrors the subset of Docker container states the agent
// cares about, recovered from original_source/src/runtime.rs's
// ContainerStatus enum.
type ContainerStatus int

const (
	StatusUnknown ContainerStatus = iota
	StatusCreated
	StatusRunning
	StatusPaused
	StatusRestarting
	StatusExited
	StatusDead
)

// ParseContainerStatus maps a Docker state string to a ContainerStatus,
// matching original_source/src/runtime.rs's case-insensitive From<&str>.
func ParseContainerStatus(s string) ContainerStatus {
	switch strings.ToLower(s) {
	case "created":
		return StatusCreated
	case "running":
		return StatusRunning
	case "paused":
		return StatusPaused
	case "restarting":
		return StatusRestarting
	case "exited":
		return StatusExited
	case "dead":
		return StatusDead
	default:
		return StatusUnknown
	}
}

func (s ContainerStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusRestarting:
		return "restarting"
	case StatusExited:
		return "exited"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Runtime is the agent's container driver (spec.md §4.4). Implementations
// must treat Stop/Remove on an already-absent container as non-fatal --
// callers rely on that for idempotent pod termination.
type Runtime interface {
	// Run creates and starts a container for name/image with the given
	// limits and returns the runtime-assigned container id. Zero-value
	// resources mean "no limit" (spec.md §4.4).
	Run(ctx context.Context, name, image string, resources v1.Resources) (containerID string, err error)

	// Stop stops a running container. A not-found container is not an
	// error.
	Stop(ctx context.Context, nameOrID string) error

	// Remove removes a container. A not-found container is not an error.
	Remove(ctx context.Context, nameOrID string) error

	// Inspect reports a container's current status. Implementations
	// return kerrors.ErrRuntimeNotFound when nameOrID is unknown.
	Inspect(ctx context.Context, nameOrID string) (ContainerStatus, error)
}
