// Package fake provides an in-memory runtime.Runtime for agent and
// scheduler-adjacent tests that must not touch a real Docker daemon.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
	krt "github.com/lapla-cogito/kago/pkg/runtime"
)

type container struct {
	id        string
	image     string
	resources v1.Resources
	status    krt.ContainerStatus
}

// Runtime is a concurrency-safe in-memory fake keyed by container name.
type Runtime struct {
	mu         sync.Mutex
	containers map[string]*container

	// FailRun, if set, makes Run fail for the named container (simulating
	// an image pull or create failure).
	FailRun map[string]bool
}

// New returns an empty fake runtime.
func New() *Runtime {
	return &Runtime{containers: make(map[string]*container)}
}

func (r *Runtime) Run(_ context.Context, name, image string, resources v1.Resources) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailRun[name] {
		return "", fmt.Errorf("%w: fake runtime configured to fail Run for %s", kerrors.ErrRuntimeOther, name)
	}

	id := uuid.NewString()
	r.containers[name] = &container{id: id, image: image, resources: resources, status: krt.StatusRunning}
	return id, nil
}

func (r *Runtime) Stop(_ context.Context, nameOrID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.find(nameOrID)
	if c == nil {
		return nil
	}
	c.status = krt.StatusExited
	return nil
}

func (r *Runtime) Remove(_ context.Context, nameOrID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, c := range r.containers {
		if name == nameOrID || c.id == nameOrID {
			delete(r.containers, name)
			return nil
		}
	}
	return nil
}

func (r *Runtime) Inspect(_ context.Context, nameOrID string) (krt.ContainerStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.find(nameOrID)
	if c == nil {
		return krt.StatusUnknown, fmt.Errorf("%w: %s", kerrors.ErrRuntimeNotFound, nameOrID)
	}
	return c.status, nil
}

// SetStatus lets a test directly simulate the container runtime
// transitioning a container's state out from under the agent (e.g. it
// crashed), without going through Run.
func (r *Runtime) SetStatus(name string, status krt.ContainerStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.containers[name]; ok {
		c.status = status
	}
}

func (r *Runtime) find(nameOrID string) *container {
	if c, ok := r.containers[nameOrID]; ok {
		return c
	}
	for _, c := range r.containers {
		if c.id == nameOrID {
			return c
		}
	}
	return nil
}
