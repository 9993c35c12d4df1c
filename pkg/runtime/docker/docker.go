// Package docker implements runtime.Runtime against a local Docker daemon
// via github.com/docker/docker/client, grounded on
// original_source/src/runtime.rs's ContainerRuntime (create-or-pull image,
// create container with CPU/memory limits, start, stop, remove, inspect).
package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	dockerclient "github.com/docker/docker/client"
	"github.com/go-logr/logr"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
	krt "github.com/lapla-cogito/kago/pkg/runtime"
)

// nanoCPUsPerMilli converts spec.md millicores into Docker's NanoCPUs
// unit (1 full CPU = 1e9 nano-cpus = 1000 millicores).
const nanoCPUsPerMilli = 1_000_000

// Runtime drives containers on the local Docker daemon.
type Runtime struct {
	cli *dockerclient.Client
	log logr.Logger
}

// New connects to the Docker daemon using the environment's default
// connection settings and negotiates the API version, pinging to fail
// fast if the daemon is unreachable.
func New(ctx context.Context, log logr.Logger) (*Runtime, error) {
	cli, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: connect to docker daemon: %v", kerrors.ErrRuntimeOther, err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping docker daemon: %v", kerrors.ErrRuntimeOther, err)
	}
	log.Info("connected to docker daemon")
	return &Runtime{cli: cli, log: log.WithValues("component", "runtime.docker")}, nil
}

// Run implements krt.Runtime. Zero-value resource fields mean "no limit":
// only non-zero fields of resources are translated into HostConfig limits.
func (r *Runtime) Run(ctx context.Context, name, img string, resources v1.Resources) (string, error) {
	if err := r.ensureImage(ctx, img); err != nil {
		return "", err
	}

	hostConfig := &container.HostConfig{}
	if resources.CPUMillis > 0 {
		hostConfig.Resources.NanoCPUs = int64(resources.CPUMillis) * nanoCPUsPerMilli
	}
	if resources.MemoryMB > 0 {
		hostConfig.Resources.Memory = int64(resources.MemoryMB) * 1024 * 1024
	}

	cfg := &container.Config{Image: img}

	r.log.V(1).Info("creating container", "name", name, "image", img)
	created, err := r.cli.ContainerCreate(ctx, cfg, hostConfig, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("%w: create container %s: %v", kerrors.ErrRuntimeOther, name, err)
	}

	if err := r.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("%w: start container %s: %v", kerrors.ErrRuntimeOther, name, err)
	}

	r.log.Info("container started", "name", name, "containerID", created.ID)
	return created.ID, nil
}

// Stop implements krt.Runtime: a missing container is success, not error,
// matching original_source/src/runtime.rs's 404/304 handling.
func (r *Runtime) Stop(ctx context.Context, nameOrID string) error {
	timeout := 10
	err := r.cli.ContainerStop(ctx, nameOrID, container.StopOptions{Timeout: &timeout})
	if err == nil {
		return nil
	}
	if dockerclient.IsErrNotFound(err) {
		return nil
	}
	return fmt.Errorf("%w: stop container %s: %v", kerrors.ErrRuntimeOther, nameOrID, err)
}

// Remove implements krt.Runtime: a missing container is success.
func (r *Runtime) Remove(ctx context.Context, nameOrID string) error {
	err := r.cli.ContainerRemove(ctx, nameOrID, container.RemoveOptions{Force: true})
	if err == nil || dockerclient.IsErrNotFound(err) {
		return nil
	}
	return fmt.Errorf("%w: remove container %s: %v", kerrors.ErrRuntimeOther, nameOrID, err)
}

// Inspect implements krt.Runtime.
func (r *Runtime) Inspect(ctx context.Context, nameOrID string) (krt.ContainerStatus, error) {
	info, err := r.cli.ContainerInspect(ctx, nameOrID)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return krt.StatusUnknown, fmt.Errorf("%w: %s", kerrors.ErrRuntimeNotFound, nameOrID)
		}
		return krt.StatusUnknown, fmt.Errorf("%w: inspect container %s: %v", kerrors.ErrRuntimeOther, nameOrID, err)
	}
	if info.State == nil {
		return krt.StatusUnknown, nil
	}
	return krt.ParseContainerStatus(info.State.Status), nil
}

// ensureImage pulls img if it is not already present locally, matching
// original_source/src/runtime.rs's ensure_image.
func (r *Runtime) ensureImage(ctx context.Context, img string) error {
	if _, err := r.cli.ImageInspect(ctx, img); err == nil {
		return nil
	} else if !dockerclient.IsErrNotFound(err) {
		return fmt.Errorf("%w: inspect image %s: %v", kerrors.ErrRuntimeOther, img, err)
	}

	r.log.Info("image not found locally, pulling", "image", img)
	rc, err := r.cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("%w: pull image %s: %v", kerrors.ErrRuntimeOther, img, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("%w: pull image %s: %v", kerrors.ErrRuntimeOther, img, err)
	}
	r.log.Info("image pulled", "image", img)
	return nil
}
