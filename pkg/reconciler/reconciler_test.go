package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/scheduler"
	"github.com/lapla-cogito/kago/pkg/store"
)

// fakeSchedulerClient is a scheduler.AgentClient that always succeeds,
// used so reconciler tests can exercise the real scheduler without a live
// agent HTTP server.
type fakeSchedulerClient struct{}

func (fakeSchedulerClient) CreatePod(context.Context, string, agentclient.CreatePodRequest) error {
	return nil
}

// fakeAgentClient is a reconciler.AgentClient whose delete-pod returns
// deleteErr if set, else deleteStatus (200 when left at zero), so
// termination "succeeds" against the fake world unless a test sets a
// failure.
type fakeAgentClient struct {
	deleteStatus int
	deleteErr    error
}

func (f *fakeAgentClient) DeletePod(context.Context, string, string) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	status := f.deleteStatus
	if status == 0 {
		status = 200
	}
	return status, nil
}

func newTestReconciler(t *testing.T, s *store.Store, agent *fakeAgentClient) *Reconciler {
	t.Helper()
	sched := scheduler.New(s, fakeSchedulerClient{}, scheduler.FirstFit{}, logr.Discard())
	r := &Reconciler{
		store:            s,
		scheduler:        sched,
		agentClient:      agent,
		heartbeatTimeout: DefaultHeartbeatTimeout,
		log:              logr.Discard(),
	}
	return r
}

func TestScaleUpFromZero(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, time.Now())
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 3, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1})

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())
	r.ReconcileOnce(context.Background())

	pods := s.ListPodsByDeployment("web")
	require.Len(t, pods, 3)
	names := map[string]bool{}
	for _, p := range pods {
		names[p.Name] = true
		assert.Equal(t, v1.PodRunning, p.Status)
		require.NotNil(t, p.NodeName)
		assert.Equal(t, "w1", *p.NodeName)
	}
	assert.True(t, names["web-0"] && names["web-1"] && names["web-2"])

	node := s.GetNode("w1")
	assert.Equal(t, v1.Resources{CPUMillis: 1500, MemoryMB: 768}, node.Used)
}

func TestScaleDown(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, time.Now())
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 3, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1})
	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())
	r.ReconcileOnce(context.Background())

	d := s.GetDeployment("web")
	d.Replicas = 1
	s.UpsertDeployment(d)

	r.ReconcileOnce(context.Background())
	r.gc()

	pods := s.ListPodsByDeployment("web")
	require.Len(t, pods, 1)
	assert.Equal(t, "web-0", pods[0].Name)
	assert.Equal(t, v1.PodRunning, pods[0].Status)

	node := s.GetNode("w1")
	assert.Equal(t, v1.Resources{CPUMillis: 500, MemoryMB: 256}, node.Used)
}

func TestNoSuitableNodeThenNodeAppears(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 1000, MemoryMB: 1024}, time.Now())
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 1, Resources: v1.Resources{CPUMillis: 2000, MemoryMB: 2048}, Revision: 1})

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())

	pods := s.ListPodsByDeployment("web")
	require.Len(t, pods, 1)
	assert.Equal(t, v1.PodPending, pods[0].Status)

	s.RegisterNode("w2", "10.0.0.2", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 4096}, time.Now())
	r.ReconcileOnce(context.Background())

	pods = s.ListPodsByDeployment("web")
	require.Len(t, pods, 1)
	assert.Equal(t, v1.PodRunning, pods[0].Status)
	require.NotNil(t, pods[0].NodeName)
	assert.Equal(t, "w2", *pods[0].NodeName)
}

func TestNodeFailureMarksNotReadyWithoutRescheduling(t *testing.T) {
	s := store.New()
	past := time.Now().Add(-1 * time.Hour)
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, past)
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 1, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1})
	dep := "web"
	node := "w1"
	p := &v1.Pod{ID: v1.NewPodID(), Name: "web-0", Image: "nginx", Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, DeploymentName: &dep, NodeName: &node, Status: v1.PodRunning, Revision: 1}
	s.AddPod(p)
	s.AllocateResourcesOnNode("w1", p.Resources)

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())

	n := s.GetNode("w1")
	assert.Equal(t, v1.NodeNotReady, n.Status)

	got := s.GetPod(p.ID)
	assert.Equal(t, v1.PodRunning, got.Status, "pods on a NotReady node keep their assignment")
	require.NotNil(t, got.NodeName)
	assert.Equal(t, "w1", *got.NodeName)
}

func TestRollingUpdateSurgeThenRetire(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 8000, MemoryMB: 16384}, time.Now())
	d := &v1.Deployment{Name: "web", Image: "nginx", Replicas: 3, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1, RollingUpdate: v1.DefaultRollingUpdatePolicy()}
	s.UpsertDeployment(d)
	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())
	r.ReconcileOnce(context.Background())
	require.Len(t, s.ListPodsByDeployment("web"), 3)

	// Bump image -> revision 2.
	d = s.GetDeployment("web")
	image := "nginx:2"
	require.NoError(t, d.ApplyUpdate(nil, &image))
	s.UpsertDeployment(d)

	// Cycle 1: one surge pod created, no old pod retired yet (new_running == 0).
	r.ReconcileOnce(context.Background())
	r.gc()
	pods := s.ListPodsByDeployment("web")
	assert.Len(t, pods, 4, "surge should create exactly one extra pod (max_surge=1)")

	running := 0
	for _, p := range pods {
		if p.Status == v1.PodRunning {
			running++
		}
	}
	assert.GreaterOrEqual(t, running, 3, "at no instant are fewer than desired pods Running")

	// Cycle 2: the new pod is Running by now (scheduler put it straight to
	// Running in this fake-agent test world); retire one old pod.
	r.ReconcileOnce(context.Background())
	r.gc()
	pods = s.ListPodsByDeployment("web")
	newCount, oldCount := 0, 0
	for _, p := range pods {
		if p.Revision == 2 {
			newCount++
		} else {
			oldCount++
		}
	}
	assert.Equal(t, 3, oldCount+newCount)
	assert.LessOrEqual(t, oldCount, 2)

	// Converge over more cycles.
	for i := 0; i < 5; i++ {
		r.ReconcileOnce(context.Background())
		r.gc()
	}
	pods = s.ListPodsByDeployment("web")
	require.Len(t, pods, 3)
	for _, p := range pods {
		assert.Equal(t, uint64(2), p.Revision)
		assert.Equal(t, v1.PodRunning, p.Status)
	}
}

func TestScaleDownDuringRollingUpdate(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 8000, MemoryMB: 16384}, time.Now())
	d := &v1.Deployment{Name: "web", Image: "nginx", Replicas: 4, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1, RollingUpdate: v1.RollingUpdatePolicy{MaxSurge: 1, MaxUnavailable: 0}}
	s.UpsertDeployment(d)
	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())
	r.ReconcileOnce(context.Background())
	require.Len(t, s.ListPodsByDeployment("web"), 4)

	// Bump revision AND shrink replicas in the same update.
	d = s.GetDeployment("web")
	image := "nginx:2"
	require.NoError(t, d.ApplyUpdate(nil, &image))
	d.Replicas = 2
	s.UpsertDeployment(d)

	r.ReconcileOnce(context.Background())
	r.gc()

	pods := s.ListPodsByDeployment("web")
	active := 0
	for _, p := range pods {
		if p.Status.Active() {
			active++
		}
	}
	assert.LessOrEqual(t, active, int(d.Replicas)+int(d.RollingUpdate.MaxSurge), "pod count must never exceed desired+surge")
}

func TestTerminatePodIdempotent(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 4096}, time.Now())
	dep := "web"
	node := "w1"
	p := &v1.Pod{ID: v1.NewPodID(), Name: "web-0", Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, DeploymentName: &dep, NodeName: &node, Status: v1.PodRunning, Revision: 1}
	s.AddPod(p)
	s.AllocateResourcesOnNode("w1", p.Resources)

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.terminatePod(context.Background(), p.ID)
	first := s.GetPod(p.ID).Status
	r.terminatePod(context.Background(), p.ID)
	second := s.GetPod(p.ID).Status

	assert.Equal(t, first, second)
	assert.Equal(t, v1.PodTerminated, second)
}

// TestDriveTerminatingPodsHandlesUserDeletedPod covers the path where a
// pod is marked Terminating directly (DELETE /pods/{uuid}) while its
// deployment is still steady-state (cur == des), so scaleReconcile itself
// never selects it for termination.
func TestDriveTerminatingPodsHandlesUserDeletedPod(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, time.Now())
	dep := "web"
	node := "w1"
	p := &v1.Pod{ID: v1.NewPodID(), Name: "web-0", Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, DeploymentName: &dep, NodeName: &node, Status: v1.PodTerminating, Revision: 1}
	s.AddPod(p)
	s.AllocateResourcesOnNode("w1", p.Resources)
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 1, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1})

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())

	assert.Nil(t, s.GetPod(p.ID), "pod driven to Terminated is garbage-collected at the end of the same tick")
	n := s.GetNode("w1")
	assert.Equal(t, v1.Resources{}, n.Used, "reservation must be released once the pod is driven to Terminated")
}

// TestDeleteDeploymentPodsReachTerminated covers DELETE /deployments/{name}:
// TerminateDeploymentPods marks owned pods Terminating, and since the
// deployment record itself is gone, only driveTerminatingPods -- not
// reconcileDeployment -- can carry them the rest of the way.
func TestDeleteDeploymentPodsReachTerminated(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, time.Now())
	s.UpsertDeployment(&v1.Deployment{Name: "web", Image: "nginx", Replicas: 2, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, Revision: 1})

	r := newTestReconciler(t, s, &fakeAgentClient{})
	r.ReconcileOnce(context.Background())
	r.ReconcileOnce(context.Background())

	r.TerminateDeploymentPods("web")
	s.DeleteDeployment("web")

	r.ReconcileOnce(context.Background())
	r.gc()

	assert.Empty(t, s.ListPodsByDeployment("web"), "owned pods must be driven to Terminated and GC'd even though the deployment no longer exists")
}

func TestTerminatePodRevertsOnAgentFailure(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 4096}, time.Now())
	dep := "web"
	node := "w1"
	p := &v1.Pod{ID: v1.NewPodID(), Name: "web-0", Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}, DeploymentName: &dep, NodeName: &node, Status: v1.PodRunning, Revision: 1}
	s.AddPod(p)
	s.AllocateResourcesOnNode("w1", p.Resources)

	r := newTestReconciler(t, s, &fakeAgentClient{deleteStatus: 500})
	r.terminatePod(context.Background(), p.ID)

	got := s.GetPod(p.ID)
	assert.Equal(t, v1.PodRunning, got.Status, "failed termination must revert to Running, not leak as Terminating")
	n := s.GetNode("w1")
	assert.Equal(t, v1.Resources{CPUMillis: 500, MemoryMB: 256}, n.Used, "accounting untouched on failed termination")
}
