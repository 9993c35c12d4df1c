package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/store"
)

var errSimulatedAgentFailure = errors.New("simulated agent failure")

type fakeAgentClient struct {
	calls []agentclient.CreatePodRequest
	fail  map[string]bool // endpoint -> force failure
}

func (f *fakeAgentClient) CreatePod(_ context.Context, endpoint string, req agentclient.CreatePodRequest) error {
	f.calls = append(f.calls, req)
	if f.fail[endpoint] {
		return errSimulatedAgentFailure
	}
	return nil
}

func newPendingPod(name, deployment string, req v1.Resources) *v1.Pod {
	d := deployment
	return &v1.Pod{ID: v1.NewPodID(), Name: name, Image: "nginx", Resources: req, DeploymentName: &d, Status: v1.PodPending}
}

func TestScheduleScenario1(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 8192}, time.Now())
	req := v1.Resources{CPUMillis: 500, MemoryMB: 256}
	for i := 0; i < 3; i++ {
		s.AddPod(newPendingPod(v1.PodName("web", i), "web", req))
	}

	client := &fakeAgentClient{}
	sched := New(s, client, FirstFit{}, logr.Discard())
	sched.Schedule(context.Background())

	for _, p := range s.ListPods() {
		require.NotNil(t, p.NodeName)
		assert.Equal(t, "w1", *p.NodeName)
		assert.Equal(t, v1.PodRunning, p.Status)
	}
	node := s.GetNode("w1")
	assert.Equal(t, v1.Resources{CPUMillis: 1500, MemoryMB: 768}, node.Used)
}

func TestScheduleNoSuitableNodeLeavesPodPending(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 1000, MemoryMB: 1024}, time.Now())
	pod := newPendingPod("web-0", "web", v1.Resources{CPUMillis: 2000, MemoryMB: 2048})
	s.AddPod(pod)

	sched := New(s, &fakeAgentClient{}, FirstFit{}, logr.Discard())
	sched.Schedule(context.Background())

	got := s.GetPod(pod.ID)
	assert.Equal(t, v1.PodPending, got.Status)
	assert.Nil(t, got.NodeName)
}

func TestScheduleAgentFailureMarksFailedAndReleasesReservation(t *testing.T) {
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 4096}, time.Now())
	pod := newPendingPod("web-0", "web", v1.Resources{CPUMillis: 500, MemoryMB: 256})
	s.AddPod(pod)

	client := &fakeAgentClient{fail: map[string]bool{"http://10.0.0.1:8080": true}}
	sched := New(s, client, FirstFit{}, logr.Discard())
	sched.Schedule(context.Background())

	got := s.GetPod(pod.ID)
	assert.Equal(t, v1.PodFailed, got.Status)
	node := s.GetNode("w1")
	assert.Equal(t, v1.Resources{}, node.Used, "reservation must be released on agent failure")
}

func TestScheduleDoesNotDoubleReserveWithinOneCycle(t *testing.T) {
	// Two pending pods, one node with just enough room for one of them.
	s := store.New()
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 1000, MemoryMB: 1024}, time.Now())
	req := v1.Resources{CPUMillis: 600, MemoryMB: 600}
	p1 := newPendingPod("web-0", "web", req)
	p2 := newPendingPod("web-1", "web", req)
	s.AddPod(p1)
	s.AddPod(p2)

	sched := New(s, &fakeAgentClient{}, FirstFit{}, logr.Discard())
	sched.Schedule(context.Background())

	running := 0
	pending := 0
	for _, p := range s.ListPods() {
		switch p.Status {
		case v1.PodRunning:
			running++
		case v1.PodPending:
			pending++
		}
	}
	assert.Equal(t, 1, running)
	assert.Equal(t, 1, pending)
}

func TestStrategySelection(t *testing.T) {
	// scenario 6 from spec.md
	w1avail := v1.Resources{CPUMillis: 1000, MemoryMB: 1096}
	w2avail := v1.Resources{CPUMillis: 3500, MemoryMB: 3596}
	capacity := v1.Resources{CPUMillis: 4000, MemoryMB: 4096}
	req := v1.Resources{CPUMillis: 500, MemoryMB: 512}

	w1 := nodeEntry{Name: "w1", Available: w1avail, Capacity: capacity}
	w2 := nodeEntry{Name: "w2", Available: w2avail, Capacity: capacity}

	cases := []struct {
		strategy Strategy
		want     string
	}{
		{FirstFit{}, "w1"},
		{BestFit{}, "w1"},
		{LeastAllocated{}, "w2"},
		{Balanced{}, "w2"},
	}
	for _, tc := range cases {
		s1 := tc.strategy.Score(w1, req)
		s2 := tc.strategy.Score(w2, req)
		var winner string
		if s1 >= s2 {
			winner = "w1"
		} else {
			winner = "w2"
		}
		assert.Equal(t, tc.want, winner, tc.strategy.Name())
	}
}

func TestSchedulerDeterminism(t *testing.T) {
	build := func() *store.Store {
		s := store.New()
		s.RegisterNode("a", "10.0.0.1", 1, v1.Resources{CPUMillis: 2000, MemoryMB: 2048}, time.Now())
		s.RegisterNode("b", "10.0.0.2", 1, v1.Resources{CPUMillis: 2000, MemoryMB: 2048}, time.Now())
		s.AddPod(newPendingPod("web-0", "web", v1.Resources{CPUMillis: 500, MemoryMB: 512}))
		return s
	}

	s1, s2 := build(), build()
	sched1 := New(s1, &fakeAgentClient{}, FirstFit{}, logr.Discard())
	sched2 := New(s2, &fakeAgentClient{}, FirstFit{}, logr.Discard())
	sched1.Schedule(context.Background())
	sched2.Schedule(context.Background())

	p1 := s1.ListPods()[0]
	p2 := s2.ListPods()[0]
	require.NotNil(t, p1.NodeName)
	require.NotNil(t, p2.NodeName)
	assert.Equal(t, *p1.NodeName, *p2.NodeName)
}
