package masterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/reconciler"
	"github.com/lapla-cogito/kago/pkg/scheduler"
	"github.com/lapla-cogito/kago/pkg/store"
)

// fakeSchedAgent is never actually invoked by these tests (no reconcile
// tick runs), only present to satisfy scheduler.New's constructor.
type fakeSchedAgent struct{}

func (fakeSchedAgent) CreatePod(context.Context, string, agentclient.CreatePodRequest) error {
	return nil
}

func newTestHandler(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s := store.New()
	sched := scheduler.New(s, fakeSchedAgent{}, scheduler.FirstFit{}, logr.Discard())
	rec := reconciler.New(s, sched, nil, reconciler.DefaultHeartbeatTimeout, logr.Discard())
	return NewRouter(s, rec, nil, logr.Discard()), s
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestHandler(t)
	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCreateGetUpdateDeleteDeployment(t *testing.T) {
	router, s := newTestHandler(t)

	body, _ := json.Marshal(v1.CreateDeploymentRequest{Name: "web", Image: "nginx", Replicas: 2, Resources: v1.Resources{CPUMillis: 500, MemoryMB: 256}})
	req := httptest.NewRequest(http.MethodPost, "/deployments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate create is a conflict.
	req = httptest.NewRequest(http.MethodPost, "/deployments", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/deployments/web", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp v1.DeploymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.Revision)

	updateBody, _ := json.Marshal(v1.UpdateDeploymentRequest{Image: strPtr("nginx:2")})
	req = httptest.NewRequest(http.MethodPut, "/deployments/web", bytes.NewReader(updateBody))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2), resp.Revision, "image change must bump revision")

	req = httptest.NewRequest(http.MethodDelete, "/deployments/web", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.GetDeployment("web"))
}

func TestCreateDeploymentValidation(t *testing.T) {
	router, _ := newTestHandler(t)
	body, _ := json.Marshal(v1.CreateDeploymentRequest{Name: "", Image: "nginx"})
	req := httptest.NewRequest(http.MethodPost, "/deployments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNodeRegisterGetDelete(t *testing.T) {
	router, s := newTestHandler(t)

	body, _ := json.Marshal(v1.RegisterNodeRequest{Name: "w1", Address: "10.0.0.1", Port: 8080, Capacity: v1.Resources{CPUMillis: 4000, MemoryMB: 4096}})
	req := httptest.NewRequest(http.MethodPost, "/nodes/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/nodes/w1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/nodes/w1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.GetNode("w1"))
}

func TestNodeHeartbeatUpdatesPodStatusButNotTerminating(t *testing.T) {
	router, s := newTestHandler(t)
	s.RegisterNode("w1", "10.0.0.1", 8080, v1.Resources{CPUMillis: 4000, MemoryMB: 4096}, time.Now())

	dep := "web"
	node := "w1"
	p := &v1.Pod{ID: v1.NewPodID(), Name: "web-0", DeploymentName: &dep, NodeName: &node, Status: v1.PodCreating, Revision: 1}
	s.AddPod(p)
	terminating := &v1.Pod{ID: v1.NewPodID(), Name: "web-1", DeploymentName: &dep, NodeName: &node, Status: v1.PodTerminating, Revision: 1}
	s.AddPod(terminating)

	hb := v1.HeartbeatRequest{
		Used: v1.Resources{CPUMillis: 500, MemoryMB: 256},
		PodStatuses: []v1.PodStatusReport{
			{PodID: p.ID, Status: v1.PodRunning},
			{PodID: terminating.ID, Status: v1.PodRunning},
		},
	}
	body, _ := json.Marshal(hb)
	req := httptest.NewRequest(http.MethodPost, "/nodes/w1/heartbeat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, v1.PodRunning, s.GetPod(p.ID).Status)
	assert.Equal(t, v1.PodTerminating, s.GetPod(terminating.ID).Status, "heartbeat must never override Terminating")
	assert.Equal(t, v1.Resources{CPUMillis: 500, MemoryMB: 256}, s.GetNode("w1").Used)
}

func strPtr(s string) *string { return &s }
