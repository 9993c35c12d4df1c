// Package agentclient implements the master -> agent RPCs of spec.md §4.6:
// pod creation and termination, both over a 10s-timeout HTTP client. The
// client construction mirrors availability-prober's
// http.Client{Timeout: ..., Transport: &http.Transport{...}} pattern, the
// clearest timeout-bounded HTTP client example in the teacher pack.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
)

// Timeout is the fixed HTTP deadline for every master<->agent call
// (spec.md §4.6, §5).
const Timeout = 10 * time.Second

// Client issues imperative pod RPCs against a node's agent endpoint.
type Client struct {
	http *http.Client
}

// New returns a Client with the fixed 10s timeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: Timeout}}
}

// CreatePodRequest is the body of POST {endpoint}/pods (spec.md §4.6).
type CreatePodRequest struct {
	PodID     uuid.UUID    `json:"pod_id"`
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	Resources v1.Resources `json:"resources"`
}

// CreatePod asks the agent at endpoint to create the pod. A non-2xx
// response or transport error both surface as kerrors.ErrTransport
// (spec.md §4.6: "Non-2xx => failure; transport error => failure").
func (c *Client) CreatePod(ctx context.Context, endpoint string, req CreatePodRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding create-pod request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/pods", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building create-pod request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: agent returned status %d", kerrors.ErrTransport, resp.StatusCode)
	}
	return nil
}

// DeletePod asks the agent at endpoint to terminate the pod by name. A
// 404 is treated by the caller as "success-enough" per spec.md §5
// ("DELETE on a missing pod returns 404, treated as success-enough");
// this method still reports the raw status so the reconciler can apply
// that rule explicitly.
func (c *Client) DeletePod(ctx context.Context, endpoint, name string) (statusCode int, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint+"/pods/"+name, nil)
	if err != nil {
		return 0, fmt.Errorf("building delete-pod request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", kerrors.ErrTransport, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
