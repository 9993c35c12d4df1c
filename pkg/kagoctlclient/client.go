// Package kagoctlclient implements the CLI's HTTP client against the
// master's facade (pkg/masterapi), grounded on
// original_source/src/cli.rs's CliClient (apply/get/delete against
// /deployments, /pods, /nodes) and on availability-prober's
// http.Client{Timeout: ...} construction for the timeout-bounded client
// itself.
package kagoctlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// Timeout bounds every CLI->master call.
const Timeout = 10 * time.Second

// Client issues requests against a master's HTTP facade.
type Client struct {
	http    *http.Client
	baseURL string
}

// New returns a Client targeting baseURL (trailing slash trimmed).
func New(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: Timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ApplyDeployment mirrors original_source/src/cli.rs's apply_deployment:
// POST /deployments; on 409 Conflict, falls back to PUT
// /deployments/{name} with the same replicas/image, matching "apply"
// create-or-update semantics.
func (c *Client) ApplyDeployment(ctx context.Context, req v1.CreateDeploymentRequest) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/deployments", req)
	if err != nil {
		return "", err
	}
	if status >= 200 && status < 300 {
		return fmt.Sprintf("deployment/%s created", req.Name), nil
	}
	if status == http.StatusConflict {
		update := v1.UpdateDeploymentRequest{Replicas: &req.Replicas, Image: &req.Image}
		status, body, err = c.do(ctx, http.MethodPut, "/deployments/"+req.Name, update)
		if err != nil {
			return "", err
		}
		if status >= 200 && status < 300 {
			return fmt.Sprintf("deployment/%s configured", req.Name), nil
		}
		return "", fmt.Errorf("updating deployment %q: %s", req.Name, string(body))
	}
	return "", fmt.Errorf("creating deployment %q: %s", req.Name, string(body))
}

// DeleteDeployment sends DELETE /deployments/{name}.
func (c *Client) DeleteDeployment(ctx context.Context, name string) (string, error) {
	status, body, err := c.do(ctx, http.MethodDelete, "/deployments/"+name, nil)
	if err != nil {
		return "", err
	}
	if status >= 200 && status < 300 {
		return fmt.Sprintf("deployment/%s deleted", name), nil
	}
	return "", fmt.Errorf("deleting deployment %q: %s", name, string(body))
}

// DeletePod sends DELETE /pods/{uuid}.
func (c *Client) DeletePod(ctx context.Context, id uuid.UUID) (string, error) {
	status, body, err := c.do(ctx, http.MethodDelete, "/pods/"+id.String(), nil)
	if err != nil {
		return "", err
	}
	if status >= 200 && status < 300 {
		return fmt.Sprintf("pod/%s deleted", id), nil
	}
	return "", fmt.Errorf("deleting pod %q: %s", id, string(body))
}

// DeleteNode sends DELETE /nodes/{name}.
func (c *Client) DeleteNode(ctx context.Context, name string) (string, error) {
	status, body, err := c.do(ctx, http.MethodDelete, "/nodes/"+name, nil)
	if err != nil {
		return "", err
	}
	if status >= 200 && status < 300 {
		return fmt.Sprintf("node/%s deleted", name), nil
	}
	return "", fmt.Errorf("deleting node %q: %s", name, string(body))
}

// GetDeployments returns the raw JSON body of GET /deployments.
func (c *Client) GetDeployments(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/deployments")
}

// GetPods returns the raw JSON body of GET /pods.
func (c *Client) GetPods(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/pods")
}

// GetNodes returns the raw JSON body of GET /nodes.
func (c *Client) GetNodes(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/nodes")
}

// DescribePod returns the raw JSON body of GET /pods/{uuid}.
func (c *Client) DescribePod(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return c.get(ctx, "/pods/"+id.String())
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("GET %s: %s", path, string(body))
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}
