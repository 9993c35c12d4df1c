// Package masterclient implements the agent -> master RPCs of spec.md
// §4.4: node registration (retried indefinitely on failure) and periodic
// heartbeats. Built symmetrically to pkg/agentclient, the master -> agent
// side of the same wire protocol.
package masterclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/kerrors"
)

// Timeout matches pkg/agentclient.Timeout: every master<->agent RPC uses
// the same fixed HTTP deadline (spec.md §4.6, §5).
const Timeout = 10 * time.Second

// RegistrationRetryInterval is the fixed delay between registration
// attempts (spec.md §4.4: "retries indefinitely every 5s until successful").
const RegistrationRetryInterval = 5 * time.Second

// Client issues the node agent's RPCs against the master API.
type Client struct {
	http     *http.Client
	endpoint string
}

// New returns a Client targeting the master at endpoint (e.g.
// "http://master:8080").
func New(endpoint string) *Client {
	return &Client{http: &http.Client{Timeout: Timeout}, endpoint: endpoint}
}

// Register registers req with the master, retrying indefinitely every
// RegistrationRetryInterval until it succeeds or ctx is cancelled
// (spec.md §4.4). retry-go's forever-retry mode is used because the
// agent's startup must survive the master not yet being up.
func (c *Client) Register(ctx context.Context, req v1.RegisterNodeRequest) error {
	return retry.Do(
		func() error { return c.registerOnce(ctx, req) },
		retry.Context(ctx),
		retry.Attempts(0), // 0 means unlimited in retry-go
		retry.Delay(RegistrationRetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) registerOnce(ctx context.Context, req v1.RegisterNodeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding register-node request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/nodes/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building register-node request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrRegistration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: master returned status %d", kerrors.ErrRegistration, resp.StatusCode)
	}
	return nil
}

// Heartbeat sends one heartbeat for nodeName. Unlike Register, a failed
// heartbeat is not retried inline -- the agent's heartbeat loop simply
// tries again on its next tick (spec.md §4.4).
func (c *Client) Heartbeat(ctx context.Context, nodeName string, req v1.HeartbeatRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding heartbeat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/nodes/"+nodeName+"/heartbeat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building heartbeat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: master returned status %d for heartbeat", kerrors.ErrTransport, resp.StatusCode)
	}
	return nil
}
