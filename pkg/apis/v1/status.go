package v1

import (
	"encoding/json"
	"fmt"
)

// PodStatus is the lifecycle state of a Pod (spec §3).
type PodStatus int

const (
	PodPending PodStatus = iota
	PodCreating
	PodRunning
	PodSucceeded
	PodFailed
	PodTerminating
	PodTerminated
)

var podStatusNames = map[PodStatus]string{
	PodPending:     "pending",
	PodCreating:    "creating",
	PodRunning:     "running",
	PodSucceeded:   "succeeded",
	PodFailed:      "failed",
	PodTerminating: "terminating",
	PodTerminated:  "terminated",
}

var podStatusValues = func() map[string]PodStatus {
	m := make(map[string]PodStatus, len(podStatusNames))
	for k, v := range podStatusNames {
		m[v] = k
	}
	return m
}()

func (s PodStatus) String() string {
	if name, ok := podStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Active reports whether the pod still counts toward a deployment's
// desired replica count (spec §3: "not in {Terminated, Failed}").
func (s PodStatus) Active() bool {
	return s != PodTerminated && s != PodFailed
}

// TerminalForGC reports whether the pod is eligible for store removal.
func (s PodStatus) TerminalForGC() bool {
	return s == PodTerminated
}

func (s PodStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PodStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, ok := podStatusValues[str]
	if !ok {
		return fmt.Errorf("unknown pod status %q", str)
	}
	*s = v
	return nil
}

// NodeStatus is the liveness state of a Node (spec §3).
type NodeStatus int

const (
	NodeUnknown NodeStatus = iota
	NodeReady
	NodeNotReady
)

var nodeStatusNames = map[NodeStatus]string{
	NodeUnknown:  "unknown",
	NodeReady:    "ready",
	NodeNotReady: "notready",
}

var nodeStatusValues = func() map[string]NodeStatus {
	m := make(map[string]NodeStatus, len(nodeStatusNames))
	for k, v := range nodeStatusNames {
		m[v] = k
	}
	return m
}()

func (s NodeStatus) String() string {
	if name, ok := nodeStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s NodeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *NodeStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, ok := nodeStatusValues[str]
	if !ok {
		return fmt.Errorf("unknown node status %q", str)
	}
	*s = v
	return nil
}
