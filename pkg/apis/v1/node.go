package v1

import (
	"fmt"
	"time"
)

// Node is a registered worker (spec §3).
type Node struct {
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Port          int        `json:"port"`
	Capacity      Resources  `json:"capacity"`
	Allocatable   Resources  `json:"allocatable"`
	Used          Resources  `json:"used"`
	Status        NodeStatus `json:"status"`
	LastHeartbeat time.Time  `json:"last_heartbeat"`
}

// Endpoint returns "http://<address>:<port>" per spec §3.
func (n *Node) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", n.Address, n.Port)
}

// Available returns allocatable - used (spec §3 "Derived" field).
func (n *Node) Available() Resources {
	return n.Allocatable.Sub(n.Used)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}
