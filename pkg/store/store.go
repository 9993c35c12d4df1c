// Package store implements the single in-memory authoritative record set
// described in spec.md §4.1: Deployments, Pods and Nodes behind one
// reader/writer lock, with keyed indexes by deployment name, pod id and
// node name.
//
// Every read method returns a deep copy of the stored value so that a
// caller can read -> release the lock -> act without risk of mutating
// store-owned memory out from under a concurrent writer (spec.md §5).
package store

import (
	"sync"

	"github.com/google/uuid"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// Store is the process-wide authoritative state. The zero value is not
// usable; construct with New.
type Store struct {
	mu sync.RWMutex

	deployments map[string]*v1.Deployment
	pods        map[uuid.UUID]*v1.Pod
	nodes       map[string]*v1.Node
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		deployments: make(map[string]*v1.Deployment),
		pods:        make(map[uuid.UUID]*v1.Pod),
		nodes:       make(map[string]*v1.Node),
	}
}
