package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdateReplicaOnlyDoesNotBumpRevision(t *testing.T) {
	d := &Deployment{Name: "web", Image: "nginx", Replicas: 3, Revision: 1}
	replicas := uint32(5)
	require.NoError(t, d.ApplyUpdate(&replicas, nil))
	assert.Equal(t, uint32(5), d.Replicas)
	assert.Equal(t, uint64(1), d.Revision)
}

func TestApplyUpdateImageChangeBumpsRevision(t *testing.T) {
	d := &Deployment{Name: "web", Image: "nginx", Replicas: 3, Revision: 1}
	image := "nginx:2"
	require.NoError(t, d.ApplyUpdate(nil, &image))
	assert.Equal(t, "nginx:2", d.Image)
	assert.Equal(t, uint64(2), d.Revision)
}

func TestApplyUpdateSameImageDoesNotBumpRevision(t *testing.T) {
	d := &Deployment{Name: "web", Image: "nginx", Replicas: 3, Revision: 1}
	image := "nginx"
	require.NoError(t, d.ApplyUpdate(nil, &image))
	assert.Equal(t, uint64(1), d.Revision)
}

func TestCloneIsIndependent(t *testing.T) {
	d := &Deployment{Name: "web", Replicas: 3}
	cp := d.Clone()
	cp.Replicas = 10
	assert.Equal(t, uint32(3), d.Replicas)
}
