package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMasterRegistersCollectors(t *testing.T) {
	m := NewMaster()
	m.ReconcileDuration.Observe(0.01)
	m.SchedulerDecisions.WithLabelValues("placed").Inc()
	m.NodeHeartbeatAge.WithLabelValues("w1").Set(3)
	assert.NotNil(t, m)
}

func TestNewAgentRegistersCollectors(t *testing.T) {
	a := NewAgent()
	a.HeartbeatsSent.WithLabelValues("ok").Inc()
	assert.NotNil(t, a)
}
