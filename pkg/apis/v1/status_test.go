package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodStatusActive(t *testing.T) {
	assert.True(t, PodPending.Active())
	assert.True(t, PodCreating.Active())
	assert.True(t, PodRunning.Active())
	assert.True(t, PodTerminating.Active())
	assert.False(t, PodFailed.Active())
	assert.False(t, PodTerminated.Active())
}

func TestPodStatusTerminalForGC(t *testing.T) {
	assert.True(t, PodTerminated.TerminalForGC())
	assert.False(t, PodFailed.TerminalForGC())
	assert.False(t, PodRunning.TerminalForGC())
}

func TestPodStatusWireJSON(t *testing.T) {
	for status, name := range podStatusNames {
		b, err := json.Marshal(status)
		require.NoError(t, err)
		assert.JSONEq(t, `"`+name+`"`, string(b))

		var roundTrip PodStatus
		require.NoError(t, json.Unmarshal(b, &roundTrip))
		assert.Equal(t, status, roundTrip)
	}
}

func TestNodeStatusWireJSON(t *testing.T) {
	for status, name := range nodeStatusNames {
		b, err := json.Marshal(status)
		require.NoError(t, err)
		assert.JSONEq(t, `"`+name+`"`, string(b))
	}
}

func TestPodStatusUnmarshalUnknown(t *testing.T) {
	var s PodStatus
	err := json.Unmarshal([]byte(`"bogus"`), &s)
	assert.Error(t, err)
}
