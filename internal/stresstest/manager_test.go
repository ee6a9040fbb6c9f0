package stresstest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestManager_SaveAndListRuns(t *testing.T) {
	manager := createTestManager(t)

	first := sampleRun()
	id, err := manager.SaveRun(first)
	require.NoError(t, err)
	assert.Positive(t, id)

	second := sampleRun()
	second.ID = "later"
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.Summary.ErrorBreakdown = nil
	second.Verdict = VerdictPass
	_, err = manager.SaveRun(second)
	require.NoError(t, err)

	runs, err := manager.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "later", runs[0].RunUUID)
	assert.Equal(t, VerdictPass, runs[0].Verdict)
	assert.Nil(t, runs[0].ErrorBreakdown)

	old := runs[1]
	assert.Equal(t, first.ID, old.RunUUID)
	assert.Equal(t, "localhost:19132", old.Target)
	assert.Equal(t, DriverHTTP, old.Driver)
	assert.Equal(t, 2, old.Summary.TotalConnections)
	assert.Equal(t, 1, old.Summary.SuccessfulConnections)
	assert.InDelta(t, first.Summary.PacketsPerSecond, old.Summary.PacketsPerSecond, 1e-9)
	assert.Equal(t, map[string]int{ErrorConnectionRefused: 1}, old.ErrorBreakdown)
	assert.Equal(t, VerdictFail, old.Verdict)

	limited, err := manager.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	sessions, err := manager.GetSessions(old.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Success)
	assert.True(t, sessions[0].Connected)
	assert.Equal(t, 9, sessions[0].PacketsSent)
	assert.InDelta(t, 0.01, sessions[0].ConnectTime.Seconds(), 1e-9)
	assert.False(t, sessions[1].Connected)
	assert.Equal(t, 1, sessions[1].Errors)
}

func TestManager_DuplicateRunIDRejected(t *testing.T) {
	manager := createTestManager(t)

	_, err := manager.SaveRun(sampleRun())
	require.NoError(t, err)
	_, err = manager.SaveRun(sampleRun())
	assert.Error(t, err)

	runs, err := manager.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
