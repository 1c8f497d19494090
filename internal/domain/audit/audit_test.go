package audit

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudit(t *testing.T) {
	t.Run("creates a pending audit with the mock runner", func(t *testing.T) {
		projectID := uuid.New()

		a, err := NewAudit(projectID, TypePageSpeed, nil, TriggerManual)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, a.Status)
		assert.Equal(t, RunnerMock, a.Runner)
		assert.Nil(t, a.Score)
		assert.Nil(t, a.StartedAt)
	})

	t.Run("defaults the trigger to manual", func(t *testing.T) {
		a, err := NewAudit(uuid.New(), TypeSEO, nil, "")

		require.NoError(t, err)
		assert.Equal(t, TriggerManual, a.Trigger)
	})

	t.Run("rejects an invalid type", func(t *testing.T) {
		_, err := NewAudit(uuid.New(), "bogus", nil, TriggerManual)
		assert.Error(t, err)
	})

	t.Run("rejects a nil project", func(t *testing.T) {
		_, err := NewAudit(uuid.Nil, TypeSEO, nil, TriggerManual)
		assert.Error(t, err)
	})
}

func TestAudit_Transitions(t *testing.T) {
	newRunning := func(t *testing.T) *Audit {
		a, err := NewAudit(uuid.New(), TypePageSpeed, nil, TriggerManual)
		require.NoError(t, err)
		require.NoError(t, a.Start())
		return a
	}

	t.Run("start stamps startedAt and moves to running", func(t *testing.T) {
		a := newRunning(t)
		assert.Equal(t, StatusRunning, a.Status)
		assert.NotNil(t, a.StartedAt)
	})

	t.Run("start refuses a running audit", func(t *testing.T) {
		a := newRunning(t)
		assert.Error(t, a.Start())
	})

	t.Run("complete records score, summary and runner", func(t *testing.T) {
		a := newRunning(t)
		raw := json.RawMessage(`{"categories":{}}`)

		require.NoError(t, a.Complete(85, "Good overall health", raw, RunnerLive))

		assert.Equal(t, StatusCompleted, a.Status)
		require.NotNil(t, a.Score)
		assert.Equal(t, 85, *a.Score)
		assert.Equal(t, "Good overall health", a.Summary)
		assert.Equal(t, RunnerLive, a.Runner)
		assert.NotNil(t, a.CompletedAt)
	})

	t.Run("complete refuses a non-running audit", func(t *testing.T) {
		a, _ := NewAudit(uuid.New(), TypeSEO, nil, TriggerManual)
		assert.Error(t, a.Complete(90, "x", nil, RunnerMock))
	})

	t.Run("fail records the error and stamps completedAt", func(t *testing.T) {
		a := newRunning(t)

		a.Fail("no approved primary domain")

		assert.Equal(t, StatusFailed, a.Status)
		require.NotNil(t, a.Error)
		assert.Equal(t, "no approved primary domain", *a.Error)
		assert.NotNil(t, a.CompletedAt)
	})

	t.Run("start refuses terminal states", func(t *testing.T) {
		a := newRunning(t)
		a.Fail("boom")
		assert.Error(t, a.Start())
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
}
