package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubArchive(t *testing.T) {
	ctx := context.Background()
	archive := NewStubArchive()
	auditID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		payload := json.RawMessage(`{"lighthouseResult":{}}`)
		require.NoError(t, archive.Store(ctx, auditID, payload))

		got, err := archive.Fetch(ctx, auditID)
		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(got))
	})

	t.Run("empty payload is skipped", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, archive.Store(ctx, id, nil))

		got, err := archive.Fetch(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing audit", func(t *testing.T) {
		got, err := archive.Fetch(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
