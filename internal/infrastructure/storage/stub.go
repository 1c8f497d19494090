package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	auditapp "github.com/sitepulse/backend/internal/application/audit"
)

// Ensure StubArchive implements the audit archiver
var _ auditapp.Archiver = (*StubArchive)(nil)

// StubArchive keeps archived payloads in memory. Used when object storage
// is disabled and in tests.
type StubArchive struct {
	mu      sync.RWMutex
	objects map[uuid.UUID]json.RawMessage
}

// NewStubArchive creates an in-memory archive
func NewStubArchive() *StubArchive {
	return &StubArchive{objects: make(map[uuid.UUID]json.RawMessage)}
}

// Store keeps the payload in memory
func (a *StubArchive) Store(_ context.Context, auditID uuid.UUID, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[auditID] = raw
	return nil
}

// Fetch returns a stored payload, nil if absent
func (a *StubArchive) Fetch(_ context.Context, auditID uuid.UUID) (json.RawMessage, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.objects[auditID], nil
}
