package identity

import (
	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// FeatureAuditEntry is an immutable record of a feature override change.
// The trail is append-only: entries are never mutated or deleted by later
// overrides of the same flag.
type FeatureAuditEntry struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	FeatureKey string
	Enabled    bool
	ActorID    *uuid.UUID // Admin who made the change, if known
	Reason     string     // Optional free-text justification
}

// NewFeatureAuditEntry creates a new audit trail entry
func NewFeatureAuditEntry(tenantID uuid.UUID, featureKey string, enabled bool, actorID *uuid.UUID, reason string) (*FeatureAuditEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}
	if featureKey == "" {
		return nil, shared.NewInvalidInputError("Feature key cannot be empty")
	}

	return &FeatureAuditEntry{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		FeatureKey: featureKey,
		Enabled:    enabled,
		ActorID:    actorID,
		Reason:     reason,
	}, nil
}
