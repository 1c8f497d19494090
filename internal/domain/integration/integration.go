package integration

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Scope identifies whether a credential belongs to a tenant or a user
type Scope string

const (
	// ScopeTenant is a tenant-owned credential
	ScopeTenant Scope = "tenant"

	// ScopeUser is a user-owned credential
	ScopeUser Scope = "user"
)

// IsValid returns true if the scope is valid
func (s Scope) IsValid() bool {
	return s == ScopeTenant || s == ScopeUser
}

// String returns the string representation of the scope
func (s Scope) String() string {
	return string(s)
}

// Status tracks the last known health of a stored credential
type Status string

const (
	// StatusUntested means the credential has never been verified
	StatusUntested Status = "untested"

	// StatusOK means the last verification succeeded
	StatusOK Status = "ok"

	// StatusFailed means the last verification failed
	StatusFailed Status = "failed"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusUntested, StatusOK, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Integration is a stored third-party API credential. Exactly one of
// TenantID and UserID is set, matching the scope. The secret itself is
// held only in encrypted form; MaskedKey is the display string.
type Integration struct {
	shared.BaseAggregateRoot
	TenantID     *uuid.UUID
	UserID       *uuid.UUID
	Provider     string
	MaskedKey    string
	EncryptedKey string // Opaque ciphertext from the secret vault
	Scope        Scope
	Status       Status
	Config       json.RawMessage // Optional provider-specific settings
	LastTestedAt *time.Time
}

// NewTenantIntegration creates a tenant-scoped credential
func NewTenantIntegration(tenantID uuid.UUID, provider, maskedKey, encryptedKey string) (*Integration, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}
	return newIntegration(&tenantID, nil, ScopeTenant, provider, maskedKey, encryptedKey)
}

// NewUserIntegration creates a user-scoped credential
func NewUserIntegration(userID uuid.UUID, provider, maskedKey, encryptedKey string) (*Integration, error) {
	if userID == uuid.Nil {
		return nil, shared.NewInvalidInputError("User ID cannot be empty")
	}
	return newIntegration(nil, &userID, ScopeUser, provider, maskedKey, encryptedKey)
}

func newIntegration(tenantID, userID *uuid.UUID, scope Scope, provider, maskedKey, encryptedKey string) (*Integration, error) {
	if provider == "" {
		return nil, shared.NewInvalidInputError("Provider cannot be empty")
	}
	if encryptedKey == "" {
		return nil, shared.NewInvalidInputError("Encrypted key cannot be empty")
	}

	return &Integration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		UserID:            userID,
		Provider:          provider,
		MaskedKey:         maskedKey,
		EncryptedKey:      encryptedKey,
		Scope:             scope,
		Status:            StatusUntested,
	}, nil
}

// RecordTest stores the outcome of an on-demand credential verification
func (i *Integration) RecordTest(ok bool) {
	now := time.Now()
	if ok {
		i.Status = StatusOK
	} else {
		i.Status = StatusFailed
	}
	i.LastTestedAt = &now
	i.UpdatedAt = now
}

// RotateKey replaces the stored credential
func (i *Integration) RotateKey(maskedKey, encryptedKey string) error {
	if encryptedKey == "" {
		return shared.NewInvalidInputError("Encrypted key cannot be empty")
	}
	i.MaskedKey = maskedKey
	i.EncryptedKey = encryptedKey
	i.Status = StatusUntested
	i.LastTestedAt = nil
	i.UpdatedAt = time.Now()
	return nil
}
