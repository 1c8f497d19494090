package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sitepulse/backend/internal/domain/integration"
)

// IntegrationModel is the persistence model for stored API credentials.
// The key itself only ever touches the database as vault ciphertext.
type IntegrationModel struct {
	AggregateModel
	TenantID     *uuid.UUID         `gorm:"type:uuid;index:idx_integrations_tenant_provider"`
	UserID       *uuid.UUID         `gorm:"type:uuid;index:idx_integrations_user_provider"`
	Provider     string             `gorm:"type:varchar(50);not null;index:idx_integrations_tenant_provider;index:idx_integrations_user_provider"`
	MaskedKey    string             `gorm:"type:varchar(50);not null"`
	EncryptedKey string             `gorm:"type:text;not null"`
	Scope        integration.Scope  `gorm:"type:varchar(10);not null"`
	Status       integration.Status `gorm:"type:varchar(10);not null;default:'untested'"`
	ConfigJSON   string             `gorm:"column:config;type:jsonb"`
	LastTestedAt *time.Time         `gorm:""`
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts the persistence model to a domain Integration entity.
func (m *IntegrationModel) ToDomain() *integration.Integration {
	i := &integration.Integration{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		UserID:            m.UserID,
		Provider:          m.Provider,
		MaskedKey:         m.MaskedKey,
		EncryptedKey:      m.EncryptedKey,
		Scope:             m.Scope,
		Status:            m.Status,
		LastTestedAt:      m.LastTestedAt,
	}
	if m.ConfigJSON != "" {
		i.Config = json.RawMessage(m.ConfigJSON)
	}
	return i
}

// FromDomain populates the persistence model from a domain Integration entity.
func (m *IntegrationModel) FromDomain(i *integration.Integration) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.TenantID = i.TenantID
	m.UserID = i.UserID
	m.Provider = i.Provider
	m.MaskedKey = i.MaskedKey
	m.EncryptedKey = i.EncryptedKey
	m.Scope = i.Scope
	m.Status = i.Status
	m.ConfigJSON = string(i.Config)
	m.LastTestedAt = i.LastTestedAt
}

// IntegrationModelFromDomain creates a new persistence model from a domain Integration entity.
func IntegrationModelFromDomain(i *integration.Integration) *IntegrationModel {
	m := &IntegrationModel{}
	m.FromDomain(i)
	return m
}
