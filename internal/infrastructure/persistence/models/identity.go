package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/identity"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("persistence.models")

// TenantModel is the persistence model for the Tenant aggregate root.
type TenantModel struct {
	AggregateModel
	Slug         string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name         string  `gorm:"type:varchar(200);not null"`
	PlanKey      *string `gorm:"type:varchar(50);index"`
	FeaturesJSON string  `gorm:"column:features;type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	tenant := &identity.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Slug:              m.Slug,
		Name:              m.Name,
		PlanKey:           m.PlanKey,
		Features:          make(map[string]bool),
	}
	if m.FeaturesJSON != "" && m.FeaturesJSON != "{}" {
		if err := json.Unmarshal([]byte(m.FeaturesJSON), &tenant.Features); err != nil {
			modelLogger.Warn("failed to parse tenant features JSON",
				zap.String("tenant_slug", m.Slug),
				zap.Error(err))
		}
	}
	return tenant
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Slug = t.Slug
	m.Name = t.Name
	m.PlanKey = t.PlanKey
	m.FeaturesJSON = marshalMap(t.Features)
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// PlanModel is the persistence model for the Plan aggregate root.
type PlanModel struct {
	AggregateModel
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Key          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	MonthlyPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AnnualPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'USD'"`
	IsActive     bool            `gorm:"not null;default:true;index"`
	FeaturesJSON string          `gorm:"column:allowed_features;type:jsonb;default:'{}'"`
	QuotasJSON   string          `gorm:"column:quotas;type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan entity.
func (m *PlanModel) ToDomain() *identity.Plan {
	plan := &identity.Plan{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Key:               m.Key,
		Name:              m.Name,
		MonthlyPrice:      m.MonthlyPrice,
		AnnualPrice:       m.AnnualPrice,
		Currency:          m.Currency,
		IsActive:          m.IsActive,
		AllowedFeatures:   make(map[string]bool),
		Quotas:            make(map[string]int),
	}
	if m.FeaturesJSON != "" && m.FeaturesJSON != "{}" {
		if err := json.Unmarshal([]byte(m.FeaturesJSON), &plan.AllowedFeatures); err != nil {
			modelLogger.Warn("failed to parse plan features JSON",
				zap.String("plan_key", m.Key),
				zap.Error(err))
		}
	}
	if m.QuotasJSON != "" && m.QuotasJSON != "{}" {
		if err := json.Unmarshal([]byte(m.QuotasJSON), &plan.Quotas); err != nil {
			modelLogger.Warn("failed to parse plan quotas JSON",
				zap.String("plan_key", m.Key),
				zap.Error(err))
		}
	}
	return plan
}

// FromDomain populates the persistence model from a domain Plan entity.
func (m *PlanModel) FromDomain(p *identity.Plan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Key = p.Key
	m.Name = p.Name
	m.MonthlyPrice = p.MonthlyPrice
	m.AnnualPrice = p.AnnualPrice
	m.Currency = p.Currency
	m.IsActive = p.IsActive
	m.FeaturesJSON = marshalMap(p.AllowedFeatures)
	m.QuotasJSON = marshalMap(p.Quotas)
}

// PlanModelFromDomain creates a new persistence model from a domain Plan entity.
func PlanModelFromDomain(p *identity.Plan) *PlanModel {
	m := &PlanModel{}
	m.FromDomain(p)
	return m
}

// UserModel is the persistence model for the User aggregate root.
type UserModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(200);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Name = u.Name
	m.PasswordHash = u.PasswordHash
	m.IsActive = u.IsActive
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// MembershipModel is the persistence model for tenant memberships.
type MembershipModel struct {
	BaseModel
	TenantID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	UserID   uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user"`
	Role     identity.MemberRole `gorm:"type:varchar(20);not null;default:'member'"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "memberships"
}

// ToDomain converts the persistence model to a domain Membership entity.
func (m *MembershipModel) ToDomain() *identity.Membership {
	return &identity.Membership{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		UserID:     m.UserID,
		Role:       m.Role,
	}
}

// FromDomain populates the persistence model from a domain Membership entity.
func (m *MembershipModel) FromDomain(mb *identity.Membership) {
	m.FromDomainBaseEntity(mb.BaseEntity)
	m.TenantID = mb.TenantID
	m.UserID = mb.UserID
	m.Role = mb.Role
}

// MembershipModelFromDomain creates a new persistence model from a domain Membership entity.
func MembershipModelFromDomain(mb *identity.Membership) *MembershipModel {
	m := &MembershipModel{}
	m.FromDomain(mb)
	return m
}

// FeatureAuditModel is the persistence model for the append-only feature
// override audit trail.
type FeatureAuditModel struct {
	BaseModel
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	FeatureKey string     `gorm:"type:varchar(100);not null;index"`
	Enabled    bool       `gorm:"not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Reason     string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FeatureAuditModel) TableName() string {
	return "feature_audit_entries"
}

// ToDomain converts the persistence model to a domain FeatureAuditEntry.
func (m *FeatureAuditModel) ToDomain() *identity.FeatureAuditEntry {
	return &identity.FeatureAuditEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		FeatureKey: m.FeatureKey,
		Enabled:    m.Enabled,
		ActorID:    m.ActorID,
		Reason:     m.Reason,
	}
}

// FromDomain populates the persistence model from a domain FeatureAuditEntry.
func (m *FeatureAuditModel) FromDomain(e *identity.FeatureAuditEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.FeatureKey = e.FeatureKey
	m.Enabled = e.Enabled
	m.ActorID = e.ActorID
	m.Reason = e.Reason
}

// marshalMap serializes a map column, falling back to an empty object so the
// column never holds invalid JSON.
func marshalMap(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
