package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sitepulse/backend/internal/domain/billing"
)

// TenantQuotaModel is the persistence model for the TenantQuota aggregate
// root. The APIKeys column holds the vault ciphertext of the JSON-encoded
// key map; encryption happens in the repository so the model stays dumb.
type TenantQuotaModel struct {
	AggregateModel
	TenantID               uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	PlanKey                *string               `gorm:"type:varchar(50);index"`
	MaxProjects            *int                  `gorm:""`
	MaxDomains             *int                  `gorm:""`
	MaxMembers             *int                  `gorm:""`
	MaxOrgAdmins           *int                  `gorm:""`
	MaxAutomationsPerMonth *int                  `gorm:""`
	BillingStatus          billing.BillingStatus `gorm:"type:varchar(20);not null;default:'trial';index"`
	TrialEndsAt            *time.Time            `gorm:""`
	PeriodEndsAt           *time.Time            `gorm:""`
	Notes                  string                `gorm:"type:text"`
	APIKeysCiphertext      string                `gorm:"column:api_keys;type:text"`
}

// TableName returns the table name for GORM
func (TenantQuotaModel) TableName() string {
	return "tenant_quotas"
}

// ToDomain converts the persistence model to a domain TenantQuota entity.
// APIKeys must be decrypted and attached by the repository.
func (m *TenantQuotaModel) ToDomain() *billing.TenantQuota {
	return &billing.TenantQuota{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		TenantID:               m.TenantID,
		PlanKey:                m.PlanKey,
		MaxProjects:            m.MaxProjects,
		MaxDomains:             m.MaxDomains,
		MaxMembers:             m.MaxMembers,
		MaxOrgAdmins:           m.MaxOrgAdmins,
		MaxAutomationsPerMonth: m.MaxAutomationsPerMonth,
		BillingStatus:          m.BillingStatus,
		TrialEndsAt:            m.TrialEndsAt,
		PeriodEndsAt:           m.PeriodEndsAt,
		Notes:                  m.Notes,
		APIKeys:                make(map[string]string),
	}
}

// FromDomain populates the persistence model from a domain TenantQuota
// entity, except for the encrypted key column which the repository owns.
func (m *TenantQuotaModel) FromDomain(q *billing.TenantQuota) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.TenantID = q.TenantID
	m.PlanKey = q.PlanKey
	m.MaxProjects = q.MaxProjects
	m.MaxDomains = q.MaxDomains
	m.MaxMembers = q.MaxMembers
	m.MaxOrgAdmins = q.MaxOrgAdmins
	m.MaxAutomationsPerMonth = q.MaxAutomationsPerMonth
	m.BillingStatus = q.BillingStatus
	m.TrialEndsAt = q.TrialEndsAt
	m.PeriodEndsAt = q.PeriodEndsAt
	m.Notes = q.Notes
}

// TenantUsageModel is the persistence model for the TenantUsage aggregate root.
type TenantUsageModel struct {
	AggregateModel
	TenantID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProjectCount            int       `gorm:"not null;default:0"`
	DomainCount             int       `gorm:"not null;default:0"`
	MemberCount             int       `gorm:"not null;default:0"`
	OrgAdminCount           int       `gorm:"not null;default:0"`
	AutomationRunsThisMonth int       `gorm:"not null;default:0"`
	LastCalculatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantUsageModel) TableName() string {
	return "tenant_usage"
}

// ToDomain converts the persistence model to a domain TenantUsage entity.
func (m *TenantUsageModel) ToDomain() *billing.TenantUsage {
	return &billing.TenantUsage{
		BaseAggregateRoot:       m.ToDomainAggregateRoot(),
		TenantID:                m.TenantID,
		ProjectCount:            m.ProjectCount,
		DomainCount:             m.DomainCount,
		MemberCount:             m.MemberCount,
		OrgAdminCount:           m.OrgAdminCount,
		AutomationRunsThisMonth: m.AutomationRunsThisMonth,
		LastCalculatedAt:        m.LastCalculatedAt,
	}
}

// FromDomain populates the persistence model from a domain TenantUsage entity.
func (m *TenantUsageModel) FromDomain(u *billing.TenantUsage) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.TenantID = u.TenantID
	m.ProjectCount = u.ProjectCount
	m.DomainCount = u.DomainCount
	m.MemberCount = u.MemberCount
	m.OrgAdminCount = u.OrgAdminCount
	m.AutomationRunsThisMonth = u.AutomationRunsThisMonth
	m.LastCalculatedAt = u.LastCalculatedAt
}

// TenantUsageModelFromDomain creates a new persistence model from a domain TenantUsage entity.
func TenantUsageModelFromDomain(u *billing.TenantUsage) *TenantUsageModel {
	m := &TenantUsageModel{}
	m.FromDomain(u)
	return m
}

// UsageLogModel is the persistence model for metered usage rows. One row
// accumulates a single metric for a tenant over one metering window.
type UsageLogModel struct {
	BaseModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_logs_window"`
	MetricKey   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_usage_logs_window"`
	Value       int64     `gorm:"not null;default:0"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_usage_logs_window"`
	PeriodEnd   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UsageLogModel) TableName() string {
	return "usage_logs"
}

// ToDomain converts the persistence model to a domain UsageLog entity.
func (m *UsageLogModel) ToDomain() *billing.UsageLog {
	return &billing.UsageLog{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		MetricKey:   m.MetricKey,
		Value:       m.Value,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
	}
}

// FromDomain populates the persistence model from a domain UsageLog entity.
func (m *UsageLogModel) FromDomain(l *billing.UsageLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.TenantID = l.TenantID
	m.MetricKey = l.MetricKey
	m.Value = l.Value
	m.PeriodStart = l.PeriodStart
	m.PeriodEnd = l.PeriodEnd
}
