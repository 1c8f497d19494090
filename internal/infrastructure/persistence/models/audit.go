package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/audit"
)

// AuditModel is the persistence model for the Audit aggregate root.
type AuditModel struct {
	AggregateModel
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	PageID      *uuid.UUID    `gorm:"type:uuid;index"`
	Type        audit.Type    `gorm:"type:varchar(20);not null"`
	Status      audit.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Trigger     audit.Trigger `gorm:"type:varchar(20);not null;default:'manual'"`
	Runner      audit.Runner  `gorm:"type:varchar(10);not null;default:'mock'"`
	Score       *int          `gorm:""`
	Summary     string        `gorm:"type:text"`
	Error       *string       `gorm:"type:text"`
	RawResult   string        `gorm:"column:raw_result;type:jsonb"`
	StartedAt   *time.Time    `gorm:""`
	CompletedAt *time.Time    `gorm:""`
}

// TableName returns the table name for GORM
func (AuditModel) TableName() string {
	return "audits"
}

// ToDomain converts the persistence model to a domain Audit entity.
func (m *AuditModel) ToDomain() *audit.Audit {
	a := &audit.Audit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProjectID:         m.ProjectID,
		PageID:            m.PageID,
		Type:              m.Type,
		Status:            m.Status,
		Trigger:           m.Trigger,
		Runner:            m.Runner,
		Score:             m.Score,
		Summary:           m.Summary,
		Error:             m.Error,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
	}
	if m.RawResult != "" {
		a.RawResult = json.RawMessage(m.RawResult)
	}
	return a
}

// FromDomain populates the persistence model from a domain Audit entity.
func (m *AuditModel) FromDomain(a *audit.Audit) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ProjectID = a.ProjectID
	m.PageID = a.PageID
	m.Type = a.Type
	m.Status = a.Status
	m.Trigger = a.Trigger
	m.Runner = a.Runner
	m.Score = a.Score
	m.Summary = a.Summary
	m.Error = a.Error
	m.RawResult = string(a.RawResult)
	m.StartedAt = a.StartedAt
	m.CompletedAt = a.CompletedAt
}

// AuditModelFromDomain creates a new persistence model from a domain Audit entity.
func AuditModelFromDomain(a *audit.Audit) *AuditModel {
	m := &AuditModel{}
	m.FromDomain(a)
	return m
}

// IssueModel is the persistence model for the Issue aggregate root.
type IssueModel struct {
	AggregateModel
	AuditID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Code           string            `gorm:"type:varchar(100);not null"`
	Severity       audit.Severity    `gorm:"type:varchar(10);not null;index"`
	Category       audit.Category    `gorm:"type:varchar(20);not null;index"`
	Description    string            `gorm:"type:text"`
	MetricValue    *float64          `gorm:""`
	Threshold      *float64          `gorm:""`
	Recommendation string            `gorm:"type:text"`
	Status         audit.IssueStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	ResolvedAt     *time.Time        `gorm:""`
}

// TableName returns the table name for GORM
func (IssueModel) TableName() string {
	return "issues"
}

// ToDomain converts the persistence model to a domain Issue entity.
func (m *IssueModel) ToDomain() *audit.Issue {
	return &audit.Issue{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AuditID:           m.AuditID,
		Code:              m.Code,
		Severity:          m.Severity,
		Category:          m.Category,
		Description:       m.Description,
		MetricValue:       m.MetricValue,
		Threshold:         m.Threshold,
		Recommendation:    m.Recommendation,
		Status:            m.Status,
		ResolvedAt:        m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain Issue entity.
func (m *IssueModel) FromDomain(i *audit.Issue) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.AuditID = i.AuditID
	m.Code = i.Code
	m.Severity = i.Severity
	m.Category = i.Category
	m.Description = i.Description
	m.MetricValue = i.MetricValue
	m.Threshold = i.Threshold
	m.Recommendation = i.Recommendation
	m.Status = i.Status
	m.ResolvedAt = i.ResolvedAt
}

// IssueModelFromDomain creates a new persistence model from a domain Issue entity.
func IssueModelFromDomain(i *audit.Issue) *IssueModel {
	m := &IssueModel{}
	m.FromDomain(i)
	return m
}

// FixModel is the persistence model for proposed remediations.
type FixModel struct {
	BaseModel
	IssueID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Provider    audit.FixProvider `gorm:"type:varchar(10);not null"`
	ContentJSON string            `gorm:"column:content;type:jsonb;not null"`
	CreatedBy   *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FixModel) TableName() string {
	return "fixes"
}

// ToDomain converts the persistence model to a domain Fix entity.
func (m *FixModel) ToDomain() *audit.Fix {
	f := &audit.Fix{
		BaseEntity: m.BaseModel.ToDomain(),
		IssueID:    m.IssueID,
		Provider:   m.Provider,
		CreatedBy:  m.CreatedBy,
	}
	if m.ContentJSON != "" {
		if err := json.Unmarshal([]byte(m.ContentJSON), &f.Content); err != nil {
			modelLogger.Warn("failed to parse fix content JSON",
				zap.String("fix_id", m.ID.String()),
				zap.Error(err))
		}
	}
	return f
}

// FromDomain populates the persistence model from a domain Fix entity.
func (m *FixModel) FromDomain(f *audit.Fix) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.IssueID = f.IssueID
	m.Provider = f.Provider
	m.ContentJSON = marshalMap(f.Content)
	m.CreatedBy = f.CreatedBy
}
