package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Severity grades an issue finding
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid returns true if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// SeverityForScore maps a 0-100 check score to a severity.
// Thresholds: <50 critical, <75 high, <90 medium, else low.
func SeverityForScore(score float64) Severity {
	switch {
	case score < 50:
		return SeverityCritical
	case score < 75:
		return SeverityHigh
	case score < 90:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Category classifies a finding
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
	CategorySEO           Category = "seo"
	CategoryBestPractices Category = "best_practices"
)

// IsValid returns true if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryPerformance, CategoryAccessibility, CategorySEO, CategoryBestPractices:
		return true
	}
	return false
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// CategoryForCheckID infers a category from substrings of a check identifier
func CategoryForCheckID(checkID string) Category {
	id := strings.ToLower(checkID)
	switch {
	case strings.Contains(id, "accessibility") || strings.Contains(id, "a11y"):
		return CategoryAccessibility
	case strings.Contains(id, "seo") || strings.Contains(id, "meta"):
		return CategorySEO
	case strings.Contains(id, "best-practice"):
		return CategoryBestPractices
	default:
		return CategoryPerformance
	}
}

// IssueStatus tracks the remediation lifecycle of a finding
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusIgnored    IssueStatus = "ignored"
)

// IsValid returns true if the issue status is valid
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusIgnored:
		return true
	}
	return false
}

// String returns the string representation of the issue status
func (s IssueStatus) String() string {
	return string(s)
}

// Issue is one finding surfaced by an audit run
type Issue struct {
	shared.BaseAggregateRoot
	AuditID        uuid.UUID
	Code           string // Check identifier, uppercased with hyphens replaced by underscores
	Severity       Severity
	Category       Category
	Description    string
	MetricValue    *float64 // Observed numeric value, if the check reported one
	Threshold      *float64 // Target value derived from the observed one
	Recommendation string
	Status         IssueStatus
	ResolvedAt     *time.Time
}

// NewIssue creates an issue in status open
func NewIssue(auditID uuid.UUID, code string, severity Severity, category Category, description string) (*Issue, error) {
	if auditID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Audit ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewInvalidInputError("Issue code cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid issue severity")
	}
	if !category.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid issue category")
	}

	return &Issue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AuditID:           auditID,
		Code:              code,
		Severity:          severity,
		Category:          category,
		Description:       description,
		Status:            IssueStatusOpen,
	}, nil
}

// SetStatus transitions the issue's remediation lifecycle,
// stamping ResolvedAt when entering resolved.
func (i *Issue) SetStatus(status IssueStatus) error {
	if !status.IsValid() {
		return shared.NewInvalidInputError("Invalid issue status")
	}
	now := time.Now()
	i.Status = status
	if status == IssueStatusResolved {
		i.ResolvedAt = &now
	} else {
		i.ResolvedAt = nil
	}
	i.UpdatedAt = now
	return nil
}
