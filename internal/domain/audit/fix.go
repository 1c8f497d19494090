package audit

import (
	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// FixProvider identifies who authored a proposed fix
type FixProvider string

const (
	FixProviderGPT    FixProvider = "gpt"
	FixProviderGemini FixProvider = "gemini"
	FixProviderGroq   FixProvider = "groq"
	FixProviderMock   FixProvider = "mock"
	FixProviderManual FixProvider = "manual"
)

// IsValid returns true if the fix provider is valid
func (p FixProvider) IsValid() bool {
	switch p {
	case FixProviderGPT, FixProviderGemini, FixProviderGroq, FixProviderMock, FixProviderManual:
		return true
	}
	return false
}

// String returns the string representation of the fix provider
func (p FixProvider) String() string {
	return string(p)
}

// FixDraft is one provider's raw proposed remediation
type FixDraft struct {
	Fix    string `json:"fix"`
	Impact string `json:"impact"`
}

// Comparison records the arbitration outcome between two drafts
type Comparison struct {
	Winner      string         `json:"winner"`                 // Provider tag of the selected draft
	Scores      map[string]int `json:"scores,omitempty"`       // Provider tag -> 0-100 arbitration score
	Strengths   map[string]string `json:"strengths,omitempty"` // Provider tag -> noted strength
	Rationale   string         `json:"rationale,omitempty"`
	ParseFailed bool           `json:"parse_failed,omitempty"` // Arbitration response could not be parsed
}

// FixContent is the structured payload of a proposed fix. Fix and Impact
// are always present; Drafts and Comparison are populated only when two
// providers were raced and arbitrated.
type FixContent struct {
	Fix        string              `json:"fix"`
	Impact     string              `json:"impact"`
	Note       string              `json:"note,omitempty"`
	Drafts     map[string]FixDraft `json:"drafts,omitempty"`
	Comparison *Comparison         `json:"comparison,omitempty"`
}

// Fix is one proposed remediation for an issue
type Fix struct {
	shared.BaseEntity
	IssueID   uuid.UUID
	Provider  FixProvider
	Content   FixContent
	CreatedBy *uuid.UUID // User who requested the fix, if known
}

// NewFix creates a new fix for an issue
func NewFix(issueID uuid.UUID, provider FixProvider, content FixContent, createdBy *uuid.UUID) (*Fix, error) {
	if issueID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Issue ID cannot be empty")
	}
	if !provider.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid fix provider")
	}
	if content.Fix == "" {
		return nil, shared.NewInvalidInputError("Fix content cannot be empty")
	}

	return &Fix{
		BaseEntity: shared.NewBaseEntity(),
		IssueID:    issueID,
		Provider:   provider,
		Content:    content,
		CreatedBy:  createdBy,
	}, nil
}
