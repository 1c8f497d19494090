package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// DomainStatus represents the review state of a submitted domain
type DomainStatus string

const (
	// DomainStatusPending awaits admin review
	DomainStatusPending DomainStatus = "pending"

	// DomainStatusApproved is cleared for auditing
	DomainStatusApproved DomainStatus = "approved"

	// DomainStatusRejected was declined during review
	DomainStatusRejected DomainStatus = "rejected"
)

// IsValid returns true if the domain status is valid
func (s DomainStatus) IsValid() bool {
	switch s {
	case DomainStatusPending, DomainStatusApproved, DomainStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of the domain status
func (s DomainStatus) String() string {
	return string(s)
}

// Domain is a hostname attached to a project. Audits run only against a
// project's primary approved domain; at most one domain per project is
// primary at any observable instant.
type Domain struct {
	shared.BaseAggregateRoot
	ProjectID uuid.UUID
	TenantID  uuid.UUID
	Host      string // Hostname without scheme; unique within the project
	Status    DomainStatus
	IsPrimary bool
	Notes     string // Reviewer notes
}

// NewDomain submits a hostname for a project, starting in pending review
func NewDomain(tenantID, projectID uuid.UUID, host string) (*Domain, error) {
	host = NormalizeHost(host)
	if host == "" {
		return nil, shared.NewInvalidInputError("Domain host cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Project ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}

	return &Domain{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		TenantID:          tenantID,
		Host:              host,
		Status:            DomainStatusPending,
	}, nil
}

// NormalizeHost lowercases a host and strips any scheme and trailing slash
func NormalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}

// CanonicalURL returns the host as a fully qualified URL,
// prefixing https:// when the stored value lacks a scheme.
func (d *Domain) CanonicalURL() string {
	if strings.HasPrefix(d.Host, "http://") || strings.HasPrefix(d.Host, "https://") {
		return d.Host
	}
	return "https://" + d.Host
}

// Approve marks the domain as cleared for auditing
func (d *Domain) Approve(notes string) {
	d.Status = DomainStatusApproved
	d.Notes = notes
	d.UpdatedAt = time.Now()
}

// Reject declines the domain during review
func (d *Domain) Reject(notes string) {
	d.Status = DomainStatusRejected
	d.IsPrimary = false
	d.Notes = notes
	d.UpdatedAt = time.Now()
}

// IsAuditable returns true if the domain can be the target of an audit run
func (d *Domain) IsAuditable() bool {
	return d.Status == DomainStatusApproved
}
