package project

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Project is a tenant-owned website under audit
type Project struct {
	shared.BaseAggregateRoot
	TenantID    uuid.UUID
	Name        string
	Slug        string // Unique within the tenant
	Description string
	IsActive    bool
}

// NewProject creates a new project
func NewProject(tenantID uuid.UUID, name, slug string) (*Project, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewInvalidInputError("Project name cannot be empty")
	}
	if !slugPattern.MatchString(slug) {
		return nil, shared.NewInvalidInputError("Project slug must be lowercase alphanumeric with hyphens")
	}

	return &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		Name:              name,
		Slug:              slug,
		IsActive:          true,
	}, nil
}

// Rename updates the project name
func (p *Project) Rename(name string) error {
	if name == "" {
		return shared.NewInvalidInputError("Project name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// Archive deactivates the project
func (p *Project) Archive() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}
