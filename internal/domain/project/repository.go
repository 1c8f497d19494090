package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// FindByID finds a project by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByTenantAndSlug finds a project by its slug within a tenant
	FindByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Project, error)

	// FindByTenant lists a tenant's projects
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Project, error)

	// CountByTenant counts a tenant's projects
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save creates or updates a project
	Save(ctx context.Context, project *Project) error

	// Delete deletes a project
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByTenantAndSlug checks if a slug is taken within a tenant
	ExistsByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)
}

// DomainRepository defines the interface for domain persistence
type DomainRepository interface {
	// FindByID finds a domain by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Domain, error)

	// FindByProject lists all domains of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Domain, error)

	// FindPrimaryApproved finds the project's primary approved domain, nil if none
	FindPrimaryApproved(ctx context.Context, projectID uuid.UUID) (*Domain, error)

	// CountByTenant counts domains across all of a tenant's projects
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Save creates or updates a domain
	Save(ctx context.Context, domain *Domain) error

	// SavePrimary persists the domain and promotes it to the project's
	// primary in one atomic operation: every other domain of the project
	// has its primary flag cleared in the same transaction.
	SavePrimary(ctx context.Context, domain *Domain) error

	// Delete deletes a domain
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByProjectAndHost checks if a host is already attached to a project
	ExistsByProjectAndHost(ctx context.Context, projectID uuid.UUID, host string) (bool, error)

	// ExistsByTenantAndHost checks if a host is already attached to any of a tenant's projects
	ExistsByTenantAndHost(ctx context.Context, tenantID uuid.UUID, host string) (bool, error)
}

// PageRepository defines the interface for page persistence
type PageRepository interface {
	// FindByID finds a page by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Page, error)

	// FindByProject lists a project's pages
	FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]Page, error)

	// Save creates or updates a page
	Save(ctx context.Context, page *Page) error

	// Delete deletes a page
	Delete(ctx context.Context, id uuid.UUID) error
}
