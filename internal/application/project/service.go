package project

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/project"
	"github.com/sitepulse/backend/internal/domain/shared"
)

var slugCleanPattern = regexp.MustCompile(`[^a-z0-9]+`)

// CreateProjectRequest carries the input for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest carries partial project updates
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ReviewDomainRequest carries a reviewer's verdict on a submitted domain
type ReviewDomainRequest struct {
	Approve    bool   `json:"approve"`
	SetPrimary bool   `json:"set_primary,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Service manages projects, their domains and their pages. Standing
// resource counts (projects, domains) are guarded by the tenant's quota
// ceilings on create and adjusted on create and delete.
type Service struct {
	projectRepo project.ProjectRepository
	domainRepo  project.DomainRepository
	pageRepo    project.PageRepository
	guard       *billingapp.QuotaGuard
	logger      *zap.Logger
}

// NewService creates a project service
func NewService(
	projectRepo project.ProjectRepository,
	domainRepo project.DomainRepository,
	pageRepo project.PageRepository,
	guard *billingapp.QuotaGuard,
	logger *zap.Logger,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		domainRepo:  domainRepo,
		pageRepo:    pageRepo,
		guard:       guard,
		logger:      logger.Named("project"),
	}
}

// Create provisions a project for the tenant. When no slug is supplied one
// is derived from the name, suffixed until unique within the tenant.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateProjectRequest) (*project.Project, error) {
	if err := s.guard.EnsureCapacity(ctx, tenantID, billing.ResourceProject); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		var err error
		slug, err = s.uniqueSlug(ctx, tenantID, req.Name)
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := s.projectRepo.ExistsByTenantAndSlug(ctx, tenantID, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewConflictError("A project with this slug already exists")
		}
	}

	proj, err := project.NewProject(tenantID, req.Name, slug)
	if err != nil {
		return nil, err
	}
	proj.Description = req.Description

	if err := s.projectRepo.Save(ctx, proj); err != nil {
		return nil, err
	}
	if err := s.guard.ApplyDelta(ctx, tenantID, billing.UsageDelta{Projects: 1}); err != nil {
		s.logger.Error("Project created but usage count not incremented",
			zap.String("tenant_id", tenantID.String()),
			zap.String("project_id", proj.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Project created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("project_id", proj.ID.String()),
		zap.String("slug", proj.Slug))
	return proj, nil
}

// Get finds a project by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	proj, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, shared.NewNotFoundError("Project")
	}
	return proj, nil
}

// List returns a page of the tenant's projects
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[project.Project], error) {
	projects, err := s.projectRepo.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.projectRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(projects, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies partial changes to a project
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*project.Project, error) {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := proj.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		proj.Description = *req.Description
	}
	if req.IsActive != nil && !*req.IsActive {
		proj.Archive()
	}

	if err := s.projectRepo.Save(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// Delete removes a project and releases its counted resources, including
// every domain attached to it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	domains, err := s.domainRepo.FindByProject(ctx, proj.ID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, proj.ID); err != nil {
		return err
	}
	if err := s.guard.ApplyDelta(ctx, proj.TenantID, billing.UsageDelta{
		Projects: -1,
		Domains:  -len(domains),
	}); err != nil {
		s.logger.Error("Project deleted but usage counts not decremented",
			zap.String("tenant_id", proj.TenantID.String()),
			zap.String("project_id", proj.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Project deleted",
		zap.String("tenant_id", proj.TenantID.String()),
		zap.String("project_id", proj.ID.String()),
		zap.Int("domains_released", len(domains)))
	return nil
}

// AddDomain submits a hostname for review under the given project. The
// host is rejected when it is already attached to the project or to any
// other project of the same tenant.
func (s *Service) AddDomain(ctx context.Context, projectID uuid.UUID, host string) (*project.Domain, error) {
	proj, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	normalized := project.NormalizeHost(host)
	if normalized == "" {
		return nil, shared.NewInvalidInputError("Domain host cannot be empty")
	}

	if taken, err := s.domainRepo.ExistsByProjectAndHost(ctx, proj.ID, normalized); err != nil {
		return nil, err
	} else if taken {
		return nil, shared.NewConflictError("This domain is already attached to the project")
	}
	if taken, err := s.domainRepo.ExistsByTenantAndHost(ctx, proj.TenantID, normalized); err != nil {
		return nil, err
	} else if taken {
		return nil, shared.NewConflictError("This domain is already registered in the organization")
	}

	if err := s.guard.EnsureCapacity(ctx, proj.TenantID, billing.ResourceDomain); err != nil {
		return nil, err
	}

	dom, err := project.NewDomain(proj.TenantID, proj.ID, normalized)
	if err != nil {
		return nil, err
	}
	if err := s.domainRepo.Save(ctx, dom); err != nil {
		return nil, err
	}
	if err := s.guard.ApplyDelta(ctx, proj.TenantID, billing.UsageDelta{Domains: 1}); err != nil {
		s.logger.Error("Domain created but usage count not incremented",
			zap.String("tenant_id", proj.TenantID.String()),
			zap.String("domain_id", dom.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Domain submitted for review",
		zap.String("project_id", proj.ID.String()),
		zap.String("host", dom.Host))
	return dom, nil
}

// ListDomains returns every domain of a project
func (s *Service) ListDomains(ctx context.Context, projectID uuid.UUID) ([]project.Domain, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.domainRepo.FindByProject(ctx, projectID)
}

// ReviewDomain records a reviewer verdict. Promotion to primary is only
// valid together with approval and runs as one atomic swap, so at most one
// domain per project is primary at any instant.
func (s *Service) ReviewDomain(ctx context.Context, domainID uuid.UUID, req ReviewDomainRequest) (*project.Domain, error) {
	dom, err := s.domainRepo.FindByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if dom == nil {
		return nil, shared.NewNotFoundError("Domain")
	}

	if !req.Approve {
		if req.SetPrimary {
			return nil, shared.NewInvalidInputError("A rejected domain cannot be made primary")
		}
		dom.Reject(req.Notes)
		if err := s.domainRepo.Save(ctx, dom); err != nil {
			return nil, err
		}
		return dom, nil
	}

	dom.Approve(req.Notes)
	if req.SetPrimary {
		if err := s.domainRepo.SavePrimary(ctx, dom); err != nil {
			return nil, err
		}
	} else if err := s.domainRepo.Save(ctx, dom); err != nil {
		return nil, err
	}

	s.logger.Info("Domain reviewed",
		zap.String("domain_id", dom.ID.String()),
		zap.String("status", dom.Status.String()),
		zap.Bool("primary", dom.IsPrimary))
	return dom, nil
}

// SetPrimaryDomain promotes an already approved domain to the project's primary
func (s *Service) SetPrimaryDomain(ctx context.Context, domainID uuid.UUID) (*project.Domain, error) {
	dom, err := s.domainRepo.FindByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if dom == nil {
		return nil, shared.NewNotFoundError("Domain")
	}
	if !dom.IsAuditable() {
		return nil, shared.NewInvalidInputError("Only an approved domain can be made primary")
	}

	if err := s.domainRepo.SavePrimary(ctx, dom); err != nil {
		return nil, err
	}
	return dom, nil
}

// DeleteDomain removes a domain and releases its counted slot
func (s *Service) DeleteDomain(ctx context.Context, domainID uuid.UUID) error {
	dom, err := s.domainRepo.FindByID(ctx, domainID)
	if err != nil {
		return err
	}
	if dom == nil {
		return shared.NewNotFoundError("Domain")
	}

	if err := s.domainRepo.Delete(ctx, dom.ID); err != nil {
		return err
	}
	if err := s.guard.ApplyDelta(ctx, dom.TenantID, billing.UsageDelta{Domains: -1}); err != nil {
		s.logger.Error("Domain deleted but usage count not decremented",
			zap.String("tenant_id", dom.TenantID.String()),
			zap.String("domain_id", dom.ID.String()),
			zap.Error(err))
	}
	return nil
}

// AddPage registers a page path under a project for page-scoped audits
func (s *Service) AddPage(ctx context.Context, projectID uuid.UUID, path, title string) (*project.Page, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	page, err := project.NewPage(projectID, path, title)
	if err != nil {
		return nil, err
	}
	if err := s.pageRepo.Save(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// ListPages returns a page of a project's registered paths
func (s *Service) ListPages(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]project.Page, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.pageRepo.FindByProject(ctx, projectID, filter)
}

// DeletePage removes a registered page
func (s *Service) DeletePage(ctx context.Context, pageID uuid.UUID) error {
	page, err := s.pageRepo.FindByID(ctx, pageID)
	if err != nil {
		return err
	}
	if page == nil {
		return shared.NewNotFoundError("Page")
	}
	return s.pageRepo.Delete(ctx, pageID)
}

// uniqueSlug derives a slug from the name and suffixes it until no other
// project of the tenant uses it.
func (s *Service) uniqueSlug(ctx context.Context, tenantID uuid.UUID, name string) (string, error) {
	base := strings.Trim(slugCleanPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "project"
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := s.projectRepo.ExistsByTenantAndSlug(ctx, tenantID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
