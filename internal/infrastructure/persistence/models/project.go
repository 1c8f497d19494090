package models

import (
	"github.com/google/uuid"

	"github.com/sitepulse/backend/internal/domain/project"
)

// ProjectModel is the persistence model for the Project aggregate root.
type ProjectModel struct {
	AggregateModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_projects_tenant_slug"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_projects_tenant_slug"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Project entity.
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenantID = p.TenantID
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.IsActive = p.IsActive
}

// ProjectModelFromDomain creates a new persistence model from a domain Project entity.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}

// DomainModel is the persistence model for the Domain aggregate root.
type DomainModel struct {
	AggregateModel
	ProjectID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_domains_project_host"`
	TenantID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Host      string               `gorm:"type:varchar(255);not null;uniqueIndex:idx_domains_project_host"`
	Status    project.DomainStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	IsPrimary bool                 `gorm:"not null;default:false"`
	Notes     string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DomainModel) TableName() string {
	return "domains"
}

// ToDomain converts the persistence model to a domain Domain entity.
func (m *DomainModel) ToDomain() *project.Domain {
	return &project.Domain{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProjectID:         m.ProjectID,
		TenantID:          m.TenantID,
		Host:              m.Host,
		Status:            m.Status,
		IsPrimary:         m.IsPrimary,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Domain entity.
func (m *DomainModel) FromDomain(d *project.Domain) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.ProjectID = d.ProjectID
	m.TenantID = d.TenantID
	m.Host = d.Host
	m.Status = d.Status
	m.IsPrimary = d.IsPrimary
	m.Notes = d.Notes
}

// DomainModelFromDomain creates a new persistence model from a domain Domain entity.
func DomainModelFromDomain(d *project.Domain) *DomainModel {
	m := &DomainModel{}
	m.FromDomain(d)
	return m
}

// PageModel is the persistence model for tracked pages.
type PageModel struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pages_project_path"`
	Path      string    `gorm:"type:varchar(500);not null;uniqueIndex:idx_pages_project_path"`
	Title     string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (PageModel) TableName() string {
	return "pages"
}

// ToDomain converts the persistence model to a domain Page entity.
func (m *PageModel) ToDomain() *project.Page {
	return &project.Page{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		Path:       m.Path,
		Title:      m.Title,
	}
}

// FromDomain populates the persistence model from a domain Page entity.
func (m *PageModel) FromDomain(p *project.Page) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ProjectID = p.ProjectID
	m.Path = p.Path
	m.Title = p.Title
}
