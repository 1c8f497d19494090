package project

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Page is a tracked path within a project, optionally targeted by audits
type Page struct {
	shared.BaseEntity
	ProjectID uuid.UUID
	Path      string // Absolute path starting with "/"
	Title     string
}

// NewPage creates a new tracked page
func NewPage(projectID uuid.UUID, path, title string) (*Page, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Project ID cannot be empty")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Page{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		Path:       path,
		Title:      title,
	}, nil
}
