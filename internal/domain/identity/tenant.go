package identity

import (
	"regexp"
	"time"

	"github.com/sitepulse/backend/internal/domain/shared"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Tenant represents a billable organization unit.
// A tenant owns projects, members, and exactly one quota and one usage row,
// created atomically alongside it.
type Tenant struct {
	shared.BaseAggregateRoot
	Slug     string          // Unique URL-safe identifier
	Name     string          // Display name
	PlanKey  *string         // Optional reference to a plan by its unique key (nil = no plan)
	Features map[string]bool // Per-feature overrides; a present key supersedes the plan default
}

// NewTenant creates a new tenant
func NewTenant(slug, name string) (*Tenant, error) {
	if !slugPattern.MatchString(slug) {
		return nil, shared.NewInvalidInputError("Tenant slug must be lowercase alphanumeric with hyphens")
	}
	if name == "" {
		return nil, shared.NewInvalidInputError("Tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Name:              name,
		Features:          make(map[string]bool),
	}, nil
}

// AssignPlan assigns a plan to the tenant by its key
func (t *Tenant) AssignPlan(planKey string) {
	t.PlanKey = &planKey
	t.UpdatedAt = time.Now()
}

// ClearPlan removes the tenant's plan reference
func (t *Tenant) ClearPlan() {
	t.PlanKey = nil
	t.UpdatedAt = time.Now()
}

// SetFeatureOverride merges a per-feature override into the tenant's override map.
// The override supersedes the plan default for that feature, in either direction.
func (t *Tenant) SetFeatureOverride(featureKey string, enabled bool) error {
	if featureKey == "" {
		return shared.NewInvalidInputError("Feature key cannot be empty")
	}
	if t.Features == nil {
		t.Features = make(map[string]bool)
	}
	t.Features[featureKey] = enabled
	t.UpdatedAt = time.Now()
	return nil
}

// FeatureOverride returns the override value for a feature key and whether one is set
func (t *Tenant) FeatureOverride(featureKey string) (bool, bool) {
	if t.Features == nil {
		return false, false
	}
	enabled, ok := t.Features[featureKey]
	return enabled, ok
}

// Rename updates the tenant's display name
func (t *Tenant) Rename(name string) error {
	if name == "" {
		return shared.NewInvalidInputError("Tenant name cannot be empty")
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	return nil
}
