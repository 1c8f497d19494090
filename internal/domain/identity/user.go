package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// MemberRole represents a user's role within a tenant
type MemberRole string

const (
	// RoleMember is a regular tenant member
	RoleMember MemberRole = "member"

	// RoleOrgAdmin is a tenant-level administrator
	RoleOrgAdmin MemberRole = "org_admin"
)

// IsValid returns true if the role is valid
func (r MemberRole) IsValid() bool {
	return r == RoleMember || r == RoleOrgAdmin
}

// String returns the string representation of the role
func (r MemberRole) String() string {
	return string(r)
}

// User represents an authenticated account
type User struct {
	shared.BaseAggregateRoot
	Email        string // Unique, lowercased
	Name         string
	PasswordHash string
	IsActive     bool
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewInvalidInputError("Invalid email address")
	}
	if len(password) < 8 {
		return nil, shared.NewInvalidInputError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError("Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		PasswordHash:      string(hash),
		IsActive:          true,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// Membership links a user to a tenant with a role.
// Member and org-admin counts feed the tenant's standing-resource usage.
type Membership struct {
	shared.BaseEntity
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     MemberRole
}

// NewMembership creates a new tenant membership
func NewMembership(tenantID, userID uuid.UUID, role MemberRole) (*Membership, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewInvalidInputError("User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid member role")
	}

	return &Membership{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		UserID:     userID,
		Role:       role,
	}, nil
}

// Promote changes the membership role
func (m *Membership) Promote(role MemberRole) error {
	if !role.IsValid() {
		return shared.NewInvalidInputError("Invalid member role")
	}
	m.Role = role
	m.Touch()
	return nil
}
