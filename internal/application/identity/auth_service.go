package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/sitepulse/backend/internal/application/billing"
	"github.com/sitepulse/backend/internal/domain/billing"
	"github.com/sitepulse/backend/internal/domain/identity"
	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/infrastructure/auth"
)

// RegisterRequest carries the input for creating a user inside a tenant
type RegisterRequest struct {
	TenantID uuid.UUID           `json:"tenant_id" binding:"required"`
	Email    string              `json:"email" binding:"required,email"`
	Name     string              `json:"name" binding:"required"`
	Password string              `json:"password" binding:"required,min=8"`
	Role     identity.MemberRole `json:"role"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required"`
}

// LoginResult bundles the issued token with the authenticated identities
type LoginResult struct {
	Token      *auth.IssuedToken    `json:"token"`
	User       *identity.User       `json:"user"`
	Membership *identity.Membership `json:"membership"`
}

// AuthService handles registration and login. Member headcount is a
// standing resource: registration passes through the quota guard the same
// way projects and domains do.
type AuthService struct {
	userRepo       identity.UserRepository
	membershipRepo identity.MembershipRepository
	tenantRepo     identity.TenantRepository
	guard          *billingapp.QuotaGuard
	jwtService     *auth.JWTService
	logger         *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(
	userRepo identity.UserRepository,
	membershipRepo identity.MembershipRepository,
	tenantRepo identity.TenantRepository,
	guard *billingapp.QuotaGuard,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		tenantRepo:     tenantRepo,
		guard:          guard,
		jwtService:     jwtService,
		logger:         logger.Named("auth"),
	}
}

// Register creates a user and their membership in a tenant. An existing
// user (by email) is joined to the tenant instead of recreated, so one
// account can belong to several organizations.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*identity.User, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("Tenant")
	}

	role := req.Role
	if role == "" {
		role = identity.RoleMember
	}
	if !role.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid member role")
	}

	if err := s.guard.EnsureCapacity(ctx, tenant.ID, billing.ResourceMember); err != nil {
		return nil, err
	}
	if role == identity.RoleOrgAdmin {
		if err := s.guard.EnsureCapacity(ctx, tenant.ID, billing.ResourceOrgAdmin); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = identity.NewUser(req.Email, req.Name, req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.membershipRepo.FindByTenantAndUser(ctx, tenant.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewAlreadyExistsError("Membership")
		}
	}

	membership, err := identity.NewMembership(tenant.ID, user.ID, role)
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}

	delta := billing.UsageDelta{Members: 1}
	if role == identity.RoleOrgAdmin {
		delta.OrgAdmins = 1
	}
	if err := s.guard.ApplyDelta(ctx, tenant.ID, delta); err != nil {
		s.logger.Error("Failed to record member usage",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.String()))
	return user, nil
}

// Login authenticates a user against a tenant and issues an access token.
// Bad email, bad password and missing membership all produce the same
// unauthorized error so login cannot be used to probe accounts.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.VerifyPassword(req.Password) {
		return nil, shared.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, shared.NewForbiddenError("Account is deactivated")
	}

	membership, err := s.membershipRepo.FindByTenantAndUser(ctx, req.TenantID, user.ID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, shared.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.jwtService.Generate(auth.GenerateTokenInput{
		TenantID: membership.TenantID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     membership.Role.String(),
	})
	if err != nil {
		return nil, shared.NewInternalError("Failed to issue token")
	}

	s.logger.Info("User logged in",
		zap.String("tenant_id", membership.TenantID.String()),
		zap.String("user_id", user.ID.String()))
	return &LoginResult{Token: token, User: user, Membership: membership}, nil
}

// ListMembers returns a page of tenant memberships
func (s *AuthService) ListMembers(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[identity.Membership], error) {
	members, err := s.membershipRepo.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.membershipRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(members, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ChangeRole promotes or demotes a membership, keeping org-admin capacity
// and usage counts consistent.
func (s *AuthService) ChangeRole(ctx context.Context, membershipID uuid.UUID, role identity.MemberRole) (*identity.Membership, error) {
	membership, err := s.membershipRepo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, shared.NewNotFoundError("Membership")
	}
	if membership.Role == role {
		return membership, nil
	}

	if role == identity.RoleOrgAdmin {
		if err := s.guard.EnsureCapacity(ctx, membership.TenantID, billing.ResourceOrgAdmin); err != nil {
			return nil, err
		}
	}

	previous := membership.Role
	if err := membership.Promote(role); err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}

	delta := billing.UsageDelta{}
	if role == identity.RoleOrgAdmin {
		delta.OrgAdmins = 1
	} else if previous == identity.RoleOrgAdmin {
		delta.OrgAdmins = -1
	}
	if err := s.guard.ApplyDelta(ctx, membership.TenantID, delta); err != nil {
		s.logger.Error("Failed to record role usage",
			zap.String("tenant_id", membership.TenantID.String()),
			zap.Error(err))
	}
	return membership, nil
}

// RemoveMember deletes a membership and releases its usage
func (s *AuthService) RemoveMember(ctx context.Context, membershipID uuid.UUID) error {
	membership, err := s.membershipRepo.FindByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership == nil {
		return shared.NewNotFoundError("Membership")
	}
	if err := s.membershipRepo.Delete(ctx, membershipID); err != nil {
		return err
	}

	delta := billing.UsageDelta{Members: -1}
	if membership.Role == identity.RoleOrgAdmin {
		delta.OrgAdmins = -1
	}
	if err := s.guard.ApplyDelta(ctx, membership.TenantID, delta); err != nil {
		s.logger.Error("Failed to release member usage",
			zap.String("tenant_id", membership.TenantID.String()),
			zap.Error(err))
	}
	return nil
}
