package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/repository"
	"rentnest-backend/internal/security"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)

const minPasswordLength = 8

var validate = validator.New()

type authService struct {
	users  repository.UserRepository
	tokens security.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*domain.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, nil, domain.Invalid("invalid email address")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, domain.Invalid("name is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, nil, domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	if in.Role != domain.UserRoleRenter && in.Role != domain.UserRoleOwner {
		return nil, nil, domain.Invalid("role must be RENTER or OWNER")
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         in.Role,
		KYCStatus:    domain.KYCStatusNotVerified,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	logger.Info("User signed up", "userID", user.ID, "role", user.Role)

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if err := security.RequireType(claims, security.TokenTypeRefresh); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return s.issue(user)
}

// SeedAdmin creates the configured super-admin account when it does not exist yet.
func (s *authService) SeedAdmin(ctx context.Context, email, password, name string) (*domain.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.UserRoleSuperAdmin {
			logger.Warn("Configured admin email belongs to a non-admin account", "userID", existing.ID)
		}
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	if name == "" {
		name = "RentNest Admin"
	}
	admin := &domain.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         domain.UserRoleSuperAdmin,
		KYCStatus:    domain.KYCStatusVerified,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	logger.Info("Super admin seeded", "userID", admin.ID)
	return admin, true, nil
}

func (s *authService) issue(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
