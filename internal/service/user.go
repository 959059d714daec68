package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// userService implements the UserService interface.
type userService struct {
	userRepo repositories.UserRepository
	checker  *policy.Checker
	logger   *slog.Logger
}

// NewUserService creates a new user management service.
func NewUserService(userRepo repositories.UserRepository, checker *policy.Checker, logger *slog.Logger) services.UserService {
	return &userService{
		userRepo: userRepo,
		checker:  checker,
		logger:   logger,
	}
}

// ListUsers returns all user accounts.
func (s *userService) ListUsers(ctx context.Context, caller services.Caller) ([]models.User, error) {
	if err := requireAction(s.checker, caller, policy.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// CreateUser provisions an account directly, skipping the registration
// approval workflow.
func (s *userService) CreateUser(ctx context.Context, caller services.Caller, req *services.CreateUserRequest) (*models.User, error) {
	if err := requireAction(s.checker, caller, policy.ActionManageUsers); err != nil {
		return nil, err
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Granting admin requires admin.
	role := policy.Normalize(req.Role)
	if role == policy.RoleAdmin && caller.Role != policy.RoleAdmin {
		return nil, &domain.PermissionDeniedError{Action: string(policy.ActionDeleteUsers), Role: string(caller.Role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         string(role),
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role, "created_by", caller.ID)
	return user, nil
}

// UpdateUser changes an account's display name, role, or status.
func (s *userService) UpdateUser(ctx context.Context, caller services.Caller, id string, req *services.UpdateUserRequest) (*models.User, error) {
	if err := requireAction(s.checker, caller, policy.ActionManageUsers); err != nil {
		return nil, err
	}
	if err := validateID("user id", id); err != nil {
		return nil, err
	}
	if req.DisplayName == nil && req.Role == nil && req.Status == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > config.MaxDisplayNameLength {
			return nil, fmt.Errorf("%w: display name must be 1-%d characters", domain.ErrValidation, config.MaxDisplayNameLength)
		}
		user.DisplayName = name
	}
	if req.Role != nil {
		role := policy.Normalize(*req.Role)
		// Only admins may grant or revoke the admin role.
		if (role == policy.RoleAdmin || user.Role == string(policy.RoleAdmin)) && caller.Role != policy.RoleAdmin {
			return nil, &domain.PermissionDeniedError{Action: string(policy.ActionDeleteUsers), Role: string(caller.Role)}
		}
		user.Role = string(role)
	}
	if req.Status != nil {
		switch *req.Status {
		case models.UserStatusApproved, models.UserStatusDisabled:
			user.Status = *req.Status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *req.Status)
		}
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "id", user.ID, "role", user.Role, "status", user.Status, "updated_by", caller.ID)
	return user, nil
}

// DeleteUser removes an account permanently.
func (s *userService) DeleteUser(ctx context.Context, caller services.Caller, id string) error {
	if err := requireAction(s.checker, caller, policy.ActionDeleteUsers); err != nil {
		return err
	}
	if err := validateID("user id", id); err != nil {
		return err
	}
	if id == caller.ID {
		return fmt.Errorf("%w: cannot delete own account", domain.ErrValidation)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", "id", id, "deleted_by", caller.ID)
	return nil
}

func (s *userService) validateCreateRequest(req *services.CreateUserRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&req.DisplayName,
			validation.Required,
			validation.Length(1, config.MaxDisplayNameLength),
		),
	)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repositories.UserRepository
	issuer   TokenIssuer
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repositories.UserRepository, issuer TokenIssuer, logger *slog.Logger) services.AuthService {
	return &authService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login verifies credentials and issues a session token. Unknown emails
// and bad passwords return the same error.
func (s *authService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if user.Status != models.UserStatusApproved {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "id", user.ID, "email", user.Email)
	return &services.LoginResponse{Token: token, User: user}, nil
}
