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

// registrationService implements the RegistrationService interface:
// self-service signup filed as a pending request, reviewed by a manager
// or admin, provisioned into a user account on approval.
type registrationService struct {
	approvalRepo repositories.ApprovalRepository
	userRepo     repositories.UserRepository
	txManager    repositories.TransactionManager
	checker      *policy.Checker
	notifier     services.ApprovalNotifier
	logger       *slog.Logger
}

// NewRegistrationService creates a new registration service. notifier
// may be nil when outbound mail is not configured.
func NewRegistrationService(
	approvalRepo repositories.ApprovalRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	checker *policy.Checker,
	notifier services.ApprovalNotifier,
	logger *slog.Logger,
) services.RegistrationService {
	return &registrationService{
		approvalRepo: approvalRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		checker:      checker,
		notifier:     notifier,
		logger:       logger,
	}
}

// Register files a pending approval request for a new account.
func (s *registrationService) Register(ctx context.Context, req *services.RegisterRequest) (*models.ApprovalRequest, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("account for %q already exists: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if _, err := s.approvalRepo.GetPendingByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("request for %q already pending: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	request := &models.ApprovalRequest{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Status:       models.ApprovalPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.approvalRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("registration request filed", "id", request.ID, "email", email)
	return request, nil
}

// ListRequests lists approval requests, optionally filtered by status.
func (s *registrationService) ListRequests(ctx context.Context, caller services.Caller, status *string) ([]models.ApprovalRequest, error) {
	if err := requireAction(s.checker, caller, policy.ActionReviewRequests); err != nil {
		return nil, err
	}
	if status != nil {
		switch *status {
		case models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *status)
		}
	}

	return s.approvalRepo.List(ctx, status)
}

// Review approves or rejects a pending request. Approved and rejected
// are terminal; reviewing a reviewed request fails.
func (s *registrationService) Review(ctx context.Context, caller services.Caller, id string, req *services.ReviewRequest) (*models.ApprovalRequest, error) {
	if err := requireAction(s.checker, caller, policy.ActionReviewRequests); err != nil {
		return nil, err
	}
	if err := validateID("request id", id); err != nil {
		return nil, err
	}

	request, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.ApprovalPending {
		return nil, &domain.InvalidStateError{
			Message: fmt.Sprintf("request %s already %s", id, request.Status),
		}
	}

	now := time.Now()
	request.ReviewedBy = &caller.ID
	request.ReviewNotes = req.Notes
	request.ReviewedAt = &now
	request.UpdatedAt = now

	if req.Approve {
		request.Status = models.ApprovalApproved
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			user := &models.User{
				Email:        request.Email,
				DisplayName:  request.DisplayName,
				PasswordHash: request.PasswordHash,
				Role:         string(policy.RoleUser),
				Status:       models.UserStatusApproved,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.userRepo.Create(txCtx, user); err != nil {
				return err
			}
			return s.approvalRepo.Update(txCtx, request)
		})
	} else {
		request.Status = models.ApprovalRejected
		err = s.approvalRepo.Update(ctx, request)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration request reviewed",
		"id", request.ID,
		"email", request.Email,
		"status", request.Status,
		"reviewed_by", caller.ID,
	)

	if s.notifier != nil {
		// Fire-and-forget: mail delivery never blocks or fails a review.
		go func(r models.ApprovalRequest) {
			if err := s.notifier.NotifyReviewed(r.Email, r.DisplayName, r.Status == models.ApprovalApproved, r.ReviewNotes); err != nil {
				s.logger.Error("approval notification failed", "email", r.Email, "error", err)
			}
		}(*request)
	}

	return request, nil
}

func (s *registrationService) validateRegisterRequest(req *services.RegisterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&req.DisplayName,
			validation.Required,
			validation.Length(1, config.MaxDisplayNameLength),
		),
	)
}
