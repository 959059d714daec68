package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

// versionService implements the VersionService interface.
type versionService struct {
	versionRepo repositories.VersionRepository
	noteRepo    repositories.NoteRepository
	folderRepo  repositories.FolderRepository
	txManager   repositories.TransactionManager
	checker     *policy.Checker
	logger      *slog.Logger
}

// NewVersionService creates a new community version service.
func NewVersionService(
	versionRepo repositories.VersionRepository,
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	checker *policy.Checker,
	logger *slog.Logger,
) services.VersionService {
	return &versionService{
		versionRepo: versionRepo,
		noteRepo:    noteRepo,
		folderRepo:  folderRepo,
		txManager:   txManager,
		checker:     checker,
		logger:      logger,
	}
}

// resolveVersionID resolves the version partition new content is stamped
// with. An explicit request is validated against the store; otherwise the
// latest version wins, and a fresh install gets a persistent default
// version created on first use.
func resolveVersionID(ctx context.Context, repo repositories.VersionRepository, requested *string, createdBy string) (*string, error) {
	if requested != nil {
		version, err := repo.GetByID(ctx, *requested)
		if err != nil {
			return nil, err
		}
		return &version.ID, nil
	}

	latest, err := repo.Latest(ctx)
	if err == nil {
		return &latest.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	def := &models.CommunityVersion{
		Name:        models.DefaultVersionName,
		Description: "Default version",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, def); err != nil {
		// Lost a race to another first writer; theirs is fine.
		if errors.Is(err, domain.ErrConflict) {
			existing, gerr := repo.GetByName(ctx, models.DefaultVersionName)
			if gerr != nil {
				return nil, gerr
			}
			return &existing.ID, nil
		}
		return nil, err
	}

	return &def.ID, nil
}

// ListVersions returns all community versions, newest first.
func (s *versionService) ListVersions(ctx context.Context, caller services.Caller) ([]models.CommunityVersion, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	return s.versionRepo.List(ctx)
}

// CreateVersion creates a new community version partition.
func (s *versionService) CreateVersion(ctx context.Context, caller services.Caller, req *services.CreateVersionRequest) (*models.CommunityVersion, error) {
	if err := requireAction(s.checker, caller, policy.ActionCreateVersion); err != nil {
		return nil, err
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	version := &models.CommunityVersion{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("version created", "id", version.ID, "name", version.Name, "created_by", caller.ID)
	return version, nil
}

// UpdateVersion renames or re-describes a version.
func (s *versionService) UpdateVersion(ctx context.Context, caller services.Caller, id string, req *services.UpdateVersionRequest) (*models.CommunityVersion, error) {
	if err := requireAction(s.checker, caller, policy.ActionManageVersions); err != nil {
		return nil, err
	}
	if err := validateID("version id", id); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Description == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	version, err := s.versionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > config.MaxVersionNameLength {
			return nil, fmt.Errorf("%w: name must be 1-%d characters", domain.ErrValidation, config.MaxVersionNameLength)
		}
		version.Name = name
	}
	if req.Description != nil {
		version.Description = *req.Description
	}
	version.UpdatedAt = time.Now()

	if err := s.versionRepo.Update(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("version updated", "id", version.ID, "name", version.Name)
	return version, nil
}

// DeleteVersion removes a version partition. The last remaining version
// and versions still referenced by active content are protected.
func (s *versionService) DeleteVersion(ctx context.Context, caller services.Caller, id string) error {
	if err := requireAction(s.checker, caller, policy.ActionManageVersions); err != nil {
		return err
	}
	if err := validateID("version id", id); err != nil {
		return err
	}

	if _, err := s.versionRepo.GetByID(ctx, id); err != nil {
		return err
	}

	total, err := s.versionRepo.Count(ctx)
	if err != nil {
		return err
	}
	if total <= 1 {
		return &domain.InvalidStateError{Message: "cannot delete the last remaining version"}
	}

	notes, err := s.noteRepo.CountActiveByVersion(ctx, id)
	if err != nil {
		return err
	}
	folders, err := s.folderRepo.CountActiveByVersion(ctx, id)
	if err != nil {
		return err
	}
	if notes > 0 || folders > 0 {
		return &domain.InvalidStateError{
			Message: fmt.Sprintf("version still referenced by %d notes and %d folders", notes, folders),
		}
	}

	if err := s.versionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("version deleted", "id", id, "deleted_by", caller.ID)
	return nil
}

// MigrateContent re-stamps the caller's folders and notes from one
// version to another in a single transaction.
func (s *versionService) MigrateContent(ctx context.Context, caller services.Caller, req *services.MigrateRequest) (*services.MigrateResult, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateID("source version id", req.SourceVersionID); err != nil {
		return nil, err
	}
	if err := validateID("target version id", req.TargetVersionID); err != nil {
		return nil, err
	}
	if req.SourceVersionID == req.TargetVersionID {
		return nil, fmt.Errorf("%w: source and target versions must differ", domain.ErrValidation)
	}

	if _, err := s.versionRepo.GetByID(ctx, req.SourceVersionID); err != nil {
		return nil, err
	}
	if _, err := s.versionRepo.GetByID(ctx, req.TargetVersionID); err != nil {
		return nil, err
	}

	result := &services.MigrateResult{}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, err := s.folderRepo.ReassignVersion(txCtx, caller.ID, req.SourceVersionID, req.TargetVersionID)
		if err != nil {
			return err
		}
		notes, err := s.noteRepo.ReassignVersion(txCtx, caller.ID, req.SourceVersionID, req.TargetVersionID)
		if err != nil {
			return err
		}
		result.FoldersMoved = folders
		result.NotesMoved = notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("content migrated",
		"caller_id", caller.ID,
		"source_version", req.SourceVersionID,
		"target_version", req.TargetVersionID,
		"folders_moved", result.FoldersMoved,
		"notes_moved", result.NotesMoved,
	)

	return result, nil
}

func (s *versionService) validateCreateRequest(req *services.CreateVersionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxVersionNameLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxDescriptionLength),
		),
	)
}
