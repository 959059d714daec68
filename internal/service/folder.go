package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

// folderService implements the FolderService interface. Deleting a
// folder cascades over its children and notes in one transaction so the
// trash never holds a half-trashed subtree.
type folderService struct {
	folderRepo  repositories.FolderRepository
	noteRepo    repositories.NoteRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	checker     *policy.Checker
	caps        repositories.Capabilities
	logger      *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	checker *policy.Checker,
	caps repositories.Capabilities,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:  folderRepo,
		noteRepo:    noteRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		checker:     checker,
		caps:        caps,
		logger:      logger,
	}
}

// CreateFolder creates a folder. Hierarchy is limited to two levels:
// a subfolder's parent must itself be a root folder.
func (s *folderService) CreateFolder(ctx context.Context, caller services.Caller, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionCreateContent); err != nil {
		return nil, err
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.IsDeleted {
			return nil, fmt.Errorf("%w: parent folder %s is in the trash", domain.ErrValidation, parent.ID)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: folders nest at most one level deep", domain.ErrValidation)
		}
	}

	versionID, err := resolveVersionID(ctx, s.versionRepo, req.VersionID, caller.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
		OwnerID:     caller.ID,
		VersionID:   versionID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", folder.OwnerID,
		"version_id", versionID,
	)

	return folder, nil
}

// GetFolder retrieves a folder within the caller's visibility scope.
func (s *folderService) GetFolder(ctx context.Context, caller services.Caller, id string) (*models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateID("folder id", id); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, folder.OwnerID) {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return folder, nil
}

// UpdateFolder renames or re-describes a folder.
func (s *folderService) UpdateFolder(ctx context.Context, caller services.Caller, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionUpdateContent); err != nil {
		return nil, err
	}
	if err := validateID("folder id", id); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Description == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, folder.OwnerID) {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if folder.IsDeleted {
		return nil, &domain.InvalidStateError{Message: fmt.Sprintf("folder %s is in the trash", id)}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > config.MaxFolderNameLength {
			return nil, fmt.Errorf("%w: name must be 1-%d characters", domain.ErrValidation, config.MaxFolderNameLength)
		}
		folder.Name = name
	}
	if req.Description != nil {
		folder.Description = *req.Description
	}
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// ListFolders lists active root folders within the caller's visibility.
func (s *folderService) ListFolders(ctx context.Context, caller services.Caller, versionID *string) ([]models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	return s.folderRepo.ListActive(ctx, repositories.ContentQuery{
		Visibility: visibilityFor(caller),
		VersionID:  versionID,
		RootOnly:   true,
	})
}

// DeleteFolder trashes a folder together with its active subtree: child
// folders, the folder's notes, and every child's notes move in one
// transaction. On a schema without trash columns the subtree is
// permanently deleted instead.
func (s *folderService) DeleteFolder(ctx context.Context, caller services.Caller, id string) (*services.TrashResult, error) {
	if err := requireAction(s.checker, caller, policy.ActionDeleteContent); err != nil {
		return nil, err
	}
	if err := validateID("folder id", id); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, folder.OwnerID) {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	if !s.caps.TrashColumns {
		return s.hardDeleteSubtree(ctx, folder)
	}

	if folder.IsDeleted {
		return &services.TrashResult{Trashed: true, Message: "folder already in trash"}, nil
	}

	result := &services.TrashResult{Trashed: true, Message: "folder moved to trash"}
	now := time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		children, err := s.folderRepo.ListActiveChildren(txCtx, folder.ID)
		if err != nil {
			return err
		}

		notes, err := s.noteRepo.SoftDeleteByFolder(txCtx, folder.ID, now)
		if err != nil {
			return err
		}
		result.CascadedNotes += notes

		for _, child := range children {
			notes, err := s.noteRepo.SoftDeleteByFolder(txCtx, child.ID, now)
			if err != nil {
				return err
			}
			result.CascadedNotes += notes
		}

		cascaded, err := s.folderRepo.SoftDeleteChildren(txCtx, folder.ID, now)
		if err != nil {
			return err
		}
		result.CascadedFolders = cascaded

		transitioned, err := s.folderRepo.SoftDelete(txCtx, folder.ID, now)
		if err != nil {
			return err
		}
		if !transitioned {
			// Raced with another deleter; the cascade already ran
			// under the same transaction, so roll everything back.
			return &domain.ConflictError{Message: fmt.Sprintf("folder %s was trashed concurrently", folder.ID)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved to trash",
		"id", folder.ID,
		"cascaded_folders", result.CascadedFolders,
		"cascaded_notes", result.CascadedNotes,
	)

	return result, nil
}

// hardDeleteSubtree permanently deletes a folder and its subtree when no
// trash columns exist. Notes first, then child folders, then the root.
func (s *folderService) hardDeleteSubtree(ctx context.Context, folder *models.Folder) (*services.TrashResult, error) {
	result := &services.TrashResult{Trashed: false, Message: "folder deleted (trash not available)"}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		children, err := s.folderRepo.ListActiveChildren(txCtx, folder.ID)
		if err != nil {
			return err
		}

		targets := append([]models.Folder{*folder}, children...)
		for _, f := range targets {
			notes, err := s.noteRepo.ListActive(txCtx, repositories.ContentQuery{
				Visibility: repositories.Visibility{All: true},
				FolderID:   &f.ID,
			})
			if err != nil {
				return err
			}
			for _, n := range notes {
				if err := s.noteRepo.HardDelete(txCtx, n.ID); err != nil {
					return err
				}
				result.CascadedNotes++
			}
		}

		for _, child := range children {
			if err := s.folderRepo.HardDelete(txCtx, child.ID); err != nil {
				return err
			}
			result.CascadedFolders++
		}

		return s.folderRepo.HardDelete(txCtx, folder.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("folder deleted without trash",
		"id", folder.ID,
		"cascaded_folders", result.CascadedFolders,
		"cascaded_notes", result.CascadedNotes,
	)

	return result, nil
}

// RecoverFolder moves a trashed folder back to active. Recovery does not
// cascade: children and notes trashed alongside the folder stay in the
// trash until recovered individually.
func (s *folderService) RecoverFolder(ctx context.Context, caller services.Caller, id string) (*models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionRecoverContent); err != nil {
		return nil, err
	}
	if err := validateID("folder id", id); err != nil {
		return nil, err
	}
	if !s.caps.TrashColumns {
		return nil, &domain.SchemaUnavailableError{Operation: "recover folder"}
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, folder.OwnerID) {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	if err := s.folderRepo.Restore(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("folder recovered", "id", id)
	return s.folderRepo.GetByID(ctx, id)
}

// GetTrashFolders lists visible trashed folders.
func (s *folderService) GetTrashFolders(ctx context.Context, caller services.Caller, versionID *string) ([]models.Folder, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	return s.folderRepo.ListTrashed(ctx, repositories.ContentQuery{
		Visibility: visibilityFor(caller),
		VersionID:  versionID,
	})
}

func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxDescriptionLength),
		),
		validation.Field(&req.ParentID, is.UUIDv4),
		validation.Field(&req.VersionID, is.UUIDv4),
	)
}
