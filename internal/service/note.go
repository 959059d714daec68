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

// noteService implements the NoteService interface. It is the note half
// of the content lifecycle engine: trash transitions, version-scoped
// listing, and the bulk trash operations shared with folders.
type noteService struct {
	noteRepo    repositories.NoteRepository
	folderRepo  repositories.FolderRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	checker     *policy.Checker
	caps        repositories.Capabilities
	logger      *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	checker *policy.Checker,
	caps repositories.Capabilities,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:    noteRepo,
		folderRepo:  folderRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		checker:     checker,
		caps:        caps,
		logger:      logger,
	}
}

// CreateNote creates a note under a folder and a version partition.
func (s *noteService) CreateNote(ctx context.Context, caller services.Caller, req *services.CreateNoteRequest) (*models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionCreateContent); err != nil {
		return nil, err
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// A note is only active when its folder reference is active too.
	if req.FolderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.IsDeleted {
			return nil, fmt.Errorf("%w: folder %s is in the trash", domain.ErrValidation, folder.ID)
		}
	}

	versionID, err := resolveVersionID(ctx, s.versionRepo, req.VersionID, caller.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note := &models.Note{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		FolderID:  req.FolderID,
		OwnerID:   caller.ID,
		VersionID: versionID,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		"id", note.ID,
		"title", note.Title,
		"owner_id", note.OwnerID,
		"version_id", versionID,
	)

	return note, nil
}

// GetNote retrieves a note within the caller's visibility scope.
func (s *noteService) GetNote(ctx context.Context, caller services.Caller, id string) (*models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateID("note id", id); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, note.OwnerID) {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return note, nil
}

// UpdateNote updates a note in place. Content-affecting changes bump the
// revision counter and append the prior content to the revision log.
func (s *noteService) UpdateNote(ctx context.Context, caller services.Caller, id string, req *services.UpdateNoteRequest) (*models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionUpdateContent); err != nil {
		return nil, err
	}
	if err := validateID("note id", id); err != nil {
		return nil, err
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, note.OwnerID) {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	if note.IsDeleted {
		return nil, &domain.InvalidStateError{Message: fmt.Sprintf("note %s is in the trash", id)}
	}

	contentChanged := false
	prior := *note

	if req.Title != nil && strings.TrimSpace(*req.Title) != note.Title {
		note.Title = strings.TrimSpace(*req.Title)
		contentChanged = true
	}
	if req.Content != nil && *req.Content != note.Content {
		note.Content = *req.Content
		contentChanged = true
	}
	switch {
	case req.ClearFolder:
		note.FolderID = nil
	case req.FolderID != nil:
		folder, err := s.folderRepo.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.IsDeleted {
			return nil, fmt.Errorf("%w: folder %s is in the trash", domain.ErrValidation, folder.ID)
		}
		note.FolderID = &folder.ID
	}

	note.UpdatedAt = time.Now()

	if contentChanged {
		note.Revision = prior.Revision + 1
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			rev := &models.NoteRevision{
				NoteID:    prior.ID,
				Title:     prior.Title,
				Content:   prior.Content,
				Revision:  prior.Revision,
				CreatedAt: note.UpdatedAt,
			}
			if err := s.noteRepo.AppendRevision(txCtx, rev); err != nil {
				return err
			}
			return s.noteRepo.Update(txCtx, note)
		})
	} else {
		err = s.noteRepo.Update(ctx, note)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("note updated",
		"id", note.ID,
		"revision", note.Revision,
		"content_changed", contentChanged,
	)

	return note, nil
}

// ListNotes lists active notes, optionally filtered to one folder and
// one version partition.
func (s *noteService) ListNotes(ctx context.Context, caller services.Caller, folderID, versionID *string) ([]models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateOptionalID("folderId", folderID); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	return s.noteRepo.ListActive(ctx, repositories.ContentQuery{
		Visibility: visibilityFor(caller),
		FolderID:   folderID,
		VersionID:  versionID,
	})
}

// SearchNotes performs a substring filter over title and content.
func (s *noteService) SearchNotes(ctx context.Context, caller services.Caller, term string, versionID *string) ([]models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrValidation)
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	return s.noteRepo.Search(ctx, repositories.ContentQuery{
		Visibility: visibilityFor(caller),
		VersionID:  versionID,
	}, strings.TrimSpace(term))
}

// MoveToTrash soft-deletes a note. On a schema without trash columns it
// falls back to a permanent delete and says so in the result message.
func (s *noteService) MoveToTrash(ctx context.Context, caller services.Caller, id string) (*services.TrashResult, error) {
	if err := requireAction(s.checker, caller, policy.ActionDeleteContent); err != nil {
		return nil, err
	}
	if err := validateID("note id", id); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, note.OwnerID) {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	if !s.caps.TrashColumns {
		if err := s.noteRepo.HardDelete(ctx, id); err != nil {
			return nil, err
		}
		s.logger.Warn("note deleted without trash", "id", id)
		return &services.TrashResult{Trashed: false, Message: "note deleted (trash not available)"}, nil
	}

	transitioned, err := s.noteRepo.SoftDelete(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// Already trashed: a no-op, not an error.
		return &services.TrashResult{Trashed: true, Message: "note already in trash"}, nil
	}

	s.logger.Info("note moved to trash", "id", id)
	return &services.TrashResult{Trashed: true, Message: "note moved to trash"}, nil
}

// RecoverNote moves a trashed note back to active.
func (s *noteService) RecoverNote(ctx context.Context, caller services.Caller, id string) (*models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionRecoverContent); err != nil {
		return nil, err
	}
	if err := validateID("note id", id); err != nil {
		return nil, err
	}
	if !s.caps.TrashColumns {
		return nil, &domain.SchemaUnavailableError{Operation: "recover note"}
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, note.OwnerID) {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	if err := s.noteRepo.Restore(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("note recovered", "id", id)
	return s.noteRepo.GetByID(ctx, id)
}

// DeleteNote permanently removes a note.
func (s *noteService) DeleteNote(ctx context.Context, caller services.Caller, id string) error {
	if err := requireAction(s.checker, caller, policy.ActionDeleteContent); err != nil {
		return err
	}
	if err := validateID("note id", id); err != nil {
		return err
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !visible(caller, note.OwnerID) {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	if err := s.noteRepo.HardDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("note permanently deleted", "id", id)
	return nil
}

// GetTrashNotes lists visible trashed notes. Empty on a schema without
// trash columns, where nothing can be in the trash.
func (s *noteService) GetTrashNotes(ctx context.Context, caller services.Caller, versionID *string) ([]models.Note, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	return s.noteRepo.ListTrashed(ctx, repositories.ContentQuery{
		Visibility: visibilityFor(caller),
		VersionID:  versionID,
	})
}

// EmptyTrash permanently removes all visible trashed notes and folders
// in one transaction, reporting per-category counts.
func (s *noteService) EmptyTrash(ctx context.Context, caller services.Caller, versionID *string) (*services.EmptyTrashResult, error) {
	if err := requireAction(s.checker, caller, policy.ActionEmptyTrash); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}

	result := &services.EmptyTrashResult{}
	vis := visibilityFor(caller)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		notes, err := s.noteRepo.PurgeTrashed(txCtx, vis, versionID)
		if err != nil {
			return err
		}
		folders, err := s.folderRepo.PurgeTrashed(txCtx, vis, versionID)
		if err != nil {
			return err
		}
		result.NotesPurged = notes
		result.FoldersPurged = folders
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trash emptied",
		"caller_id", caller.ID,
		"notes_purged", result.NotesPurged,
		"folders_purged", result.FoldersPurged,
	)

	return result, nil
}

// RecoverAll restores all visible trashed notes and folders, reporting
// per-category counts.
func (s *noteService) RecoverAll(ctx context.Context, caller services.Caller, versionID *string) (*services.RecoverAllResult, error) {
	if err := requireAction(s.checker, caller, policy.ActionRecoverContent); err != nil {
		return nil, err
	}
	if err := validateOptionalID("versionId", versionID); err != nil {
		return nil, err
	}
	if !s.caps.TrashColumns {
		return nil, &domain.SchemaUnavailableError{Operation: "recover all"}
	}

	result := &services.RecoverAllResult{}
	vis := visibilityFor(caller)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		notes, err := s.noteRepo.RestoreTrashed(txCtx, vis, versionID)
		if err != nil {
			return err
		}
		folders, err := s.folderRepo.RestoreTrashed(txCtx, vis, versionID)
		if err != nil {
			return err
		}
		result.NotesRecovered = notes
		result.FoldersRecovered = folders
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trash recovered",
		"caller_id", caller.ID,
		"notes_recovered", result.NotesRecovered,
		"folders_recovered", result.FoldersRecovered,
	)

	return result, nil
}

// ListRevisions returns a note's revision log.
func (s *noteService) ListRevisions(ctx context.Context, caller services.Caller, noteID string) ([]models.NoteRevision, error) {
	if err := requireAction(s.checker, caller, policy.ActionViewContent); err != nil {
		return nil, err
	}
	if err := validateID("note id", noteID); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !visible(caller, note.OwnerID) {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}

	return s.noteRepo.ListRevisions(ctx, noteID)
}

func (s *noteService) validateCreateRequest(req *services.CreateNoteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxNoteTitleLength),
		),
		validation.Field(&req.FolderID, is.UUIDv4),
		validation.Field(&req.VersionID, is.UUIDv4),
	)
}

func (s *noteService) validateUpdateRequest(req *services.UpdateNoteRequest) error {
	if req.Title == nil && req.Content == nil && req.FolderID == nil && !req.ClearFolder {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.FolderID, is.UUIDv4),
	}
	if req.Title != nil {
		rules = append(rules,
			validation.Field(&req.Title,
				validation.Required,
				validation.Length(1, config.MaxNoteTitleLength),
			),
		)
	}

	return validation.ValidateStruct(req, rules...)
}
