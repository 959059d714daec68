package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
)

// In-memory repositories backing the service tests. They mirror the
// row-store contracts: conditional trash transitions, scope filters,
// and sentinel errors.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func matchScope(vis repositories.Visibility, ownerID string) bool {
	return vis.All || vis.OwnerID == ownerID
}

func matchVersion(versionID *string, rowVersion *string) bool {
	if versionID == nil {
		return true
	}
	return rowVersion != nil && *rowVersion == *versionID
}

type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeNoteRepo struct {
	notes     map[string]*models.Note
	revisions []models.NoteRevision
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*models.Note)}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *models.Note) error {
	note.ID = uuid.NewString()
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id string) (*models.Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	cp := *note
	return &cp, nil
}

func (r *fakeNoteRepo) Update(_ context.Context, note *models.Note) error {
	if _, ok := r.notes[note.ID]; !ok {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}
	cp := *note
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) list(q repositories.ContentQuery, trashed bool) []models.Note {
	var out []models.Note
	for _, n := range r.notes {
		if n.IsDeleted != trashed {
			continue
		}
		if !matchScope(q.Visibility, n.OwnerID) || !matchVersion(q.VersionID, n.VersionID) {
			continue
		}
		if q.FolderID != nil && (n.FolderID == nil || *n.FolderID != *q.FolderID) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeNoteRepo) ListActive(_ context.Context, q repositories.ContentQuery) ([]models.Note, error) {
	return r.list(q, false), nil
}

func (r *fakeNoteRepo) ListTrashed(_ context.Context, q repositories.ContentQuery) ([]models.Note, error) {
	return r.list(q, true), nil
}

func (r *fakeNoteRepo) Search(_ context.Context, q repositories.ContentQuery, term string) ([]models.Note, error) {
	var out []models.Note
	term = strings.ToLower(term)
	for _, n := range r.list(q, false) {
		if strings.Contains(strings.ToLower(n.Title), term) || strings.Contains(strings.ToLower(n.Content), term) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) SoftDelete(_ context.Context, id string, now time.Time) (bool, error) {
	note, ok := r.notes[id]
	if !ok {
		return false, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	if note.IsDeleted {
		return false, nil
	}
	note.IsDeleted = true
	note.DeletedAt = &now
	return true, nil
}

func (r *fakeNoteRepo) Restore(_ context.Context, id string) error {
	note, ok := r.notes[id]
	if !ok {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	if !note.IsDeleted {
		return &domain.InvalidStateError{Message: fmt.Sprintf("note %s is not in the trash", id)}
	}
	note.IsDeleted = false
	note.DeletedAt = nil
	return nil
}

func (r *fakeNoteRepo) HardDelete(_ context.Context, id string) error {
	if _, ok := r.notes[id]; !ok {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) SoftDeleteByFolder(_ context.Context, folderID string, now time.Time) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if n.FolderID != nil && *n.FolderID == folderID && !n.IsDeleted {
			n.IsDeleted = true
			n.DeletedAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) PurgeTrashed(_ context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	var count int64
	for id, n := range r.notes {
		if n.IsDeleted && matchScope(vis, n.OwnerID) && matchVersion(versionID, n.VersionID) {
			delete(r.notes, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) RestoreTrashed(_ context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if n.IsDeleted && matchScope(vis, n.OwnerID) && matchVersion(versionID, n.VersionID) {
			n.IsDeleted = false
			n.DeletedAt = nil
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) CountActiveByVersion(_ context.Context, versionID string) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if !n.IsDeleted && n.VersionID != nil && *n.VersionID == versionID {
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) ReassignVersion(_ context.Context, ownerID, sourceID, targetID string) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if n.OwnerID == ownerID && n.VersionID != nil && *n.VersionID == sourceID {
			target := targetID
			n.VersionID = &target
			count++
		}
	}
	return count, nil
}

func (r *fakeNoteRepo) AppendRevision(_ context.Context, rev *models.NoteRevision) error {
	rev.ID = uuid.NewString()
	r.revisions = append(r.revisions, *rev)
	return nil
}

func (r *fakeNoteRepo) ListRevisions(_ context.Context, noteID string) ([]models.NoteRevision, error) {
	var out []models.NoteRevision
	for _, rev := range r.revisions {
		if rev.NoteID == noteID {
			out = append(out, rev)
		}
	}
	return out, nil
}

type fakeFolderRepo struct {
	folders map[string]*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	folder.ID = uuid.NewString()
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id string) (*models.Folder, error) {
	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	cp := *folder
	return &cp, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) list(q repositories.ContentQuery, trashed bool) []models.Folder {
	var out []models.Folder
	for _, f := range r.folders {
		if f.IsDeleted != trashed {
			continue
		}
		if !matchScope(q.Visibility, f.OwnerID) || !matchVersion(q.VersionID, f.VersionID) {
			continue
		}
		if q.RootOnly && f.ParentID != nil {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeFolderRepo) ListActive(_ context.Context, q repositories.ContentQuery) ([]models.Folder, error) {
	return r.list(q, false), nil
}

func (r *fakeFolderRepo) ListTrashed(_ context.Context, q repositories.ContentQuery) ([]models.Folder, error) {
	return r.list(q, true), nil
}

func (r *fakeFolderRepo) ListActiveChildren(_ context.Context, parentID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if !f.IsDeleted && f.ParentID != nil && *f.ParentID == parentID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) SoftDelete(_ context.Context, id string, now time.Time) (bool, error) {
	folder, ok := r.folders[id]
	if !ok {
		return false, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if folder.IsDeleted {
		return false, nil
	}
	folder.IsDeleted = true
	folder.DeletedAt = &now
	return true, nil
}

func (r *fakeFolderRepo) Restore(_ context.Context, id string) error {
	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if !folder.IsDeleted {
		return &domain.InvalidStateError{Message: fmt.Sprintf("folder %s is not in the trash", id)}
	}
	folder.IsDeleted = false
	folder.DeletedAt = nil
	return nil
}

func (r *fakeFolderRepo) HardDelete(_ context.Context, id string) error {
	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) SoftDeleteChildren(_ context.Context, parentID string, now time.Time) (int64, error) {
	var count int64
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == parentID && !f.IsDeleted {
			f.IsDeleted = true
			f.DeletedAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) PurgeTrashed(_ context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	var count int64
	for id, f := range r.folders {
		if f.IsDeleted && matchScope(vis, f.OwnerID) && matchVersion(versionID, f.VersionID) {
			delete(r.folders, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) RestoreTrashed(_ context.Context, vis repositories.Visibility, versionID *string) (int64, error) {
	var count int64
	for _, f := range r.folders {
		if f.IsDeleted && matchScope(vis, f.OwnerID) && matchVersion(versionID, f.VersionID) {
			f.IsDeleted = false
			f.DeletedAt = nil
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) CountActiveByVersion(_ context.Context, versionID string) (int64, error) {
	var count int64
	for _, f := range r.folders {
		if !f.IsDeleted && f.VersionID != nil && *f.VersionID == versionID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) ReassignVersion(_ context.Context, ownerID, sourceID, targetID string) (int64, error) {
	var count int64
	for _, f := range r.folders {
		if f.OwnerID == ownerID && f.VersionID != nil && *f.VersionID == sourceID {
			target := targetID
			f.VersionID = &target
			count++
		}
	}
	return count, nil
}

type fakeVersionRepo struct {
	versions map[string]*models.CommunityVersion
	order    []string
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string]*models.CommunityVersion)}
}

func (r *fakeVersionRepo) Create(_ context.Context, version *models.CommunityVersion) error {
	for _, v := range r.versions {
		if v.Name == version.Name {
			return fmt.Errorf("version %q: %w", version.Name, domain.ErrConflict)
		}
	}
	version.ID = uuid.NewString()
	cp := *version
	r.versions[version.ID] = &cp
	r.order = append(r.order, version.ID)
	return nil
}

func (r *fakeVersionRepo) GetByID(_ context.Context, id string) (*models.CommunityVersion, error) {
	version, ok := r.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	cp := *version
	return &cp, nil
}

func (r *fakeVersionRepo) GetByName(_ context.Context, name string) (*models.CommunityVersion, error) {
	for _, v := range r.versions {
		if v.Name == name {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("version %q: %w", name, domain.ErrNotFound)
}

func (r *fakeVersionRepo) List(_ context.Context) ([]models.CommunityVersion, error) {
	var out []models.CommunityVersion
	for i := len(r.order) - 1; i >= 0; i-- {
		if v, ok := r.versions[r.order[i]]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVersionRepo) Update(_ context.Context, version *models.CommunityVersion) error {
	if _, ok := r.versions[version.ID]; !ok {
		return fmt.Errorf("version %s: %w", version.ID, domain.ErrNotFound)
	}
	cp := *version
	r.versions[version.ID] = &cp
	return nil
}

func (r *fakeVersionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.versions[id]; !ok {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	delete(r.versions, id)
	return nil
}

func (r *fakeVersionRepo) Latest(_ context.Context) (*models.CommunityVersion, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		if v, ok := r.versions[r.order[i]]; ok {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no versions: %w", domain.ErrNotFound)
}

func (r *fakeVersionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.versions)), nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user %q: %w", user.Email, domain.ErrConflict)
		}
	}
	user.ID = uuid.NewString()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

type fakeApprovalRepo struct {
	requests map[string]*models.ApprovalRequest
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{requests: make(map[string]*models.ApprovalRequest)}
}

func (r *fakeApprovalRepo) Create(_ context.Context, req *models.ApprovalRequest) error {
	req.ID = uuid.NewString()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeApprovalRepo) GetByID(_ context.Context, id string) (*models.ApprovalRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("approval request %s: %w", id, domain.ErrNotFound)
	}
	cp := *req
	return &cp, nil
}

func (r *fakeApprovalRepo) GetPendingByEmail(_ context.Context, email string) (*models.ApprovalRequest, error) {
	for _, req := range r.requests {
		if req.Email == email && req.Status == models.ApprovalPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("pending request for %q: %w", email, domain.ErrNotFound)
}

func (r *fakeApprovalRepo) List(_ context.Context, status *string) ([]models.ApprovalRequest, error) {
	var out []models.ApprovalRequest
	for _, req := range r.requests {
		if status == nil || req.Status == *status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) Update(_ context.Context, req *models.ApprovalRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return fmt.Errorf("approval request %s: %w", req.ID, domain.ErrNotFound)
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}
