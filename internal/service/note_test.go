package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

type testEnv struct {
	notes    *fakeNoteRepo
	folders  *fakeFolderRepo
	versions *fakeVersionRepo

	noteSvc    services.NoteService
	folderSvc  services.FolderService
	versionSvc services.VersionService
}

func newTestEnv(t *testing.T, caps repositories.Capabilities) *testEnv {
	t.Helper()

	env := &testEnv{
		notes:    newFakeNoteRepo(),
		folders:  newFakeFolderRepo(),
		versions: newFakeVersionRepo(),
	}
	tx := &fakeTxManager{}
	checker := policy.NewChecker(policy.ModeEnforced)
	logger := testLogger()

	env.noteSvc = NewNoteService(env.notes, env.folders, env.versions, tx, checker, caps, logger)
	env.folderSvc = NewFolderService(env.folders, env.notes, env.versions, tx, checker, caps, logger)
	env.versionSvc = NewVersionService(env.versions, env.notes, env.folders, tx, checker, logger)
	return env
}

func trashCaps() repositories.Capabilities {
	return repositories.Capabilities{TrashColumns: true}
}

func legacyCaps() repositories.Capabilities {
	return repositories.Capabilities{TrashColumns: false}
}

var (
	adminCaller   = services.Caller{ID: "7b5dfb0a-54a6-4c0c-a161-57a1a1b6c2f1", Role: policy.RoleAdmin}
	managerCaller = services.Caller{ID: "3c9d2e1f-8a4b-4d6e-9f01-2a3b4c5d6e7f", Role: policy.RoleManager}
	userCaller    = services.Caller{ID: "9e8d7c6b-5a49-4382-b1c0-d9e8f7a6b5c4", Role: policy.RoleUser}
)

func mustCreateNote(t *testing.T, env *testEnv, caller services.Caller, req *services.CreateNoteRequest) *models.Note {
	t.Helper()
	note, err := env.noteSvc.CreateNote(context.Background(), caller, req)
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	return note
}

func TestCreateNoteStampsDefaultVersion(t *testing.T) {
	env := newTestEnv(t, trashCaps())

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "first"})

	if note.VersionID == nil {
		t.Fatal("note has no version stamp")
	}
	version, err := env.versions.GetByID(context.Background(), *note.VersionID)
	if err != nil {
		t.Fatalf("default version not persisted: %v", err)
	}
	if version.Name != models.DefaultVersionName {
		t.Errorf("default version name = %q, want %q", version.Name, models.DefaultVersionName)
	}
	if note.Revision != 1 {
		t.Errorf("new note revision = %d, want 1", note.Revision)
	}

	// The default version is a real row: a second note reuses it.
	second := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "second"})
	if *second.VersionID != *note.VersionID {
		t.Error("second note did not reuse the default version")
	}
}

func TestCreateNotePermissionDenied(t *testing.T) {
	env := newTestEnv(t, trashCaps())

	_, err := env.noteSvc.CreateNote(context.Background(), userCaller, &services.CreateNoteRequest{Title: "nope"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	var denied *domain.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatal("error does not carry action and role")
	}
	if denied.Role != "user" {
		t.Errorf("denied role = %q, want user", denied.Role)
	}
}

func TestCreateNoteRejectsTrashedFolder(t *testing.T) {
	env := newTestEnv(t, trashCaps())

	folder, err := env.folderSvc.CreateFolder(context.Background(), adminCaller, &services.CreateFolderRequest{Name: "docs"})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if _, err := env.folderSvc.DeleteFolder(context.Background(), adminCaller, folder.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	_, err = env.noteSvc.CreateNote(context.Background(), adminCaller, &services.CreateNoteRequest{
		Title:    "orphan",
		FolderID: &folder.ID,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUpdateNoteBumpsRevisionAndLogsPrior(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "draft", Content: "v1 text"})

	newContent := "v2 text"
	updated, err := env.noteSvc.UpdateNote(ctx, adminCaller, note.ID, &services.UpdateNoteRequest{Content: &newContent})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Revision != 2 {
		t.Errorf("revision = %d, want 2", updated.Revision)
	}

	revs, err := env.noteSvc.ListRevisions(ctx, adminCaller, note.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("revision log has %d entries, want 1", len(revs))
	}
	if revs[0].Content != "v1 text" || revs[0].Revision != 1 {
		t.Errorf("logged revision = %+v, want prior content at revision 1", revs[0])
	}
}

func TestUpdateNoteNoRevisionForSameContent(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "draft", Content: "text"})

	same := "text"
	updated, err := env.noteSvc.UpdateNote(ctx, adminCaller, note.ID, &services.UpdateNoteRequest{Content: &same})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Revision != 1 {
		t.Errorf("revision = %d, want unchanged 1", updated.Revision)
	}

	revs, _ := env.noteSvc.ListRevisions(ctx, adminCaller, note.ID)
	if len(revs) != 0 {
		t.Errorf("revision log has %d entries, want 0", len(revs))
	}
}

func TestUpdateTrashedNoteFails(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "doomed"})
	if _, err := env.noteSvc.MoveToTrash(ctx, adminCaller, note.ID); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}

	title := "renamed"
	_, err := env.noteSvc.UpdateNote(ctx, adminCaller, note.ID, &services.UpdateNoteRequest{Title: &title})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want invalid state", err)
	}
}

func TestMoveToTrashIsIdempotent(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "gone"})

	first, err := env.noteSvc.MoveToTrash(ctx, adminCaller, note.ID)
	if err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	if !first.Trashed {
		t.Error("first trash did not report trashed")
	}

	second, err := env.noteSvc.MoveToTrash(ctx, adminCaller, note.ID)
	if err != nil {
		t.Fatalf("second MoveToTrash: %v", err)
	}
	if !second.Trashed || second.Message != "note already in trash" {
		t.Errorf("second trash result = %+v, want already-in-trash no-op", second)
	}
}

func TestTrashRecoverRoundTrip(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "keeper", Content: "body"})
	content := "edited"
	if _, err := env.noteSvc.UpdateNote(ctx, adminCaller, note.ID, &services.UpdateNoteRequest{Content: &content}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	if _, err := env.noteSvc.MoveToTrash(ctx, adminCaller, note.ID); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}

	recovered, err := env.noteSvc.RecoverNote(ctx, adminCaller, note.ID)
	if err != nil {
		t.Fatalf("RecoverNote: %v", err)
	}
	if recovered.IsDeleted || recovered.DeletedAt != nil {
		t.Error("recovered note still marked deleted")
	}
	if recovered.Content != "edited" || recovered.Revision != 2 {
		t.Errorf("round trip lost content: %+v", recovered)
	}
}

func TestRecoverActiveNoteFails(t *testing.T) {
	env := newTestEnv(t, trashCaps())

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "active"})

	_, err := env.noteSvc.RecoverNote(context.Background(), adminCaller, note.ID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want invalid state", err)
	}
}

func TestTrashFallsBackToHardDeleteWithoutTrashColumns(t *testing.T) {
	env := newTestEnv(t, legacyCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "legacy"})

	result, err := env.noteSvc.MoveToTrash(ctx, adminCaller, note.ID)
	if err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	if result.Trashed {
		t.Error("result claims trashed on a schema without trash columns")
	}
	if result.Message != "note deleted (trash not available)" {
		t.Errorf("message = %q, want degraded-delete message", result.Message)
	}

	if _, err := env.noteSvc.GetNote(ctx, adminCaller, note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("note still present after degraded delete: %v", err)
	}
}

func TestRecoveryRefusedWithoutTrashColumns(t *testing.T) {
	env := newTestEnv(t, legacyCaps())

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "legacy"})

	_, err := env.noteSvc.RecoverNote(context.Background(), adminCaller, note.ID)
	if !errors.Is(err, domain.ErrSchemaUnavailable) {
		t.Fatalf("err = %v, want schema unavailable", err)
	}

	if _, err := env.noteSvc.RecoverAll(context.Background(), adminCaller, nil); !errors.Is(err, domain.ErrSchemaUnavailable) {
		t.Fatalf("RecoverAll err = %v, want schema unavailable", err)
	}
}

func TestTrashListEmptyWithoutTrashColumns(t *testing.T) {
	env := newTestEnv(t, legacyCaps())

	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "visible"})

	trash, err := env.noteSvc.GetTrashNotes(context.Background(), adminCaller, nil)
	if err != nil {
		t.Fatalf("GetTrashNotes: %v", err)
	}
	if len(trash) != 0 {
		t.Errorf("trash list has %d entries on legacy schema, want 0", len(trash))
	}
}

func TestListNotesVersionIsolation(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	v1, err := env.versionSvc.CreateVersion(ctx, adminCaller, &services.CreateVersionRequest{Name: "spring"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	v2, err := env.versionSvc.CreateVersion(ctx, adminCaller, &services.CreateVersionRequest{Name: "fall"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "in spring", VersionID: &v1.ID})
	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "in fall", VersionID: &v2.ID})

	notes, err := env.noteSvc.ListNotes(ctx, adminCaller, nil, &v1.ID)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "in spring" {
		t.Errorf("version-scoped list = %+v, want only the spring note", notes)
	}
}

func TestVisibilityHidesOtherOwners(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	note := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "private"})

	if _, err := env.noteSvc.GetNote(ctx, userCaller, note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user sees admin's note: %v", err)
	}

	// Managers see everything.
	if _, err := env.noteSvc.GetNote(ctx, managerCaller, note.ID); err != nil {
		t.Fatalf("manager cannot see note: %v", err)
	}
}

func TestSearchNotes(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "meeting agenda", Content: "quarterly plan"})
	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "recipes", Content: "soup"})

	hits, err := env.noteSvc.SearchNotes(ctx, adminCaller, "quarterly", nil)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "meeting agenda" {
		t.Errorf("search hits = %+v, want the agenda note", hits)
	}

	if _, err := env.noteSvc.SearchNotes(ctx, adminCaller, "  ", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank term err = %v, want validation error", err)
	}
}

func TestEmptyTrashScopedToVisibility(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	adminNote := mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "admin note"})
	if _, err := env.noteSvc.MoveToTrash(ctx, adminCaller, adminNote.ID); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}

	// Seed a trashed note owned by the plain user directly.
	now := time.Now()
	userNote := &models.Note{Title: "user note", OwnerID: userCaller.ID, IsDeleted: true, DeletedAt: &now}
	if err := env.notes.Create(ctx, userNote); err != nil {
		t.Fatal(err)
	}

	result, err := env.noteSvc.EmptyTrash(ctx, userCaller, nil)
	if err != nil {
		t.Fatalf("EmptyTrash: %v", err)
	}
	if result.NotesPurged != 1 {
		t.Errorf("user purged %d notes, want 1 (own only)", result.NotesPurged)
	}

	// The admin's trashed note survived the user's purge.
	if _, err := env.noteSvc.GetNote(ctx, adminCaller, adminNote.ID); err != nil {
		t.Fatalf("admin note purged by user's empty trash: %v", err)
	}
}

func TestRecoverAllReportsCounts(t *testing.T) {
	env := newTestEnv(t, trashCaps())
	ctx := context.Background()

	folder, err := env.folderSvc.CreateFolder(ctx, adminCaller, &services.CreateFolderRequest{Name: "project"})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	mustCreateNote(t, env, adminCaller, &services.CreateNoteRequest{Title: "inside", FolderID: &folder.ID})

	if _, err := env.folderSvc.DeleteFolder(ctx, adminCaller, folder.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	result, err := env.noteSvc.RecoverAll(ctx, adminCaller, nil)
	if err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}
	if result.NotesRecovered != 1 || result.FoldersRecovered != 1 {
		t.Errorf("recovered %d notes / %d folders, want 1 / 1", result.NotesRecovered, result.FoldersRecovered)
	}
}

func TestNoteIDValidation(t *testing.T) {
	env := newTestEnv(t, trashCaps())

	_, err := env.noteSvc.GetNote(context.Background(), adminCaller, "not-a-uuid")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
