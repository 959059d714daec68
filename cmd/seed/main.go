package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
	"dochub/internal/repository/postgres"
	"dochub/internal/service"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed accounts or content")
	demo := flag.Bool("demo", false, "Seed demo folders and notes")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Caps:   repositories.Capabilities{TrashColumns: true},
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)

	admin, err := ensureAdmin(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}
	log.Printf("Admin account ready: %s", admin.Email)

	if err := ensureDefaultVersion(ctx, versionRepo, admin.ID); err != nil {
		log.Fatalf("Failed to ensure default version: %v", err)
	}
	log.Printf("Default version ready: %s", models.DefaultVersionName)

	if !*demo {
		log.Println("Seeding complete!")
		return
	}

	// Demo content goes through the service layer so folder guards and
	// version stamping apply.
	noteRepo := postgres.NewNoteRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	checker := policy.NewChecker(policy.ModeEnforced)

	caps := repositories.Capabilities{TrashColumns: true}
	noteService := service.NewNoteService(noteRepo, folderRepo, versionRepo, txManager, checker, caps, logger)
	folderService := service.NewFolderService(folderRepo, noteRepo, versionRepo, txManager, checker, caps, logger)

	caller := services.Caller{ID: admin.ID, Role: policy.RoleAdmin}

	log.Println("Seeding demo content...")
	folder, err := folderService.CreateFolder(ctx, caller, &services.CreateFolderRequest{
		Name:        "Getting Started",
		Description: "Introductory material",
	})
	if err != nil {
		log.Fatalf("Failed to create demo folder: %v", err)
	}

	demoNotes := []*services.CreateNoteRequest{
		{
			Title:    "Welcome",
			Content:  "Notes live in folders and belong to a community version. Deleting moves content to the trash, where it can be recovered.",
			FolderID: &folder.ID,
		},
		{
			Title:   "Unfiled note",
			Content: "Notes without a folder appear at the root level.",
		},
	}
	for _, req := range demoNotes {
		note, err := noteService.CreateNote(ctx, caller, req)
		if err != nil {
			log.Printf("Failed to create demo note %q: %v", req.Title, err)
			continue
		}
		log.Printf("Created note: %s (ID: %s)", note.Title, note.ID)
	}

	log.Println("Seeding complete!")
}

// ensureAdmin creates the initial admin account if it does not exist.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD.
func ensureAdmin(ctx context.Context, userRepo repositories.UserRepository) (*models.User, error) {
	email := getenv("ADMIN_EMAIL", "admin@dochub.local")
	password := getenv("ADMIN_PASSWORD", "change-me-immediately")

	existing, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &models.User{
		Email:        email,
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         string(policy.RoleAdmin),
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func ensureDefaultVersion(ctx context.Context, versionRepo repositories.VersionRepository, createdBy string) error {
	_, err := versionRepo.GetByName(ctx, models.DefaultVersionName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	now := time.Now()
	return versionRepo.Create(ctx, &models.CommunityVersion{
		Name:        models.DefaultVersionName,
		Description: "Default version",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			status TEXT NOT NULL DEFAULT 'approved',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.CommunityVersions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			parent_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			description TEXT NOT NULL DEFAULT '',
			owner_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			version_id UUID REFERENCES ` + tables.CommunityVersions + `(id),
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	createNotes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			owner_id UUID NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			version_id UUID REFERENCES ` + tables.CommunityVersions + `(id),
			revision INTEGER NOT NULL DEFAULT 1,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createNotes); err != nil {
		return err
	}

	createRevisions := `
		CREATE TABLE IF NOT EXISTS ` + tables.NoteRevisions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			note_id UUID NOT NULL REFERENCES ` + tables.Notes + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			revision INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createRevisions); err != nil {
		return err
	}

	createApprovals := `
		CREATE TABLE IF NOT EXISTS ` + tables.ApprovalRequests + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			reviewed_by UUID,
			review_notes TEXT NOT NULL DEFAULT '',
			reviewed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createApprovals); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_parent ON ` + tables.Folders + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_owner_deleted ON ` + tables.Folders + `(owner_id, is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_folder ON ` + tables.Notes + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_owner_deleted ON ` + tables.Notes + `(owner_id, is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_version ON ` + tables.Notes + `(version_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `note_versions_note ON ` + tables.NoteRevisions + `(note_id)`,
		// One pending request per email; reviewed requests keep history.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `approvals_pending_email ON ` + tables.ApprovalRequests + `(email) WHERE status = 'pending'`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.NoteRevisions,
		tables.Notes,
		tables.Folders,
		tables.ApprovalRequests,
		tables.CommunityVersions,
		tables.Users,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
