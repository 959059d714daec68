package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/email"
	"dochub/internal/handler"
	"dochub/internal/middleware"
	"dochub/internal/policy"
	"dochub/internal/repository/postgres"
	"dochub/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Resolve schema capabilities once at startup: a declared descriptor
	// wins, otherwise probe the live schema.
	var caps repositories.Capabilities
	if cfg.CapabilitiesFile != "" {
		desc, err := config.LoadSchemaDescriptor(cfg.CapabilitiesFile)
		if err != nil {
			log.Fatalf("Failed to load schema descriptor: %v", err)
		}
		caps = repositories.Capabilities{TrashColumns: desc.TrashColumns}
		logger.Info("schema capabilities declared", "trash_columns", caps.TrashColumns)
	} else {
		caps = postgres.DetectCapabilities(ctx, pool, tables, logger)
		logger.Info("schema capabilities probed", "trash_columns", caps.TrashColumns)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Caps:   caps,
		Logger: logger,
	}
	noteRepo := postgres.NewNoteRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	approvalRepo := postgres.NewApprovalRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Policy enforcement mode comes from configuration, never from the
	// environment name.
	checker := policy.NewChecker(policy.NormalizeMode(cfg.PolicyMode))
	if checker.Mode() == policy.ModePermissive {
		logger.Warn("PERMISSIVE MODE: role policy disabled, every action allowed")
	}

	mailer := email.NewService(email.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, logger)
	var notifier services.ApprovalNotifier
	if mailer.Enabled() {
		notifier = mailer
	} else {
		logger.Info("smtp not configured, approval notifications disabled")
	}

	// Create services
	noteService := service.NewNoteService(noteRepo, folderRepo, versionRepo, txManager, checker, caps, logger)
	folderService := service.NewFolderService(folderRepo, noteRepo, versionRepo, txManager, checker, caps, logger)
	versionService := service.NewVersionService(versionRepo, noteRepo, folderRepo, txManager, checker, logger)
	registrationService := service.NewRegistrationService(approvalRepo, userRepo, txManager, checker, notifier, logger)
	userService := service.NewUserService(userRepo, checker, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)

	// Create handlers
	noteHandler := handler.NewNoteHandler(noteService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)
	registrationHandler := handler.NewRegistrationHandler(registrationService, logger)
	userHandler := handler.NewUserHandler(userService, authService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	logger.Info("services initialized")

	// Authenticated routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()
	noteHandler.Register(api)
	folderHandler.Register(api)
	versionHandler.Register(api)
	registrationHandler.Register(api)
	userHandler.Register(api)

	// Public routes: login, signup, health. Everything else goes through
	// the auth middleware.
	mux := http.NewServeMux()
	userHandler.RegisterPublic(mux)
	registrationHandler.RegisterPublic(mux)
	healthHandler.Register(mux)
	mux.Handle("/", middleware.Auth(tokens, logger)(api))

	// Build middleware chain: CORS → Recovery → Routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
