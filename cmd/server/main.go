package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/postgres"
	"inkwell/internal/service"
	"inkwell/internal/service/ai"
	"inkwell/internal/service/ocr"
	"inkwell/internal/service/speech"
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

	logOutput := os.Stdout
	if logDir := os.Getenv("LOG_DIR"); logDir != "" {
		file, err := config.SetupLogFile(logDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer file.Close()
		logOutput = file
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier against the auth provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, cfg.AuthIssuer, cfg.AuthAud, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Apply schema migrations before opening the pool
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("migrations applied")

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	noteRepo := postgres.NewNoteRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Services
	analyzer := service.NewContentAnalyzer()
	noteService := service.NewNoteService(noteRepo, folderRepo, versionRepo, txManager, analyzer, logger)
	folderService := service.NewFolderService(folderRepo, noteRepo, versionRepo, txManager, logger)
	versionService := service.NewVersionService(versionRepo, noteRepo, txManager, analyzer, logger)

	actionRegistry, err := ai.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load action registry: %v", err)
	}
	geminiBaseURL := cfg.GeminiBaseURL
	if geminiBaseURL == "" {
		geminiBaseURL = ai.DefaultGeminiBaseURL
	}
	geminiClient := ai.NewGeminiClientWithConfig(cfg.GeminiAPIKey, cfg.GeminiModel, geminiBaseURL, ai.DefaultGeminiTimeout)
	aiService := ai.NewService(geminiClient, actionRegistry, logger)

	annotator, err := ocr.NewAnnotator(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Fatalf("Failed to create vision client: %v", err)
	}
	ocrService := ocr.NewService(annotator, logger)

	recognizer, err := speech.NewRecognizer(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Fatalf("Failed to create speech client: %v", err)
	}
	speechService := speech.NewService(recognizer, logger)

	// Handlers
	noteHandler := handler.NewNoteHandler(noteService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)
	aiHandler := handler.NewAIHandler(aiService, logger)
	ocrHandler := handler.NewOCRHandler(ocrService, logger)
	speechHandler := handler.NewSpeechHandler(speechService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Note routes
	mux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /api/notes", noteHandler.ListNotes)
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("PATCH /api/notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)
	mux.HandleFunc("GET /api/notes/{id}/export", noteHandler.ExportNote)

	// Version history routes
	mux.HandleFunc("GET /api/notes/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/notes/{id}/versions/{versionID}/restore", versionHandler.RestoreVersion)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("PUT /api/folders/order", folderHandler.ReorderFolders) // Must come before {id} route
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// External bridge routes
	mux.HandleFunc("POST /api/ai/transform", aiHandler.Transform)
	mux.HandleFunc("POST /api/ocr/extract", ocrHandler.ExtractText)
	mux.HandleFunc("POST /api/speech/transcribe", speechHandler.Transcribe)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Metrics → Routes
	// Metrics sits inside Auth: it reads r.Pattern, which the mux sets
	// on the request Auth passes down
	root = middleware.Metrics()(root)
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
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
		WriteTimeout: 120 * time.Second, // OCR and transcription calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
