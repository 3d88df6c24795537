package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/temu/internal/config"
	"github.com/justsurfingit/temu/internal/database"
	"github.com/justsurfingit/temu/internal/handlers"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/services"
	"github.com/justsurfingit/temu/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using the process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// 3. Blob storage for photos and CVs
	var (
		blobs     storage.BlobStore
		uploadDir string
	)
	switch cfg.StorageDriver {
	case config.StorageDisk:
		blobs = storage.NewDiskStore(cfg.UploadDir, cfg.UploadURL)
		uploadDir = cfg.UploadDir
	default:
		if cfg.BlobToken == "" {
			slog.Warn("BLOB_READ_WRITE_TOKEN is not set, uploads will fail until it is configured.")
		}
		blobs = storage.NewHTTPBlobStore(cfg.BlobBaseURL, cfg.BlobToken, nil)
	}

	// 4. Initialize Core Services (Dependencies)
	recorder := metrics.New(prometheus.DefaultRegisterer)
	jobService := services.NewJobService(db)
	onboardingService := services.NewOnboardingService(services.NewGormProgressStore(db), jobService, recorder)

	llmService, err := services.NewLLMService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Job ad prefill disabled.", "err", err)
	}

	router := handlers.NewRouter(handlers.Deps{
		Users:          services.NewUserService(db),
		Onboarding:     onboardingService,
		Jobs:           jobService,
		Matcher:        services.NewMatcherService(db),
		Applications:   services.NewApplicationService(db, onboardingService, recorder),
		Uploads:        services.NewUploadService(blobs, cfg.MaxPhotoBytes, cfg.MaxCVBytes, recorder),
		Dashboard:      services.NewDashboardService(db, onboardingService),
		LLM:            llmService,
		AllowedOrigins: cfg.AllowedOrigins,
		SaveTimeout:    cfg.SaveTimeout,
		UploadDir:      uploadDir,
	})
	router.MaxMultipartMemory = max(cfg.MaxPhotoBytes, cfg.MaxCVBytes) + 1<<20

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SaveTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}
	log.Println("Server stopped")
}
