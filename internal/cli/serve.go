package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asktube/asktube/internal/api/handlers"
	"github.com/asktube/asktube/internal/cache"
	"github.com/asktube/asktube/internal/config"
	"github.com/asktube/asktube/internal/database"
	"github.com/asktube/asktube/internal/jobs"
	"github.com/asktube/asktube/internal/openai"
	"github.com/asktube/asktube/internal/repository"
	"github.com/asktube/asktube/internal/server"
	"github.com/asktube/asktube/internal/service"
	"github.com/asktube/asktube/internal/storage"
	"github.com/asktube/asktube/internal/telemetry"
	"github.com/asktube/asktube/internal/youtube"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the asktube API server and the background ingestion worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	deps, err := buildServices(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer deps.close()

	ingestWorker := jobs.NewIngestWorker(deps.jobRepo, deps.ingestSvc)
	worker := jobs.NewWorker(ingestWorker, cfg.JobPollInterval)
	go worker.Start(ctx)
	log.Println("ingest worker started")

	router := server.NewRouter(server.RouterConfig{
		VideoHandler: handlers.NewVideoHandler(deps.transcripts, deps.jobRepo),
		ChatHandler:  handlers.NewChatHandler(deps.chatSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// services bundles the wired application layer so serve, process and ask can
// share one construction path.
type services struct {
	transcripts *youtube.Client
	jobRepo     *repository.IngestJobRepository
	ingestSvc   *service.IngestService
	chatSvc     *service.ChatService

	redisCache *cache.RedisCache
}

func (s *services) close() {
	if s.redisCache != nil {
		if err := s.redisCache.Close(); err != nil {
			log.Printf("failed to close redis connection: %v", err)
		}
	}
}

func buildServices(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*services, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	llm := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaisdk.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	ytOpts := []youtube.Option{youtube.WithSummaryFallback(llm)}
	if cfg.TranscriptAPIHost != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(
			"https://"+cfg.TranscriptAPIHost+"/api/transcript",
			cfg.TranscriptAPIHost,
		))
	}
	transcripts := youtube.NewClient(cfg.TranscriptAPIKey, ytOpts...)

	chunkRepo := repository.NewChunkRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)

	var archive service.TranscriptArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		log.Printf("transcript archive enabled (bucket '%s')", cfg.S3Bucket)
		archive = s3Client
	}

	deps := &services{
		transcripts: transcripts,
		jobRepo:     jobRepo,
	}

	var summaryCache service.SummaryCache
	if cfg.HasRedis() {
		redisCache, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Println("summary cache enabled")
		deps.redisCache = redisCache
		summaryCache = redisCache
	}

	deps.ingestSvc = service.NewIngestService(transcripts, llm, chunkRepo, archive)

	summarySvc := service.NewSummaryService(llm, chunkRepo, summaryCache)
	retrievalSvc := service.NewRetrievalService(llm, chunkRepo)
	classifier := service.NewIntentClassifier(llm)
	deps.chatSvc = service.NewChatService(classifier, summarySvc, retrievalSvc, llm)

	return deps, nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
