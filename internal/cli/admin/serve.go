package admin

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

	"github.com/cloo-solutions/corpusai/internal/api/handlers"
	"github.com/cloo-solutions/corpusai/internal/cache"
	"github.com/cloo-solutions/corpusai/internal/config"
	"github.com/cloo-solutions/corpusai/internal/database"
	"github.com/cloo-solutions/corpusai/internal/jobs"
	"github.com/cloo-solutions/corpusai/internal/openai"
	"github.com/cloo-solutions/corpusai/internal/parser"
	"github.com/cloo-solutions/corpusai/internal/repository"
	"github.com/cloo-solutions/corpusai/internal/server"
	"github.com/cloo-solutions/corpusai/internal/service"
	"github.com/cloo-solutions/corpusai/internal/storage"
	"github.com/cloo-solutions/corpusai/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the corpus API server on the specified port",
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

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
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

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool, cfg.EmbeddingDimension)
	recordRepo := repository.NewImportRecordRepository(pool)
	statsRepo := repository.NewStatsRepository(pool, cfg.EmbeddingDimension)

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err = storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	var embeddingClient service.EmbeddingClient
	var chatClient service.ChatClient
	if cfg.HasOpenAI() {
		aiClient := openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingDimensions: cfg.EmbeddingDimension,
		})
		embeddingClient = aiClient
		chatClient = aiClient
		log.Println("OpenAI client configured")
	}

	var resultCache service.ResultCache
	if cfg.HasRedis() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable, search caching disabled: %v", err)
		} else {
			resultCache = cache.NewSearchCache(redisClient, cache.DefaultTTL)
			log.Println("search cache enabled")
		}
	}

	embedder := service.NewEmbedder(embeddingClient, cfg.EmbeddingDimension)
	parsers := parser.NewRegistry()

	var uploads service.UploadStorage
	if s3Client != nil {
		uploads = s3Client
	}

	knowledgeSvc := service.NewKnowledgeService(chunkRepo, embedder, cfg.ChunkSize)
	importSvc := service.NewImportService(recordRepo, chunkRepo, parsers, embedder, uploads, cfg.ChunkSize)
	searchSvc := service.NewSearchService(chunkRepo, embedder, resultCache)
	chatSvc := service.NewChatService(searchSvc, service.NewAnswerGenerator(chatClient))
	statsSvc := service.NewStatsService(statsRepo)

	streamPool := jobs.NewStreamPool(cfg.StreamWorkers, cfg.StreamQueueSize)

	var archive handlers.ArchiveStorage
	if s3Client != nil {
		archive = s3Client
	}

	routerCfg := server.RouterConfig{
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		ImportHandler:    handlers.NewImportHandler(importSvc, archive),
		ChatHandler:      handlers.NewChatHandler(chatSvc, streamPool),
		StatsHandler:     handlers.NewStatsHandler(statsSvc),
	}

	router := server.NewRouter(routerCfg)

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

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := streamPool.Shutdown(shutdownCtx); err != nil {
		log.Printf("stream pool did not drain cleanly: %v", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	// Get migration version and status
	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", versionErr)
	}

	status, err := migrationStatus(upErr, versionErr, version, dirty)
	if err != nil {
		return err
	}
	log.Println(status)

	return nil
}

// migrationStatus summarizes the outcome of an Up run. upErr is nil or
// migrate.ErrNoChange; versionErr is nil or migrate.ErrNilVersion.
func migrationStatus(upErr, versionErr error, version uint, dirty bool) (string, error) {
	if versionErr == migrate.ErrNilVersion {
		return "migrations: database is up to date (no migrations applied)", nil
	}
	if dirty {
		return "", fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("migrations: database is up to date (version %d)", version), nil
	}
	return fmt.Sprintf("migrations: applied successfully (version %d)", version), nil
}
