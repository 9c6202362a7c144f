package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bruno-ai/bruno-be/internal/analysis"
	"github.com/bruno-ai/bruno-be/internal/api/handler"
	"github.com/bruno-ai/bruno-be/internal/api/router"
	"github.com/bruno-ai/bruno-be/internal/config"
	"github.com/bruno-ai/bruno-be/internal/media"
	"github.com/bruno-ai/bruno-be/internal/pipeline"
	"github.com/bruno-ai/bruno-be/internal/prompt"
	"github.com/bruno-ai/bruno-be/internal/ratelimit"
	"github.com/bruno-ai/bruno-be/internal/suno"
	"github.com/bruno-ai/bruno-be/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Working directories for uploads and combined outputs
	for _, dir := range []string{cfg.Pipeline.UploadDir, cfg.Pipeline.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	sunoKey := os.Getenv("SUNO_API_KEY")
	if sunoKey == "" {
		return fmt.Errorf("SUNO_API_KEY is not set")
	}

	// Initialize video analysis client (Cloud Storage + Video Intelligence)
	ctx := context.Background()
	analyzer, err := analysis.NewClient(ctx, analysis.Config{
		Bucket:           cfg.Analysis.Bucket,
		OperationTimeout: cfg.Analysis.OperationTimeout,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize video analysis: %w", err)
	}
	defer analyzer.Close()

	appLogger.Info("Video analysis client ready",
		slog.String("bucket", cfg.Analysis.Bucket),
	)

	// Initialize pipeline collaborators
	prompter := prompt.NewWriter(prompt.Config{
		APIKey:      openaiKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}, appLogger.Logger)

	generator := suno.NewClient(suno.Config{
		BaseURL:        cfg.Suno.BaseURL,
		APIKey:         sunoKey,
		RequestTimeout: cfg.Suno.RequestTimeout,
	}, appLogger.Logger)

	combiner := media.NewMuxer(appLogger.Logger)

	runner := pipeline.NewRunner(appLogger.Logger, analyzer, prompter, generator, combiner, pipeline.Config{
		OutputDir:         cfg.Pipeline.OutputDir,
		PollInterval:      cfg.Pipeline.PollInterval,
		GenerationTimeout: cfg.Pipeline.GenerationTimeout,
	})

	// Initialize router
	r := initRouter(cfg, appLogger.Logger, runner, analyzer, prompter)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, runner *pipeline.Runner, analyzer *analysis.Client, prompter *prompt.Writer) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize handler dependencies
	handlerDeps := &handler.Dependencies{
		Logger:   logger,
		Runner:   runner,
		Probe:    media.NewProbe(),
		Analyzer: analyzer,
		Prompter: prompter,
		Limiter:  ratelimit.NewLimiter(cfg.RateLimit.Window),
		Limits: handler.Limits{
			MaxVideoDuration: cfg.Pipeline.MaxVideoDuration,
			MaxRequests:      cfg.RateLimit.MaxRequests,
			DebugRequests:    cfg.RateLimit.DebugRequests,
		},
		UploadDir: cfg.Pipeline.UploadDir,
		OutputDir: cfg.Pipeline.OutputDir,
	}

	// Setup router
	return router.SetupRouter(handlerDeps)
}
