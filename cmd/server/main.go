package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billrecon/internal/config"
	"billrecon/internal/fetcher"
	"billrecon/internal/handler"
	"billrecon/internal/logger"
	"billrecon/internal/parser"
	_ "billrecon/internal/parser/claude"
	_ "billrecon/internal/parser/gemini"
	_ "billrecon/internal/parser/openai"
	"billrecon/internal/port"
	"billrecon/internal/reconcile"
	"billrecon/internal/repository/postgres"
	"billrecon/internal/router"
	"billrecon/internal/service"
	s3storage "billrecon/internal/storage/s3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

// @title Bill Extraction API
// @version 1.0
// @description Extracts line items from multi-page medical bills and reconciles them into a deduplicated total.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync(log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Extraction providers
	extractor, err := parser.BuildExtractor(&cfg.Parser, parser.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	precedence, err := reconcile.ParsePrecedence(cfg.Reconcile.PageTypePriority)
	if err != nil {
		return fmt.Errorf("invalid page type priority: %w", err)
	}
	engine := reconcile.NewEngine(precedence)
	docFetcher := fetcher.NewHTTPFetcher(&cfg.Fetcher, log)

	// Optional archive
	var archive port.ObjectStorage
	if cfg.S3.Enabled {
		archive, err = s3storage.NewS3Client(ctx, &cfg.S3, log)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Info("archiving extractions to s3", zap.String("bucket", cfg.S3.Bucket))
	}

	// Optional audit log
	var audits port.ExtractionAuditRepository
	var dbPinger handler.Pinger
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo := postgres.NewExtractionAuditRepo(db)
		audits = repo
		dbPinger = repo
		log.Info("extraction audit log enabled", zap.String("host", cfg.DB.Host))
	}

	extractionSvc := service.NewExtractionService(
		docFetcher, extractor, engine, archive, audits,
		service.ExtractionOptions{
			TotalTolerance: cfg.Reconcile.TotalTolerance,
			ArchivePrefix:  cfg.S3.Prefix,
		},
		log,
	)

	extractionH := handler.NewExtractionHandler(extractionSvc, log)
	healthH := handler.NewHealthHandler(version, dbPinger)

	r := router.Setup(log, cfg.CORS.AllowedOrigins, extractionH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("provider", cfg.Parser.Provider),
			zap.Strings("providers", parser.RegisteredProviders()),
			zap.String("page_type_priority", precedence.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
