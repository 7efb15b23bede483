package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/async"
	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/extract"
	"github.com/olajaido/smart-receipt-parser/internal/ingest"
	"github.com/olajaido/smart-receipt-parser/internal/ocr"
	"github.com/olajaido/smart-receipt-parser/internal/pipeline"
	"github.com/olajaido/smart-receipt-parser/internal/record"
	"github.com/olajaido/smart-receipt-parser/internal/repository"
	"github.com/olajaido/smart-receipt-parser/internal/server"
	"github.com/olajaido/smart-receipt-parser/internal/storage"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.OpenPostgres(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	objects, err := storage.NewAzureStore(cfg.Storage.AccountName, cfg.Storage.AccountKey, cfg.Storage.Container, logger)
	if err != nil {
		logger.Error("failed to init blob storage", "error", err)
		os.Exit(1)
	}

	var engine ocr.Engine
	switch cfg.OCR.Engine {
	case "vision":
		engine = ocr.NewVisionEngine(cfg.OCR.VisionEndpoint, cfg.OCR.VisionKey, logger)
	default:
		engine = ocr.NewTesseractEngine(ocr.TesseractConfig{
			Binary:           cfg.OCR.Tesseract,
			Lang:             cfg.OCR.TesseractLang,
			TessdataDir:      cfg.OCR.TessdataDir,
			ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
		}, logger)
	}

	backend := extract.NewOpenAIBackend(extract.OpenAIConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	orchestrator := extract.NewOrchestrator(extract.Config{
		Attempts:        cfg.Pipeline.ExtractAttempts,
		LineItems:       cfg.Pipeline.LineItems,
		DefaultCurrency: cfg.Pipeline.DefaultCurrency,
	}, backend, logger)

	processor := pipeline.NewProcessor(
		logger,
		ingest.NewAcquirer(objects, constants.MaxImageBytes, logger),
		ocr.NewSelector(engine, logger),
		orchestrator,
		record.NewBuilder(logger),
		store,
	)

	queue := async.NewWorkerQueue(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.JobTimeout),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewHandler(store, queue, logger),
	}

	logger.Info("receiptsd listening", "addr", cfg.Server.Addr, "ocr_engine", cfg.OCR.Engine)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
