package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/export"
	"github.com/olajaido/smart-receipt-parser/internal/extract"
	"github.com/olajaido/smart-receipt-parser/internal/ingest"
	"github.com/olajaido/smart-receipt-parser/internal/ocr"
	"github.com/olajaido/smart-receipt-parser/internal/pipeline"
	"github.com/olajaido/smart-receipt-parser/internal/record"
	"github.com/olajaido/smart-receipt-parser/internal/repository"
	"github.com/olajaido/smart-receipt-parser/internal/storage"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir    = flag.String("dir", "", "directory of receipt images to process (required)")
		dbPath = flag.String("db", "", "SQLite database path (defaults to receipts.db next to --dir)")
		out    = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	parentDir := filepath.Dir(*dir)
	if *dbPath == "" {
		*dbPath = filepath.Join(parentDir, "receipts.db")
	}
	if *out == "" {
		*out = filepath.Join(parentDir, "receipts.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()

	ctx := context.Background()

	store, err := repository.OpenSQLite(ctx, *dbPath, logger)
	if err != nil {
		logger.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	objects, err := storage.NewLocalStore(*dir)
	if err != nil {
		logger.Error("failed to open image directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	engine := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Binary:           cfg.OCR.Tesseract,
		Lang:             cfg.OCR.TesseractLang,
		TessdataDir:      cfg.OCR.TessdataDir,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, logger)

	// Without an API key the attempt loop short-circuits straight to the
	// heuristic extractor, so a batch run works offline.
	var backend extract.Backend
	if cfg.LLM.APIKey != "" {
		backend = extract.NewOpenAIBackend(extract.OpenAIConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("extraction backend initialized", "model", cfg.LLM.Model)
	} else {
		backend = unavailableBackend{}
		logger.Warn("OPENAI_API_KEY not configured, falling back to heuristic extraction")
	}

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

	keys, err := collectImageKeys(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch run", "dir", *dir, "images", len(keys))

	processed := 0
	failures := 0
	for _, key := range keys {
		logger.Info("processing image", "key", key)
		rec, err := processor.Process(ctx, key)
		if err != nil {
			logger.Error("failed to process image", "key", key, "error", err)
			failures++
			continue
		}
		processed++
		logger.Info("stored receipt",
			"key", key, "receipt_id", rec.ReceiptID,
			"vendor", rec.Vendor, "amount", rec.Amount, "category", rec.Category)
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := export.NewService(store, logger).ExportReceiptsXLSX(ctx)
	if err != nil {
		logger.Error("failed to export receipts", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"images_found", len(keys),
		"processed", processed,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Images found: %d\n", len(keys))
	fmt.Printf("- Processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// collectImageKeys walks dir and returns relative paths of ingestible images.
func collectImageKeys(dir string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	return keys, err
}

type unavailableBackend struct{}

func (unavailableBackend) Complete(context.Context, string) (string, error) {
	return "", common.ErrBackendUnavailable
}
