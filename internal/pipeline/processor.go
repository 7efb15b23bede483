package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olajaido/smart-receipt-parser/internal/extract"
	"github.com/olajaido/smart-receipt-parser/internal/ingest"
	"github.com/olajaido/smart-receipt-parser/internal/ocr"
	"github.com/olajaido/smart-receipt-parser/internal/preprocess"
	"github.com/olajaido/smart-receipt-parser/internal/record"
	"github.com/olajaido/smart-receipt-parser/internal/repository"
)

// Processor coordinates acquisition, OCR, field extraction, and persistence
// for a single stored receipt image.
type Processor struct {
	logger       *slog.Logger
	acquirer     *ingest.Acquirer
	preproc      *preprocess.Preprocessor
	selector     *ocr.Selector
	orchestrator *extract.Orchestrator
	builder      *record.Builder
	store        repository.ReceiptStore
}

func NewProcessor(
	logger *slog.Logger,
	acquirer *ingest.Acquirer,
	selector *ocr.Selector,
	orchestrator *extract.Orchestrator,
	builder *record.Builder,
	store repository.ReceiptStore,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:       logger,
		acquirer:     acquirer,
		preproc:      preprocess.NewPreprocessor(logger),
		selector:     selector,
		orchestrator: orchestrator,
		builder:      builder,
		store:        store,
	}
}

// Process runs the full pipeline for one object key and returns the stored record.
func (p *Processor) Process(ctx context.Context, key string) (record.ReceiptRecord, error) {
	// 1) Acquisition stage: fetch, size check, decode verification.
	raw, err := p.acquirer.Fetch(ctx, key)
	if err != nil {
		p.logger.Error("pipeline.acquire.failed", "key", key, "err", err)
		return record.ReceiptRecord{}, err
	}
	p.logger.Debug("pipeline acquire success", "key", key, "format", raw.Format, "bytes", raw.Size)

	// 2) Preprocess into candidate variants. A failed derivation is skipped,
	// so there is always at least the original.
	variants, err := p.preproc.Variants(raw.Data)
	if err != nil {
		p.logger.Error("pipeline.preprocess.failed", "key", key, "err", err)
		return record.ReceiptRecord{}, err
	}

	// 3) OCR stage: run every pass over every variant and keep the best text.
	cand, err := p.selector.Best(ctx, variants)
	if err != nil {
		p.logger.Error("pipeline.ocr.failed", "key", key, "err", err)
		return record.ReceiptRecord{}, err
	}
	p.logger.Debug("pipeline ocr success",
		"key", key,
		"variant", cand.Variant,
		"config", cand.Config,
		"confidence", cand.Confidence,
		"text_bytes", len(cand.Text),
	)
	if !ocr.LooksLikeReceipt(cand.Text) {
		// Advisory only. Extraction still runs and the heuristic fallback
		// covers the worst case.
		p.logger.Warn("ocr text does not resemble a receipt", "key", key, "text_bytes", len(cand.Text))
	}

	// 4) Field extraction with tiered parsing and heuristic fallback.
	fields, method := p.orchestrator.Extract(ctx, cand.Text)

	// 5) Normalize into the stored shape and persist.
	rec := p.builder.Build(fields, key, cand.Text, method)
	if err := p.store.Put(ctx, rec); err != nil {
		p.logger.Error("pipeline.store.failed", "key", key, "receipt_id", rec.ReceiptID, "err", err)
		return record.ReceiptRecord{}, fmt.Errorf("store receipt: %w", err)
	}

	p.logger.Info("processed receipt",
		"key", key, "receipt_id", rec.ReceiptID,
		"vendor", rec.Vendor, "amount", rec.Amount,
		"category", rec.Category, "method", rec.ProcessingMethod,
		"needs_review", rec.NeedsReview,
	)
	return rec, nil
}

// ProcessKey adapts Process to the worker queue contract.
func (p *Processor) ProcessKey(ctx context.Context, key string) error {
	_, err := p.Process(ctx, key)
	return err
}
