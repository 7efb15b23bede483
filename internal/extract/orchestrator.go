package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/olajaido/smart-receipt-parser/constants"
)

// Config holds behavior flags for the extraction stage.
type Config struct {
	Attempts        int // bounded attempt budget against the backend
	LineItems       bool
	DefaultCurrency string
}

// Orchestrator drives the generative backend through a bounded attempt loop
// with tiered parsing and validation, then hands the request to the heuristic
// extractor when every attempt is exhausted. It never fails: some candidate
// always comes back.
type Orchestrator struct {
	cfg       Config
	backend   Backend
	parser    *Parser
	heuristic *Heuristic
	logger    *slog.Logger
}

func NewOrchestrator(cfg Config, backend Backend, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}
	return &Orchestrator{
		cfg:       cfg,
		backend:   backend,
		parser:    NewParser(cfg.DefaultCurrency, logger),
		heuristic: NewHeuristic(cfg.DefaultCurrency, cfg.LineItems, logger),
		logger:    logger,
	}
}

// Extract returns the authoritative candidate for the OCR text plus the
// provenance tag of the path that produced it.
func (o *Orchestrator) Extract(ctx context.Context, ocrText string) (Candidate, string) {
	prompt := BuildPrompt(ocrText, constants.AsStringSlice(), o.cfg.LineItems)

	for attempt := 1; attempt <= o.cfg.Attempts; attempt++ {
		start := time.Now()
		response, err := o.backend.Complete(ctx, prompt)
		if err != nil {
			// Transport/backend trouble is a failed attempt, never fatal.
			o.logger.Warn("extract.attempt.backend_error",
				"attempt", attempt,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			continue
		}

		parsed, tier, ok := o.parser.Parse(response)
		if !ok {
			o.logger.Warn("extract.attempt.unparseable", "attempt", attempt, "response_len", len(response))
			continue
		}
		if err := ValidateCandidate(parsed); err != nil {
			o.logger.Warn("extract.attempt.invalid_candidate", "attempt", attempt, "tier", tier, "error", err)
			continue
		}
		cand, err := ToCandidate(parsed)
		if err != nil {
			o.logger.Warn("extract.attempt.decode_failed", "attempt", attempt, "tier", tier, "error", err)
			continue
		}
		if cand.Currency == "" {
			cand.Currency = o.cfg.DefaultCurrency
		}
		o.logger.Info("extract.ok",
			"attempt", attempt,
			"tier", tier,
			"vendor", cand.Vendor,
			"amount", cand.Amount,
			"category", cand.Category,
			"confidence", cand.Confidence,
			"line_items", len(cand.LineItems),
		)
		return cand, constants.MethodOCRPlusLLM
	}

	o.logger.Warn("extract.fallback", "attempts", o.cfg.Attempts)
	return o.heuristic.Extract(ocrText), constants.MethodHeuristicFallback
}
