package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/preprocess"
)

// Selector drives an engine over every variant and pass and keeps the
// best-scoring output.
type Selector struct {
	engine Engine
	logger *slog.Logger
}

func NewSelector(engine Engine, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{engine: engine, logger: logger}
}

// Best returns the winning candidate: highest mean per-token confidence among
// results with at least MinUsableTextLen characters, ties broken by iteration
// order (variant order, then pass order). When nothing qualifies, the default
// pass is rerun against the first variant and its text accepted, even empty.
// Every recognition call failing is ErrOCRFailed, terminal for the request.
func (s *Selector) Best(ctx context.Context, variants []preprocess.Variant) (Candidate, error) {
	if len(variants) == 0 {
		return Candidate{}, fmt.Errorf("no variants: %w", common.ErrOCRFailed)
	}

	var best *Candidate
	attempted, failed := 0, 0
	for _, v := range variants {
		for _, pass := range s.engine.Passes() {
			attempted++
			cand, err := s.engine.Recognize(ctx, v.Image, pass)
			if err != nil {
				failed++
				s.logger.Warn("ocr.pass_failed", "variant", string(v.Method), "pass", pass, "error", err)
				continue
			}
			cand.Variant = v.Method
			if len(cand.Text) < MinUsableTextLen {
				continue
			}
			if best == nil || cand.Confidence > best.Confidence {
				c := cand
				best = &c
			}
		}
	}

	if failed == attempted {
		return Candidate{}, fmt.Errorf("all %d recognition passes failed: %w", attempted, common.ErrOCRFailed)
	}

	if best != nil {
		s.logger.Info("ocr.selected",
			"variant", string(best.Variant),
			"pass", best.Config,
			"confidence", best.Confidence,
			"chars", len(best.Text),
		)
		return *best, nil
	}

	// Nothing met the minimum length; accept whatever the plain default pass
	// produces on the first variant.
	cand, err := s.engine.Recognize(ctx, variants[0].Image, s.engine.DefaultPass())
	if err != nil {
		return Candidate{}, fmt.Errorf("default pass: %v: %w", err, common.ErrOCRFailed)
	}
	cand.Variant = variants[0].Method
	s.logger.Warn("ocr.short_text_fallback", "chars", len(cand.Text))
	return cand, nil
}
