package ocr

import (
	"context"
	"image"

	"github.com/olajaido/smart-receipt-parser/internal/preprocess"
)

// MinUsableTextLen is the shortest recognized text considered for the
// best-candidate comparison.
const MinUsableTextLen = 10

// Candidate is one recognition result: text plus the engine-reported mean
// per-token confidence on a 0..100 scale. Engines that expose no confidence
// report 0.
type Candidate struct {
	Text       string
	Confidence float64
	Variant    preprocess.Method
	Config     string
}

// Engine abstracts the text-recognition backend. Passes lists the
// page-segmentation configurations the engine should be driven through; a
// managed service that takes a single shot per image returns one entry.
type Engine interface {
	Passes() []string
	DefaultPass() string
	Recognize(ctx context.Context, img image.Image, pass string) (Candidate, error)
}
