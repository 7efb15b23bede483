package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/preprocess"
)

// stubEngine maps "variant/pass" to a scripted result.
type stubEngine struct {
	passes  []string
	results map[string]Candidate
	errs    map[string]error
	calls   []string
}

func (e *stubEngine) Passes() []string    { return e.passes }
func (e *stubEngine) DefaultPass() string { return e.passes[len(e.passes)-1] }

func (e *stubEngine) Recognize(_ context.Context, img image.Image, pass string) (Candidate, error) {
	key := variantName(img) + "/" + pass
	e.calls = append(e.calls, key)
	if err, ok := e.errs[key]; ok {
		return Candidate{}, err
	}
	c := e.results[key]
	c.Config = pass
	return c, nil
}

// variant images are distinguished by width so the stub can tell them apart.
func variantName(img image.Image) string {
	switch img.Bounds().Dx() {
	case 1:
		return "v1"
	case 2:
		return "v2"
	default:
		return "v?"
	}
}

func testVariants() []preprocess.Variant {
	return []preprocess.Variant{
		{Image: image.NewGray(image.Rect(0, 0, 1, 1)), Method: preprocess.Original},
		{Image: image.NewGray(image.Rect(0, 0, 2, 1)), Method: preprocess.Contrast},
	}
}

func TestBestPicksHighestConfidence(t *testing.T) {
	e := &stubEngine{
		passes: []string{"psm3", "default"},
		results: map[string]Candidate{
			"v1/psm3":    {Text: strings.Repeat("a", 20), Confidence: 40},
			"v1/default": {Text: strings.Repeat("b", 20), Confidence: 90},
			"v2/psm3":    {Text: strings.Repeat("c", 20), Confidence: 70},
			"v2/default": {Text: strings.Repeat("d", 20), Confidence: 10},
		},
	}
	s := NewSelector(e, nil)

	best, err := s.Best(context.Background(), testVariants())
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best.Confidence != 90 {
		t.Errorf("Expected confidence 90, got %v", best.Confidence)
	}
	if best.Variant != preprocess.Original {
		t.Errorf("Expected original variant, got %v", best.Variant)
	}
	if best.Config != "default" {
		t.Errorf("Expected default pass, got %q", best.Config)
	}
}

func TestBestTieKeepsFirst(t *testing.T) {
	e := &stubEngine{
		passes: []string{"psm3", "default"},
		results: map[string]Candidate{
			"v1/psm3":    {Text: strings.Repeat("a", 20), Confidence: 80},
			"v1/default": {Text: strings.Repeat("b", 20), Confidence: 80},
			"v2/psm3":    {Text: strings.Repeat("c", 20), Confidence: 80},
			"v2/default": {Text: strings.Repeat("d", 20), Confidence: 80},
		},
	}
	s := NewSelector(e, nil)

	best, err := s.Best(context.Background(), testVariants())
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best.Variant != preprocess.Original || best.Config != "psm3" {
		t.Errorf("Expected first candidate to win the tie, got %v/%q", best.Variant, best.Config)
	}
}

func TestBestSkipsShortText(t *testing.T) {
	e := &stubEngine{
		passes: []string{"psm3", "default"},
		results: map[string]Candidate{
			"v1/psm3":    {Text: "short", Confidence: 99},
			"v1/default": {Text: strings.Repeat("b", 20), Confidence: 30},
			"v2/psm3":    {Text: "x", Confidence: 95},
			"v2/default": {Text: "", Confidence: 0},
		},
	}
	s := NewSelector(e, nil)

	best, err := s.Best(context.Background(), testVariants())
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best.Confidence != 30 {
		t.Errorf("Expected the only usable candidate (confidence 30), got %v", best.Confidence)
	}
}

func TestBestDefaultPassFallback(t *testing.T) {
	// Every result is below the usable length; the default pass is rerun on
	// the first variant and its text accepted, even empty.
	e := &stubEngine{
		passes: []string{"psm3", "default"},
		results: map[string]Candidate{
			"v1/psm3":    {Text: "abc", Confidence: 50},
			"v1/default": {Text: "de", Confidence: 60},
			"v2/psm3":    {Text: "f", Confidence: 70},
			"v2/default": {Text: "", Confidence: 0},
		},
	}
	s := NewSelector(e, nil)

	best, err := s.Best(context.Background(), testVariants())
	if err != nil {
		t.Fatalf("Best failed: %v", err)
	}
	if best.Text != "de" {
		t.Errorf("Expected default-pass text on first variant, got %q", best.Text)
	}
	if best.Variant != preprocess.Original {
		t.Errorf("Expected first variant, got %v", best.Variant)
	}
}

func TestBestAllFailed(t *testing.T) {
	boom := errors.New("tesseract crashed")
	e := &stubEngine{
		passes: []string{"psm3", "default"},
		errs: map[string]error{
			"v1/psm3": boom, "v1/default": boom,
			"v2/psm3": boom, "v2/default": boom,
		},
	}
	s := NewSelector(e, nil)

	_, err := s.Best(context.Background(), testVariants())
	if !errors.Is(err, common.ErrOCRFailed) {
		t.Errorf("Expected ErrOCRFailed, got %v", err)
	}
}

func TestBestNoVariants(t *testing.T) {
	s := NewSelector(&stubEngine{passes: []string{"default"}}, nil)
	if _, err := s.Best(context.Background(), nil); !errors.Is(err, common.ErrOCRFailed) {
		t.Errorf("Expected ErrOCRFailed, got %v", err)
	}
}
