package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"log/slog"

	"github.com/disintegration/imaging"
)

// TesseractConfig configures the local tesseract engine.
type TesseractConfig struct {
	Binary           string // binary name or absolute path; if empty -> "tesseract"
	Lang             string // default "eng"
	TessdataDir      string
	ArtifactCacheDir string
}

// TesseractEngine shells out to a local tesseract binary and drives it through
// several page-segmentation modes per image variant. Confidence comes from a
// TSV pass (mean word confidence, 0..100).
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

// Page-segmentation passes: full page, single column, single line, single
// word, plus tesseract's uniform-block default.
var tesseractPasses = []string{"psm3", "psm4", "psm7", "psm8", "default"}

func NewTesseractEngine(cfg TesseractConfig, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *TesseractEngine) Passes() []string    { return tesseractPasses }
func (e *TesseractEngine) DefaultPass() string { return "default" }

func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, pass string) (Candidate, error) {
	path, cleanup, err := e.stageImage(img)
	if err != nil {
		return Candidate{}, err
	}
	defer cleanup()

	text, err := e.recognizeText(ctx, path, pass)
	if err != nil {
		return Candidate{}, fmt.Errorf("tesseract %s: %w", pass, err)
	}

	conf, err := e.meanWordConfidence(ctx, path, pass)
	if err != nil {
		// Text without confidence is still a usable candidate.
		e.logger.Warn("ocr.tsv_confidence_failed", "pass", pass, "error", err)
		conf = 0
	}

	return Candidate{Text: strings.TrimSpace(text), Confidence: conf, Config: pass}, nil
}

// stageImage writes the in-memory variant to a temp PNG for the binary.
func (e *TesseractEngine) stageImage(img image.Image) (string, func(), error) {
	if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("artifact dir: %w", err)
	}
	f, err := os.CreateTemp(e.cfg.ArtifactCacheDir, "srp-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("temp image: %w", err)
	}
	path := f.Name()
	if cerr := f.Close(); cerr != nil {
		return "", nil, cerr
	}
	if err := imaging.Save(imaging.Clone(img), path); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("stage image: %w", err)
	}
	return path, func() { _ = os.Remove(path) }, nil
}

func (e *TesseractEngine) args(path, pass string, extra ...string) []string {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if psm, ok := strings.CutPrefix(pass, "psm"); ok {
		args = append(args, "--psm", psm)
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return append(args, extra...)
}

func (e *TesseractEngine) recognizeText(ctx context.Context, path, pass string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, e.args(path, pass)...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// meanWordConfidence runs tesseract in TSV mode and averages the per-word conf
// column, returning 0..100.
func (e *TesseractEngine) meanWordConfidence(ctx context.Context, path, pass string) (float64, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, e.args(path, pass, "tsv")...)
	if err != nil {
		return 0, fmt.Errorf("tsv: %w: %s", err, truncate(string(errb), 512))
	}
	lines := strings.Split(string(out), "\n")
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}
