package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Method tags how a variant was derived from the source image.
type Method string

const (
	Original  Method = "original"
	Contrast  Method = "contrast"
	Sharpened Method = "sharpened"
	Grayscale Method = "grayscale"
	Binarized Method = "binarized"
)

// Variant is a derived image handed to the OCR engine.
type Variant struct {
	Image  image.Image
	Method Method
}

// Preprocessor derives visually-distinct variants of a receipt image to give
// the OCR engine more than one shot at difficult captures.
type Preprocessor struct {
	logger *slog.Logger
}

func NewPreprocessor(logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{logger: logger}
}

// Variants decodes the raw payload and returns the derived sequence, original
// first. A failed derivation is skipped rather than failing the request; only
// an undecodable source is an error.
func (p *Preprocessor) Variants(data []byte) ([]Variant, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	out := []Variant{{Image: src, Method: Original}}

	derivations := []struct {
		method Method
		derive func(image.Image) image.Image
	}{
		{Contrast, func(img image.Image) image.Image { return imaging.AdjustContrast(img, 50) }},
		{Sharpened, func(img image.Image) image.Image { return imaging.Sharpen(img, 1.5) }},
		{Grayscale, func(img image.Image) image.Image { return imaging.Grayscale(img) }},
		{Binarized, binarize},
	}

	for _, d := range derivations {
		v := p.safeDerive(d.method, d.derive, src)
		if v == nil {
			continue
		}
		out = append(out, Variant{Image: v, Method: d.method})
	}

	p.logger.Debug("preprocess.variants", "count", len(out))
	return out, nil
}

// safeDerive isolates a single derivation so a misbehaving transform cannot
// take the whole request down.
func (p *Preprocessor) safeDerive(method Method, derive func(image.Image) image.Image, src image.Image) (img image.Image) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("preprocess.derivation_failed", "method", string(method), "panic", r)
			img = nil
		}
	}()
	return derive(src)
}

// binarize thresholds a grayscale rendition at the channel midpoint.
func binarize(src image.Image) image.Image {
	gray := imaging.Grayscale(src)
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := gray.PixOffset(x, y)
			v := uint8(0)
			if gray.Pix[i] >= 128 {
				v = 255
			}
			gray.Pix[i], gray.Pix[i+1], gray.Pix[i+2] = v, v, v
		}
	}
	return gray
}
