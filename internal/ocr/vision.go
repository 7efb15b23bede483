package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// VisionEngine recognizes text through the managed computer-vision service.
// One call per image; the service reports no per-token confidence, so
// candidates carry 0 and selection degrades to first usable text.
type VisionEngine struct {
	client *computervision.BaseClient
	logger *slog.Logger
}

func NewVisionEngine(endpoint, apiKey string, logger *slog.Logger) *VisionEngine {
	if logger == nil {
		logger = slog.Default()
	}
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &VisionEngine{client: &client, logger: logger}
}

func (e *VisionEngine) Passes() []string    { return []string{"managed"} }
func (e *VisionEngine) DefaultPass() string { return "managed" }

func (e *VisionEngine) Recognize(ctx context.Context, img image.Image, pass string) (Candidate, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		return Candidate{}, fmt.Errorf("encode image: %w", err)
	}

	result, err := e.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(buf.Bytes())),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return Candidate{}, fmt.Errorf("vision recognize: %w", err)
	}

	text := linesFromOCRResult(result)
	e.logger.Debug("ocr.vision_ok", "chars", len(text))
	return Candidate{Text: text, Confidence: 0, Config: pass}, nil
}

func linesFromOCRResult(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var lines []string
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			var b strings.Builder
			for _, word := range *line.Words {
				if word.Text == nil {
					continue
				}
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(*word.Text)
			}
			if b.Len() > 0 {
				lines = append(lines, b.String())
			}
		}
	}
	return strings.Join(lines, "\n")
}
