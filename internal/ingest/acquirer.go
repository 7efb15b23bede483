package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/storage"
)

// RawImage is a validated receipt image payload ready for preprocessing.
type RawImage struct {
	Data   []byte
	Format string // normalized extension, e.g. "jpg"
	Size   int64
	Key    string
}

// Acquirer fetches candidate receipt images and enforces format, size, and
// decodability gates before the pipeline spends anything on OCR.
type Acquirer struct {
	store    storage.ObjectStore
	maxBytes int64
	logger   *slog.Logger
}

func NewAcquirer(store storage.ObjectStore, maxBytes int64, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = constants.MaxImageBytes
	}
	return &Acquirer{store: store, maxBytes: maxBytes, logger: logger}
}

// Fetch validates and downloads one object. Failures are non-retryable at this
// layer; the caller decides whether the request gets flagged for manual review.
func (a *Acquirer) Fetch(ctx context.Context, key string) (RawImage, error) {
	ext := constants.NormalizeExt(filepath.Ext(key))
	if !constants.IsAllowedExt(ext) {
		a.logger.Warn("ingest.unsupported_format", "key", key, "ext", ext)
		return RawImage{}, fmt.Errorf("extension %q: %w", ext, common.ErrUnsupportedFormat)
	}

	// Size check against metadata before pulling the payload.
	size, err := a.store.Size(ctx, key)
	if err != nil {
		return RawImage{}, common.WrapError(err, "object metadata")
	}
	if size > a.maxBytes {
		a.logger.Warn("ingest.size_exceeded", "key", key, "size", size, "max", a.maxBytes)
		return RawImage{}, fmt.Errorf("%d bytes (max %d): %w", size, a.maxBytes, common.ErrSizeExceeded)
	}

	data, err := a.store.Get(ctx, key)
	if err != nil {
		return RawImage{}, common.WrapError(err, "object fetch")
	}
	if int64(len(data)) > a.maxBytes {
		return RawImage{}, fmt.Errorf("%d bytes (max %d): %w", len(data), a.maxBytes, common.ErrSizeExceeded)
	}

	// Verify the payload actually decodes as an image.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		a.logger.Warn("ingest.corrupt_image", "key", key, "error", err)
		return RawImage{}, fmt.Errorf("decode: %v: %w", err, common.ErrCorruptImage)
	}

	a.logger.Debug("ingest.fetched", "key", key, "bytes", len(data), "format", ext)
	return RawImage{Data: data, Format: ext, Size: int64(len(data)), Key: key}, nil
}
