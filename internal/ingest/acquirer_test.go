package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/olajaido/smart-receipt-parser/internal/common"
)

// fakeStore serves canned objects and records whether Get was reached.
type fakeStore struct {
	objects map[string][]byte
	sizes   map[string]int64
	gets    int
}

func (s *fakeStore) Size(_ context.Context, key string) (int64, error) {
	if sz, ok := s.sizes[key]; ok {
		return sz, nil
	}
	if data, ok := s.objects[key]; ok {
		return int64(len(data)), nil
	}
	return 0, errors.New("not found")
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.gets++
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFetchSuccess(t *testing.T) {
	data := pngBytes(t)
	store := &fakeStore{objects: map[string][]byte{"receipts/a.png": data}}
	a := NewAcquirer(store, 1<<20, nil)

	raw, err := a.Fetch(context.Background(), "receipts/a.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if raw.Format != "png" {
		t.Errorf("Expected format png, got %q", raw.Format)
	}
	if raw.Size != int64(len(data)) {
		t.Errorf("Expected size %d, got %d", len(data), raw.Size)
	}
}

func TestFetchUnsupportedFormat(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"receipts/a.pdf": {1, 2, 3}}}
	a := NewAcquirer(store, 1<<20, nil)

	_, err := a.Fetch(context.Background(), "receipts/a.pdf")
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if store.gets != 0 {
		t.Error("Expected no payload fetch for rejected extension")
	}
}

func TestFetchSizeExceededBeforeDownload(t *testing.T) {
	store := &fakeStore{
		objects: map[string][]byte{"receipts/big.jpg": {1}},
		sizes:   map[string]int64{"receipts/big.jpg": 50 << 20},
	}
	a := NewAcquirer(store, 10<<20, nil)

	_, err := a.Fetch(context.Background(), "receipts/big.jpg")
	if !errors.Is(err, common.ErrSizeExceeded) {
		t.Errorf("Expected ErrSizeExceeded, got %v", err)
	}
	if store.gets != 0 {
		t.Error("Expected size rejection before the payload download")
	}
}

func TestFetchCorruptImage(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"receipts/bad.jpg": []byte("not an image")}}
	a := NewAcquirer(store, 1<<20, nil)

	_, err := a.Fetch(context.Background(), "receipts/bad.jpg")
	if !errors.Is(err, common.ErrCorruptImage) {
		t.Errorf("Expected ErrCorruptImage, got %v", err)
	}
}
