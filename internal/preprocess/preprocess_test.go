package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodedImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestVariantsOriginalFirst(t *testing.T) {
	p := NewPreprocessor(nil)

	variants, err := p.Variants(encodedImage(t))
	if err != nil {
		t.Fatalf("Variants failed: %v", err)
	}
	if len(variants) != 5 {
		t.Fatalf("Expected 5 variants, got %d", len(variants))
	}
	if variants[0].Method != Original {
		t.Errorf("Expected original first, got %v", variants[0].Method)
	}
	want := []Method{Original, Contrast, Sharpened, Grayscale, Binarized}
	for i, v := range variants {
		if v.Method != want[i] {
			t.Errorf("Variant %d: expected %v, got %v", i, want[i], v.Method)
		}
		if v.Image == nil {
			t.Errorf("Variant %d: nil image", i)
		}
	}
}

func TestVariantsUndecodableSource(t *testing.T) {
	p := NewPreprocessor(nil)

	if _, err := p.Variants([]byte("junk")); err == nil {
		t.Error("Expected error for undecodable payload")
	}
}

func TestBinarizeProducesTwoLevels(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{0, 100, 150, 255}

	out := binarize(img)
	bounds := out.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		r, _, _, _ := out.At(x, 0).RGBA()
		v := uint8(r >> 8)
		if v != 0 && v != 255 {
			t.Errorf("Pixel %d: expected 0 or 255, got %d", x, v)
		}
	}
}
