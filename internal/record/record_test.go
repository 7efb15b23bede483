package record

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/extract"
)

func testCandidate() extract.Candidate {
	return extract.Candidate{
		Amount:     15.43,
		Vendor:     "TESCO STORES LTD",
		Category:   "Food",
		Confidence: 0.5,
		Currency:   "GBP",
		LineItems:  []extract.LineItem{},
	}
}

func TestBuildBasicFields(t *testing.T) {
	b := NewBuilder(nil)

	rec := b.Build(testCandidate(), "receipts/a.jpg", "TESCO STORES LTD\nTOTAL  £15.43\n", constants.MethodHeuristicFallback)
	if rec.Amount != "15.43" {
		t.Errorf("Expected amount 15.43, got %q", rec.Amount)
	}
	if rec.Confidence != "0.50" {
		t.Errorf("Expected confidence 0.50, got %q", rec.Confidence)
	}
	if !rec.NeedsReview {
		t.Error("Expected needsReview true at confidence 0.5")
	}
	if rec.ProcessingMethod != constants.MethodHeuristicFallback {
		t.Errorf("Unexpected method %q", rec.ProcessingMethod)
	}
	if rec.SourceKey != "receipts/a.jpg" {
		t.Errorf("Unexpected source key %q", rec.SourceKey)
	}
	if rec.ReceiptID == "" || rec.UploadTimestamp == "" {
		t.Error("Expected identifier and timestamp to be set")
	}
	if _, err := time.Parse(time.RFC3339, rec.UploadTimestamp); err != nil {
		t.Errorf("Timestamp not RFC 3339: %v", err)
	}
	if rec.HasDetailedItems {
		t.Error("Expected hasDetailedItems false without items")
	}
}

func TestBuildNeedsReviewThreshold(t *testing.T) {
	b := NewBuilder(nil)

	cand := testCandidate()
	cand.Confidence = 0.6
	if rec := b.Build(cand, "k", "", "ocr+llm"); rec.NeedsReview {
		t.Error("Expected no review at confidence 0.6")
	}
	cand.Confidence = 0.59
	if rec := b.Build(cand, "k", "", "ocr+llm"); !rec.NeedsReview {
		t.Error("Expected review below confidence 0.6")
	}
}

func TestBuildIdempotentExceptIdentity(t *testing.T) {
	b := NewBuilder(nil)

	cand := testCandidate()
	r1 := b.Build(cand, "receipts/a.jpg", "text", "ocr+llm")
	r2 := b.Build(cand, "receipts/a.jpg", "text", "ocr+llm")

	if r1.ReceiptID == r2.ReceiptID {
		t.Error("Expected fresh receipt IDs")
	}
	r2.ReceiptID = r1.ReceiptID
	r2.UploadTimestamp = r1.UploadTimestamp
	if r1.Amount != r2.Amount || r1.Vendor != r2.Vendor || r1.Category != r2.Category ||
		r1.Confidence != r2.Confidence || r1.Currency != r2.Currency ||
		r1.OriginalText != r2.OriginalText || r1.SourceKey != r2.SourceKey ||
		r1.NeedsReview != r2.NeedsReview || r1.ProcessingMethod != r2.ProcessingMethod {
		t.Errorf("Records differ beyond identity: %+v vs %+v", r1, r2)
	}
}

func TestBuildClampsAndDefaults(t *testing.T) {
	b := NewBuilder(nil)

	cand := testCandidate()
	cand.Amount = -5
	cand.Confidence = 1.7
	cand.Vendor = "   "
	cand.Category = "Snacks"
	cand.Currency = ""
	rec := b.Build(cand, "k", "", "ocr+llm")

	if rec.Amount != "0.00" {
		t.Errorf("Expected clamped amount 0.00, got %q", rec.Amount)
	}
	if rec.Confidence != "1.00" {
		t.Errorf("Expected clamped confidence 1.00, got %q", rec.Confidence)
	}
	if rec.Vendor != "Unknown" {
		t.Errorf("Expected vendor Unknown, got %q", rec.Vendor)
	}
	if rec.Category != string(constants.Other) {
		t.Errorf("Expected category Other, got %q", rec.Category)
	}
	if rec.Currency != constants.DefaultCurrency {
		t.Errorf("Expected default currency, got %q", rec.Currency)
	}
}

func TestBuildTruncatesText(t *testing.T) {
	b := NewBuilder(nil)

	long := strings.Repeat("a", TextCap+500)
	rec := b.Build(testCandidate(), "k", long, "ocr+llm")
	if len(rec.OriginalText) != TextCap {
		t.Errorf("Expected text capped at %d, got %d", TextCap, len(rec.OriginalText))
	}
}

func TestBuildTruncatesTextOnRuneBoundary(t *testing.T) {
	b := NewBuilder(nil)

	// A multi-byte rune straddling the cap must not be split.
	long := strings.Repeat("a", TextCap-1) + "日本語"
	rec := b.Build(testCandidate(), "k", long, "ocr+llm")
	if !utf8.ValidString(rec.OriginalText) {
		t.Fatalf("Stored text is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(rec.OriginalText); got != TextCap {
		t.Errorf("Expected text capped at %d characters, got %d", TextCap, got)
	}
	if !strings.HasSuffix(rec.OriginalText, "日") {
		t.Errorf("Expected truncation to keep the boundary rune intact")
	}
}

func TestBuildLineItems(t *testing.T) {
	b := NewBuilder(nil)

	rate := 0.2
	cand := testCandidate()
	cand.LineItems = []extract.LineItem{
		{Description: "Milk", Quantity: 1, UnitPrice: 1.2, Subtotal: 1.2, TaxRate: &rate},
	}
	sub := 1.2
	cand.Subtotal = &sub

	rec := b.Build(cand, "k", "", "ocr+llm")
	if len(rec.LineItems) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(rec.LineItems))
	}
	it := rec.LineItems[0]
	if it.Quantity != "1.00" || it.UnitPrice != "1.20" || it.Subtotal != "1.20" || it.TaxRate != "0.20" {
		t.Errorf("Unexpected stored item: %+v", it)
	}
	if !rec.HasDetailedItems {
		t.Error("Expected hasDetailedItems true")
	}
	if rec.Subtotal != "1.20" {
		t.Errorf("Expected record subtotal 1.20, got %q", rec.Subtotal)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024/03/15", "2024-03-15"},
		{"03/15/2024", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"null", ""},
		{"", ""},
		{"yesterday", ""},
	}
	for _, tc := range tests {
		if got := normalizeDate(tc.in); got != tc.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
