package record

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/extract"
)

// TextCap bounds how much raw OCR text a stored record carries.
const TextCap = 5000

// StoredLineItem carries money fields as fixed two-decimal strings so values
// round-trip the store without binary floating-point drift.
type StoredLineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
	TaxRate     string `json:"taxRate,omitempty"`
	TaxAmount   string `json:"taxAmount,omitempty"`
}

// ReceiptRecord is the persisted unit, written at most once per request and
// never updated by the pipeline.
type ReceiptRecord struct {
	ReceiptID        string           `json:"receiptId"`
	UploadTimestamp  string           `json:"uploadTimestamp"` // UTC RFC-3339
	OriginalText     string           `json:"originalText"`
	SourceKey        string           `json:"sourceKey"`
	Amount           string           `json:"amount"`
	Vendor           string           `json:"vendor"`
	Category         string           `json:"category"`
	Confidence       string           `json:"confidence"`
	Currency         string           `json:"currency"`
	ReceiptDate      string           `json:"receiptDate,omitempty"` // YYYY-MM-DD
	LineItems        []StoredLineItem `json:"lineItems"`
	Subtotal         string           `json:"subtotal,omitempty"`
	TotalTax         string           `json:"totalTax,omitempty"`
	HasDetailedItems bool             `json:"hasDetailedItems"`
	NeedsReview      bool             `json:"needsReview"`
	ProcessingMethod string           `json:"processingMethod"`
}

// Builder assembles the final record from the authoritative candidate plus
// request metadata.
type Builder struct {
	textCap int
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		textCap: TextCap,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Build clamps and types the candidate fields and derives the summary flags.
// Apart from the fresh identifier and timestamp it is a pure function of its
// inputs.
func (b *Builder) Build(cand extract.Candidate, sourceKey, ocrText, method string) ReceiptRecord {
	items := make([]StoredLineItem, 0, len(cand.LineItems))
	for _, it := range cand.LineItems {
		stored := StoredLineItem{
			Description: it.Description,
			Quantity:    money(it.Quantity),
			UnitPrice:   money(it.UnitPrice),
			Subtotal:    money(it.Subtotal),
		}
		if it.TaxRate != nil {
			stored.TaxRate = money(*it.TaxRate)
		}
		if it.TaxAmount != nil {
			stored.TaxAmount = money(*it.TaxAmount)
		}
		items = append(items, stored)
	}

	vendor := strings.TrimSpace(cand.Vendor)
	if vendor == "" {
		vendor = "Unknown"
	}
	category := cand.Category
	if !constants.IsValidCategory(category) {
		category = string(constants.Other)
	}
	currency := cand.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	rec := ReceiptRecord{
		ReceiptID:        b.newID(),
		UploadTimestamp:  b.now().Format(time.RFC3339),
		OriginalText:     truncateText(ocrText, b.textCap),
		SourceKey:        sourceKey,
		Amount:           money(clampAmount(cand.Amount)),
		Vendor:           vendor,
		Category:         category,
		Confidence:       money(clamp01(cand.Confidence)),
		Currency:         currency,
		ReceiptDate:      normalizeDate(cand.Date),
		LineItems:        items,
		HasDetailedItems: len(items) > 0,
		NeedsReview:      cand.Confidence < constants.NeedsReviewThreshold,
		ProcessingMethod: method,
	}
	if cand.Subtotal != nil {
		rec.Subtotal = money(*cand.Subtotal)
	}
	if cand.TotalTax != nil {
		rec.TotalTax = money(*cand.TotalTax)
	}

	b.logger.Debug("record.built",
		"receipt_id", rec.ReceiptID,
		"vendor", rec.Vendor,
		"amount", rec.Amount,
		"needs_review", rec.NeedsReview,
		"method", rec.ProcessingMethod,
	)
	return rec
}

// money renders a fixed two-decimal representation.
func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func clampAmount(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1_000_000 {
		return 1_000_000
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncateText caps s at limit characters, never splitting a rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// dateFormats are tried in order when the extractor reports a date.
var dateFormats = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02-01-2006"}

// normalizeDate returns YYYY-MM-DD or empty when the value is absent or
// unparseable; the stored record simply omits an unknown date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
