package repository

import (
	"context"
	"math"
	"strconv"

	"github.com/olajaido/smart-receipt-parser/internal/record"
)

// ReceiptStore is the keyed table collaborator this pipeline writes once per
// request and the query API reads from. No update or delete is defined.
type ReceiptStore interface {
	Put(ctx context.Context, rec record.ReceiptRecord) error
	Get(ctx context.Context, receiptID string) (record.ReceiptRecord, error)
	// ListAll returns every record sorted by uploadTimestamp descending.
	ListAll(ctx context.Context) ([]record.ReceiptRecord, error)
	// ListByCategory filters on the canonical category string, same ordering.
	ListByCategory(ctx context.Context, category string) ([]record.ReceiptRecord, error)
}

// CategoryStats summarizes one category bucket.
type CategoryStats struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// Stats summarizes a listing.
type Stats struct {
	TotalCount    int                      `json:"total_count"`
	TotalAmount   float64                  `json:"total_amount"`
	AverageAmount float64                  `json:"average_amount"`
	Categories    map[string]CategoryStats `json:"categories"`
}

// ComputeStats aggregates totals and per-category breakdowns, rounded to two
// decimal places.
func ComputeStats(recs []record.ReceiptRecord) Stats {
	stats := Stats{Categories: map[string]CategoryStats{}}
	if len(recs) == 0 {
		return stats
	}

	var total float64
	for _, r := range recs {
		amount := amountOf(r)
		total += amount

		cs := stats.Categories[r.Category]
		cs.Count++
		cs.Total += amount
		stats.Categories[r.Category] = cs
	}

	for cat, cs := range stats.Categories {
		cs.Average = Round2(cs.Total / float64(cs.Count))
		cs.Total = Round2(cs.Total)
		stats.Categories[cat] = cs
	}

	stats.TotalCount = len(recs)
	stats.TotalAmount = Round2(total)
	stats.AverageAmount = Round2(total / float64(len(recs)))
	return stats
}

// SumAmounts returns (total, average) rounded to two decimal places.
func SumAmounts(recs []record.ReceiptRecord) (float64, float64) {
	if len(recs) == 0 {
		return 0, 0
	}
	var total float64
	for _, r := range recs {
		total += amountOf(r)
	}
	return Round2(total), Round2(total / float64(len(recs)))
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func amountOf(r record.ReceiptRecord) float64 {
	v, err := strconv.ParseFloat(r.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}
