package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/record"
)

func rec(id, ts, category, amount string) record.ReceiptRecord {
	return record.ReceiptRecord{
		ReceiptID:       id,
		UploadTimestamp: ts,
		Category:        category,
		Amount:          amount,
		LineItems:       []record.StoredLineItem{},
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListAllSorted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, rec("a", "2024-01-01T10:00:00Z", "Food", "5.00"))
	_ = s.Put(ctx, rec("b", "2024-03-01T10:00:00Z", "Food", "7.00"))
	_ = s.Put(ctx, rec("c", "2024-02-01T10:00:00Z", "Fuel", "9.00"))

	out, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(out))
	}
	wantOrder := []string{"b", "c", "a"}
	for i, w := range wantOrder {
		if out[i].ReceiptID != w {
			t.Errorf("Position %d: expected %q, got %q", i, w, out[i].ReceiptID)
		}
	}
}

func TestMemoryStoreListByCategory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, rec("a", "2024-01-01T10:00:00Z", "Food", "5.00"))
	_ = s.Put(ctx, rec("b", "2024-03-01T10:00:00Z", "Fuel", "7.00"))

	out, err := s.ListByCategory(ctx, "Food")
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if len(out) != 1 || out[0].ReceiptID != "a" {
		t.Errorf("Unexpected result: %+v", out)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalCount != 0 || stats.TotalAmount != 0 || stats.AverageAmount != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
	if stats.Categories == nil {
		t.Error("Expected non-nil category map")
	}
}

func TestComputeStatsRounding(t *testing.T) {
	records := []record.ReceiptRecord{
		rec("a", "t1", "Food", "5.555"),
		rec("b", "t2", "Food", "5.555"),
		rec("c", "t3", "Fuel", "10.00"),
	}

	stats := ComputeStats(records)
	if stats.TotalCount != 3 {
		t.Errorf("Expected count 3, got %d", stats.TotalCount)
	}
	if stats.TotalAmount != 21.11 {
		t.Errorf("Expected total 21.11, got %v", stats.TotalAmount)
	}
	if stats.AverageAmount != 7.04 {
		t.Errorf("Expected average 7.04, got %v", stats.AverageAmount)
	}

	food, ok := stats.Categories["Food"]
	if !ok {
		t.Fatal("Expected Food bucket")
	}
	if food.Count != 2 || food.Total != 11.11 {
		t.Errorf("Unexpected Food bucket: %+v", food)
	}
	// 5.555 parses to a double just below the midpoint, so the half-up
	// rounding lands on 5.55.
	if food.Average != 5.55 {
		t.Errorf("Expected Food average 5.55, got %v", food.Average)
	}
}

func TestSumAmounts(t *testing.T) {
	total, average := SumAmounts([]record.ReceiptRecord{
		rec("a", "t1", "Food", "10.00"),
		rec("b", "t2", "Food", "20.00"),
	})
	if total != 30.0 {
		t.Errorf("Expected total 30.0, got %v", total)
	}
	if average != 15.0 {
		t.Errorf("Expected average 15.0, got %v", average)
	}

	total, average = SumAmounts(nil)
	if total != 0 || average != 0 {
		t.Errorf("Expected zero sums, got %v / %v", total, average)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0}, // binary representation of 1.005 is just below the midpoint
		{1.015, 1.01},
		{2.675, 2.67},
		{0, 0},
		{15.43, 15.43},
	}
	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
