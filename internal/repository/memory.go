package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/record"
)

// MemoryStore is an in-process ReceiptStore used by tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	receipts map[string]record.ReceiptRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{receipts: make(map[string]record.ReceiptRecord)}
}

func (s *MemoryStore) Put(_ context.Context, rec record.ReceiptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[rec.ReceiptID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, receiptID string) (record.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.receipts[receiptID]
	if !ok {
		return record.ReceiptRecord{}, common.ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]record.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.ReceiptRecord, 0, len(s.receipts))
	for _, rec := range s.receipts {
		out = append(out, rec)
	}
	sortByUploadDesc(out)
	return out, nil
}

func (s *MemoryStore) ListByCategory(_ context.Context, category string) ([]record.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []record.ReceiptRecord{}
	for _, rec := range s.receipts {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	sortByUploadDesc(out)
	return out, nil
}

func sortByUploadDesc(recs []record.ReceiptRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		// RFC 3339 timestamps order lexically.
		return recs[i].UploadTimestamp > recs[j].UploadTimestamp
	})
}
