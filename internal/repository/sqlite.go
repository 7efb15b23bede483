package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/record"
)

// SQLiteStore backs the batch CLI so a run needs no external database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, receiptsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const insertReceiptSQLite = `
INSERT INTO receipts (
	receipt_id, upload_timestamp, original_text, source_key, amount, vendor,
	category, confidence, currency, receipt_date, line_items, subtotal,
	total_tax, has_detailed_items, needs_review, processing_method
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

func (s *SQLiteStore) Put(ctx context.Context, rec record.ReceiptRecord) error {
	items, err := json.Marshal(rec.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertReceiptSQLite,
		rec.ReceiptID, rec.UploadTimestamp, rec.OriginalText, rec.SourceKey,
		rec.Amount, rec.Vendor, rec.Category, rec.Confidence, rec.Currency,
		rec.ReceiptDate, string(items), rec.Subtotal, rec.TotalTax,
		rec.HasDetailedItems, rec.NeedsReview, rec.ProcessingMethod,
	)
	if err != nil {
		s.logger.Error("store.put_failed", "receipt_id", rec.ReceiptID, "error", err)
		return fmt.Errorf("%v: %w", err, common.ErrStorageWrite)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, receiptID string) (record.ReceiptRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts WHERE receipt_id = ?`, receiptID)
	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.ReceiptRecord{}, common.ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]record.ReceiptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts ORDER BY upload_timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSQLReceipts(rows)
}

func (s *SQLiteStore) ListByCategory(ctx context.Context, category string) ([]record.ReceiptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts WHERE category = ? ORDER BY upload_timestamp DESC`,
		category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSQLReceipts(rows)
}

func collectSQLReceipts(rows *sql.Rows) ([]record.ReceiptRecord, error) {
	out := []record.ReceiptRecord{}
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
