package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/record"
)

// Config mirrors the pgx pool knobs we expose through the environment.
type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

const receiptsSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	receipt_id         TEXT PRIMARY KEY,
	upload_timestamp   TEXT NOT NULL,
	original_text      TEXT NOT NULL DEFAULT '',
	source_key         TEXT NOT NULL DEFAULT '',
	amount             TEXT NOT NULL,
	vendor             TEXT NOT NULL,
	category           TEXT NOT NULL,
	confidence         TEXT NOT NULL,
	currency           TEXT NOT NULL,
	receipt_date       TEXT NOT NULL DEFAULT '',
	line_items         TEXT NOT NULL DEFAULT '[]',
	subtotal           TEXT NOT NULL DEFAULT '',
	total_tax          TEXT NOT NULL DEFAULT '',
	has_detailed_items BOOLEAN NOT NULL DEFAULT FALSE,
	needs_review       BOOLEAN NOT NULL DEFAULT FALSE,
	processing_method  TEXT NOT NULL DEFAULT ''
)`

// PostgresStore persists receipt records in a flat keyed table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, applies the schema, and returns the store.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "smart-receipt-parser"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if _, err := pool.Exec(ctx, receiptsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// HealthCheck pings the pool to catch DSN issues early.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

const insertReceiptSQL = `
INSERT INTO receipts (
	receipt_id, upload_timestamp, original_text, source_key, amount, vendor,
	category, confidence, currency, receipt_date, line_items, subtotal,
	total_tax, has_detailed_items, needs_review, processing_method
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

const selectReceiptCols = `
	receipt_id, upload_timestamp, original_text, source_key, amount, vendor,
	category, confidence, currency, receipt_date, line_items, subtotal,
	total_tax, has_detailed_items, needs_review, processing_method`

func (s *PostgresStore) Put(ctx context.Context, rec record.ReceiptRecord) error {
	items, err := json.Marshal(rec.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	_, err = s.pool.Exec(ctx, insertReceiptSQL,
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

func (s *PostgresStore) Get(ctx context.Context, receiptID string) (record.ReceiptRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts WHERE receipt_id = $1`, receiptID)
	rec, err := scanReceipt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.ReceiptRecord{}, common.ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]record.ReceiptRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts ORDER BY upload_timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (s *PostgresStore) ListByCategory(ctx context.Context, category string) ([]record.ReceiptRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectReceiptCols+` FROM receipts WHERE category = $1 ORDER BY upload_timestamp DESC`,
		category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (record.ReceiptRecord, error) {
	var rec record.ReceiptRecord
	var items string
	err := row.Scan(
		&rec.ReceiptID, &rec.UploadTimestamp, &rec.OriginalText, &rec.SourceKey,
		&rec.Amount, &rec.Vendor, &rec.Category, &rec.Confidence, &rec.Currency,
		&rec.ReceiptDate, &items, &rec.Subtotal, &rec.TotalTax,
		&rec.HasDetailedItems, &rec.NeedsReview, &rec.ProcessingMethod,
	)
	if err != nil {
		return record.ReceiptRecord{}, err
	}
	if err := json.Unmarshal([]byte(items), &rec.LineItems); err != nil {
		return record.ReceiptRecord{}, fmt.Errorf("decode line items: %w", err)
	}
	if rec.LineItems == nil {
		rec.LineItems = []record.StoredLineItem{}
	}
	return rec, nil
}

func collectReceipts(rows pgx.Rows) ([]record.ReceiptRecord, error) {
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
