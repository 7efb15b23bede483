package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/olajaido/smart-receipt-parser/internal/repository"
)

// Service produces XLSX bytes for stored receipts.
type Service struct {
	store  repository.ReceiptStore
	logger *slog.Logger
}

func NewService(store repository.ReceiptStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) containing every
// stored receipt, newest upload first.
func (s *Service) ExportReceiptsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Receipt ID",
		"Uploaded",
		"Receipt Date",
		"Vendor",
		"Category",
		"Amount",
		"Currency",
		"Confidence",
		"Method",
		"Needs Review",
		"Source Key",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ReceiptID)
		write(2, r.UploadTimestamp)
		write(3, r.ReceiptDate)
		write(4, r.Vendor)
		write(5, r.Category)
		write(6, r.Amount)
		write(7, r.Currency)
		write(8, r.Confidence)
		write(9, r.ProcessingMethod)
		write(10, r.NeedsReview)
		write(11, r.SourceKey)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(sheet, "B", "C", 22) // timestamps
	_ = f.SetColWidth(sheet, "D", "D", 30) // vendor
	_ = f.SetColWidth(sheet, "E", "E", 16) // category
	_ = f.SetColWidth(sheet, "F", "H", 12) // numbers
	_ = f.SetColWidth(sheet, "I", "I", 20) // method
	_ = f.SetColWidth(sheet, "K", "K", 40) // key

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
