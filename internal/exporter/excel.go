package exporter

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"marketset/internal/dataset"
	"marketset/internal/errors"
)

const mergedSheetName = "Merged"

// ExcelWriter exports the merged dataset as an Excel workbook for analyst
// handoff. CSV remains the interchange format; the workbook is a convenience
// copy.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteMergedWorkbook writes merged rows to an xlsx workbook with a frozen
// header row. The header is written even for zero rows, mirroring the CSV
// writers.
func (w *ExcelWriter) WriteMergedWorkbook(path string, rows []dataset.MergedRow) error {
	w.logger.Info("writing merged dataset workbook",
		slog.String("path", path),
		slog.Int("row_count", len(rows)))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("path", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", mergedSheetName); err != nil {
		return errors.NewStorageError("failed to name worksheet", err)
	}

	for i, column := range dataset.MergedColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return errors.NewStorageError("failed to compute header cell", err)
		}
		if err := f.SetCellValue(mergedSheetName, cell, column); err != nil {
			return errors.NewStorageError("failed to write header cell", err)
		}
	}

	for rowIdx, row := range rows {
		values := []interface{}{
			formatCellDate(row.Date),
			row.Ticker,
			row.Headline,
			row.Source,
			formatCellTimestamp(row.CreatedAt),
			row.SentimentScore,
			row.SentimentBin,
			cellOrNil(row.Sector),
			cellOrNil(row.Close),
			cellOrNil(row.Volume),
			cellOrNil(row.Volatility),
			cellOrNil(row.Return),
		}
		for colIdx, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return errors.NewStorageError("failed to compute data cell", err)
			}
			if err := f.SetCellValue(mergedSheetName, cell, value); err != nil {
				return errors.NewStorageError("failed to write data cell", err)
			}
		}
	}

	// Freeze the header row so scrolling keeps column names visible
	if err := f.SetPanes(mergedSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.NewStorageError("failed to freeze header row", err)
	}

	// Headline column gets extra room; everything else a uniform width
	if err := f.SetColWidth(mergedSheetName, "A", "L", 14); err != nil {
		return errors.NewStorageError("failed to set column widths", err)
	}
	if err := f.SetColWidth(mergedSheetName, "C", "C", 48); err != nil {
		return errors.NewStorageError("failed to set headline column width", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).
			WithContext("path", path)
	}

	return nil
}

func formatCellDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(dataset.DateFormat)
}

func formatCellTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dataset.TimestampFormat)
}

// cellOrNil dereferences an optional value for SetCellValue, keeping null
// fields as genuinely empty cells.
func cellOrNil[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
