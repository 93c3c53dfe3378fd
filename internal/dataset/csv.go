package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"marketset/internal/errors"
)

// Table is a raw tabular dataset: a header plus string records. Typed loaders
// build on it after schema validation.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns a name-to-position map for the table's columns.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return idx
}

// ReadCSV reads a delimited file into a Table. A missing file is a NOT_FOUND
// error. A file that exists but holds only a header (or nothing at all) is
// not an error: it loads as a zero-row table so an expected-but-empty input
// flows through the pipeline unchanged.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(path)
		}
		return nil, errors.NewStorageError("failed to open CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV header", err).
			WithContext("path", path)
	}

	table := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read CSV record", err).
				WithContext("path", path)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// WriteCSV serializes a header and records to path, creating any missing
// parent directories. The header is written even when records is empty so
// downstream readers always see the full schema.
func WriteCSV(path string, columns []string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("path", dir)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(columns); err != nil {
		return errors.NewStorageError("failed to write CSV header", err).
			WithContext("path", path)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write CSV record", err).
				WithContext("path", path)
		}
	}

	writer.Flush()
	return writer.Error()
}
