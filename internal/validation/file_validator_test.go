package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "marketset/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	validator := NewFileValidator(slog.Default())

	csvPath := filepath.Join(dir, "prices.csv")
	writeFile(t, csvPath, "date,ticker\n")

	txtPath := filepath.Join(dir, "notes.txt")
	writeFile(t, txtPath, "not a csv")

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		wantType apperrors.ErrorType
	}{
		{"valid csv", csvPath, false, ""},
		{"missing file", filepath.Join(dir, "missing.csv"), true, apperrors.ErrTypeNotFound},
		{"wrong extension", txtPath, true, apperrors.ErrTypeValidation},
		{"directory not file", dir, true, apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateCSVFile(tt.path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType))
		})
	}
}

func TestValidateCSVFile_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PRICES.CSV")
	writeFile(t, path, "date,ticker\n")

	assert.NoError(t, NewFileValidator(nil).ValidateCSVFile(path))
}

func TestValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prices.csv"), "date\n")
	validator := NewFileValidator(slog.Default())

	t.Run("exists with matches", func(t *testing.T) {
		assert.NoError(t, validator.ValidateInputDirectory(dir, "*.csv"))
	})

	t.Run("empty pattern match is not an error", func(t *testing.T) {
		assert.NoError(t, validator.ValidateInputDirectory(dir, "*.parquet"))
	})

	t.Run("missing directory", func(t *testing.T) {
		err := validator.ValidateInputDirectory(filepath.Join(dir, "nope"), "*.csv")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("file instead of directory", func(t *testing.T) {
		err := validator.ValidateInputDirectory(filepath.Join(dir, "prices.csv"), "")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestValidateOutputDirectory_CreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "processed")
	validator := NewFileValidator(slog.Default())

	require.NoError(t, validator.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The write probe must not linger.
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}
