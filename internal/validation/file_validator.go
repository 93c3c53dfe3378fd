// Package validation holds pre-flight file checks shared by the command-line
// entry points, so a bad path fails with a clear error before any parsing
// starts.
package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"marketset/internal/errors"
)

// FileValidator checks input and output paths before the pipeline touches
// them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateCSVFile checks that path names an existing, readable, regular file
// with a .csv extension.
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.validateFile(path); err != nil {
		return err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		v.logger.Error("input is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewValidationError("input file must have a .csv extension").
			WithContext("path", path).
			WithContext("extension", ext)
	}

	return nil
}

// ValidateInputDirectory checks that dir exists and is a directory. When a
// glob pattern is given, an empty match set is logged but not an error;
// there is simply nothing to process.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("input directory does not exist",
			slog.String("directory", dir))
		return errors.NewNotFoundError(dir)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input directory", err).
			WithContext("directory", dir)
	}
	if !info.IsDir() {
		v.logger.Error("input path is not a directory",
			slog.String("path", dir))
		return errors.NewValidationError("input path is not a directory").
			WithContext("path", dir)
	}

	if pattern != "" {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return errors.NewStorageError("failed to list input files", err).
				WithContext("directory", dir).
				WithContext("pattern", pattern)
		}
		if len(matches) == 0 {
			v.logger.Warn("no input files matching pattern",
				slog.String("directory", dir),
				slog.String("pattern", pattern))
			return nil
		}
		v.logger.Info("input directory validated",
			slog.String("directory", dir),
			slog.Int("files_found", len(matches)))
	}

	return nil
}

// ValidateOutputDirectory creates dir if needed and confirms it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("directory", dir)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("output directory is not writable", err).
			WithContext("directory", dir)
	}
	file.Close()
	os.Remove(probe)

	return nil
}

// validateFile checks that path is an existing, readable, regular file.
func (v *FileValidator) validateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist",
			slog.String("file", path))
		return errors.NewNotFoundError(path)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input file", err).
			WithContext("path", path)
	}
	if info.IsDir() {
		v.logger.Error("input path is a directory, not a file",
			slog.String("path", path))
		return errors.NewValidationError("input path is a directory, not a file").
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError("input file is not readable", err).
			WithContext("path", path)
	}
	file.Close()

	return nil
}
