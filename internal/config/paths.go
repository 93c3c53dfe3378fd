package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	RawDir        string
	ProcessedDir  string
	LogsDir       string

	// Config files
	EnvFile string

	// Well-known dataset files
	PricesCSV    string
	ReturnsCSV   string
	HeadlinesCSV string
	MergedCSV    string
	MergedXLSX   string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are relative to the executable directory, never the current
// working directory, so the tools behave the same wherever they are invoked.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return pathsFromRoot(filepath.Dir(exe)), nil
}

// PathsAt returns application paths rooted at an explicit directory. Used by
// tests and by CLIs when the user overrides the data root.
func PathsAt(root string) *Paths {
	return pathsFromRoot(root)
}

// pathsFromRoot builds the path layout:
//
//	<root>/
//	  ├── .env
//	  ├── data/
//	  │   ├── raw/         (fetched or synthetic input CSVs)
//	  │   └── processed/   (merged dataset outputs)
//	  └── logs/
func pathsFromRoot(root string) *Paths {
	dataDir := filepath.Join(root, "data")
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")

	return &Paths{
		ExecutableDir: root,
		DataDir:       dataDir,
		RawDir:        rawDir,
		ProcessedDir:  processedDir,
		LogsDir:       filepath.Join(root, "logs"),

		EnvFile: filepath.Join(root, ".env"),

		PricesCSV:    filepath.Join(rawDir, "prices.csv"),
		ReturnsCSV:   filepath.Join(rawDir, "returns.csv"),
		HeadlinesCSV: filepath.Join(rawDir, "headlines.csv"),
		MergedCSV:    filepath.Join(processedDir, "merged.csv"),
		MergedXLSX:   filepath.Join(processedDir, "merged.xlsx"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRawPath returns a path inside the raw data directory
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetProcessedPath returns a path inside the processed data directory
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetLogPath returns a path inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
