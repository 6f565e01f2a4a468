package seeder

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/books/pkg/logger"
)

// SetupLogging sends log records to both the console and a file.
// If logFile is empty, a timestamped filename is generated. The returned function closes
// the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Books Seed Tool
===============

Creates books concurrently against a running books API, then lists the collection and
reports creates that were lost and ids that were assigned more than once.

Usage:
  go run ./cmd/seed-books [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -books int
        Number of books to create (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated payloads (default: generated_books_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run ./cmd/seed-books

  # One worker never loses an update
  go run ./cmd/seed-books -books 50 -workers 1

  # Many workers show the read-modify-write race
  go run ./cmd/seed-books -books 1000 -workers 32 -verbose
`)
}
