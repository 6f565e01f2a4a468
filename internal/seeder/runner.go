package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/books/pkg/logger"
)

// ErrInvalidConfig is returned by Run for unusable settings.
var ErrInvalidConfig = errors.New("invalid seeder config")

// Run executes a complete seeding run against config.BaseURL.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if config.NumBooks < 0 || config.Workers <= 0 || config.BaseURL == "" {
		return nil, fmt.Errorf("%w: need a base URL, at least one worker and a non-negative book count", ErrInvalidConfig)
	}
	stats := Stats{StartTime: time.Now()}

	log := logger.Get()
	log.Info(ctx, "starting books seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("books", config.NumBooks),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	books := generateBooks(ctx, config.NumBooks, &stats)

	// Step 3: Submit concurrently
	accepted := submitBooks(ctx, config, books, &stats)

	// Step 4: List the final collection
	final, err := listBooks(ctx, config)
	if err != nil {
		return nil, err
	}

	// Step 5: Verify
	missing, duplicates := verify(ctx, accepted, final)

	// Step 6: Save payloads
	if config.OutputFile != "" {
		if err := saveBooksToFile(ctx, config.OutputFile, books); err != nil {
			log.Warn(ctx, "failed to save books to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report := &Report{
		Stats:        stats,
		FinalCount:   len(final),
		Missing:      missing,
		DuplicateIDs: duplicates,
	}
	displayFinalStats(ctx, report)
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(config.Timeout).Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveBooksToFile writes the generated payloads as an indented JSON array.
func saveBooksToFile(ctx context.Context, filename string, books []Payload) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal books: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "books saved to file", logger.String("filename", filename))
	return nil
}

// DefaultOutputFile returns a timestamped payload filename.
func DefaultOutputFile() string {
	return "generated_books_" + time.Now().Format("20060102_150405") + ".json"
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, report *Report) {
	stats := report.Stats
	var successRate, booksPerSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		booksPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("booksGenerated", stats.BooksGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("finalCount", report.FinalCount),
		logger.Int("lostUpdates", report.LostUpdates()),
		logger.Int("duplicateIds", len(report.DuplicateIDs)),
		logger.Duration("duration", stats.Duration),
		logger.Any("successRate", successRate),
		logger.Any("booksPerSecond", booksPerSecond))
}
