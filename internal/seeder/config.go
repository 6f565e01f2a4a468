// Package seeder drives a running books API with concurrent creates and checks what the
// collection looks like afterwards.
package seeder

import (
	"time"

	"github.com/okian/books/internal/domain/model"
)

// Config holds configuration for a seeding run
type Config struct {
	BaseURL    string        // Base URL of the service
	NumBooks   int           // Number of books to create
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated payloads; empty skips saving
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Payload is one generated create request.
type Payload = model.BookInput

// Stats holds run statistics
type Stats struct {
	BooksGenerated int
	Submitted      int
	Successful     int
	Failed         int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// Report is what a run observed in the final collection.
type Report struct {
	Stats Stats
	// FinalCount is the length of the collection listed after seeding.
	FinalCount int
	// Missing lists titles that were accepted but are absent from the final collection.
	Missing []string
	// DuplicateIDs lists ids carried by more than one book, ascending.
	DuplicateIDs []int64
}

// LostUpdates is the number of accepted creates the final collection does not contain.
func (r *Report) LostUpdates() int {
	return len(r.Missing)
}
