package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/okian/books/internal/seeder"
)

// Default configuration constants.
const (
	defaultNumBooks    = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numBooks   = flag.Int("books", defaultNumBooks, "Number of books to create")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated payloads (default: generated_books_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	closeLog, err := seeder.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	output := *outputFile
	if output == "" {
		output = seeder.DefaultOutputFile()
	}

	report, err := seeder.Run(ctx, &seeder.Config{
		BaseURL:    *baseURL,
		NumBooks:   *numBooks,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: output,
		LogFile:    *logFile,
		Verbose:    *verbose,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
	_, _ = os.Stdout.WriteString("lost updates: " + strconv.Itoa(report.LostUpdates()) +
		", duplicate ids: " + strconv.Itoa(len(report.DuplicateIDs)) + "\n")
}
