package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitBooks creates books concurrently using a worker pool. It returns the payloads the
// server accepted.
func submitBooks(ctx context.Context, config *Config, books []Payload, stats *Stats) []Payload {
	log := logger.Get()
	log.Info(ctx, "submitting books", logger.Int("books", len(books)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/books"

	var (
		successful int64
		failed     int64
		submitted  int64

		mu       sync.Mutex
		accepted = make([]Payload, 0, len(books))
	)

	bookChan := make(chan Payload, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for book := range bookChan {
				if ctx.Err() != nil {
					return
				}
				err := submitSingleBook(ctx, client, url, book)
				total := atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Debug(ctx, "create failed",
						logger.Int("worker", workerID),
						logger.String("title", book.Title),
						logger.Error(err))
					continue
				}
				atomic.AddInt64(&successful, 1)
				mu.Lock()
				accepted = append(accepted, book)
				mu.Unlock()

				if config.Verbose {
					log.Debug(ctx, "progress",
						logger.Int64("submitted", total),
						logger.Int("of", len(books)))
				}
			}
		}(i)
	}

	go func() {
		defer close(bookChan)
		for _, book := range books {
			select {
			case <-ctx.Done():
				return
			case bookChan <- book:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Failed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "book submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed))
	return accepted
}

// submitSingleBook posts one book and checks the reply is a collection.
func submitSingleBook(ctx context.Context, client *HTTPClient, url string, book Payload) error {
	resp, err := client.Post(ctx, url, book)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var books model.Collection
	if err := json.Unmarshal(body, &books); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// listBooks fetches the whole collection.
func listBooks(ctx context.Context, config *Config) (model.Collection, error) {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/books")
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list books failed with status %d", resp.StatusCode)
	}
	var books model.Collection
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}
