package seeder

import (
	"context"

	"github.com/google/uuid"

	"github.com/okian/books/pkg/logger"
)

var authors = []string{ //nolint:gochecknoglobals // fixed sample data
	"Frank Herbert",
	"Ursula K. Le Guin",
	"Octavia E. Butler",
	"Jean-Jacques Rousseau",
	"Stanisław Lem",
	"Chinua Achebe",
}

// generateBooks creates n payloads whose titles carry a uuid, so every book can be found
// again in the final collection.
func generateBooks(ctx context.Context, n int, stats *Stats) []Payload {
	logger.Get().Info(ctx, "generating books", logger.Int("numBooks", n))

	books := make([]Payload, n)
	for i := range books {
		books[i] = Payload{
			Title:  titlePrefix + uuid.NewString(),
			Author: authors[i%len(authors)],
		}
	}
	stats.BooksGenerated = n
	return books
}
