package seeder

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
)

// verify compares what was accepted with what the server finally holds. Only titles this
// run generated are considered, so a pre-populated collection does not count as missing.
func verify(ctx context.Context, accepted []Payload, final model.Collection) (missing []string, duplicates []int64) {
	present := make(map[string]struct{}, len(final))
	seen := make(map[int64]int, len(final))
	for _, b := range final {
		if strings.HasPrefix(b.Title, titlePrefix) {
			present[b.Title] = struct{}{}
		}
		seen[b.ID]++
	}

	for _, p := range accepted {
		if _, ok := present[p.Title]; !ok {
			missing = append(missing, p.Title)
		}
	}
	for id, n := range seen {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}
	sort.Strings(missing)
	sort.Slice(duplicates, func(i, j int) bool { return duplicates[i] < duplicates[j] })

	log := logger.Get()
	if len(missing) > 0 {
		log.Warn(ctx, "accepted creates are missing from the collection",
			logger.Int("lostUpdates", len(missing)))
	}
	if len(duplicates) > 0 {
		log.Warn(ctx, "ids assigned to more than one book",
			logger.Any("ids", duplicates))
	}
	if len(missing) == 0 && len(duplicates) == 0 {
		log.Info(ctx, "collection verified")
	}
	return missing, duplicates
}
