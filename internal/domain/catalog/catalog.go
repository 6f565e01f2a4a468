// Package catalog holds the pure transformations applied to a book collection.
// Functions never mutate their input; callers persist the returned collection.
package catalog

import (
	"fmt"

	"github.com/okian/books/internal/domain/model"
)

// IDStrategy decides the id given to a newly created book.
type IDStrategy string

const (
	// Length assigns len(collection)+1. Ids can repeat after a delete followed by a create.
	Length IDStrategy = "length"
	// Max assigns max(id)+1, which stays unique while ids only come from this package.
	Max IDStrategy = "max"
)

// ParseIDStrategy maps a config value to an IDStrategy.
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(s) {
	case Length, Max:
		return IDStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown id strategy %q", s)
	}
}

// NextID returns the id the next appended book receives.
func NextID(books model.Collection, strategy IDStrategy) int64 {
	if strategy == Max {
		var highest int64
		for _, b := range books {
			if b.ID > highest {
				highest = b.ID
			}
		}
		return highest + 1
	}
	return int64(len(books)) + 1
}

// Append returns a new collection with the input added at the end, and the stored book.
func Append(books model.Collection, in model.BookInput, strategy IDStrategy) (model.Collection, model.Book) {
	book := model.Book{
		ID:     NextID(books, strategy),
		Title:  in.Title,
		Author: in.Author,
	}
	out := make(model.Collection, 0, len(books)+1)
	out = append(out, books...)
	out = append(out, book)
	return out, book
}

// Update overwrites title and author of every book with the given id.
// It returns the new collection and how many books matched.
func Update(books model.Collection, id int64, in model.BookInput) (model.Collection, int) {
	out := books.Clone()
	matched := 0
	for i := range out {
		if out[i].ID == id {
			out[i].Title = in.Title
			out[i].Author = in.Author
			matched++
		}
	}
	return out, matched
}

// Remove drops every book with the given id, keeping the order of the rest.
func Remove(books model.Collection, id int64) (model.Collection, int) {
	out := make(model.Collection, 0, len(books))
	for _, b := range books {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out, len(books) - len(out)
}
