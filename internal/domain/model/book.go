// Package model contains domain models passed between layers.
package model

// Book is a single catalog record. Ids are assigned by the server.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Collection is the ordered set of books; order is insertion order.
type Collection []Book

// Clone returns an independent copy. A nil collection clones to an empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// BookInput is the client-supplied part of a book for create and update.
// An "id" sent by the client is ignored.
type BookInput struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}
