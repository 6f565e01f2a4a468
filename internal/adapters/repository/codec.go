package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/books/internal/domain/model"
)

const indent = "  "

var utf8BOM = []byte("\xef\xbb\xbf")

// Encode renders the collection as a 2-space indented JSON array.
// A nil collection is written as [].
func Encode(books model.Collection) ([]byte, error) {
	if books == nil {
		books = model.Collection{}
	}
	data, err := json.MarshalIndent(books, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encode books: %w", err)
	}
	return data, nil
}

// Decode parses a stored document. Anything other than a JSON array of book objects,
// including null, is ErrMalformed.
func Decode(data []byte) (model.Collection, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrMalformed)
	}
	var books model.Collection
	if err := json.Unmarshal(trimmed, &books); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if books == nil {
		books = model.Collection{}
	}
	return books, nil
}
