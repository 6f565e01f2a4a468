package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
)

// BooksHandler serves the /books routes.
type BooksHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewBooksHandler creates a new books handler.
func NewBooksHandler(deps Dependencies) *BooksHandler {
	return &BooksHandler{deps: deps, maxBodyBytes: defaultMaxBodyBytes}
}

// HandleList handles GET /books.
func (h *BooksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.books.list"
	books, err := h.deps.List(r.Context())
	h.respond(w, r, op, books, err)
}

// HandleCreate handles POST /books.
func (h *BooksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.books.create"
	in, err := h.decodeInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	books, err := h.deps.Create(r.Context(), in)
	h.respond(w, r, op, books, err)
}

// HandleUpdate handles PUT /books/{id}.
func (h *BooksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.books.update"
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := h.decodeInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	books, err := h.deps.Update(r.Context(), id, in)
	h.respond(w, r, op, books, err)
}

// HandleDelete handles DELETE /books/{id}.
func (h *BooksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.books.delete"
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	books, err := h.deps.Delete(r.Context(), id)
	h.respond(w, r, op, books, err)
}

// respond writes the collection, or maps err: validation failures are the client's,
// everything else is logged and reported as an internal error.
func (h *BooksHandler) respond(w http.ResponseWriter, r *http.Request, op string, books model.Collection, err error) {
	if err == nil {
		if books == nil {
			books = model.Collection{}
		}
		writeJSON(w, http.StatusOK, books)
		return
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, verr))
		return
	}
	writeInternalError(r.Context(), w, h.log(), op, Wrap(op, err))
}

func (h *BooksHandler) decodeInput(w http.ResponseWriter, r *http.Request) (model.BookInput, error) {
	var in model.BookInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		return model.BookInput{}, decodeError(err)
	}
	if dec.More() {
		return model.BookInput{}, errors.New("request body must contain a single JSON object")
	}
	return in, nil
}

func decodeError(err error) error {
	var (
		typeErr *json.UnmarshalTypeError
		sizeErr *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	case errors.As(err, &sizeErr):
		return fmt.Errorf("request body exceeds %d bytes", sizeErr.Limit)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &model.ValidationError{Fields: []model.FieldError{{
			Field:   typeErr.Field,
			Code:    "type",
			Message: "must be a " + jsonTypeName(typeErr.Type.Kind().String()),
		}}}
	case errors.As(err, &typeErr):
		return errors.New("request body must be a JSON object")
	default:
		return errors.New("request body is not valid JSON")
	}
}

func jsonTypeName(kind string) string {
	switch kind {
	case "string":
		return "string"
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	default:
		return "object"
	}
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer, got %q", raw)
	}
	return id, nil
}

func (h *BooksHandler) log() logger.Logger {
	if h.logger != nil {
		return h.logger
	}
	return logger.Get().Named("api")
}
