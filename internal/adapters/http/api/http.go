// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okian/books/internal/adapters/http/swagger"
	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Each call returns the whole collection as it
// stands after the operation.
type Dependencies interface {
	List(ctx context.Context) (model.Collection, error)
	Create(ctx context.Context, in model.BookInput) (model.Collection, error)
	Update(ctx context.Context, id int64, in model.BookInput) (model.Collection, error)
	Delete(ctx context.Context, id int64) (model.Collection, error)
}

// Server wires HTTP routes for the books API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	booksHandler  *BooksHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of create and update bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.booksHandler.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for internal errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.booksHandler.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		booksHandler:  NewBooksHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Get("/books", MetricsMiddleware(s.booksHandler.HandleList, "books_list"))
	r.Post("/books", MetricsMiddleware(s.booksHandler.HandleCreate, "books_create"))
	r.Put("/books/{id}", MetricsMiddleware(s.booksHandler.HandleUpdate, "books_update"))
	r.Delete("/books/{id}", MetricsMiddleware(s.booksHandler.HandleDelete, "books_delete"))
}

// Operations describes the book routes for the generated API documentation.
func Operations() []swagger.Operation {
	tags := []string{"api"}
	return []swagger.Operation{
		{
			Method:         http.MethodGet,
			Path:           "/books",
			OperationID:    "listBooks",
			Summary:        "List all books",
			Tags:           tags,
			ResponseSchema: "Books",
			Errors:         []int{http.StatusInternalServerError},
		},
		{
			Method:         http.MethodPost,
			Path:           "/books",
			OperationID:    "createBook",
			Summary:        "Add a book and return the updated collection",
			Tags:           tags,
			RequestSchema:  "BookInput",
			ResponseSchema: "Books",
			Errors:         []int{http.StatusBadRequest, http.StatusInternalServerError},
		},
		{
			Method:         http.MethodPut,
			Path:           "/books/{id}",
			OperationID:    "updateBook",
			Summary:        "Replace title and author of every book with this id",
			Tags:           tags,
			RequestSchema:  "BookInput",
			ResponseSchema: "Books",
			Errors:         []int{http.StatusBadRequest, http.StatusInternalServerError},
		},
		{
			Method:         http.MethodDelete,
			Path:           "/books/{id}",
			OperationID:    "deleteBook",
			Summary:        "Remove every book with this id",
			Tags:           tags,
			ResponseSchema: "Books",
			Errors:         []int{http.StatusBadRequest, http.StatusInternalServerError},
		},
	}
}

type errorResponse struct {
	Code        string             `json:"code"`
	Message     string             `json:"message"`
	ErrorID     string             `json:"error_id,omitempty"`
	FieldErrors []model.FieldError `json:"field_errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders a client error. Field errors are included when err carries them.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = publicMessage(err)
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp.FieldErrors = verr.Fields
	}
	writeJSON(w, status, resp)
}

// writeInternalError logs err under a fresh error id and returns only the id to the client.
func writeInternalError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	id := uuid.NewString()
	log.Error(ctx, "request failed",
		logger.String("op", op),
		logger.String("error_id", id),
		logger.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    "internal_error",
		Message: ErrInternal.Error(),
		ErrorID: id,
	})
}
