// Package site handles the root of the server.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DefaultLanding is where GET / sends browsers.
const DefaultLanding = "/documentation"

// Register attaches the root redirect to r.
func Register(_ context.Context, r chi.Router, landing string) {
	if r == nil {
		panic("router is nil")
	}
	if landing == "" {
		landing = DefaultLanding
	}
	r.Get("/", NewRootHandler(landing).HandleRoot)
}

// RootHandler redirects the root path to the API documentation.
type RootHandler struct {
	landing string
}

// NewRootHandler creates a new root handler
func NewRootHandler(landing string) *RootHandler {
	return &RootHandler{landing: landing}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.landing, http.StatusFound)
}
