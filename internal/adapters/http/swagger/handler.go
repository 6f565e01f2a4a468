package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.yaml.in/yaml/v3"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
)

// Register attaches the generated API description and its HTML viewer to r.
// Routes:
//
//	GET /openapi.json   -> OpenAPI document as JSON
//	GET /swagger.json   -> same document, at the path older clients expect
//	GET /openapi.yaml   -> same document as YAML
//	GET /documentation  -> ReDoc HTML
//	GET /api-docs       -> ReDoc HTML
func Register(_ context.Context, r chi.Router, info Info, ops []Operation) error {
	if r == nil {
		panic("router is nil")
	}

	doc := Build(info, ops)
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode json: %w", ErrServe, err)
	}
	yamlDoc, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode yaml: %w", ErrServe, err)
	}
	page := []byte(indexHTML(info.Title))

	serveJSON := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(jsonDoc)
	}
	servePage := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}

	r.Get("/openapi.json", serveJSON)
	r.Get("/swagger.json", serveJSON)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(yamlDoc)
	})
	r.Get("/documentation", servePage)
	r.Get("/api-docs", servePage)
	return nil
}

const redocScript = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// indexHTML renders a minimal ReDoc page that loads /openapi.json.
func indexHTML(title string) string {
	return `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>` + html.EscapeString(title) + `</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocScript + `"></script>
    <script>Redoc.init('/openapi.json', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
}
