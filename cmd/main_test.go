package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/books/internal/adapters/repository"
	app "github.com/okian/books/internal/app"
	"github.com/okian/books/internal/config"
	"github.com/okian/books/pkg/logger"
	"github.com/okian/books/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("BOOKS_ADDR", ":8080")
			_ = os.Setenv("BOOKS_STORAGE_BACKEND", "memory")
			_ = os.Setenv("BOOKS_ID_STRATEGY", "max")
			defer func() {
				_ = os.Unsetenv("BOOKS_ADDR")
				_ = os.Unsetenv("BOOKS_STORAGE_BACKEND")
				_ = os.Unsetenv("BOOKS_ID_STRATEGY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.IDStrategy, convey.ShouldEqual, "max")
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given store configurations", t, func() {
		ctx := context.Background()

		convey.Convey("When the backend is memory", func() {
			cfg := config.New()
			cfg.StorageBackend = config.BackendMemory
			store, err := newStore(ctx, cfg)

			convey.Convey("Then an instrumented memory store is built", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Backend(), convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When the backend is file", func() {
			cfg := config.New()
			cfg.DataFile = filepath.Join(t.TempDir(), "db", "books.json")
			store, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)

			created, initErr := repository.EnsureInitialized(ctx, store)

			convey.Convey("Then initialization creates the document", func() {
				convey.So(initErr, convey.ShouldBeNil)
				convey.So(created, convey.ShouldBeTrue)
				data, readErr := os.ReadFile(cfg.DataFile)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual, "[]")
			})
		})

		convey.Convey("When the backend is unknown", func() {
			cfg := config.New()
			cfg.StorageBackend = "tape"
			_, err := newStore(ctx, cfg)

			convey.Convey("Then it is an invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the redis url is invalid", func() {
			cfg := config.New()
			cfg.StorageBackend = config.BackendRedis
			cfg.RedisURL = "not-a-url"
			_, err := newStore(ctx, cfg)

			convey.Convey("Then building the store fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewRouter(t *testing.T) {
	convey.Convey("Given the application router", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc := app.New(app.WithStore(repository.NewMemoryStore()))
		handler, err := newRouter(ctx, cfg, svc, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		serve := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then the book routes are mounted", func() {
			w := serve(http.MethodPost, "/books", `{"title":"Dune","author":"Herbert"}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(strings.TrimSpace(w.Body.String()), convey.ShouldEqual, `[{"id":1,"title":"Dune","author":"Herbert"}]`)
		})

		convey.Convey("And the documentation carries the configured title and version", func() {
			w := serve(http.MethodGet, "/swagger.json", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"title": "Books API Documentation"`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"version": "0.0.1"`)
		})

		convey.Convey("And the root redirects to the documentation", func() {
			w := serve(http.MethodGet, "/", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusFound)
			convey.So(w.Header().Get("Location"), convey.ShouldEqual, "/documentation")
		})

		convey.Convey("And health and stats are served", func() {
			convey.So(serve(http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And unknown routes are 404", func() {
			convey.So(serve(http.MethodGet, "/authors", "").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}
