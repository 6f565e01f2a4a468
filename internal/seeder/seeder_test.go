package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/books/internal/adapters/http/api"
	service "github.com/okian/books/internal/app"
	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newBooksServer() *httptest.Server {
	svc := service.New()
	r := chi.NewRouter()
	api.NewServer(svc, svc).Register(context.Background(), r)
	return httptest.NewServer(r)
}

func TestRun(t *testing.T) {
	Convey("Given a running books API", t, func() {
		srv := newBooksServer()
		defer srv.Close()

		Convey("When seeding with a single worker", func() {
			output := filepath.Join(t.TempDir(), "out", "books.json")
			report, err := Run(context.Background(), &Config{
				BaseURL:    srv.URL,
				NumBooks:   12,
				Workers:    1,
				Timeout:    5 * time.Second,
				OutputFile: output,
			})

			Convey("Then every create is present and ids are unique", func() {
				So(err, ShouldBeNil)
				So(report.Stats.BooksGenerated, ShouldEqual, 12)
				So(report.Stats.Successful, ShouldEqual, 12)
				So(report.Stats.Failed, ShouldEqual, 0)
				So(report.FinalCount, ShouldEqual, 12)
				So(report.LostUpdates(), ShouldEqual, 0)
				So(report.DuplicateIDs, ShouldBeEmpty)
			})

			Convey("And the generated payloads are saved", func() {
				data, readErr := os.ReadFile(output)
				So(readErr, ShouldBeNil)
				var saved []Payload
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 12)
				So(saved[0].Title, ShouldStartWith, titlePrefix)
			})
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumBooks: 1, Workers: 1, Timeout: time.Second})

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "status: 503")
	})

	Convey("Given an unusable config", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://localhost:3000", Workers: 0})

		So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestVerify(t *testing.T) {
	Convey("Given accepted creates and a final collection", t, func() {
		ctx := context.Background()
		accepted := []Payload{
			{Title: titlePrefix + "a", Author: "X"},
			{Title: titlePrefix + "b", Author: "X"},
			{Title: titlePrefix + "c", Author: "X"},
		}

		Convey("When a create was overwritten and an id was reused", func() {
			final := model.Collection{
				{ID: 1, Title: "Existing", Author: "Y"},
				{ID: 2, Title: titlePrefix + "a", Author: "X"},
				{ID: 2, Title: titlePrefix + "c", Author: "X"},
			}
			missing, duplicates := verify(ctx, accepted, final)

			Convey("Then both are reported", func() {
				So(missing, ShouldResemble, []string{titlePrefix + "b"})
				So(duplicates, ShouldResemble, []int64{2})
			})
		})

		Convey("When everything is present", func() {
			final := model.Collection{
				{ID: 1, Title: titlePrefix + "a"},
				{ID: 2, Title: titlePrefix + "b"},
				{ID: 3, Title: titlePrefix + "c"},
			}
			missing, duplicates := verify(ctx, accepted, final)

			Convey("Then nothing is reported", func() {
				So(missing, ShouldBeEmpty)
				So(duplicates, ShouldBeEmpty)
			})
		})
	})
}

func TestGenerateBooks(t *testing.T) {
	Convey("Given a request for books", t, func() {
		var stats Stats
		books := generateBooks(context.Background(), 20, &stats)

		Convey("Then titles are unique and tagged", func() {
			So(books, ShouldHaveLength, 20)
			So(stats.BooksGenerated, ShouldEqual, 20)
			seen := map[string]bool{}
			for _, b := range books {
				So(strings.HasPrefix(b.Title, titlePrefix), ShouldBeTrue)
				So(b.Author, ShouldNotBeEmpty)
				So(b.Validate(), ShouldBeNil)
				seen[b.Title] = true
			}
			So(seen, ShouldHaveLength, 20)
		})
	})
}
