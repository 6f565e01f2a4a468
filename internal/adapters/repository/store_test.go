package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/metrics"
)

var dune = model.Collection{{ID: 1, Title: "Dune", Author: "Herbert"}}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a temp dir", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "books.json")
		store := NewFileStore(path)

		So(store.Backend(), ShouldEqual, "file")
		So(store.Path(), ShouldEqual, path)

		Convey("When the document does not exist", func() {
			_, err := store.Load(ctx)

			Convey("Then Load should report a missing document as an access error", func() {
				So(errors.Is(err, ErrStorageAccess), ShouldBeTrue)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When Init runs on a missing document", func() {
			created, err := store.Init(ctx)

			Convey("Then it should create an empty array", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldEqual, "[]")

				books, loadErr := store.Load(ctx)
				So(loadErr, ShouldBeNil)
				So(books, ShouldHaveLength, 0)
			})

			Convey("And a second Init should leave the document alone", func() {
				So(store.Save(ctx, dune), ShouldBeNil)
				created, err := store.Init(ctx)
				So(err, ShouldBeNil)
				So(created, ShouldBeFalse)

				books, loadErr := store.Load(ctx)
				So(loadErr, ShouldBeNil)
				So(books, ShouldResemble, dune)
			})
		})

		Convey("When saving a collection", func() {
			_, err := store.Init(ctx)
			So(err, ShouldBeNil)
			So(store.Save(ctx, dune), ShouldBeNil)

			Convey("Then the file holds the indented document and no temp files remain", func() {
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldEqual, "[\n  {\n    \"id\": 1,\n    \"title\": \"Dune\",\n    \"author\": \"Herbert\"\n  }\n]")

				entries, dirErr := os.ReadDir(filepath.Dir(path))
				So(dirErr, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})

			Convey("Then the file has the default permissions", func() {
				info, statErr := os.Stat(path)
				So(statErr, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o644))
			})
		})

		Convey("When the document is malformed", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o750), ShouldBeNil)
			So(os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600), ShouldBeNil)

			_, err := store.Load(ctx)
			created, initErr := store.Init(ctx)

			Convey("Then Load and Init should both report ErrMalformed", func() {
				So(errors.Is(err, ErrMalformed), ShouldBeTrue)
				So(errors.Is(initErr, ErrMalformed), ShouldBeTrue)
				So(created, ShouldBeFalse)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then Load and Save fail with an access error", func() {
				_, err := store.Load(cctx)
				So(errors.Is(err, ErrStorageAccess), ShouldBeTrue)
				So(errors.Is(store.Save(cctx, dune), ErrStorageAccess), ShouldBeTrue)
			})
		})
	})

	Convey("Given a file store with a custom mode", t, func() {
		path := filepath.Join(t.TempDir(), "books.json")
		store := NewFileStore(path, WithFileMode(0o600))

		So(store.Save(context.Background(), dune), ShouldBeNil)

		info, err := os.Stat(path)
		So(err, ShouldBeNil)
		So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()

		Convey("When created without options", func() {
			store := NewMemoryStore()
			books, err := store.Load(ctx)

			Convey("Then it holds an empty collection", func() {
				So(err, ShouldBeNil)
				So(books, ShouldHaveLength, 0)
				So(string(store.Document()), ShouldEqual, "[]")
				So(store.Backend(), ShouldEqual, "memory")
			})
		})

		Convey("When seeded with books", func() {
			store := NewMemoryStore(WithBooks(dune))
			books, err := store.Load(ctx)

			Convey("Then Load returns them", func() {
				So(err, ShouldBeNil)
				So(books, ShouldResemble, dune)
			})
		})

		Convey("When seeded with no document", func() {
			store := NewMemoryStore(WithRawDocument(nil))
			_, err := store.Load(ctx)

			Convey("Then Load reports not found and the store has no Init", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				_, ok := Store(store).(Initializer)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When seeded with a malformed document", func() {
			store := NewMemoryStore(WithRawDocument([]byte("null")))
			_, err := store.Load(ctx)

			Convey("Then Load reports ErrMalformed", func() {
				So(errors.Is(err, ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When saving", func() {
			store := NewMemoryStore()
			So(store.Save(ctx, dune), ShouldBeNil)

			Convey("Then the document is replaced", func() {
				books, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(books, ShouldResemble, dune)
			})
		})
	})
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	Convey("Given an S3 store over a fake client", t, func() {
		ctx := context.Background()
		client := newFakeS3()
		store := NewS3Store(client, "library", "books.json")

		So(store.Backend(), ShouldEqual, "s3")

		Convey("When the object does not exist", func() {
			_, err := store.Load(ctx)

			Convey("Then Load reports not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, ErrStorageAccess), ShouldBeTrue)
			})

			Convey("And Init writes an empty array", func() {
				created, err := store.Init(ctx)
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(string(client.objects["library/books.json"]), ShouldEqual, "[]")
			})
		})

		Convey("When saving and loading", func() {
			So(store.Save(ctx, dune), ShouldBeNil)
			books, err := store.Load(ctx)

			Convey("Then the object round-trips with a JSON content type", func() {
				So(err, ShouldBeNil)
				So(books, ShouldResemble, dune)
				So(client.puts, ShouldHaveLength, 1)
				So(*client.puts[0].ContentType, ShouldEqual, "application/json; charset=utf-8")
				So(*client.puts[0].ContentLength, ShouldEqual, int64(len(client.objects["library/books.json"])))
			})
		})

		Convey("When the object is malformed", func() {
			client.objects["library/books.json"] = []byte("{}")
			_, err := store.Load(ctx)

			Convey("Then Load reports ErrMalformed", func() {
				So(errors.Is(err, ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When the client fails", func() {
			client.getErr = errors.New("connection reset")
			client.putErr = errors.New("access denied")

			Convey("Then Load and Save report access errors", func() {
				_, err := store.Load(ctx)
				So(errors.Is(err, ErrStorageAccess), ShouldBeTrue)
				So(errors.Is(err, ErrNotFound), ShouldBeFalse)
				So(errors.Is(store.Save(ctx, dune), ErrStorageAccess), ShouldBeTrue)
			})
		})
	})
}

type fakeRedis struct {
	values map[string][]byte
	err    error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	if expiration != 0 {
		return redis.NewStatusResult("", errors.New("unexpected expiration"))
	}
	data, ok := value.([]byte)
	if !ok {
		return redis.NewStatusResult("", errors.New("unexpected value type"))
	}
	f.values[key] = data
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store over a fake client", t, func() {
		ctx := context.Background()
		client := &fakeRedis{values: map[string][]byte{}}
		store := NewRedisStore(client, "books")

		So(store.Backend(), ShouldEqual, "redis")

		Convey("When the key is missing", func() {
			_, err := store.Load(ctx)

			Convey("Then Load reports not found and Init creates it", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				created, initErr := store.Init(ctx)
				So(initErr, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(string(client.values["books"]), ShouldEqual, "[]")
			})
		})

		Convey("When saving and loading", func() {
			So(store.Save(ctx, dune), ShouldBeNil)
			books, err := store.Load(ctx)

			Convey("Then the value round-trips", func() {
				So(err, ShouldBeNil)
				So(books, ShouldResemble, dune)
			})
		})

		Convey("When the key holds a non-array", func() {
			client.values["books"] = []byte(`"books"`)
			_, err := store.Load(ctx)

			Convey("Then Load reports ErrMalformed", func() {
				So(errors.Is(err, ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When the server is unreachable", func() {
			client.err = errors.New("dial tcp: connection refused")

			Convey("Then Load and Save report access errors", func() {
				_, err := store.Load(ctx)
				So(errors.Is(err, ErrStorageAccess), ShouldBeTrue)
				So(errors.Is(store.Save(ctx, dune), ErrStorageAccess), ShouldBeTrue)
			})
		})
	})
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented memory store", t, func() {
		ctx := context.Background()
		inner := NewMemoryStore(WithRawDocument(nil))
		store := Instrument(inner)

		So(store.Backend(), ShouldEqual, "memory")

		Convey("When Load fails", func() {
			_, err := store.Load(ctx)

			Convey("Then the error passes through unchanged", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When saving", func() {
			So(store.Save(ctx, dune), ShouldBeNil)

			Convey("Then the inner store holds the document and metrics observe it", func() {
				books, err := inner.Load(ctx)
				So(err, ShouldBeNil)
				So(books, ShouldResemble, dune)

				count, gatherErr := testutil.GatherAndCount(metrics.GetRegistry(), "books_api_storage_latency_milliseconds")
				So(gatherErr, ShouldBeNil)
				So(count, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the inner store cannot initialize", func() {
			created, err := EnsureInitialized(ctx, store)

			Convey("Then Init is a no-op", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeFalse)
			})
		})
	})

	Convey("Given an instrumented file store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "books.json")
		store := Instrument(NewFileStore(path))

		created, err := EnsureInitialized(ctx, store)

		So(err, ShouldBeNil)
		So(created, ShouldBeTrue)
		_, statErr := os.Stat(path)
		So(statErr, ShouldBeNil)
	})
}
