package repository

import (
	"errors"
	"testing"

	"github.com/okian/books/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodec(t *testing.T) {
	Convey("Given a collection", t, func() {
		books := model.Collection{
			{ID: 1, Title: "Dune", Author: "Herbert"},
			{ID: 2, Title: "Émile", Author: "Rousseau"},
		}

		Convey("When encoding it", func() {
			data, err := Encode(books)

			Convey("Then it should be a 2-space indented array in field order", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `[
  {
    "id": 1,
    "title": "Dune",
    "author": "Herbert"
  },
  {
    "id": 2,
    "title": "Émile",
    "author": "Rousseau"
  }
]`)
			})

			Convey("And decoding should reproduce the collection", func() {
				decoded, err := Decode(data)
				So(err, ShouldBeNil)
				So(decoded, ShouldResemble, books)
			})
		})

		Convey("When encoding nil", func() {
			data, err := Encode(nil)

			Convey("Then it should be an empty array", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "[]")
			})
		})
	})

	Convey("Given stored documents", t, func() {
		Convey("When the document is an empty array with surrounding whitespace and a BOM", func() {
			books, err := Decode([]byte("\xef\xbb\xbf \n[]\n"))

			Convey("Then it should decode to an empty, non-nil collection", func() {
				So(err, ShouldBeNil)
				So(books, ShouldNotBeNil)
				So(books, ShouldHaveLength, 0)
			})
		})

		for name, doc := range map[string]string{
			"invalid JSON":      `[{"id": 1,`,
			"an object":         `{"id": 1}`,
			"null":              `null`,
			"empty":             ``,
			"wrong field types": `[{"id": "one", "title": "Dune"}]`,
			"a fractional id":   `[{"id": 1.5}]`,
		} {
			Convey("When the document is "+name, func() {
				_, err := Decode([]byte(doc))

				Convey("Then it should be malformed", func() {
					So(errors.Is(err, ErrMalformed), ShouldBeTrue)
					So(Kind(err), ShouldEqual, "malformed")
				})
			})
		}
	})
}

func TestKind(t *testing.T) {
	Convey("Given storage errors", t, func() {
		So(Kind(nil), ShouldEqual, "")
		So(Kind(notFoundError("op", "x")), ShouldEqual, "not_found")
		So(Kind(accessError("op", errors.New("disk"))), ShouldEqual, "access")
		So(Kind(errors.New("boom")), ShouldEqual, "other")
	})
}
