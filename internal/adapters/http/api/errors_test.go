package api

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorHelpers(t *testing.T) {
	Convey("Given the error helpers", t, func() {
		cause := errors.New("eof")

		Convey("WrapKind matches both kind and cause", func() {
			err := WrapKind("decode item", ErrValidation, cause)
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "decode item: validation failed: eof")
		})

		Convey("Wrap keeps nil as nil", func() {
			So(Wrap("op", nil), ShouldBeNil)
			So(Wrap("op", cause).Error(), ShouldEqual, "op: eof")
		})

		Convey("NewKind carries only the kind", func() {
			err := NewKind("recover", ErrInternal)
			So(errors.Is(err, ErrInternal), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "recover: internal error")
		})
	})

	Convey("Given a rejected request", t, func() {
		err := invalid("parse limit", fieldError{Field: "limit", Reason: "must be an integer"})

		Convey("It is a validation error carrying its fields", func() {
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
			var v *validationError
			So(errors.As(err, &v), ShouldBeTrue)
			So(v.fields, ShouldResemble, []fieldError{{Field: "limit", Reason: "must be an integer"}})
		})
	})

	Convey("Given integer parameters", t, func() {
		n, err := parseInt("limit", "12")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 12)

		n, err = parseInt("limit", "99999999999999999999")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, math.MaxInt)

		n, err = parseInt("limit", "-99999999999999999999")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, math.MinInt)

		_, err = parseInt("limit", "ten")
		So(errors.Is(err, ErrValidation), ShouldBeTrue)

		_, err = parseInt("limit", "1.5")
		So(errors.Is(err, ErrValidation), ShouldBeTrue)
	})

	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(422), ShouldEqual, "validation")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(409), ShouldEqual, "medium")
	})
}
