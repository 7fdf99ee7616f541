package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOpErrors(t *testing.T) {
	Convey("Given operation-tagged errors", t, func() {
		cause := errors.New("boom")

		Convey("When wrapping with a kind", func() {
			err := WrapKind("api.op", ErrBadRequest, cause)

			Convey("Then both kind and cause should match", func() {
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			})
		})

		Convey("When creating a bare kind", func() {
			err := NewKind("api.op", ErrBackpressure)

			Convey("Then it should carry the op", func() {
				So(errors.Is(err, ErrBackpressure), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.op: backpressure")
			})
		})

		Convey("When wrapping nil", func() {
			Convey("Then nil should be returned", func() {
				So(Wrap("api.op", nil), ShouldBeNil)
				So(Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
			})
		})
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Given errors from the layers below", t, func() {
		Convey("Then each should map to a status", func() {
			cases := map[error]int{
				ErrTooLarge:              http.StatusBadRequest,
				ErrEmptyUpload:           http.StatusBadRequest,
				context.DeadlineExceeded: http.StatusGatewayTimeout,
				errors.New("other"):      http.StatusInternalServerError,
			}
			for err, want := range cases {
				got, _ := statusFor(Wrap("api.op", err))
				So(got, ShouldEqual, want)
			}
		})
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		Convey("Then they should map to error types", func() {
			So(getErrorType(http.StatusBadGateway), ShouldEqual, "upstream_error")
			So(getErrorType(http.StatusServiceUnavailable), ShouldEqual, "unavailable")
			So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
			So(getErrorType(http.StatusTooManyRequests), ShouldEqual, "rate_limit")
			So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
			So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
			So(getErrorType(http.StatusOK), ShouldEqual, "unknown")
		})
	})
}
