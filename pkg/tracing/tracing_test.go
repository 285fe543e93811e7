package tracing

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given tracing initialization", t, func() {
		ctx := context.Background()

		Convey("When tracing is disabled", func() {
			shutdown, err := Init(ctx, false)

			Convey("Then the shutdown is a no-op", func() {
				So(err, ShouldBeNil)
				So(shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When tracing is enabled", func() {
			var buf bytes.Buffer
			shutdown, err := Init(ctx, true,
				WithServiceName("psychometrician-test"),
				WithWriter(&buf),
				WithPrettyPrint(false),
			)
			So(err, ShouldBeNil)

			_, span := Tracer("test").Start(ctx, "session.start")
			span.End()

			Convey("Then spans are flushed on shutdown", func() {
				So(shutdown(ctx), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "session.start")
				So(buf.String(), ShouldContainSubstring, "psychometrician-test")
			})
		})
	})
}
