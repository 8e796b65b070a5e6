package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitWith(t *testing.T) {
	Convey("Given a JSON logger on a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWith(FormatJSON, &buf), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields", func() {
			Get().Info(context.Background(), "ranked", String("rider", "r1"), Int("count", 3))

			Convey("Then the record is JSON with fields and a source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `"msg":"ranked"`)
				So(out, ShouldContainSubstring, `"rider":"r1"`)
				So(out, ShouldContainSubstring, `"count":3`)
				So(out, ShouldContainSubstring, `logger_test.go`)
			})
		})

		Convey("When using With and Named", func() {
			Named("ledger").With(String("listing", "l1")).Warn(context.Background(), "dup", Error(errors.New("x")))

			Convey("Then the group and bound field appear", func() {
				So(buf.String(), ShouldContainSubstring, `"ledger":{`)
				So(buf.String(), ShouldContainSubstring, `"listing":"l1"`)
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(context.Background(), "hidden")

			Convey("Then lower records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})
	})

	Convey("Given an unknown format", t, func() {
		So(InitWith("xml", &bytes.Buffer{}), ShouldNotBeNil)
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		err := SetLevelString("loud")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "loud"), ShouldBeTrue)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Info(context.Background(), "nothing") }, ShouldNotPanic)
	})
}
