package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized with defaults", func() {
			err := Init()
			So(err, ShouldBeNil)
			defer func() { _ = Sync() }()

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(func() { Get().Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
			})
		})

		Convey("When it writes to a custom writer", func() {
			var buf bytes.Buffer
			So(Init(WithWriter(&buf)), ShouldBeNil)

			Get().Warn(context.Background(), "cell dropped", String("id", "fr-idf"), Error(errors.New("score missing")))

			Convey("Then the fields and the caller appear in the output", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "cell dropped")
				So(out, ShouldContainSubstring, "id=fr-idf")
				So(out, ShouldContainSubstring, "score missing")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When a file sink is configured", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "logs", "sitescope.log")
			So(Init(WithFile(path, 1, 1)), ShouldBeNil)

			Get().Info(context.Background(), "written to file")
			So(Sync(), ShouldBeNil)

			Convey("Then the file contains the entry", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "written to file")
			})
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "visible")

			Convey("Then lower levels are filtered", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When an unknown level is given", func() {
			err := SetLevelString("verbose")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Reset(func() { _ = SetLevelString("info") })
	})
}

func TestLoggerNamed(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Named returns a child logger", func() {
			namedLogger := Named("test")
			So(namedLogger, ShouldNotBeNil)
			So(func() { namedLogger.Info(context.Background(), "test message") }, ShouldNotPanic)
		})
	})
}
