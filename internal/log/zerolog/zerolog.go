// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"io"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"time"

	loglib "github.com/xataio/catalogsearch/pkg/log"
	zerologlib "github.com/xataio/catalogsearch/pkg/log/zerolog"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel string
	// Format is one of console or json. Defaults to console.
	Format string
	// Out defaults to stderr, stdout is reserved for command output.
	Out io.Writer
}

const jsonFormat = "json"

// init sets some zerolog global defaults we want to keep throughout the project.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.ErrorStackFieldName = "error.stack"
	// remove v-level from zerologr wrapper.
	// The v-level is redundant with `level` emitted by zerolog.
	zerologr.VerbosityFieldName = ""

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// SetGlobalLogger sets the log output in the stdlib log package and the
// zerolog global loggers.
func SetGlobalLogger(logger *zerolog.Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	log.Logger = *logger

	// used when context.Context is missing a contextual logger
	zerolog.DefaultContextLogger = logger
}

func NewStdLogger(l *zerolog.Logger) loglib.Logger {
	return zerologlib.NewLogger(l)
}

// NewLogr wraps the logger for libraries that log through go-logr, such as
// the OpenTelemetry SDK.
func NewLogr(l *zerolog.Logger) logr.Logger {
	return zerologr.New(l)
}

// NewLogger creates a new logger with the configured level and format. It
// emits a timestamp and the caller's filename.
//
// Debug and trace levels are sampled: up to 100 trace logs per minute are
// kept, and once 1000 debug logs have been emitted in a minute only every 5th
// one is.
func NewLogger(config *Config) *zerolog.Logger {
	// ignore the error, it defaults to no level
	level, _ := zerolog.ParseLevel(config.LogLevel)

	out := config.Out
	if out == nil {
		out = os.Stderr
	}
	if config.Format != jsonFormat {
		out = zerolog.NewConsoleWriter(
			withTimeFormat(time.RFC3339Nano),
			withOut(out),
		)
	}

	logger := zerolog.New(out).
		Sample(zerolog.LevelSampler{
			TraceSampler: &zerolog.BurstSampler{
				Burst:  100,
				Period: 1 * time.Minute,
			},
			DebugSampler: &zerolog.BurstSampler{
				Burst:       1000,
				Period:      1 * time.Minute,
				NextSampler: &zerolog.BasicSampler{N: 5},
			},
		}).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger().
		Level(level)

	return &logger
}

func withTimeFormat(format string) func(*zerolog.ConsoleWriter) {
	return func(w *zerolog.ConsoleWriter) {
		w.TimeFormat = format
	}
}

func withOut(out io.Writer) func(*zerolog.ConsoleWriter) {
	return func(w *zerolog.ConsoleWriter) {
		w.Out = out
	}
}
