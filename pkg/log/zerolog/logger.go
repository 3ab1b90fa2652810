// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"

	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Logger adapts a zerolog logger to the loglib.Logger interface. Fields are
// written in key order so that console lines for the same item and store
// always read the same way.
type Logger struct {
	zerologger *zerolog.Logger
	fields     loglib.Fields
}

func NewLogger(zl *zerolog.Logger) *Logger {
	return &Logger{
		zerologger: zl,
	}
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Trace(), msg, fields)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Info(), msg, fields)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Warn().Err(err), msg, fields)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Error().Err(err), msg, fields)
}

func (l *Logger) Panic(msg string, fields ...loglib.Fields) {
	l.write(l.zerologger.Panic(), msg, fields)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{
		zerologger: l.zerologger,
		fields:     loglib.MergeFields(l.fields, fields),
	}
}

// write merges the call fields over the logger fields and sends the event.
// Disabled levels return a nil event, which zerolog turns into a no-op.
func (l *Logger) write(event *zerolog.Event, msg string, fields []loglib.Fields) {
	if event == nil {
		return
	}
	merged := l.fields
	for _, f := range fields {
		merged = loglib.MergeFields(merged, f)
	}
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		event = withField(event, key, merged[key])
	}
	event.Msg(msg)
}

func withField(event *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return event.Str(key, v)
	case int:
		return event.Int(key, v)
	case int64:
		return event.Int64(key, v)
	case float64:
		return event.Float64(key, v)
	case bool:
		return event.Bool(key, v)
	case time.Duration:
		return event.Dur(key, v)
	case []string:
		return event.Strs(key, v)
	case error:
		return event.AnErr(key, v)
	case fmt.Stringer:
		return event.Stringer(key, v)
	default:
		return event.Interface(key, v)
	}
}
