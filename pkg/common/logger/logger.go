package logger

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

// Options configures the package logger.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Out receives debug, info and warn entries.
	Out io.Writer
	// Err receives error, fatal and panic entries.
	Err io.Writer
	// NoColor disables ANSI colours in console output.
	NoColor bool
}

func init() {
	logger = build(Options{Level: "info", Out: os.Stdout, Err: os.Stderr})
}

// Init replaces the package logger.
func Init(opts Options) error {
	if opts.Level == "" {
		opts.Level = "info"
	}
	if _, err := ParseLevel(opts.Level); err != nil {
		return err
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	logger = build(opts)
	return nil
}

func build(opts Options) zerolog.Logger {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	// Project pipelines log concurrently. Out and Err may be the same writer,
	// in which case they must share one lock.
	out := zerolog.SyncWriter(opts.Out)
	errOut := out
	if !sameWriter(opts.Out, opts.Err) {
		errOut = zerolog.SyncWriter(opts.Err)
	}
	writer := zerolog.MultiLevelWriter(
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        out,
				TimeFormat: time.RFC3339,
				NoColor:    opts.NoColor,
			},
			Levels: []zerolog.Level{
				zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel,
			},
		},
		SpecificLevelWriter{
			Writer: zerolog.ConsoleWriter{
				Out:        errOut,
				TimeFormat: time.RFC3339,
				NoColor:    opts.NoColor,
			},
			Levels: []zerolog.Level{
				zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel,
			},
		},
	)
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func sameWriter(a, b io.Writer) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}

// With returns a child of the package logger carrying the given string fields,
// passed as key/value pairs.
func With(kv ...string) zerolog.Logger {
	ctx := logger.With()
	for i := 0; i+1 < len(kv); i += 2 {
		ctx = ctx.Str(kv[i], kv[i+1])
	}
	return ctx.Logger()
}

func Infof(format string, args ...any) {
	logger.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	logger.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}

func Debugf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

// multilevel writer from https://stackoverflow.com/questions/76858037/how-to-use-zerolog-to-filter-info-logs-to-stdout-and-error-logs-to-stderr
type SpecificLevelWriter struct {
	io.Writer
	Levels []zerolog.Level
}

func (w SpecificLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	for _, l := range w.Levels {
		if l == level {
			return w.Write(p)
		}
	}
	return len(p), nil
}
