package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the shared logger used when a context carries none.
	//nolint:gochecknoglobals // Logger is used all over the project, so it's okay.
	global *zap.SugaredLogger
	// globalLevel gates every logger built by New without its own level.
	//nolint:gochecknoglobals // Adjusted at runtime from the settings file.
	globalLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() { //nolint:gochecknoinits // Packages log before any binary calls Setup.
	SetLogger(New(globalLevel, os.Stderr))
}

// errUnknownLevel is returned by Setup for an unparsable level name.
var errUnknownLevel = errors.New("unknown log level")

// New creates a console logger writing to out. Logs go to stderr when out is
// nil, keeping stdout free for the terminal surface of the alarm engine.
func New(level zapcore.LevelEnabler, out io.Writer, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = globalLevel
	}

	if out == nil {
		out = os.Stderr
	}

	//nolint:exhaustruct // Default encoder values are fine for the rest.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)

	return zap.New(core, options...).Sugar()
}

// Setup applies a level name from the settings file and redirects the global
// logger to out when it is not nil.
func Setup(levelName string, out io.Writer) error {
	level, ok := ParseLogLevel(levelName)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLevel, levelName)
	}

	if out != nil {
		SetLogger(New(globalLevel, out))
	}

	SetLevel(level)

	return nil
}

// ParseLogLevel converts a level name such as "debug" or "WARN" to a zap level.
// An empty name means info.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, true
	}

	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Level returns the current global level.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger replaces the global logger. Call it before starting goroutines.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// SetLevel changes the global level at runtime.
func SetLevel(level zapcore.Level) {
	//nolint:errcheck // Sync fails on terminals and there is nothing to do about it.
	defer global.Sync()

	globalLevel.SetLevel(level)
}
