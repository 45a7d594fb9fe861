package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LogLevel is shared by every core built from this package so it can be
	// changed at runtime.
	LogLevel = zap.NewAtomicLevel()
	// Logger is the process-wide structured logger.
	Logger *zap.Logger
)

func init() {
	var err error
	Logger, err = newConfig().Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(Logger)
}

// newConfig logs JSON to stderr; stdout belongs to command output.
func newConfig() zap.Config {
	config := zap.NewProductionConfig()
	config.Level = LogLevel
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig = zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "severity",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return config
}

// SetLevel parses a level name ("debug", "info", ...) and applies it.
// Unknown names fall back to info and are reported in the returned error.
func SetLevel(name string) error {
	if name == "" {
		name = "info"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		LogLevel.SetLevel(zapcore.InfoLevel)
		return err
	}
	LogLevel.SetLevel(lvl)
	return nil
}

// Quiet routes the global logger to nowhere. The TUI uses it so JSON lines
// do not corrupt the alternate screen.
func Quiet() {
	Logger = zap.NewNop()
	zap.ReplaceGlobals(Logger)
}
