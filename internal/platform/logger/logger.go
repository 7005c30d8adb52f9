package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger so components can derive named children.
type Logger struct {
	*zap.Logger
	config *LoggerConfig
}

// NewLogger builds a logger from cfg. A nil cfg logs info and above as JSON to stdout.
func NewLogger(cfg *LoggerConfig) *Logger {
	if cfg == nil {
		cfg = &LoggerConfig{}
	}
	cfg = cfg.normalized()

	var zapConfig zap.Config
	if cfg.Level == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(cfg.ToZapLevel())

	if cfg.OutputFile != "stdout" && cfg.OutputFile != "stderr" {
		logDir := filepath.Dir(cfg.OutputFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory '%s', logging to stdout: %v\n", logDir, err)
			zapConfig.OutputPaths = []string{"stdout"}
			zapConfig.ErrorOutputPaths = []string{"stderr"}
		} else {
			zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
			zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, "stderr"}
		}
	} else {
		zapConfig.OutputPaths = []string{cfg.OutputFile}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	switch cfg.Format {
	case "console", "text":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapConfig.Encoding = "json"
	}

	zl, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing zap logger: %v. Falling back to production defaults.\n", err)
		zl, _ = zap.NewProduction()
	}

	l := &Logger{Logger: zl, config: cfg}
	l.Debug("Logger initialized",
		zap.String("level", cfg.Level),
		zap.String("format", cfg.Format),
		zap.Strings("output_paths", zapConfig.OutputPaths))
	return l
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: &LoggerConfig{Level: "info", Format: "json", OutputFile: "stdout"}}
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}
