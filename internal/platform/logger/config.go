package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects level, encoding and destination. config.Config fills it from
// LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE.
type LoggerConfig struct {
	Level      string
	Format     string // json | console
	OutputFile string // stdout | stderr | path
}

// normalized returns a copy with lowercase names and empty fields set to info/json/stdout.
func (c LoggerConfig) normalized() *LoggerConfig {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.OutputFile == "" {
		c.OutputFile = "stdout"
	}
	return &c
}

// ToZapLevel parses Level; anything unknown logs at info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	if strings.EqualFold(c.Level, "warning") {
		return zapcore.WarnLevel
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
