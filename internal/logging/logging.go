// Package logging provides structured logging setup using zerolog. Output
// goes to the console and, when a file is configured, to a size-rotated log
// file (5 MB per file, 3 backups kept).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nutbridge/nut-udp-bridge/internal/config"
)

const (
	logMaxSizeMB = 5
	logBackups   = 3
)

// New builds the root logger from the configured level and file target. An
// unparseable level falls back to info. The returned logger is safe to copy
// and hand to components.
func New(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	var out io.Writer = console
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logBackups,
		}
		out = zerolog.MultiLevelWriter(console, rotated)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
