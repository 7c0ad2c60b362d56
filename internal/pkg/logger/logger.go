package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json, pretty
	FileEnabled    bool
	FilePath       string // logs directory path
	RotationSize   int    // MB
	RetentionDays  int
	ServiceName    string
	ServiceVersion string
}

// Init initializes the global logger
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writers := []io.Writer{consoleWriter(cfg.Format, os.Stderr)}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		writers = append(writers,
			rotatingFile(cfg.FilePath, "app.log", cfg.RotationSize, cfg.RetentionDays, 10),
			// error.log receives ERROR and above only
			&levelFilter{
				w:   rotatingFile(cfg.FilePath, "error.log", cfg.RotationSize, cfg.RetentionDays, 10),
				min: zerolog.ErrorLevel,
			},
		)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Logger()

	log.Info().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("Logger initialized")

	return nil
}

// NewQueryLogger creates a logger for database queries (query.log)
func NewQueryLogger(logPath string, rotationSize int, retentionDays int) zerolog.Logger {
	return fileLogger(logPath, "query.log", "query", rotationSize, retentionDays, 5)
}

// NewAccessLogger creates a logger for HTTP access logs (access.log)
func NewAccessLogger(logPath string, rotationSize int, retentionDays int) zerolog.Logger {
	return fileLogger(logPath, "access.log", "access", rotationSize, retentionDays, 10)
}

// fileLogger falls back to the global logger when the directory is unusable
func fileLogger(logPath, file, kind string, rotationSize, retentionDays, backups int) zerolog.Logger {
	if logPath == "" {
		return log.Logger
	}
	if err := os.MkdirAll(logPath, 0755); err != nil {
		log.Warn().Err(err).Str("type", kind).Msg("Failed to create log directory, using default logger")
		return log.Logger
	}

	return zerolog.New(rotatingFile(logPath, file, rotationSize, retentionDays, backups)).With().
		Timestamp().
		Str("type", kind).
		Logger()
}

func rotatingFile(dir, name string, sizeMB, ageDays, backups int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    sizeMB,
		MaxAge:     ageDays,
		MaxBackups: backups,
		Compress:   true,
	}
}

func consoleWriter(format string, out io.Writer) io.Writer {
	if format == "pretty" {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return out
}

// levelFilter drops events below min
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
