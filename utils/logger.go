package utils

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/m-mizutani/masq"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogFileSettings struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type LogSettings struct {
	Level  string
	Format string // json, text, pretty
	File   LogFileSettings
}

var jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("password"),
		masq.WithFieldName("access"),
		masq.WithFieldName("refresh"),
		masq.WithFieldName("token"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("jwt_secret"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(jwtPattern),
	)
}

// NewLogger builds the process logger and returns it together with a closer
// for the rolling log file, if any.
func NewLogger(s LogSettings) (*slog.Logger, io.Closer) {
	return NewLoggerWithWriter(s, os.Stdout)
}

func NewLoggerWithWriter(s LogSettings, w io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if s.File.Enabled && s.File.Path != "" {
		rolling := &lumberjack.Logger{
			Filename:   s.File.Path,
			MaxSize:    s.File.MaxSizeMB,
			MaxBackups: s.File.MaxBackups,
			MaxAge:     s.File.MaxAgeDays,
			Compress:   s.File.Compress,
		}
		w = io.MultiWriter(w, rolling)
		closer = rolling
	}

	level := ParseLevel(s.Level)
	var handler slog.Handler
	switch strings.ToLower(s.Format) {
	case "pretty":
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: redactor()})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: redactor()})
	}
	return slog.New(handler), closer
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
