package logger

import (
	"comment-ranker/internal/config"
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitFromConfig installs the default slog logger. Every record is also kept in
// the in-memory ring and fanned out to live subscribers so the form can show it.
func InitFromConfig() {
	Init(os.Stdout, config.AppConfig.LogLevel, config.AppConfig.LogFormat)
}

func Init(w io.Writer, level string, format string) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	switch format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(NewBroadcastHandler(handler)))
}

func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

// Progress logs one step of a counted stage, e.g. rows appended so far.
func Progress(stage string, current, total int, args ...any) {
	attrs := append([]any{"stage", stage, "current", current, "total", total}, args...)
	slog.Default().Info("progress", attrs...)
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
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
