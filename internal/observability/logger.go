package observability

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a JSON logger in production and a text logger elsewhere.
// When logFile is set, output is also written to a size-rotated file.
func NewLogger(env, logFile string) *slog.Logger {
	return newLogger(env, output(os.Stdout, logFile))
}

func newLogger(env string, w io.Writer) *slog.Logger {
	if env == "prod" || env == "production" {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

func output(stdout io.Writer, logFile string) io.Writer {
	if logFile == "" {
		return stdout
	}
	return io.MultiWriter(stdout, &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 30,
		MaxAge:     30,
		Compress:   true,
	})
}
