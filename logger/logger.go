package logger

import (
	"context"
	c "eventers-ticketing/context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

const CorrelationId = "correlation_id"

var newlines = regexp.MustCompile(`(\n)|(\r\n)`)

func init() {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)
}

// SetLevel parses level and applies it, falling back to info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("setLevel: unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetFormat selects "json" or "text" output, falling back to text.
func SetFormat(format string) {
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{})
		logger.Warnf("setFormat: unknown log format %q, using text", format)
	}
}

func entry(ctx context.Context) *logrus.Entry {
	return logger.WithField(CorrelationId, c.GetContextValue(ctx, c.ContextKeyCorrelationID))
}

func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Fatalf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

func Info(ctx context.Context, msg string) {
	entry(ctx).Info(msg)
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debug(escapeString(format, args...))
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Error(escapeString(format, args...))
}

// LogExecutionTime logs the time elapsed since start. Meant to be deferred.
func LogExecutionTime(ctx context.Context, start time.Time, msg string) {
	entry(ctx).WithField("elapsed_ms", time.Since(start).Milliseconds()).Debug(msg)
}

func escapeString(format string, args ...interface{}) string {
	errorMessage := fmt.Sprintf(format, args...)
	return newlines.ReplaceAllString(errorMessage, "\\n ")
}
