package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Log output formats selectable with --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newLogger returns a text logger with short wall-clock timestamps such as
// "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// setLogFormat switches l between human text and one JSON object per line,
// which suits `squaremap serve` under a log collector.
func setLogFormat(l *log.Logger, format string) error {
	switch format {
	case "", logFormatText:
		l.SetFormatter(log.TextFormatter)
	case logFormatJSON:
		l.SetFormatter(log.JSONFormatter)
		l.SetTimeFormat(time.RFC3339)
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, logFormatText, logFormatJSON)
	}
	return nil
}

// progress logs how long a step took, e.g. "Rendered 42 cells (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches l to ctx for commands that only receive a context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
