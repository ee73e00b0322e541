package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Laid out 42 items (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// debugHooks routes observability events to the CLI logger at debug level.
type debugHooks struct {
	logger *log.Logger
}

func (h *debugHooks) OnIngestStart(_ context.Context, format, name string) {
	h.logger.Debug("ingest start", "format", format, "name", name)
}

func (h *debugHooks) OnIngestComplete(_ context.Context, format, name string, lineCount int, d time.Duration, err error) {
	h.logger.Debug("ingest done", "format", format, "name", name, "lines", lineCount, "duration", d, "err", err)
}

func (h *debugHooks) OnLayoutStart(_ context.Context, vizType string, itemCount int) {
	h.logger.Debug("layout start", "viz", vizType, "items", itemCount)
}

func (h *debugHooks) OnLayoutComplete(_ context.Context, vizType string, boxCount int, d time.Duration, err error) {
	h.logger.Debug("layout done", "viz", vizType, "boxes", boxCount, "duration", d, "err", err)
}

func (h *debugHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *debugHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "duration", d, "err", err)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, route string) {}

func (h *debugHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *debugHooks) OnError(_ context.Context, method, route, code string, err error) {
	h.logger.Debug("handler error", "method", method, "route", route, "code", code, "err", err)
}
