package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wbsgen/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Laid out 3 items")

	if !strings.Contains(buf.String(), "Laid out 3 items (") {
		t.Errorf("progress output = %q, want message with duration", buf.String())
	}
}

func TestDebugHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &debugHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	var (
		_ observability.PipelineHooks = h
		_ observability.CacheHooks    = h
		_ observability.HTTPHooks     = h
	)

	h.OnLayoutComplete(ctx, "wbs", 12, time.Millisecond, nil)
	h.OnCacheHit(ctx, "layout")
	h.OnError(ctx, "GET", "/api/layouts/{id}", "NOT_FOUND", errors.New("gone"))

	out := buf.String()
	for _, want := range []string{"layout done", "boxes=12", "cache hit", "type=layout", "code=NOT_FOUND"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}
