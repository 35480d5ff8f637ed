package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level
// structured log lines. Failures are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger, or to log.Default() when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string, year int) {
	h.Logger.Debug("load start", "source", source, "year", year)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, records int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("load failed", "source", source, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("load complete", "source", source, "records", records, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, year, bookings int) {
	h.Logger.Debug("layout start", "year", year, "bookings", bookings)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, year, supports int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "year", year, "error", err)
		return
	}
	h.Logger.Debug("layout complete", "year", year, "supports", supports, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "error", err)
		return
	}
	h.Logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *LogHooks) OnPageFetched(_ context.Context, source string, page, records int) {
	h.Logger.Debug("page fetched", "source", source, "page", page, "records", records)
}

func (h *LogHooks) OnRetry(_ context.Context, source string, attempt int, err error) {
	h.Logger.Warn("retrying source", "source", source, "attempt", attempt, "error", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Error("request failed", "method", method, "path", path, "error", err)
}

var _ Hooks = (*LogHooks)(nil)
