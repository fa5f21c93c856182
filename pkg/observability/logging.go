package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks emits every pipeline, cache, and source event to a logger at
// debug level. Long-running deployments register it at startup; one-shot
// CLI runs keep the no-op defaults and rely on the pipeline's own summary
// logging instead.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger. A nil logger uses the
// package default.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, recordCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "duration", duration, "err", err)
		return
	}
	h.logger.Debug("load complete", "source", source, "records", recordCount, "duration", duration)
}

func (h *LogHooks) OnThreadStart(_ context.Context, order string, recordCount int) {
	h.logger.Debug("thread start", "order", order, "records", recordCount)
}

func (h *LogHooks) OnThreadComplete(_ context.Context, order string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("thread failed", "order", order, "duration", duration, "err", err)
		return
	}
	h.logger.Debug("thread complete", "order", order, "duration", duration)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "duration", duration, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", duration)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key_type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key_type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key_type", keyType, "bytes", size)
}

func (h *LogHooks) OnFetch(_ context.Context, scheme, ref string) {
	h.logger.Debug("fetch start", "scheme", scheme, "ref", ref)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, scheme, ref string, recordCount int, duration time.Duration) {
	h.logger.Debug("fetch complete", "scheme", scheme, "ref", ref, "records", recordCount, "duration", duration)
}

func (h *LogHooks) OnFetchError(_ context.Context, scheme, ref string, err error) {
	h.logger.Debug("fetch failed", "scheme", scheme, "ref", ref, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ SourceHooks   = (*LogHooks)(nil)
)
