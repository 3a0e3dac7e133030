package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/observability"
)

// logHooks reports pipeline and cache events to the debug log. They are
// registered by --verbose.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnNormalizeStart(_ context.Context, sources, width, height int) {
	h.logger.Debug("normalize", "sources", sources, "size", sizeString(width, height))
}

func (h logHooks) OnNormalizeComplete(_ context.Context, sources int, d time.Duration, err error) {
	h.logger.Debug("normalized", "sources", sources, "duration", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnSignatureStart(_ context.Context, width, height, sampleSize int) {
	h.logger.Debug("signature", "size", sizeString(width, height), "sampleSize", sampleSize)
}

func (h logHooks) OnSignatureComplete(_ context.Context, d time.Duration) {
	h.logger.Debug("signature done", "duration", d.Round(time.Microsecond))
}

func (h logHooks) OnCompareStart(_ context.Context, expectedPath string) {
	h.logger.Debug("compare", "expected", expectedPath)
}

func (h logHooks) OnCompareComplete(_ context.Context, expectedPath, outcome string, distance float64, d time.Duration, err error) {
	h.logger.Debug("compared", "expected", expectedPath, "outcome", outcome, "distance", distance,
		"duration", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func sizeString(w, h int) string {
	if w == 0 && h == 0 {
		return "auto"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)
