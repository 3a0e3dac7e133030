// Package cli implements the simcheck command-line interface.
//
// # Commands
//
//   - compare: assert that rendered output matches an expected image
//   - signature, distance: inspect signatures and distances
//   - merge, export-page: produce normalized images from mixed sources
//   - fixtures: convert PNG fixtures to uncompressed TIFF
//   - review: interactively promote or discard failed comparisons
//   - history: list recorded comparisons
//   - serve: run the HTTP API
//   - cache: manage the signature cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the [CLI] and is handed to the pipeline runner.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/config"
	"github.com/matzehuels/simcheck/pkg/observability"
	"github.com/matzehuels/simcheck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "simcheck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty reads the default location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug output includes callers and
// pipeline and cache events.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
	if level <= log.DebugLevel {
		h := logHooks{logger: c.Logger}
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
	}
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// backends selects which configured backends a command opens.
type backends struct {
	cache bool
	store bool
}

// newRunner opens a pipeline runner. Backends not selected in b are
// replaced by their null implementations for this run.
func (c *CLI) newRunner(ctx context.Context, b backends) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	copied := *cfg
	if !b.cache {
		copied.Cache.Backend = config.CacheNone
	}
	if !b.store {
		copied.Store.Backend = config.StoreNone
	}
	return pipeline.Open(ctx, &copied, c.Logger)
}
