package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/cache"
	"github.com/matzehuels/simcheck/pkg/config"
	"github.com/matzehuels/simcheck/pkg/document"
	"github.com/matzehuels/simcheck/pkg/normalize"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/store"
	"github.com/matzehuels/simcheck/pkg/vector"
)

// Runner executes comparisons with caching and history.
// Both CLI and API use it to avoid duplicating the comparison flow.
//
// The Runner holds no per-comparison state. Multiple goroutines can safely
// use the same Runner.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Store      store.Store
	Normalizer *normalize.Normalizer
	Pages      document.PageRenderer
	Config     *config.Config
	Logger     *log.Logger
}

// NewRunner creates a runner from already opened backends.
// Nil arguments select NullCache, DefaultKeyer, NullStore, config.Default
// and log.Default respectively.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, cfg *config.Config, logger *log.Logger) (*Runner, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if st == nil {
		st = store.NewNullStore()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	interp, err := raster.ParseInterpolator(cfg.Normalize.Interpolator)
	if err != nil {
		return nil, err
	}
	rasterizer, err := vector.New(cfg.Normalize.VectorBackend)
	if err != nil {
		return nil, err
	}
	pages := document.NewDispatcher()
	pages.Register(document.KindPDF, document.GhostscriptRenderer{Resolution: cfg.Normalize.Resolution})

	return &Runner{
		Cache: c,
		Keyer: keyer,
		Store: st,
		Normalizer: normalize.New(
			normalize.WithRasterizer(rasterizer),
			normalize.WithPageRenderer(pages),
			normalize.WithInterpolator(interp),
			normalize.WithLogger(logger),
		),
		Pages:  pages,
		Config: cfg,
		Logger: logger,
	}, nil
}

// Open builds a runner with the cache and store backends named in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := OpenCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		c.Close()
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Namespace)
	}
	r, err := NewRunner(c, keyer, st, cfg, logger)
	if err != nil {
		c.Close()
		st.Close()
		return nil, err
	}
	return r, nil
}

// OpenCache opens the configured cache backend.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return cache.NewNullCache(), nil
}

// OpenStore opens the configured history backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		return store.NewSQLiteStore(cfg.Path)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return store.NewNullStore(), nil
}

// Close releases the cache and store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return stderrors.Join(errs...)
}
