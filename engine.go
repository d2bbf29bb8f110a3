package jscompat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jward/jscompat/internal/ast"
	"github.com/jward/jscompat/internal/cache"
	"github.com/jward/jscompat/internal/compat"
	"github.com/jward/jscompat/internal/feature"
	"github.com/jward/jscompat/internal/report"
	"github.com/jward/jscompat/internal/source"
)

// Loader resolves an input reference (path or URL) to a SourceUnit.
type Loader interface {
	Load(ctx context.Context, ref string) (*source.Unit, error)
}

// ParseFunc is the parser/semantic-builder collaborator: bytes in, parsed
// handle with scope graph out. Replaceable for tests.
type ParseFunc func(ctx context.Context, content []byte) (*ast.Handle, error)

// Options control a single Analyze or AnalyzeBatch call.
type Options struct {
	UseCache     bool
	CacheTTL     time.Duration // 0 = no expiry for cached results
	Environments []string      // empty = every environment in the dataset
}

// DefaultOptions enables caching with a 24h result TTL.
func DefaultOptions() Options {
	return Options{UseCache: true, CacheTTL: 24 * time.Hour}
}

// Engine is the single entry point tying the compatibility database, cache
// manager, rule engine, and report aggregator together. CLI and library
// callers go through the same code path.
type Engine struct {
	db     *compat.Database
	cache  *cache.Manager
	rules  *feature.Registry
	loader Loader
	parse  ParseFunc
	logger *slog.Logger

	envs        []string
	workers     int
	unitTimeout time.Duration

	cachePath string
	cacheCap  int
	compatRaw []byte
}

// Option configures an Engine.
type Option func(*Engine)

// WithCachePath enables SQLite persistence for detection results and
// remote payloads at the given path. Without it the cache is in-process
// only.
func WithCachePath(path string) Option {
	return func(e *Engine) { e.cachePath = path }
}

// WithCacheCapacity bounds the in-process result LRU.
func WithCacheCapacity(n int) Option {
	return func(e *Engine) { e.cacheCap = n }
}

// WithEnvironments sets the default environment set for reports; Options
// override it per call.
func WithEnvironments(envs ...string) Option {
	return func(e *Engine) { e.envs = envs }
}

// WithLoader replaces the source loader collaborator.
func WithLoader(l Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithParser replaces the parser collaborator. Primarily a test seam, for
// instance to count parse invocations.
func WithParser(p ParseFunc) Option {
	return func(e *Engine) { e.parse = p }
}

// WithWorkers overrides the batch worker pool size (default: CPU count).
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithUnitTimeout bounds each batch unit's fetch and parse stages
// independently. Zero means no timeout.
func WithUnitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.unitTimeout = d }
}

// WithLogger sets the logger for non-fatal diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCompatData replaces the bundled compatibility dataset with raw JSON
// in the same schema. Used by tests and by callers shipping their own
// dataset version. The data is parsed by New, which reports invalid JSON
// as an error.
func WithCompatData(raw []byte) Option {
	return func(e *Engine) { e.compatRaw = raw }
}

// New creates an Engine. The compatibility database loads once per process;
// a persistent cache that fails to open is logged and skipped, never fatal.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		rules:  feature.DefaultRegistry(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.compatRaw != nil {
		db, err := compat.NewDatabase(e.compatRaw)
		if err != nil {
			return nil, fmt.Errorf("jscompat: invalid compat dataset: %w", err)
		}
		e.db = db
	} else {
		db, err := compat.Default()
		if err != nil {
			return nil, fmt.Errorf("jscompat: load compatibility database: %w", err)
		}
		e.db = db
	}

	var store *cache.Store
	if e.cachePath != "" {
		s, err := cache.NewStore(e.cachePath)
		if err == nil {
			err = s.Migrate()
		}
		if err != nil {
			// Cache errors are non-fatal by contract: run without persistence.
			e.logger.Warn("persistent cache unavailable", "path", e.cachePath, "error", err)
		} else {
			_ = s.SetMetadata("dataset_version", e.db.Version())
			store = s
		}
	}
	e.cache = cache.NewManager(e.cacheCap, store, e.logger)

	if e.parse == nil {
		e.parse = ast.Parse
	}
	if e.loader == nil {
		e.loader = source.NewLoader(e.cache)
	}
	return e, nil
}

// Close releases the engine's cache resources.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// Loader returns the engine's source loader, for callers that resolve
// units themselves before Analyze.
func (e *Engine) Loader() Loader {
	return e.loader
}

// DatasetVersion reports the loaded compatibility dataset's version.
func (e *Engine) DatasetVersion() string {
	return e.db.Version()
}

// Environments returns the environments the dataset tracks.
func (e *Engine) Environments() []string {
	return e.db.Environments()
}

// Analyze produces the compatibility report for an already-resolved unit.
// On a cache miss it parses, detects, and stores; aggregation against the
// compatibility database always runs, hit or miss. Parse failures are
// fatal for the unit: no partial report is produced.
func (e *Engine) Analyze(ctx context.Context, unit *source.Unit, opts Options) (*report.Report, error) {
	if unit == nil {
		return nil, errors.New("jscompat: nil source unit")
	}

	compute := func() ([]feature.Occurrence, error) {
		h, err := e.parse(ctx, unit.Content)
		if err != nil {
			return nil, err
		}
		defer h.Close()

		occs, faults := feature.Detect(h, e.rules)
		for _, f := range faults {
			e.logger.Warn("detection rule fault", "unit", unit.Ref, "fault", f.String())
		}
		return occs, nil
	}

	var occs []feature.Occurrence
	var err error
	if opts.UseCache {
		occs, _, err = e.cache.Results(unit.Hash, opts.CacheTTL, compute)
	} else {
		occs, err = compute()
	}
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", unit.Ref, err)
	}

	envs := opts.Environments
	if len(envs) == 0 {
		envs = e.envs
	}
	return report.Build(unit.Ref, occs, e.rules, e.db, envs), nil
}
