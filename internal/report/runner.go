// Package report builds dashboards for many viewers at once and memoizes
// them across runs.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brokerage-metrics/internal/metrics"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

const (
	// DefaultConcurrency bounds parallel dashboard builds when unset.
	DefaultConcurrency = 4
	// CacheCleanupInterval is how often expired memo entries are purged.
	CacheCleanupInterval = 30 * time.Minute
)

// Request is the full input tuple of one dashboard.
type Request struct {
	Viewer     model.UserData    `json:"viewer"`
	Operations []model.Operation `json:"operations"`
	Expenses   []model.Expense   `json:"expenses"`
	Reference  model.Reference   `json:"reference"`
	AsOf       model.Date        `json:"as_of"`
}

// Key returns the memo key of r: the hex SHA-256 of its JSON encoding.
func (r Request) Key() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", eris.Wrap(err, "report: encode request")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Result is one built dashboard.
type Result struct {
	Member    model.UserData     `json:"member" yaml:"member"`
	Dashboard *metrics.Dashboard `json:"dashboard" yaml:"dashboard"`
	Cached    bool               `json:"cached" yaml:"cached"`
}

// Runner builds dashboards concurrently. A nil memo disables caching.
type Runner struct {
	assembler   *metrics.Assembler
	memo        *cache.Cache
	concurrency int
}

// Options configures a Runner.
type Options struct {
	Concurrency int
	// CacheTTL is how long built dashboards are memoized. Zero disables the
	// memo.
	CacheTTL time.Duration
}

// NewRunner creates a Runner around assembler.
func NewRunner(assembler *metrics.Assembler, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	r := &Runner{assembler: assembler, concurrency: opts.Concurrency}
	if opts.CacheTTL > 0 {
		r.memo = cache.New(opts.CacheTTL, CacheCleanupInterval)
	}
	return r
}

// Dashboard builds, or recalls, the dashboard for req. The second result
// reports a memo hit. Every call returns its own copy, so callers may modify
// the result without touching the memo.
func (r *Runner) Dashboard(req Request) (*metrics.Dashboard, bool, error) {
	var key string
	if r.memo != nil {
		k, err := req.Key()
		if err != nil {
			return nil, false, err
		}
		key = k
		if cached, found := r.memo.Get(key); found {
			return cached.(*metrics.Dashboard).Clone(), true, nil
		}
	}

	viewer := req.Viewer
	d := r.assembler.Dashboard(metrics.Input{
		Viewer:     &viewer,
		Operations: req.Operations,
		Expenses:   req.Expenses,
		Reference:  req.Reference,
		AsOf:       req.AsOf,
	})
	if r.memo != nil {
		r.memo.Set(key, d.Clone(), cache.DefaultExpiration)
	}
	return d, false, nil
}

// Run builds one dashboard per request. Results keep the order of reqs. The
// first failure cancels the remaining builds.
func (r *Runner) Run(ctx context.Context, reqs []Request) ([]Result, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("report: starting run",
		zap.Int("dashboards", len(reqs)),
		zap.Int("concurrency", r.concurrency),
	)
	start := time.Now()

	results := make([]Result, len(reqs))
	var hits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "report: run cancelled")
			}
			d, cached, err := r.Dashboard(req)
			if err != nil {
				return eris.Wrapf(err, "report: dashboard for %s", req.Viewer.ID)
			}
			if cached {
				hits.Add(1)
			}
			results[i] = Result{Member: req.Viewer, Dashboard: d, Cached: cached}
			log.Debug("report: dashboard built",
				zap.String("member", req.Viewer.ID),
				zap.Bool("cached", cached),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("report: run complete",
		zap.Int("dashboards", len(results)),
		zap.Int64("cache_hits", hits.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Flush drops every memoized dashboard.
func (r *Runner) Flush() {
	if r.memo != nil {
		r.memo.Flush()
	}
}
