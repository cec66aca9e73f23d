package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/services"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

const (
	defaultShareSpec = "@daily"
	defaultCacheSpec = "@hourly"
)

// Cleaner coordinates background maintenance: purging expired share links
// and dropping stale cache entries (chat history of long-dead sessions,
// expired telemetry slices).
type Cleaner struct {
	shares *services.ShareService
	store  *cache.DatabaseStore
	cron   *cron.Cron
	now    func() time.Time
	log    *zap.Logger

	shareSchedule string
	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithShareSchedule overrides the cron specification for share link cleanup.
func WithShareSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.shareSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache entry cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(shares *services.ShareService, store *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		shares:        shares,
		store:         store,
		now:           time.Now,
		shareSchedule: defaultShareSpec,
		cacheSchedule: defaultCacheSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if c.shares == nil && c.store == nil {
		return nil
	}

	if c.shares != nil {
		if _, err := c.cron.AddFunc(c.shareSchedule, func() {
			if purged, err := c.shares.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("share link cleanup failed", zap.Error(err))
			} else if purged > 0 {
				c.log.Info("purged expired share links", zap.Int64("count", purged))
			}
		}); err != nil {
			return err
		}
	}

	if c.store != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if purged, err := c.store.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			} else if purged > 0 {
				c.log.Info("purged expired cache entries", zap.Int64("count", purged))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.shares != nil {
		if _, err := c.shares.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.store != nil {
		if _, err := c.store.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
