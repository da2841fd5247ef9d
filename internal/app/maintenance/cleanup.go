package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/logger"
)

const (
	defaultRetentionDays   = 90
	defaultCleanupSchedule = "@daily"
)

// Cleaner enforces retention on the operational log stores. Each sweep removes
// activity entries, slow-call samples, API logs, captured errors, and
// client-reported actions older than the configured retention window.
type Cleaner struct {
	activity    *services.ActivityLogService
	performance *services.PerformanceLogService
	api         *services.ApiLogService
	errors      *services.ErrorLogService
	frontend    *services.FrontendLogService
	cron        *cron.Cron
	now         func() time.Time
	log         *zap.Logger
	enabled     bool
	retention   int
	schedule    string
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

// WithNow overrides the clock used for scheduling comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long log records are retained before cleanup.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the retention sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil log service
// results in the corresponding cleanup being skipped.
func NewCleaner(activity *services.ActivityLogService, performance *services.PerformanceLogService, api *services.ApiLogService, errorStore *services.ErrorLogService, frontend *services.FrontendLogService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		activity:    activity,
		performance: performance,
		api:         api,
		errors:      errorStore,
		frontend:    frontend,
		now:         time.Now,
		retention:   defaultRetentionDays,
		schedule:    defaultCleanupSchedule,
		log:         logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.activity != nil || cleaner.performance != nil ||
		cleaner.api != nil || cleaner.errors != nil || cleaner.frontend != nil

	return cleaner
}

// Start registers the retention sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.enabled || c.retention <= 0 {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("log retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
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

// RunOnce executes the retention sweep sequentially across all configured
// stores. Used by scheduled jobs and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.retention <= 0 {
		return nil
	}

	var errs error

	if c.activity != nil {
		if removed, err := c.activity.DeleteOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned activity logs", zap.Int64("removed", removed))
		}
	}

	if c.performance != nil {
		if removed, err := c.performance.DeleteOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned performance samples", zap.Int64("removed", removed))
		}
	}

	if c.api != nil {
		if removed, err := c.api.DeleteOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned api logs", zap.Int64("removed", removed))
		}
	}

	if c.errors != nil {
		if removed, err := c.errors.DeleteOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned error logs", zap.Int64("removed", removed))
		}
	}

	if c.frontend != nil {
		if removed, err := c.frontend.DeleteOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("pruned frontend logs", zap.Int64("removed", removed))
		}
	}

	return errs
}
