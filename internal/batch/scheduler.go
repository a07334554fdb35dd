package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"customer-service/internal/config"

	"github.com/robfig/cron/v3"
)

const (
	defaultStatsSchedule = "@every 1m"
	defaultStatsTimeout  = 30 * time.Second
)

type Job interface {
	Run(ctx context.Context) error
}

// NewScheduler registers the stats job on a cron scheduler. The caller starts and stops it.
func NewScheduler(cfg config.BatchConfig, statsJob Job, logger *slog.Logger) (*cron.Cron, error) {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.StatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultStatsSchedule
		logger.Warn("Customer stats schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.StatsTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultStatsTimeout
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		runWithTimeout(statsJob, jobTimeout, logger.With("job_name", "CustomerStats"))
	}))
	if err != nil {
		logger.Error("Failed to schedule customer stats job", "schedule", scheduleSpec, slog.Any("error", err))
		return nil, fmt.Errorf("invalid batch.statsSchedule %q: %w", scheduleSpec, err)
	}

	logger.Info("Scheduled customer stats job", "schedule", scheduleSpec, "job_id", jobID)
	return c, nil
}

func runWithTimeout(job Job, timeout time.Duration, jobLogger *slog.Logger) {
	jobLogger.Debug("Cron triggered: Running customer stats job.")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if runErr := job.Run(ctx); runErr != nil {
		jobLogger.Error("Customer stats job finished with error", slog.Any("error", runErr))
	}
}
