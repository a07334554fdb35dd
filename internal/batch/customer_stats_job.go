package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"customer-service/internal/infrastructure/monitoring"
)

// CustomerCounter is satisfied by every customer.Repository.
type CustomerCounter interface {
	Count(ctx context.Context) (active int64, inactive int64, err error)
}

type CustomerStatsJob struct {
	counter CustomerCounter
	logger  *slog.Logger
}

func NewCustomerStatsJob(counter CustomerCounter, logger *slog.Logger) *CustomerStatsJob {
	if counter == nil || logger == nil {
		panic("CustomerStatsJob dependencies cannot be nil")
	}
	return &CustomerStatsJob{
		counter: counter,
		logger:  logger.With("job", "CustomerStats"),
	}
}

// Run refreshes the customer population gauges. The gauges keep their previous values when
// counting fails.
func (j *CustomerStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting customer stats job.")

	active, inactive, err := j.counter.Count(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count customers, gauges left unchanged.", slog.Any("error", err))
		return fmt.Errorf("cannot refresh customer stats: %w", err)
	}

	monitoring.SetCustomerCounts(active, inactive)

	j.logger.InfoContext(ctx, "Customer stats job finished.",
		slog.Int64("active", active),
		slog.Int64("inactive", inactive),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
