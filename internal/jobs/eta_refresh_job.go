package jobs

import (
	"context"
	"log/slog"

	"ecodeli/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ETARefresher recomputes the ETA of every in-flight delivery.
type ETARefresher interface {
	Handle(ctx context.Context) (commands.RefreshActiveETAsResult, error)
}

// ETARefreshJob periodically refreshes the estimates of IN_TRANSIT and NEARBY
// deliveries so they age gracefully between pings.
type ETARefreshJob struct {
	handler  ETARefresher
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewETARefreshJob creates the job. schedule is a six-field cron expression.
func NewETARefreshJob(handler ETARefresher, schedule string, logger *slog.Logger) *ETARefreshJob {
	return &ETARefreshJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "eta_refresh_job"),
	}
}

// Run performs a single refresh pass.
func (j *ETARefreshJob) Run(ctx context.Context) {
	res, err := j.handler.Handle(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "ETA refresh finished with failures",
			"candidates", res.Candidates,
			"refreshed", res.Refreshed,
			"error", err,
		)
		return
	}
	if res.Candidates > 0 {
		j.logger.DebugContext(ctx, "ETA refresh finished", "candidates", res.Candidates, "refreshed", res.Refreshed)
	}
}

// Start schedules the job.
func (j *ETARefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "ETA refresh job started", "schedule", j.schedule)
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *ETARefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "ETA refresh job stopped")
}
