package jobs

import (
	"context"
	"log/slog"

	"ecodeli/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AnnouncementMatcher proposes every OPEN announcement to its best deliverers.
type AnnouncementMatcher interface {
	Handle(ctx context.Context) (commands.MatchOpenAnnouncementsResult, error)
}

// MatchingJob periodically matches announcements still waiting for a courier.
type MatchingJob struct {
	handler  AnnouncementMatcher
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewMatchingJob(handler AnnouncementMatcher, schedule string, logger *slog.Logger) *MatchingJob {
	return &MatchingJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "matching_job"),
	}
}

// Run performs a single matching pass.
func (j *MatchingJob) Run(ctx context.Context) {
	res, err := j.handler.Handle(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Matching pass finished with failures",
			"announcements", res.Announcements,
			"proposed", res.Proposed,
			"error", err,
		)
		return
	}
	if res.Proposed > 0 {
		j.logger.InfoContext(ctx, "Matching pass finished", "announcements", res.Announcements, "proposed", res.Proposed)
	}
}

func (j *MatchingJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Matching job started", "schedule", j.schedule)
	return nil
}

func (j *MatchingJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Matching job stopped")
}
