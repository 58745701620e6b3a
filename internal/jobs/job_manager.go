package jobs

import (
	"fmt"
	"log/slog"
)

// Schedules holds the six-field cron expressions of the jobs. An empty
// expression leaves that job off.
type Schedules struct {
	ETARefresh string
	Matching   string
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs    []job
	started []job
}

// NewJobManager creates a job manager for the jobs that have a schedule.
func NewJobManager(
	refresher ETARefresher,
	matcher AnnouncementMatcher,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{}
	if schedules.ETARefresh != "" {
		jm.jobs = append(jm.jobs, NewETARefreshJob(refresher, schedules.ETARefresh, logger))
	}
	if schedules.Matching != "" {
		jm.jobs = append(jm.jobs, NewMatchingJob(matcher, schedules.Matching, logger))
	}
	return jm
}

// StartAll starts all scheduled jobs.
// If one fails to start, the ones already running are stopped.
func (jm *JobManager) StartAll() error {
	for _, j := range jm.jobs {
		if err := j.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %T: %w", j, err)
		}
		jm.started = append(jm.started, j)
	}
	return nil
}

// StopAll stops all started jobs gracefully.
func (jm *JobManager) StopAll() {
	for _, j := range jm.started {
		j.Stop()
	}
	jm.started = nil
}
