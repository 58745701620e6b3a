// Package jobs provides scheduled background tasks for the delivery service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds). They only trigger work that the synchronous API can also perform;
// skipping a run never loses state.
//
// # Available Jobs
//
//  1. ETARefreshJob - recomputes the ETA of every IN_TRANSIT/NEARBY delivery
//  2. MatchingJob - proposes OPEN announcements to their best deliverers
//
// # Usage
//
//	jobManager := jobs.NewJobManager(refreshHandler, matchHandler, jobs.Schedules{
//		ETARefresh: "0 * * * * *",
//		Matching:   "*/30 * * * * *",
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A pass that fails for some deliveries or announcements logs the joined error
// with the pass summary and carries on at the next tick. A pass still running
// when the next tick fires is skipped.
package jobs
