// Package jobs provides scheduled background tasks for the fulfillment service.
//
// Jobs are built on github.com/robfig/cron/v3 and started through JobManager:
//
//	jobManager := jobs.NewJobManager(publishOutboxHandler, 100, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// OutboxRelayJob runs every second ("* * * * * *") and publishes one batch of
// unpublished order events to Kafka. Ticks never overlap; a slow broker makes
// the next tick wait instead of double-publishing.
//
// # Error Handling
//
// A failed tick is logged and retried on the next one. Events stay in the
// outbox until a publish succeeds, so delivery is at least once.
package jobs
