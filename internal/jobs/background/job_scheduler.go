package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"

	"stockhub/internal/analytics"
	"stockhub/internal/docstore"
	"stockhub/internal/jobs"
)

// TaskEnqueuer is the slice of asynq.Client the scheduler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobScheduler fans periodic work out over every owner: alert generation
// passes go through the task queue, summary warming runs inline.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	owners          docstore.OwnerLister
	enqueuer        TaskEnqueuer
	analyticsSvc    *analytics.Service
	refreshInterval time.Duration
	schedulerJobs   map[string]gocron.Job
	mu              sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(owners docstore.OwnerLister, enqueuer TaskEnqueuer, analyticsSvc *analytics.Service, refreshInterval time.Duration) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		owners:          owners,
		enqueuer:        enqueuer,
		analyticsSvc:    analyticsSvc,
		refreshInterval: refreshInterval,
		schedulerJobs:   make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.refreshInterval),
		gocron.NewTask(js.enqueueAlertRefresh, context.Background()),
		gocron.WithName("alert-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create alert refresh job: %v", err)
	} else {
		js.schedulerJobs["alert-refresh"] = alertsJob
	}

	summaryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.warmSummaries, context.Background()),
		gocron.WithName("summary-warm"),
	)
	if err != nil {
		log.Printf("Failed to create summary warm job: %v", err)
	} else {
		js.schedulerJobs["summary-warm"] = summaryJob
	}

	log.Printf("Registered %d background jobs", len(js.schedulerJobs))
}

// enqueueAlertRefresh queues one generation task per owner with items.
func (js *JobScheduler) enqueueAlertRefresh(ctx context.Context) {
	owners, err := js.owners.DistinctOwners(ctx, docstore.CollectionItems)
	if err != nil {
		log.Printf("Alert refresh failed to list owners: %v", err)
		return
	}

	queued := 0
	for _, owner := range owners {
		task, err := jobs.NewAlertsGenerateTask(owner)
		if err != nil {
			log.Printf("Failed to build refresh task for %s: %v", owner, err)
			continue
		}
		if _, err := js.enqueuer.EnqueueContext(ctx, task); err != nil {
			log.Printf("Failed to enqueue refresh task for %s: %v", owner, err)
			continue
		}
		queued++
	}
	log.Printf("Alert refresh queued for %d/%d owners", queued, len(owners))
}

// warmSummaries recomputes cached dashboard summaries for all owners.
func (js *JobScheduler) warmSummaries(ctx context.Context) {
	owners, err := js.owners.DistinctOwners(ctx, docstore.CollectionItems)
	if err != nil {
		log.Printf("Summary warm failed to list owners: %v", err)
		return
	}
	js.analyticsSvc.WarmSummaries(ctx, owners)
}
