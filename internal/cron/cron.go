package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/mailsweep/mailsweep/config"
	cron_config "github.com/mailsweep/mailsweep/internal/cron/config"
	"github.com/mailsweep/mailsweep/internal/logger"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/internal/utils"
)

const (
	// GroupScans is the group for scan maintenance jobs
	GroupScans = "scans"

	// StaleScanAge is how long an in-progress scan may sit without an update
	// before the reaper fails it. A scan only goes quiet when its worker died
	// without reaching the failure path.
	StaleScanAge = 2 * time.Hour
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupScans: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
	postgres *repository.Repositories
}

func NewCronManager(cfg *config.Config, log logger.Logger, postgres *repository.Repositories) *CronManager {
	return &CronManager{
		cfg:      cfg,
		log:      log,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
		postgres: postgres,
	}
}

// Start initializes and starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	// Register stale scan reaper job
	if cronConfig.CronScheduleReapStaleScans != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleReapStaleScans, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupScans].Lock()
			defer jobLocks.locks[GroupScans].Unlock()
			cm.reapStaleScans()
		})
		if err != nil {
			cm.log.Fatalf("Could not add stale scan reaper cron job: %v", err)
		}
		cm.jobIDs["reap_stale_scans"] = id
		cm.log.Infof("Registered stale scan reaper job with schedule: %s", cronConfig.CronScheduleReapStaleScans)
	}
}

// reapStaleScans fails scans whose worker went away without closing the job
func (cm *CronManager) reapStaleScans() {
	cm.log.Info("Running stale scan reaper")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.reapStaleScans")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	cutoff := utils.Now().Add(-StaleScanAge)
	jobs, err := cm.postgres.ScanJobRepository.GetStaleInProgress(ctx, cutoff)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to list stale scans: %v", err)
		return
	}

	for _, job := range jobs {
		if err := cm.postgres.ScanJobRepository.Fail(ctx, job.ID, "Scan abandoned: no progress updates"); err != nil {
			tracing.TraceErr(span, err)
			cm.log.Errorf("Failed to reap stale scan %s: %v", job.ID, err)
			continue
		}
		cm.log.Warnf("Reaped stale scan %s (owner %s, last update %s)", job.ID, job.Owner, job.UpdatedAt)
	}

	if len(jobs) > 0 {
		cm.log.Infof("Stale scan reaper closed %d scans", len(jobs))
	}
}
