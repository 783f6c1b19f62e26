package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// JobStore persists job runs and answers the health probe.
type JobStore interface {
	Ping(ctx context.Context) error
	StartJobLog(ctx context.Context, jobName string) (*model.CronJobLog, error)
	FinishJobLog(ctx context.Context, entry *model.CronJobLog, message string, jobErr error) error
	PruneJobLogs(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenCleaner removes expired entries from the token blacklist.
type TokenCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Job names as stored in cron_job_logs.
const (
	JobCleanupRevokedTokens = "cleanup_revoked_tokens"
	JobDatabaseHealth       = "database_health"
	JobPruneJobLogs         = "prune_job_logs"
)

// JobLogRetention is how long job runs are kept.
const JobLogRetention = 30 * 24 * time.Hour

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron   *cron.Cron
	store  JobStore
	tokens TokenCleaner
	log    *logger.Logger
}

// NewCronManager creates a new cron manager. tokens may be nil, in which
// case the blacklist cleanup job is not registered.
func NewCronManager(store JobStore, tokens TokenCleaner, log *logger.Logger) *CronManager {
	if log == nil {
		log = logger.Nop()
	}
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:   c,
		store:  store,
		tokens: tokens,
		log:    log.With("component", "cron"),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	m.log.Info("cron jobs started", "entries", len(m.cron.Entries()))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish.
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 5 minutes: probe the catalog store
	if _, err := m.cron.AddFunc("0 */5 * * * *", func() {
		m.runJob(JobDatabaseHealth, 30*time.Second, m.CheckDatabaseHealth)
	}); err != nil {
		return err
	}

	// Every hour: drop expired blacklist entries
	if m.tokens != nil {
		if _, err := m.cron.AddFunc("0 0 * * * *", func() {
			m.runJob(JobCleanupRevokedTokens, 5*time.Minute, m.CleanupRevokedTokens)
		}); err != nil {
			return err
		}
	}

	// Daily at 2 AM: prune old job logs
	if _, err := m.cron.AddFunc("0 0 2 * * *", func() {
		m.runJob(JobPruneJobLogs, 5*time.Minute, m.PruneJobLogs)
	}); err != nil {
		return err
	}

	m.log.Info("all cron jobs registered")
	return nil
}

// runJob records a job run around fn. A failure to open the job log is
// logged and the job still runs.
func (m *CronManager) runJob(name string, timeout time.Duration, fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	m.log.Debug("job started", "job", name)
	entry, logErr := m.store.StartJobLog(ctx, name)
	if logErr != nil {
		m.log.Warn("job log not recorded", "job", name, "error", logErr)
	}

	message, err := fn(ctx)
	if err != nil {
		m.log.Error("job failed", "job", name, "error", err)
	} else {
		m.log.Info("job completed", "job", name, "message", message)
	}

	if entry != nil {
		if ferr := m.store.FinishJobLog(ctx, entry, message, err); ferr != nil {
			m.log.Warn("job log not closed", "job", name, "error", ferr)
		}
	}
}
