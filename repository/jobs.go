package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/model"
)

// Ping runs a trivial query, reopening the store if the connection is gone.
func (r *Repository) Ping(ctx context.Context) error {
	return r.run(ctx, func(db *gorm.DB) error {
		return db.Exec("SELECT 1").Error
	})
}

// StartJobLog records that a scheduled job began running.
func (r *Repository) StartJobLog(ctx context.Context, jobName string) (*model.CronJobLog, error) {
	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	err := r.run(ctx, func(db *gorm.DB) error {
		entry.ID = 0
		return db.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FinishJobLog closes a job log as completed, or failed when jobErr is set.
func (r *Repository) FinishJobLog(ctx context.Context, entry *model.CronJobLog, message string, jobErr error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
		"duration":     now.Sub(entry.StartedAt).Milliseconds(),
		"message":      message,
	}
	if jobErr != nil {
		updates["status"] = "failed"
		updates["error_msg"] = jobErr.Error()
	}
	return r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error
	})
}

// PruneJobLogs deletes job logs started before cutoff.
func (r *Repository) PruneJobLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}

// LatestJobLogs returns the most recent job logs, newest first.
func (r *Repository) LatestJobLogs(ctx context.Context, limit int) ([]model.CronJobLog, error) {
	var logs []model.CronJobLog
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("started_at DESC").Limit(limit).Find(&logs).Error
	})
	return logs, err
}
