package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultEmailPollInterval = 10 * time.Second
	defaultEmailBatchSize    = 20
	stuckJobThreshold        = 5 * time.Minute
	emailRetryBaseDelay      = time.Minute
)

// EmailWorker publishes email jobs from the outbox table
type EmailWorker struct {
	db           *gorm.DB
	publisher    EmailPublisher
	pollInterval time.Duration
	batchSize    int
	now          Clock
}

// NewEmailWorker creates a new email worker
func NewEmailWorker(db *gorm.DB, publisher EmailPublisher, clock Clock) *EmailWorker {
	if clock == nil {
		clock = SystemClock
	}
	return &EmailWorker{
		db:           db,
		publisher:    publisher,
		pollInterval: defaultEmailPollInterval,
		batchSize:    defaultEmailBatchSize,
		now:          clock,
	}
}

// Start polls the outbox until ctx is cancelled
func (w *EmailWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Email worker started", "pollInterval", w.pollInterval, "batchSize", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker stopped")
			return
		case <-ticker.C:
			w.ProcessJobs(ctx)
		}
	}
}

// ProcessJobs claims and publishes one batch of due jobs
func (w *EmailWorker) ProcessJobs(ctx context.Context) {
	now := w.now()
	db := w.db.WithContext(ctx)

	// Jobs left in processing by a crashed worker go back to pending
	if err := db.Model(&models.EmailJob{}).
		Where("status = ?", models.EmailJobStatusProcessing).
		Where("updated_at < ?", now.Add(-stuckJobThreshold)).
		Updates(map[string]interface{}{"status": models.EmailJobStatusPending, "updated_at": now}).Error; err != nil {
		slog.Warn("Failed to reset stuck email jobs", "error", err)
	}

	var jobs []models.EmailJob
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", models.EmailJobStatusPending).
			Where("(next_retry_at IS NULL OR next_retry_at <= ?)", now).
			Order("created_at ASC").
			Limit(w.batchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&jobs).Error; err != nil {
			return err
		}

		if len(jobs) == 0 {
			return nil
		}

		jobIDs := make([]string, len(jobs))
		for i := range jobs {
			jobIDs[i] = jobs[i].JobID
		}
		return tx.Model(&models.EmailJob{}).
			Where("job_id IN ?", jobIDs).
			Updates(map[string]interface{}{"status": models.EmailJobStatusProcessing, "updated_at": now}).Error
	})
	if err != nil {
		slog.Error("Failed to claim email jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing email jobs", "count", len(jobs))
	for i := range jobs {
		w.processJob(ctx, &jobs[i])
	}
}

func (w *EmailWorker) processJob(ctx context.Context, job *models.EmailJob) {
	now := w.now()
	err := w.publisher.Publish(ctx, models.EmailMessage{
		JobID:     job.JobID,
		Type:      job.JobType,
		To:        job.Recipient,
		Subject:   job.Subject,
		Body:      job.Body,
		CreatedAt: job.CreatedAt,
	})

	newRetryCount := job.RetryCount + 1
	updates := map[string]interface{}{
		"processed_at": now,
		"retry_count":  newRetryCount,
		"updated_at":   now,
	}

	if err != nil {
		errorMsg := err.Error()
		updates["error"] = &errorMsg

		// newRetryCount counts attempts made so far, including this one
		if newRetryCount > job.MaxRetries {
			updates["status"] = models.EmailJobStatusFailed
			updates["next_retry_at"] = nil
			slog.Error("Email job failed after max retries",
				"jobID", job.JobID,
				"jobType", job.JobType,
				"retryCount", newRetryCount,
				"maxRetries", job.MaxRetries,
				"error", err)
		} else {
			nextRetryAt := now.Add(emailRetryBaseDelay * time.Duration(1<<job.RetryCount))
			updates["next_retry_at"] = &nextRetryAt
			updates["status"] = models.EmailJobStatusPending
			slog.Warn("Email job failed, will retry",
				"jobID", job.JobID,
				"jobType", job.JobType,
				"retryCount", newRetryCount,
				"error", err,
				"nextRetryAt", nextRetryAt)
		}
		monitoring.RecordBusinessEvent(ctx, monitoring.EventEmailPublished, false)
	} else {
		updates["status"] = models.EmailJobStatusCompleted
		updates["error"] = nil
		updates["next_retry_at"] = nil
		slog.Info("Email job published", "jobID", job.JobID, "jobType", job.JobType)
		monitoring.RecordBusinessEvent(ctx, monitoring.EventEmailPublished, true)
	}

	if updateErr := w.db.WithContext(ctx).Model(&models.EmailJob{}).
		Where("job_id = ?", job.JobID).
		Updates(updates).Error; updateErr != nil {
		slog.Error("Failed to update email job status", "jobID", job.JobID, "error", updateErr)
	}
}
