package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"gorm.io/gorm"
)

// EmailEnqueuer records an outbound email for asynchronous delivery.
// Enqueue failures are logged and swallowed.
type EmailEnqueuer interface {
	Enqueue(ctx context.Context, jobType models.EmailJobType, recipient, subject, body string)
}

// EmailOutbox writes email jobs to the outbox table read by EmailWorker
type EmailOutbox struct {
	db  *gorm.DB
	now Clock
}

// NewEmailOutbox creates a new outbox writer
func NewEmailOutbox(db *gorm.DB, clock Clock) *EmailOutbox {
	if clock == nil {
		clock = SystemClock
	}
	return &EmailOutbox{db: db, now: clock}
}

// Enqueue implements EmailEnqueuer
func (o *EmailOutbox) Enqueue(ctx context.Context, jobType models.EmailJobType, recipient, subject, body string) {
	if recipient == "" {
		return
	}
	now := o.now()
	job := models.EmailJob{
		JobID:      models.EmailJobIDPrefix + uuid.New().String(),
		JobType:    jobType,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		Status:     models.EmailJobStatusPending,
		MaxRetries: models.DefaultEmailJobMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := o.db.WithContext(ctx).Create(&job).Error; err != nil {
		slog.Warn("Failed to enqueue email job", "jobType", jobType, "error", err)
		return
	}
	slog.Debug("Email job enqueued", "jobID", job.JobID, "jobType", jobType)
}

// Email templates

func welcomeEmail(fullName string) (string, string) {
	return "Welcome to Kalyanamalai",
		fmt.Sprintf("Hello %s,\n\nYour account has been created. Submit your profile form; "+
			"you can log in once an admin approves it.", displayName(fullName))
}

func profileApprovedEmail(fullName string) (string, string) {
	return "Your profile has been approved",
		fmt.Sprintf("Hello %s,\n\nYour profile has been approved and your account is now active.", displayName(fullName))
}

func profileRejectedEmail(fullName string, reason *string) (string, string) {
	body := fmt.Sprintf("Hello %s,\n\nYour profile was not approved.", displayName(fullName))
	if reason != nil && *reason != "" {
		body += "\nReason: " + *reason
	}
	return "Your profile needs changes", body
}

func connectionApprovedEmail(fullName, counterpartName string) (string, string) {
	return "Your connection has been approved",
		fmt.Sprintf("Hello %s,\n\nYour connection with %s has been approved. "+
			"You can view each other's full profile for the next 24 hours.", displayName(fullName), displayName(counterpartName))
}

func displayName(name string) string {
	if name == "" {
		return "member"
	}
	return name
}
