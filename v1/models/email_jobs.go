package models

import (
	"time"
)

// EmailJobType is the kind of outbound email
type EmailJobType string

const (
	EmailJobTypeWelcome            EmailJobType = "welcome"
	EmailJobTypeProfileApproved    EmailJobType = "profile_approved"
	EmailJobTypeProfileRejected    EmailJobType = "profile_rejected"
	EmailJobTypeConnectionApproved EmailJobType = "connection_approved"
)

// EmailJobStatus is the lifecycle state of an outbox job
type EmailJobStatus string

const (
	EmailJobStatusPending    EmailJobStatus = "pending"
	EmailJobStatusProcessing EmailJobStatus = "processing"
	EmailJobStatusCompleted  EmailJobStatus = "completed"
	EmailJobStatusFailed     EmailJobStatus = "failed"
)

// DefaultEmailJobMaxRetries is the number of attempts before a job is marked failed
const DefaultEmailJobMaxRetries = 5

// EmailJob is an outbox row picked up by the email worker and published to the broker
type EmailJob struct {
	JobID       string         `gorm:"primaryKey;column:job_id;type:varchar(255)" json:"jobId"`
	JobType     EmailJobType   `gorm:"column:job_type;type:varchar(50);not null" json:"jobType"`
	Recipient   string         `gorm:"column:recipient;not null" json:"recipient"`
	Subject     string         `gorm:"column:subject;not null" json:"subject"`
	Body        string         `gorm:"column:body;type:text;not null" json:"body"`
	Status      EmailJobStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	RetryCount  int            `gorm:"column:retry_count;not null;default:0" json:"retryCount"`
	MaxRetries  int            `gorm:"column:max_retries;not null;default:5" json:"maxRetries"`
	Error       *string        `gorm:"column:error;type:text" json:"error,omitempty"`
	NextRetryAt *time.Time     `gorm:"column:next_retry_at" json:"nextRetryAt,omitempty"`
	ProcessedAt *time.Time     `gorm:"column:processed_at" json:"processedAt,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for EmailJob
func (EmailJob) TableName() string {
	return "email_jobs"
}

// EmailMessage is the payload published for downstream delivery
type EmailMessage struct {
	JobID     string       `json:"jobId"`
	Type      EmailJobType `json:"type"`
	To        string       `json:"to"`
	Subject   string       `json:"subject"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"createdAt"`
}
