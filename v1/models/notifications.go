package models

import "time"

// Notification is an entry in a member's append-only message log
type Notification struct {
	NotificationID string    `gorm:"primarykey;column:notification_id" json:"notificationId"`
	MemberID       string    `gorm:"column:member_id;not null;index" json:"memberId"`
	Message        string    `gorm:"column:message;not null" json:"message"`
	IsRead         bool      `gorm:"column:is_read;not null" json:"isRead"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index" json:"createdAt"`
}

// TableName sets the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
