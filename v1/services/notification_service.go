package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

// NotificationSink appends a message to a member's log. Implementations never
// report failure to the caller; a lost notification must not fail the
// operation that produced it.
type NotificationSink interface {
	Append(ctx context.Context, memberID, message string)
}

// NotificationService stores notifications and serves them to their recipient
type NotificationService struct {
	db  *gorm.DB
	now Clock
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB, clock Clock) *NotificationService {
	if clock == nil {
		clock = SystemClock
	}
	return &NotificationService{db: db, now: clock}
}

// Append implements NotificationSink
func (s *NotificationService) Append(ctx context.Context, memberID, message string) {
	notification := models.Notification{
		NotificationID: models.NotificationIDPrefix + uuid.New().String(),
		MemberID:       memberID,
		Message:        message,
		CreatedAt:      s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		slog.Warn("Failed to append notification", "memberID", memberID, "error", err)
		monitoring.RecordBusinessEvent(ctx, monitoring.EventNotificationAppended, false)
		return
	}
	monitoring.RecordBusinessEvent(ctx, monitoring.EventNotificationAppended, true)
}

// ListNotifications returns the member's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, memberID string) ([]models.NotificationResponse, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, apperrors.ServerFault("list notifications", err)
	}

	response := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, models.NotificationResponse{
			NotificationID: n.NotificationID,
			Message:        n.Message,
			IsRead:         n.IsRead,
			CreatedAt:      utils.FormatTime(n.CreatedAt),
		})
	}
	return response, nil
}

// MarkAllRead flips the read flag on every unread notification of the member
func (s *NotificationService) MarkAllRead(ctx context.Context, memberID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("member_id = ? AND is_read = ?", memberID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.ServerFault("mark notifications read", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkRead flips the read flag on one notification owned by the member.
// A notification owned by someone else is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, memberID, notificationID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("notification_id = ? AND member_id = ?", notificationID, memberID).
		Update("is_read", true)
	if result.Error != nil {
		return apperrors.ServerFault("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification")
	}
	return nil
}
