package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

// Notification messages
const (
	MessageProfileApproved = "Your profile has been approved by admin"
	MessageProfileRejected = "Your profile was rejected by admin"
)

// ModerationService holds the admin-only transitions on profiles, members and connections
type ModerationService struct {
	db            *gorm.DB
	blobs         BlobStore
	connections   *ConnectionService
	notifications NotificationSink
	emails        EmailEnqueuer
	now           Clock
}

// NewModerationService creates a new moderation service
func NewModerationService(db *gorm.DB, blobs BlobStore, connections *ConnectionService, notifications NotificationSink, emails EmailEnqueuer, clock Clock) *ModerationService {
	if blobs == nil {
		blobs = DisabledBlobStore{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &ModerationService{
		db:            db,
		blobs:         blobs,
		connections:   connections,
		notifications: notifications,
		emails:        emails,
		now:           clock,
	}
}

// ApproveProfile approves a profile and activates its owner
func (s *ModerationService) ApproveProfile(ctx context.Context, profileID string) (*models.ProfileResponse, error) {
	var profile models.Profile
	var member models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).First(&profile).Error; err != nil {
			return apperrors.HandleDatabaseError(err, "profile", "load profile")
		}
		if profile.Status == models.ProfileStatusDeleted {
			return apperrors.InvalidArgument("profile has been deleted")
		}

		profile.Status = models.ProfileStatusApproved
		profile.RejectReason = nil
		if err := tx.Model(&profile).Updates(map[string]interface{}{
			"status":        profile.Status,
			"reject_reason": nil,
		}).Error; err != nil {
			return apperrors.ServerFault("approve profile", err)
		}

		if err := tx.Where("member_id = ?", profile.MemberID).First(&member).Error; err != nil {
			return apperrors.HandleDatabaseError(err, "member", "load member")
		}
		member.Status = models.MemberStatusActive
		if err := tx.Model(&member).Update("status", member.Status).Error; err != nil {
			return apperrors.ServerFault("activate member", err)
		}
		return nil
	})
	if err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileApproved, false)
		return nil, err
	}

	slog.Info("Profile approved", "profileID", profile.ProfileID, "memberID", profile.MemberID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileApproved, true)

	s.notifications.Append(ctx, member.MemberID, MessageProfileApproved)
	subject, body := profileApprovedEmail(member.FullName)
	s.emails.Enqueue(ctx, models.EmailJobTypeProfileApproved, member.Email, subject, body)

	resp := buildProfileResponse(ctx, s.blobs, &profile)
	return &resp, nil
}

// RejectProfile rejects a profile with an optional reason. The owner's account
// status is left unchanged.
func (s *ModerationService) RejectProfile(ctx context.Context, profileID string, reason *string) (*models.ProfileResponse, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if len(trimmed) > models.MaxReasonLength {
			return nil, apperrors.InvalidArgument("reason is too long")
		}
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	var profile models.Profile
	db := s.db.WithContext(ctx)
	if err := db.Where("profile_id = ?", profileID).First(&profile).Error; err != nil {
		return nil, apperrors.HandleDatabaseError(err, "profile", "load profile")
	}
	if profile.Status == models.ProfileStatusDeleted {
		return nil, apperrors.InvalidArgument("profile has been deleted")
	}

	profile.Status = models.ProfileStatusRejected
	profile.RejectReason = reason
	if err := db.Model(&profile).Updates(map[string]interface{}{
		"status":        profile.Status,
		"reject_reason": reason,
	}).Error; err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileRejected, false)
		return nil, apperrors.ServerFault("reject profile", err)
	}

	slog.Info("Profile rejected", "profileID", profile.ProfileID, "memberID", profile.MemberID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileRejected, true)

	var member models.Member
	if err := db.Where("member_id = ?", profile.MemberID).First(&member).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Failed to load profile owner", "memberID", profile.MemberID, "error", err)
		}
	} else {
		s.notifications.Append(ctx, member.MemberID, MessageProfileRejected)
		subject, body := profileRejectedEmail(member.FullName, reason)
		s.emails.Enqueue(ctx, models.EmailJobTypeProfileRejected, member.Email, subject, body)
	}

	resp := buildProfileResponse(ctx, s.blobs, &profile)
	return &resp, nil
}

// SetMemberStatus sets the activation status of a member-role account
func (s *ModerationService) SetMemberStatus(ctx context.Context, memberID, status string) error {
	memberStatus := models.MemberStatus(strings.ToLower(strings.TrimSpace(status)))
	if !memberStatus.IsValid() {
		return apperrors.InvalidArgument("status must be active or inactive")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("member_id = ? AND role = ?", memberID, models.RoleMember).
		Updates(map[string]interface{}{"status": memberStatus, "updated_at": s.now()})
	if result.Error != nil {
		return apperrors.ServerFault("update member status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("member")
	}

	slog.Info("Member status updated", "memberID", memberID, "status", memberStatus)
	return nil
}

// DeactivateMember sets a member inactive
func (s *ModerationService) DeactivateMember(ctx context.Context, memberID string) error {
	return s.SetMemberStatus(ctx, memberID, string(models.MemberStatusInactive))
}

type pendingProfileRow struct {
	ProfileID   string
	MemberID    string
	Email       string
	FullName    string
	Gender      models.Gender
	SubmittedAt time.Time
}

// ListPendingProfiles returns profiles awaiting moderation, oldest submission first
func (s *ModerationService) ListPendingProfiles(ctx context.Context) ([]models.PendingProfileResponse, error) {
	var rows []pendingProfileRow
	if err := s.db.WithContext(ctx).
		Table("profiles AS p").
		Select("p.profile_id, p.member_id, m.email, p.full_name, p.gender, p.updated_at AS submitted_at").
		Joins("JOIN members m ON m.member_id = p.member_id").
		Where("p.status = ?", models.ProfileStatusPending).
		Order("p.updated_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.ServerFault("list pending profiles", err)
	}

	response := make([]models.PendingProfileResponse, 0, len(rows))
	for _, r := range rows {
		response = append(response, models.PendingProfileResponse{
			ProfileID:   r.ProfileID,
			MemberID:    r.MemberID,
			Email:       r.Email,
			FullName:    r.FullName,
			Gender:      r.Gender,
			SubmittedAt: utils.FormatTime(r.SubmittedAt),
		})
	}
	return response, nil
}

type pendingConnectionRow struct {
	ConnectionID string
	SenderID     string
	SenderName   string
	ReceiverID   string
	ReceiverName string
	CreatedAt    time.Time
}

// ListPendingConnections returns pending connections whose two endpoint profiles
// are both approved, newest first
func (s *ModerationService) ListPendingConnections(ctx context.Context) ([]models.PendingConnectionResponse, error) {
	var rows []pendingConnectionRow
	if err := s.db.WithContext(ctx).
		Table("connections AS c").
		Select("c.connection_id, c.sender_id, sp.full_name AS sender_name, c.receiver_id, rp.full_name AS receiver_name, c.created_at").
		Joins("JOIN profiles sp ON sp.member_id = c.sender_id").
		Joins("JOIN profiles rp ON rp.member_id = c.receiver_id").
		Where("c.status = ?", models.ConnectionStatusPending).
		Where("sp.status = ? AND rp.status = ?", models.ProfileStatusApproved, models.ProfileStatusApproved).
		Order("c.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.ServerFault("list pending connections", err)
	}

	response := make([]models.PendingConnectionResponse, 0, len(rows))
	for _, r := range rows {
		response = append(response, models.PendingConnectionResponse{
			ConnectionID: r.ConnectionID,
			SenderID:     r.SenderID,
			SenderName:   r.SenderName,
			ReceiverID:   r.ReceiverID,
			ReceiverName: r.ReceiverName,
			CreatedAt:    utils.FormatTime(r.CreatedAt),
		})
	}
	return response, nil
}

// ApproveConnection approves a pending connection
func (s *ModerationService) ApproveConnection(ctx context.Context, connectionID string) (*models.ConnectionResponse, error) {
	return s.connections.ApproveConnection(ctx, connectionID)
}

// RejectConnection rejects a pending connection
func (s *ModerationService) RejectConnection(ctx context.Context, connectionID string) (*models.ConnectionResponse, error) {
	return s.connections.RejectConnection(ctx, connectionID)
}
