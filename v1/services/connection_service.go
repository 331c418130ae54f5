package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notification messages
const (
	MessageConnectionApproved = "Your connection has been approved (valid for 24 hours)"
	MessageConnectionRejected = "Your connection request was rejected by admin"
)

// errProfileNotVisible is the single denial returned by the visibility gate, so a
// caller cannot tell a missing member from an expired or absent connection
var errProfileNotVisible = apperrors.Forbidden("profile is not visible")

var errConnectionNotPending = apperrors.InvalidArgument("connection is not pending")

// errAccountInactive refuses workflow actions to a member deactivated after their token was issued
var errAccountInactive = apperrors.Forbidden("account is inactive")

// ConnectionService runs the connection workflow and the visibility gate
type ConnectionService struct {
	db            *gorm.DB
	blobs         BlobStore
	notifications NotificationSink
	emails        EmailEnqueuer
	now           Clock
}

// NewConnectionService creates a new connection service
func NewConnectionService(db *gorm.DB, blobs BlobStore, notifications NotificationSink, emails EmailEnqueuer, clock Clock) *ConnectionService {
	if clock == nil {
		clock = SystemClock
	}
	if blobs == nil {
		blobs = DisabledBlobStore{}
	}
	return &ConnectionService{
		db:            db,
		blobs:         blobs,
		notifications: notifications,
		emails:        emails,
		now:           clock,
	}
}

// RequestConnection records a pending connection from sender to receiver
func (s *ConnectionService) RequestConnection(ctx context.Context, senderID, receiverID string) (*models.ConnectionResponse, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, apperrors.InvalidArgument("receiverId is required")
	}
	if senderID == receiverID {
		return nil, apperrors.InvalidArgument("cannot send a connection request to yourself")
	}

	db := s.db.WithContext(ctx)

	var members []models.Member
	if err := db.Where("member_id IN ?", []string{senderID, receiverID}).
		Find(&members).Error; err != nil {
		return nil, apperrors.ServerFault("load members", err)
	}
	if len(members) != 2 {
		return nil, apperrors.NotFound("member")
	}
	for _, m := range members {
		if m.MemberID == senderID && m.Status != models.MemberStatusActive {
			return nil, errAccountInactive
		}
	}

	var existing int64
	if err := db.Model(&models.Connection{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, receiverID, receiverID, senderID).
		Where("status <> ?", models.ConnectionStatusRejected).
		Count(&existing).Error; err != nil {
		return nil, apperrors.ServerFault("check existing connection", err)
	}
	if existing > 0 {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionRequested, false)
		return nil, apperrors.DuplicateRequest("connection already exists")
	}

	connection := models.NewConnection(models.ConnectionIDPrefix+uuid.New().String(), senderID, receiverID, s.now())
	if err := db.Create(connection).Error; err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionRequested, false)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.DuplicateRequest("connection already exists")
		}
		return nil, apperrors.ServerFault("create connection", err)
	}

	slog.Info("Connection requested",
		"connectionID", connection.ConnectionID,
		"senderID", senderID,
		"receiverID", receiverID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionRequested, true)

	return toConnectionResponse(connection), nil
}

// ApproveConnection approves a pending connection, opens the visibility window
// and notifies both members
func (s *ConnectionService) ApproveConnection(ctx context.Context, connectionID string) (*models.ConnectionResponse, error) {
	now := s.now()
	connection, err := s.transition(ctx, connectionID, func(c *models.Connection) map[string]interface{} {
		c.Approve(now)
		return map[string]interface{}{
			"status":      c.Status,
			"approved_at": c.ApprovedAt,
			"expires_at":  c.ExpiresAt,
		}
	})
	if err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionApproved, false)
		return nil, err
	}

	slog.Info("Connection approved",
		"connectionID", connection.ConnectionID,
		"senderID", connection.SenderID,
		"receiverID", connection.ReceiverID,
		"expiresAt", connection.ExpiresAt)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionApproved, true)

	s.notifications.Append(ctx, connection.SenderID, MessageConnectionApproved)
	s.notifications.Append(ctx, connection.ReceiverID, MessageConnectionApproved)

	members := s.loadMembers(ctx, connection.SenderID, connection.ReceiverID)
	sender, receiver := members[connection.SenderID], members[connection.ReceiverID]
	if sender != nil && receiver != nil {
		subject, body := connectionApprovedEmail(sender.FullName, receiver.FullName)
		s.emails.Enqueue(ctx, models.EmailJobTypeConnectionApproved, sender.Email, subject, body)
		subject, body = connectionApprovedEmail(receiver.FullName, sender.FullName)
		s.emails.Enqueue(ctx, models.EmailJobTypeConnectionApproved, receiver.Email, subject, body)
	}

	return toConnectionResponse(connection), nil
}

// RejectConnection rejects a pending connection and notifies the sender
func (s *ConnectionService) RejectConnection(ctx context.Context, connectionID string) (*models.ConnectionResponse, error) {
	connection, err := s.transition(ctx, connectionID, func(c *models.Connection) map[string]interface{} {
		c.Status = models.ConnectionStatusRejected
		return map[string]interface{}{"status": c.Status}
	})
	if err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionRejected, false)
		return nil, err
	}

	slog.Info("Connection rejected",
		"connectionID", connection.ConnectionID,
		"senderID", connection.SenderID,
		"receiverID", connection.ReceiverID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventConnectionRejected, true)

	s.notifications.Append(ctx, connection.SenderID, MessageConnectionRejected)

	return toConnectionResponse(connection), nil
}

// transition moves a pending connection to the state set by apply. The update is
// guarded on status so two concurrent decisions cannot both succeed.
func (s *ConnectionService) transition(ctx context.Context, connectionID string, apply func(*models.Connection) map[string]interface{}) (*models.Connection, error) {
	var connection models.Connection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("connection_id = ?", connectionID).
			First(&connection).Error; err != nil {
			return apperrors.HandleDatabaseError(err, "connection", "load connection")
		}
		if connection.Status != models.ConnectionStatusPending {
			return errConnectionNotPending
		}

		updates := apply(&connection)
		result := tx.Model(&models.Connection{}).
			Where("connection_id = ? AND status = ?", connectionID, models.ConnectionStatusPending).
			Updates(updates)
		if result.Error != nil {
			return apperrors.ServerFault("update connection", result.Error)
		}
		if result.RowsAffected == 0 {
			return errConnectionNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

// CheckVisibility reports whether requester and other share an approved,
// unexpired connection in either direction. It is evaluated on every call.
func (s *ConnectionService) CheckVisibility(ctx context.Context, requesterID, otherID string) (bool, error) {
	if requesterID == "" || otherID == "" || requesterID == otherID {
		return false, nil
	}

	var connections []models.Connection
	if err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			requesterID, otherID, otherID, requesterID).
		Where("status = ?", models.ConnectionStatusApproved).
		Find(&connections).Error; err != nil {
		return false, apperrors.ServerFault("check visibility", err)
	}

	now := s.now()
	for i := range connections {
		if connections[i].IsVisibleAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// GetFullProfile returns other's account email and full profile if the visibility
// gate grants access. Every denial is the same Forbidden error.
func (s *ConnectionService) GetFullProfile(ctx context.Context, requesterID, otherID string) (*models.FullProfileResponse, error) {
	visible, err := s.CheckVisibility(ctx, requesterID, otherID)
	if err != nil {
		return nil, err
	}
	monitoring.RecordBusinessEvent(ctx, monitoring.EventVisibilityChecked, visible)
	if !visible {
		slog.Debug("Profile visibility denied", "requesterID", requesterID, "otherID", otherID)
		return nil, errProfileNotVisible
	}

	db := s.db.WithContext(ctx)

	var members []models.Member
	if err := db.Where("member_id IN ?", []string{requesterID, otherID}).Find(&members).Error; err != nil {
		return nil, apperrors.ServerFault("load members", err)
	}
	var member *models.Member
	for i := range members {
		switch {
		case members[i].MemberID == requesterID && members[i].Status != models.MemberStatusActive:
			slog.Debug("Profile visibility denied to inactive member", "requesterID", requesterID)
			return nil, errProfileNotVisible
		case members[i].MemberID == otherID:
			member = &members[i]
		}
	}
	if member == nil || len(members) != 2 {
		return nil, errProfileNotVisible
	}

	var profile models.Profile
	if err := db.Where("member_id = ?", otherID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProfileNotVisible
		}
		return nil, apperrors.ServerFault("load profile", err)
	}
	if profile.Status == models.ProfileStatusDeleted {
		return nil, errProfileNotVisible
	}

	return &models.FullProfileResponse{
		MemberID: member.MemberID,
		Email:    member.Email,
		Profile:  buildProfileResponse(ctx, s.blobs, &profile),
	}, nil
}

// ListMyConnections returns the member's currently visible connections,
// most recently approved first
func (s *ConnectionService) ListMyConnections(ctx context.Context, memberID string) ([]models.ActiveConnectionResponse, error) {
	var connections []models.Connection
	if err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", memberID, memberID).
		Where("status = ?", models.ConnectionStatusApproved).
		Find(&connections).Error; err != nil {
		return nil, apperrors.ServerFault("list connections", err)
	}

	now := s.now()
	active := make([]models.Connection, 0, len(connections))
	counterpartIDs := make([]string, 0, len(connections))
	for _, c := range connections {
		if c.IsVisibleAt(now) {
			active = append(active, c)
			counterpartIDs = append(counterpartIDs, c.Counterpart(memberID))
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ApprovedAt.After(*active[j].ApprovedAt)
	})

	members := s.loadMembers(ctx, counterpartIDs...)

	response := make([]models.ActiveConnectionResponse, 0, len(active))
	for _, c := range active {
		counterpartID := c.Counterpart(memberID)
		name := ""
		if m := members[counterpartID]; m != nil {
			name = m.FullName
		}
		response = append(response, models.ActiveConnectionResponse{
			ConnectionID: c.ConnectionID,
			MemberID:     counterpartID,
			FullName:     name,
			ExpiresAt:    utils.FormatTime(*c.ExpiresAt),
		})
	}
	return response, nil
}

// loadMembers resolves member IDs to accounts. Lookup failures are logged and
// leave the entry missing.
func (s *ConnectionService) loadMembers(ctx context.Context, memberIDs ...string) map[string]*models.Member {
	result := make(map[string]*models.Member, len(memberIDs))
	if len(memberIDs) == 0 {
		return result
	}
	var members []models.Member
	if err := s.db.WithContext(ctx).Where("member_id IN ?", memberIDs).Find(&members).Error; err != nil {
		slog.Warn("Failed to load members", "error", err)
		return result
	}
	for i := range members {
		result[members[i].MemberID] = &members[i]
	}
	return result
}

func toConnectionResponse(c *models.Connection) *models.ConnectionResponse {
	return &models.ConnectionResponse{
		ConnectionID: c.ConnectionID,
		SenderID:     c.SenderID,
		ReceiverID:   c.ReceiverID,
		Status:       c.Status,
		CreatedAt:    utils.FormatTime(c.CreatedAt),
		ApprovedAt:   utils.FormatTimePtr(c.ApprovedAt),
		ExpiresAt:    utils.FormatTimePtr(c.ExpiresAt),
	}
}
