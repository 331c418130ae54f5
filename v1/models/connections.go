package models

import "time"

// Connection is a directed request from a sender member to a receiver member.
// PairLow and PairHigh hold the two member IDs in lexical order so the store can
// enforce one non-rejected connection per unordered pair.
type Connection struct {
	ConnectionID string           `gorm:"primarykey;column:connection_id" json:"connectionId"`
	SenderID     string           `gorm:"column:sender_id;not null;index" json:"senderId"`
	ReceiverID   string           `gorm:"column:receiver_id;not null;index" json:"receiverId"`
	PairLow      string           `gorm:"column:pair_low;not null;uniqueIndex:idx_connections_active_pair,where:status <> 'rejected'" json:"-"`
	PairHigh     string           `gorm:"column:pair_high;not null;uniqueIndex:idx_connections_active_pair,where:status <> 'rejected'" json:"-"`
	Status       ConnectionStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	ApprovedAt   *time.Time       `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	ExpiresAt    *time.Time       `gorm:"column:expires_at" json:"expiresAt,omitempty"`
}

// TableName sets the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// NewConnection creates a pending connection between sender and receiver
func NewConnection(id, senderID, receiverID string, now time.Time) *Connection {
	low, high := OrderedPair(senderID, receiverID)
	return &Connection{
		ConnectionID: id,
		SenderID:     senderID,
		ReceiverID:   receiverID,
		PairLow:      low,
		PairHigh:     high,
		Status:       ConnectionStatusPending,
		CreatedAt:    now,
	}
}

// OrderedPair returns a and b in lexical order
func OrderedPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Involves reports whether memberID is either endpoint of the connection
func (c *Connection) Involves(memberID string) bool {
	return c.SenderID == memberID || c.ReceiverID == memberID
}

// Counterpart returns the endpoint that is not memberID
func (c *Connection) Counterpart(memberID string) string {
	if c.SenderID == memberID {
		return c.ReceiverID
	}
	return c.SenderID
}

// IsVisibleAt reports whether the connection unlocks full profiles at now.
// Expiry is always computed here and never written back to the store.
func (c *Connection) IsVisibleAt(now time.Time) bool {
	return c.Status == ConnectionStatusApproved && c.ExpiresAt != nil && c.ExpiresAt.After(now)
}

// Approve moves a pending connection to approved and opens the visibility window
func (c *Connection) Approve(now time.Time) {
	expiresAt := now.Add(ConnectionVisibilityWindow)
	c.Status = ConnectionStatusApproved
	c.ApprovedAt = &now
	c.ExpiresAt = &expiresAt
}
