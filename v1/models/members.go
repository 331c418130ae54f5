package models

// Member represents a registered account
type Member struct {
	MemberID     string       `gorm:"primarykey;column:member_id" json:"memberId"`
	Email        string       `gorm:"column:email;not null;unique" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	FullName     string       `gorm:"column:full_name;not null" json:"fullName"`
	Role         Role         `gorm:"column:role;type:varchar(20);not null;default:'member'" json:"role"`
	Status       MemberStatus `gorm:"column:status;type:varchar(20);not null;default:'inactive'" json:"status"`
	Timestamps
}

// TableName sets the table name for GORM
func (Member) TableName() string {
	return "members"
}
