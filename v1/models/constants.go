package models

import "time"

// MemberStatus represents the activation status of a member account
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// IsValid reports whether s is one of the allowed account statuses
func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}

// ProfileStatus represents the moderation status of a profile
type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "pending"
	ProfileStatusApproved ProfileStatus = "approved"
	ProfileStatusRejected ProfileStatus = "rejected"
	ProfileStatusDeleted  ProfileStatus = "deleted"
)

// ConnectionStatus represents the stored status of a connection.
// Expiry is never stored; see Connection.IsVisibleAt.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusApproved ConnectionStatus = "approved"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// Gender of a profile
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid reports whether g is a supported gender
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Opposite returns the gender shown in match listings
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// UploadKind identifies which profile document a blob belongs to
type UploadKind string

const (
	UploadKindProfilePhoto UploadKind = "profile_photo"
	UploadKindHoroscope    UploadKind = "horoscope"
)

// IsValid reports whether k is a supported upload kind
func (k UploadKind) IsValid() bool {
	return k == UploadKindProfilePhoto || k == UploadKindHoroscope
}

const (
	// ConnectionVisibilityWindow is how long an approved connection unlocks full profiles
	ConnectionVisibilityWindow = 24 * time.Hour

	// SessionTokenTTL is the lifetime of an issued session token
	SessionTokenTTL = 7 * 24 * time.Hour
)

// ID prefixes
const (
	MemberIDPrefix       = "mem_"
	ProfileIDPrefix      = "prf_"
	ConnectionIDPrefix   = "con_"
	NotificationIDPrefix = "ntf_"
	EmailJobIDPrefix     = "job_"
)

// Field length constraints remain as regular constants
const (
	MaxNameLength     = 255
	MaxEmailLength    = 320 // RFC 3696
	MaxPhoneLength    = 15  // E.164 format
	MaxReasonLength   = 1000
	MinPasswordLength = 8
)
