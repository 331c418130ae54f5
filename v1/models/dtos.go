package models

// Request/Response DTOs for V1 API endpoints

// RegisterRequest Auth DTOs
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName"`
}

// RegisterResponse carries the new account and a session token for submitting the profile form
type RegisterResponse struct {
	MemberResponse
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	MemberID  string `json:"memberId"`
	Role      Role   `json:"role"`
	ExpiresAt string `json:"expiresAt"`
}

// SubmitProfileRequest Profile DTOs
type SubmitProfileRequest struct {
	ProfileDetails
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
	Horoscope    *string `json:"horoscope,omitempty"`
}

// UpdateProfileRequest carries a partial edit; nil fields are left unchanged
type UpdateProfileRequest struct {
	FullName    *string `json:"fullName,omitempty"`
	Gender      *Gender `json:"gender,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Location    *string `json:"location,omitempty"`
	Occupation  *string `json:"occupation,omitempty"`
	Income      *string `json:"income,omitempty"`
	Education   *string `json:"education,omitempty"`
	BirthTime   *string `json:"birthTime,omitempty"`
	BirthPlace  *string `json:"birthPlace,omitempty"`
	Kuladeivam  *string `json:"kuladeivam,omitempty"`
	FatherName  *string `json:"fatherName,omitempty"`
	MotherName  *string `json:"motherName,omitempty"`
	Siblings    *string `json:"siblings,omitempty"`
	OwnHouse    *string `json:"ownHouse,omitempty"`
	Raasi       *string `json:"raasi,omitempty"`
	Dosham      *string `json:"dosham,omitempty"`
	Interest    *string `json:"interest,omitempty"`
}

type ProfileResponse struct {
	ProfileID string `json:"profileId"`
	MemberID  string `json:"memberId"`
	ProfileDetails
	Status          ProfileStatus `json:"status"`
	RejectReason    *string       `json:"rejectReason,omitempty"`
	ProfilePhotoURL *string       `json:"profilePhotoUrl,omitempty"`
	HoroscopeURL    *string       `json:"horoscopeUrl,omitempty"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

type ProfileStatusResponse struct {
	Status       ProfileStatus `json:"status"`
	RejectReason *string       `json:"rejectReason,omitempty"`
}

type MatchResponse struct {
	MemberID    string `json:"memberId"`
	FullName    string `json:"fullName"`
	Gender      Gender `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	Location    string `json:"location"`
	Education   string `json:"education"`
	Occupation  string `json:"occupation"`
	Religion    string `json:"religion"`
	Star        string `json:"star"`
	Raasi       string `json:"raasi"`
}

// FullProfileResponse is the union of account and profile data returned through the visibility gate
type FullProfileResponse struct {
	MemberID string          `json:"memberId"`
	Email    string          `json:"email"`
	Profile  ProfileResponse `json:"profile"`
}

// CreateUploadRequest Upload DTOs
type CreateUploadRequest struct {
	Kind        UploadKind `json:"kind" validate:"required"`
	FileName    string     `json:"fileName" validate:"required"`
	ContentType string     `json:"contentType" validate:"required"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresAt string `json:"expiresAt"`
}

// CreateConnectionRequest Connection DTOs
type CreateConnectionRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

type ConnectionResponse struct {
	ConnectionID string           `json:"connectionId"`
	SenderID     string           `json:"senderId"`
	ReceiverID   string           `json:"receiverId"`
	Status       ConnectionStatus `json:"status"`
	CreatedAt    string           `json:"createdAt"`
	ApprovedAt   *string          `json:"approvedAt,omitempty"`
	ExpiresAt    *string          `json:"expiresAt,omitempty"`
}

// ActiveConnectionResponse is a connection seen from one endpoint, resolved to the counterpart
type ActiveConnectionResponse struct {
	ConnectionID string `json:"connectionId"`
	MemberID     string `json:"memberId"`
	FullName     string `json:"fullName"`
	ExpiresAt    string `json:"expiresAt"`
}

type PendingConnectionResponse struct {
	ConnectionID string `json:"connectionId"`
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	ReceiverID   string `json:"receiverId"`
	ReceiverName string `json:"receiverName"`
	CreatedAt    string `json:"createdAt"`
}

// RejectProfileRequest Moderation DTOs
type RejectProfileRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type UpdateMemberStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type PendingProfileResponse struct {
	ProfileID   string `json:"profileId"`
	MemberID    string `json:"memberId"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Gender      Gender `json:"gender"`
	SubmittedAt string `json:"submittedAt"`
}

type MemberResponse struct {
	MemberID      string         `json:"memberId"`
	Email         string         `json:"email"`
	FullName      string         `json:"fullName"`
	Role          Role           `json:"role"`
	Status        MemberStatus   `json:"status"`
	ProfileStatus *ProfileStatus `json:"profileStatus,omitempty"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

type MemberDetailResponse struct {
	MemberResponse
	Profile *ProfileResponse `json:"profile,omitempty"`
}

type DashboardStatsResponse struct {
	TotalMembers    int64 `json:"totalMembers"`
	ActiveMembers   int64 `json:"activeMembers"`
	InactiveMembers int64 `json:"inactiveMembers"`
	MaleProfiles    int64 `json:"maleProfiles"`
	FemaleProfiles  int64 `json:"femaleProfiles"`
}

// NotificationResponse Notification DTOs
type NotificationResponse struct {
	NotificationID string `json:"notificationId"`
	Message        string `json:"message"`
	IsRead         bool   `json:"isRead"`
	CreatedAt      string `json:"createdAt"`
}
