package models

// ProfileDetails holds the member-editable content of a profile
type ProfileDetails struct {
	FullName      string `gorm:"column:full_name" json:"fullName"`
	Gender        Gender `gorm:"column:gender;type:varchar(10)" json:"gender"`
	DateOfBirth   string `gorm:"column:date_of_birth" json:"dateOfBirth"`
	Phone         string `gorm:"column:phone" json:"phone"`
	ContactEmail  string `gorm:"column:contact_email" json:"contactEmail"`
	Address       string `gorm:"column:address" json:"address"`
	Religion      string `gorm:"column:religion" json:"religion"`
	Caste         string `gorm:"column:caste" json:"caste"`
	Gothram       string `gorm:"column:gothram" json:"gothram"`
	Star          string `gorm:"column:star" json:"star"`
	Raasi         string `gorm:"column:raasi" json:"raasi"`
	Height        string `gorm:"column:height" json:"height"`
	Weight        string `gorm:"column:weight" json:"weight"`
	Complexion    string `gorm:"column:complexion" json:"complexion"`
	Education     string `gorm:"column:education" json:"education"`
	Occupation    string `gorm:"column:occupation" json:"occupation"`
	Income        string `gorm:"column:income" json:"income"`
	FatherName    string `gorm:"column:father_name" json:"fatherName"`
	MotherName    string `gorm:"column:mother_name" json:"motherName"`
	Siblings      string `gorm:"column:siblings" json:"siblings"`
	Location      string `gorm:"column:location" json:"location"`
	MaritalStatus string `gorm:"column:marital_status" json:"maritalStatus"`
	BirthTime     string `gorm:"column:birth_time" json:"birthTime"`
	BirthPlace    string `gorm:"column:birth_place" json:"birthPlace"`
	Kuladeivam    string `gorm:"column:kuladeivam" json:"kuladeivam"`
	OwnHouse      string `gorm:"column:own_house" json:"ownHouse"`
	Dosham        string `gorm:"column:dosham" json:"dosham"`
	Interest      string `gorm:"column:interest" json:"interest"`
}

// Profile represents the one-to-one matrimony profile of a member
type Profile struct {
	ProfileID    string         `gorm:"primarykey;column:profile_id" json:"profileId"`
	MemberID     string         `gorm:"column:member_id;not null;uniqueIndex" json:"memberId"`
	Details      ProfileDetails `gorm:"embedded" json:"details"`
	Status       ProfileStatus  `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectReason *string        `gorm:"column:reject_reason" json:"rejectReason,omitempty"`
	ProfilePhoto *string        `gorm:"column:profile_photo" json:"profilePhoto,omitempty"`
	Horoscope    *string        `gorm:"column:horoscope" json:"horoscope,omitempty"`
	Member       *Member        `gorm:"foreignKey:MemberID;references:MemberID" json:"-"`
	Timestamps
}

// TableName sets the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// IsUnderReview reports whether the profile is waiting for moderation
func (p *Profile) IsUnderReview() bool {
	return p.Status == ProfileStatusPending
}
