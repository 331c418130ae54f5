package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

var errProfileUnderReview = apperrors.Conflict("profile is under review and cannot be edited")

// ProfileService manages a member's own profile form and match browsing
type ProfileService struct {
	db    *gorm.DB
	blobs BlobStore
	now   Clock
}

// NewProfileService creates a new profile service
func NewProfileService(db *gorm.DB, blobs BlobStore, clock Clock) *ProfileService {
	if clock == nil {
		clock = SystemClock
	}
	if blobs == nil {
		blobs = DisabledBlobStore{}
	}
	return &ProfileService{db: db, blobs: blobs, now: clock}
}

// SubmitProfile creates the member's profile or replaces its content, and puts it
// back into the moderation queue
func (s *ProfileService) SubmitProfile(ctx context.Context, memberID string, req *models.SubmitProfileRequest) (*models.ProfileResponse, error) {
	details := req.ProfileDetails
	details.FullName = strings.TrimSpace(details.FullName)
	details.Gender = models.Gender(strings.ToLower(strings.TrimSpace(string(details.Gender))))
	if err := validateProfileDetails(&details); err != nil {
		return nil, err
	}
	if err := validateBlobKey(models.UploadKindProfilePhoto, memberID, req.ProfilePhoto); err != nil {
		return nil, err
	}
	if err := validateBlobKey(models.UploadKindHoroscope, memberID, req.Horoscope); err != nil {
		return nil, err
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("member_id = ?", memberID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.Profile{
				ProfileID:    models.ProfileIDPrefix + uuid.New().String(),
				MemberID:     memberID,
				Details:      details,
				Status:       models.ProfileStatusPending,
				ProfilePhoto: req.ProfilePhoto,
				Horoscope:    req.Horoscope,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return apperrors.HandleDatabaseError(err, "profile", "create profile")
			}
		case err != nil:
			return apperrors.ServerFault("load profile", err)
		default:
			if profile.IsUnderReview() {
				return errProfileUnderReview
			}
			profile.Details = details
			profile.Status = models.ProfileStatusPending
			profile.RejectReason = nil
			if req.ProfilePhoto != nil {
				profile.ProfilePhoto = req.ProfilePhoto
			}
			if req.Horoscope != nil {
				profile.Horoscope = req.Horoscope
			}
			if err := tx.Save(&profile).Error; err != nil {
				return apperrors.ServerFault("update profile", err)
			}
		}

		if err := tx.Model(&models.Member{}).
			Where("member_id = ?", memberID).
			Update("full_name", details.FullName).Error; err != nil {
			return apperrors.ServerFault("update member name", err)
		}
		return nil
	})
	if err != nil {
		monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileSubmitted, false)
		return nil, err
	}

	slog.Info("Profile submitted", "profileID", profile.ProfileID, "memberID", memberID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventProfileSubmitted, true)

	resp := buildProfileResponse(ctx, s.blobs, &profile)
	return &resp, nil
}

// GetProfileStatus returns the moderation status of the member's profile
func (s *ProfileService) GetProfileStatus(ctx context.Context, memberID string) (*models.ProfileStatusResponse, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).
		Select("status", "reject_reason").
		Where("member_id = ?", memberID).
		First(&profile).Error; err != nil {
		return nil, apperrors.HandleDatabaseError(err, "profile", "load profile status")
	}
	return &models.ProfileStatusResponse{
		Status:       profile.Status,
		RejectReason: profile.RejectReason,
	}, nil
}

// GetOwnProfile returns the member's profile. A deleted profile is reported as not found.
func (s *ProfileService) GetOwnProfile(ctx context.Context, memberID string) (*models.ProfileResponse, error) {
	profile, err := s.loadLiveProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	resp := buildProfileResponse(ctx, s.blobs, profile)
	return &resp, nil
}

// UpdateProfile applies a partial edit without changing the moderation status
func (s *ProfileService) UpdateProfile(ctx context.Context, memberID string, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	profile, err := s.loadLiveProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if profile.IsUnderReview() {
		return nil, errProfileUnderReview
	}

	if !applyProfileUpdate(&profile.Details, req) {
		return nil, apperrors.InvalidArgument("no fields to update")
	}
	profile.Details.FullName = strings.TrimSpace(profile.Details.FullName)
	if err := validateProfileDetails(&profile.Details); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		if req.FullName != nil {
			return tx.Model(&models.Member{}).
				Where("member_id = ?", memberID).
				Update("full_name", profile.Details.FullName).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.ServerFault("update profile", err)
	}

	slog.Info("Profile updated", "profileID", profile.ProfileID, "memberID", memberID)

	resp := buildProfileResponse(ctx, s.blobs, profile)
	return &resp, nil
}

// DeleteProfile soft-deletes the member's profile: content and documents are
// cleared and the status becomes deleted
func (s *ProfileService) DeleteProfile(ctx context.Context, memberID string) error {
	profile, err := s.loadLiveProfile(ctx, memberID)
	if err != nil {
		return err
	}

	profile.Details = models.ProfileDetails{}
	profile.Status = models.ProfileStatusDeleted
	profile.RejectReason = nil
	profile.ProfilePhoto = nil
	profile.Horoscope = nil
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return apperrors.ServerFault("delete profile", err)
	}

	slog.Info("Profile deleted", "profileID", profile.ProfileID, "memberID", memberID)
	return nil
}

// ListMatches returns approved profiles of the opposite gender as summaries
func (s *ProfileService) ListMatches(ctx context.Context, memberID string) ([]models.MatchResponse, error) {
	var own models.Profile
	if err := s.db.WithContext(ctx).Where("member_id = ?", memberID).First(&own).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.InvalidArgument("profile incomplete")
		}
		return nil, apperrors.ServerFault("load profile", err)
	}
	if own.Status != models.ProfileStatusApproved || !own.Details.Gender.IsValid() {
		return nil, apperrors.InvalidArgument("profile incomplete")
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.ProfileStatusApproved).
		Where("gender = ?", own.Details.Gender.Opposite()).
		Where("member_id <> ?", memberID).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		return nil, apperrors.ServerFault("list matches", err)
	}

	matches := make([]models.MatchResponse, 0, len(profiles))
	for _, p := range profiles {
		matches = append(matches, models.MatchResponse{
			MemberID:    p.MemberID,
			FullName:    p.Details.FullName,
			Gender:      p.Details.Gender,
			DateOfBirth: p.Details.DateOfBirth,
			Location:    p.Details.Location,
			Education:   p.Details.Education,
			Occupation:  p.Details.Occupation,
			Religion:    p.Details.Religion,
			Star:        p.Details.Star,
			Raasi:       p.Details.Raasi,
		})
	}
	return matches, nil
}

// CreateUploadURL presigns an upload for a profile photo or horoscope
func (s *ProfileService) CreateUploadURL(ctx context.Context, memberID string, req *models.CreateUploadRequest) (*models.UploadURLResponse, error) {
	if !req.Kind.IsValid() {
		return nil, apperrors.InvalidArgument("kind must be profile_photo or horoscope")
	}
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" || len(fileName) > models.MaxNameLength {
		return nil, apperrors.InvalidArgument("fileName is required")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return nil, apperrors.InvalidArgument("contentType must be an image or application/pdf")
	}

	key := BuildBlobKey(string(req.Kind), memberID, fileName, s.now())
	url, expiresAt, err := s.blobs.PresignUpload(ctx, key, contentType)
	if err != nil {
		if errors.Is(err, ErrBlobStoreDisabled) {
			return nil, apperrors.ServerFault("uploads not configured", err)
		}
		return nil, apperrors.ServerFault("presign upload", err)
	}

	return &models.UploadURLResponse{
		UploadURL: url,
		Key:       key,
		ExpiresAt: utils.FormatTime(expiresAt),
	}, nil
}

func (s *ProfileService) loadLiveProfile(ctx context.Context, memberID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("member_id = ?", memberID).First(&profile).Error; err != nil {
		return nil, apperrors.HandleDatabaseError(err, "profile", "load profile")
	}
	if profile.Status == models.ProfileStatusDeleted {
		return nil, apperrors.NotFound("profile")
	}
	return &profile, nil
}

func validateProfileDetails(d *models.ProfileDetails) error {
	if d.FullName == "" {
		return apperrors.InvalidArgument("fullName is required")
	}
	if len(d.FullName) > models.MaxNameLength {
		return apperrors.InvalidArgument("fullName is too long")
	}
	if !d.Gender.IsValid() {
		return apperrors.InvalidArgument("gender must be male or female")
	}
	if len(d.Phone) > models.MaxPhoneLength {
		return apperrors.InvalidArgument("phone is too long")
	}
	if len(d.ContactEmail) > models.MaxEmailLength {
		return apperrors.InvalidArgument("contactEmail is too long")
	}
	return nil
}

// validateBlobKey accepts only keys issued to this member for this kind
func validateBlobKey(kind models.UploadKind, memberID string, key *string) error {
	if key == nil {
		return nil
	}
	if !strings.HasPrefix(*key, string(kind)+"/"+memberID+"/") {
		return apperrors.InvalidArgument(string(kind) + " key does not belong to this member")
	}
	return nil
}

func applyProfileUpdate(d *models.ProfileDetails, req *models.UpdateProfileRequest) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = true
		}
	}
	set(&d.FullName, req.FullName)
	set(&d.DateOfBirth, req.DateOfBirth)
	set(&d.Phone, req.Phone)
	set(&d.Location, req.Location)
	set(&d.Occupation, req.Occupation)
	set(&d.Income, req.Income)
	set(&d.Education, req.Education)
	set(&d.BirthTime, req.BirthTime)
	set(&d.BirthPlace, req.BirthPlace)
	set(&d.Kuladeivam, req.Kuladeivam)
	set(&d.FatherName, req.FatherName)
	set(&d.MotherName, req.MotherName)
	set(&d.Siblings, req.Siblings)
	set(&d.OwnHouse, req.OwnHouse)
	set(&d.Raasi, req.Raasi)
	set(&d.Dosham, req.Dosham)
	set(&d.Interest, req.Interest)
	if req.Gender != nil {
		d.Gender = models.Gender(strings.ToLower(string(*req.Gender)))
		changed = true
	}
	return changed
}

// buildProfileResponse resolves blob keys to short-lived read URLs. A key that
// cannot be presigned is omitted from the response.
func buildProfileResponse(ctx context.Context, blobs BlobStore, p *models.Profile) models.ProfileResponse {
	resp := models.ProfileResponse{
		ProfileID:      p.ProfileID,
		MemberID:       p.MemberID,
		ProfileDetails: p.Details,
		Status:         p.Status,
		RejectReason:   p.RejectReason,
		CreatedAt:      utils.FormatTime(p.CreatedAt),
		UpdatedAt:      utils.FormatTime(p.UpdatedAt),
	}
	resp.ProfilePhotoURL = presignKey(ctx, blobs, p.ProfilePhoto)
	resp.HoroscopeURL = presignKey(ctx, blobs, p.Horoscope)
	return resp
}

func presignKey(ctx context.Context, blobs BlobStore, key *string) *string {
	if key == nil || *key == "" || blobs == nil {
		return nil
	}
	url, err := blobs.PresignRead(ctx, *key)
	if err != nil {
		if !errors.Is(err, ErrBlobStoreDisabled) {
			slog.Warn("Failed to presign profile document", "key", *key, "error", err)
		}
		return nil
	}
	return &url
}
