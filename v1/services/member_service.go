package services

import (
	"context"
	"errors"

	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

// MemberService serves the admin view of member accounts
type MemberService struct {
	db    *gorm.DB
	blobs BlobStore
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB, blobs BlobStore) *MemberService {
	return &MemberService{db: db, blobs: blobs}
}

// ListMembers returns every member-role account with its profile status, newest first
func (s *MemberService) ListMembers(ctx context.Context) ([]models.MemberResponse, error) {
	var members []models.Member
	if err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleMember).
		Order("created_at DESC").
		Find(&members).Error; err != nil {
		return nil, apperrors.ServerFault("list members", err)
	}

	statuses, err := s.profileStatuses(ctx, members)
	if err != nil {
		return nil, err
	}

	response := make([]models.MemberResponse, 0, len(members))
	for i := range members {
		var status *models.ProfileStatus
		if st, ok := statuses[members[i].MemberID]; ok {
			status = &st
		}
		response = append(response, *toMemberResponse(&members[i], status))
	}
	return response, nil
}

func (s *MemberService) profileStatuses(ctx context.Context, members []models.Member) (map[string]models.ProfileStatus, error) {
	statuses := make(map[string]models.ProfileStatus, len(members))
	if len(members) == 0 {
		return statuses, nil
	}

	memberIDs := make([]string, len(members))
	for i := range members {
		memberIDs[i] = members[i].MemberID
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).
		Select("member_id", "status").
		Where("member_id IN ?", memberIDs).
		Find(&profiles).Error; err != nil {
		return nil, apperrors.ServerFault("load profile statuses", err)
	}
	for _, p := range profiles {
		statuses[p.MemberID] = p.Status
	}
	return statuses, nil
}

// GetMemberDetail returns a member with the full profile. No visibility gate applies to admins.
func (s *MemberService) GetMemberDetail(ctx context.Context, memberID string) (*models.MemberDetailResponse, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).Where("member_id = ?", memberID).First(&member).Error; err != nil {
		return nil, apperrors.HandleDatabaseError(err, "member", "load member")
	}

	detail := &models.MemberDetailResponse{}

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("member_id = ?", memberID).First(&profile).Error
	switch {
	case err == nil:
		resp := buildProfileResponse(ctx, s.blobs, &profile)
		detail.Profile = &resp
		detail.MemberResponse = *toMemberResponse(&member, &profile.Status)
	case errors.Is(err, gorm.ErrRecordNotFound):
		detail.MemberResponse = *toMemberResponse(&member, nil)
	default:
		return nil, apperrors.ServerFault("load profile", err)
	}

	return detail, nil
}

// DashboardStats counts member accounts by status and approved profiles by gender
func (s *MemberService) DashboardStats(ctx context.Context) (*models.DashboardStatsResponse, error) {
	stats := &models.DashboardStatsResponse{}
	db := s.db.WithContext(ctx)

	memberCount := func(status *models.MemberStatus, dst *int64) error {
		q := db.Model(&models.Member{}).Where("role = ?", models.RoleMember)
		if status != nil {
			q = q.Where("status = ?", *status)
		}
		return q.Count(dst).Error
	}
	genderCount := func(gender models.Gender, dst *int64) error {
		return db.Model(&models.Profile{}).
			Joins("JOIN members ON members.member_id = profiles.member_id").
			Where("members.role = ?", models.RoleMember).
			Where("profiles.status = ?", models.ProfileStatusApproved).
			Where("profiles.gender = ?", gender).
			Count(dst).Error
	}

	active, inactive := models.MemberStatusActive, models.MemberStatusInactive
	for _, step := range []func() error{
		func() error { return memberCount(nil, &stats.TotalMembers) },
		func() error { return memberCount(&active, &stats.ActiveMembers) },
		func() error { return memberCount(&inactive, &stats.InactiveMembers) },
		func() error { return genderCount(models.GenderMale, &stats.MaleProfiles) },
		func() error { return genderCount(models.GenderFemale, &stats.FemaleProfiles) },
	} {
		if err := step(); err != nil {
			return nil, apperrors.ServerFault("load dashboard stats", err)
		}
	}

	return stats, nil
}

func toMemberResponse(member *models.Member, profileStatus *models.ProfileStatus) *models.MemberResponse {
	return &models.MemberResponse{
		MemberID:      member.MemberID,
		Email:         member.Email,
		FullName:      member.FullName,
		Role:          member.Role,
		Status:        member.Status,
		ProfileStatus: profileStatus,
		CreatedAt:     utils.FormatTime(member.CreatedAt),
		UpdatedAt:     utils.FormatTime(member.UpdatedAt),
	}
}
