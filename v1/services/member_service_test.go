package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/xuri/excelize/v2"
)

func TestMemberService_ListMembers(t *testing.T) {
	ctx := context.Background()
	db := RequireTestDB(t)
	service := NewMemberService(db, nil)

	withProfile := CreateTestMember(t, db, "meena@example.com", models.RoleMember, models.MemberStatusActive)
	withoutProfile := CreateTestMember(t, db, "new@example.com", models.RoleMember, models.MemberStatusInactive)
	CreateTestMember(t, db, "admin@example.com", models.RoleAdmin, models.MemberStatusActive)
	CreateTestProfile(t, db, withProfile.MemberID, "Meena", models.GenderFemale, models.ProfileStatusApproved)

	members, err := service.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2, "admins are not listed")

	byID := map[string]models.MemberResponse{}
	for _, m := range members {
		byID[m.MemberID] = m
	}
	require.Contains(t, byID, withProfile.MemberID)
	require.NotNil(t, byID[withProfile.MemberID].ProfileStatus)
	assert.Equal(t, models.ProfileStatusApproved, *byID[withProfile.MemberID].ProfileStatus)

	require.Contains(t, byID, withoutProfile.MemberID)
	assert.Nil(t, byID[withoutProfile.MemberID].ProfileStatus)
	assert.Equal(t, models.MemberStatusInactive, byID[withoutProfile.MemberID].Status)
}

func TestMemberService_GetMemberDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("WithProfile", func(t *testing.T) {
		db := RequireTestDB(t)
		service := NewMemberService(db, &mockBlobStore{})
		member := CreateTestMember(t, db, "meena@example.com", models.RoleMember, models.MemberStatusActive)
		profile := CreateTestProfile(t, db, member.MemberID, "Meena", models.GenderFemale, models.ProfileStatusPending)
		horoscope := "horoscope/" + member.MemberID + "/1-chart.pdf"
		require.NoError(t, db.Model(profile).Update("horoscope", horoscope).Error)

		detail, err := service.GetMemberDetail(ctx, member.MemberID)
		require.NoError(t, err)
		assert.Equal(t, "meena@example.com", detail.Email)
		require.NotNil(t, detail.Profile)
		assert.Equal(t, "Meena", detail.Profile.FullName)
		require.NotNil(t, detail.Profile.HoroscopeURL)
		assert.Equal(t, "https://files.example.test/"+horoscope, *detail.Profile.HoroscopeURL)
		assert.Nil(t, detail.Profile.ProfilePhotoURL)
		require.NotNil(t, detail.ProfileStatus)
		assert.Equal(t, models.ProfileStatusPending, *detail.ProfileStatus)
	})

	t.Run("WithoutProfile", func(t *testing.T) {
		db := RequireTestDB(t)
		service := NewMemberService(db, nil)
		member := CreateTestMember(t, db, "new@example.com", models.RoleMember, models.MemberStatusInactive)

		detail, err := service.GetMemberDetail(ctx, member.MemberID)
		require.NoError(t, err)
		assert.Nil(t, detail.Profile)
		assert.Nil(t, detail.ProfileStatus)
	})

	t.Run("UnsignableDocumentIsOmitted", func(t *testing.T) {
		db := RequireTestDB(t)
		blobs := &mockBlobStore{presignReadFunc: func(string) (string, error) {
			return "", errors.New("credentials expired")
		}}
		service := NewMemberService(db, blobs)
		member := CreateTestMember(t, db, "meena@example.com", models.RoleMember, models.MemberStatusActive)
		profile := CreateTestProfile(t, db, member.MemberID, "Meena", models.GenderFemale, models.ProfileStatusApproved)
		require.NoError(t, db.Model(profile).Update("profile_photo", "profile_photo/x/1-a.jpg").Error)

		detail, err := service.GetMemberDetail(ctx, member.MemberID)
		require.NoError(t, err)
		assert.Nil(t, detail.Profile.ProfilePhotoURL)
	})

	t.Run("NotFound", func(t *testing.T) {
		db := RequireTestDB(t)
		service := NewMemberService(db, nil)

		_, err := service.GetMemberDetail(ctx, "mem_missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMemberService_DashboardStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Counts", func(t *testing.T) {
		db := RequireTestDB(t)
		service := NewMemberService(db, nil)

		m1 := CreateTestMember(t, db, "m1@example.com", models.RoleMember, models.MemberStatusActive)
		m2 := CreateTestMember(t, db, "m2@example.com", models.RoleMember, models.MemberStatusActive)
		m3 := CreateTestMember(t, db, "m3@example.com", models.RoleMember, models.MemberStatusInactive)
		CreateTestMember(t, db, "m4@example.com", models.RoleMember, models.MemberStatusInactive)
		CreateTestMember(t, db, "admin@example.com", models.RoleAdmin, models.MemberStatusActive)

		CreateTestProfile(t, db, m1.MemberID, "M1", models.GenderMale, models.ProfileStatusApproved)
		CreateTestProfile(t, db, m2.MemberID, "M2", models.GenderFemale, models.ProfileStatusApproved)
		CreateTestProfile(t, db, m3.MemberID, "M3", models.GenderFemale, models.ProfileStatusPending)

		stats, err := service.DashboardStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.DashboardStatsResponse{
			TotalMembers:    4,
			ActiveMembers:   2,
			InactiveMembers: 2,
			MaleProfiles:    1,
			FemaleProfiles:  1,
		}, stats)
	})

	t.Run("Empty", func(t *testing.T) {
		db := RequireTestDB(t)
		service := NewMemberService(db, nil)

		stats, err := service.DashboardStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.DashboardStatsResponse{}, stats)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		db, mock, cleanup := SetupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "members"`).
			WillReturnError(errors.New("connection refused"))

		service := NewMemberService(db, nil)
		_, err := service.DashboardStats(ctx)
		assert.ErrorIs(t, err, apperrors.ErrServerFault)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemberService_ExportMembers(t *testing.T) {
	ctx := context.Background()
	db := RequireTestDB(t)
	service := NewMemberService(db, nil)

	member := CreateTestMember(t, db, "meena@example.com", models.RoleMember, models.MemberStatusActive)
	CreateTestMember(t, db, "admin@example.com", models.RoleAdmin, models.MemberStatusActive)
	CreateTestProfile(t, db, member.MemberID, "Meena", models.GenderFemale, models.ProfileStatusApproved)

	data, err := service.ExportMembers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MembersExportSheet}, f.GetSheetList())

	rows, err := f.GetRows(MembersExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one member row")
	assert.Equal(t, MembersExportHeader, rows[0])
	assert.Equal(t, member.MemberID, rows[1][0])
	assert.Equal(t, "meena@example.com", rows[1][1])
	assert.Equal(t, "Meena", rows[1][2])
	assert.Equal(t, "active", rows[1][3])
	assert.Equal(t, "approved", rows[1][4])
	assert.Equal(t, "female", rows[1][5])
	assert.Equal(t, "Chennai", rows[1][8])
}
