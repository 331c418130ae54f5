package services

import (
	"context"
	"fmt"

	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"github.com/xuri/excelize/v2"
)

// MembersExportSheet is the worksheet holding exported members
const MembersExportSheet = "Members"

// MembersExportHeader lists the exported columns in order
var MembersExportHeader = []string{
	"Member ID",
	"Email",
	"Full Name",
	"Account Status",
	"Profile Status",
	"Gender",
	"Date Of Birth",
	"Phone",
	"Location",
	"Occupation",
	"Registered At",
}

var membersExportColumnWidths = []float64{42, 32, 24, 16, 16, 10, 14, 16, 20, 20, 22}

// ExportMembers renders every member-role account as an XLSX workbook
func (s *MemberService) ExportMembers(ctx context.Context) ([]byte, error) {
	var members []models.Member
	if err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleMember).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.ServerFault("export members", err)
	}

	profiles := make(map[string]models.Profile, len(members))
	if len(members) > 0 {
		memberIDs := make([]string, len(members))
		for i := range members {
			memberIDs[i] = members[i].MemberID
		}
		var rows []models.Profile
		if err := s.db.WithContext(ctx).Where("member_id IN ?", memberIDs).Find(&rows).Error; err != nil {
			return nil, apperrors.ServerFault("export members", err)
		}
		for _, p := range rows {
			profiles[p.MemberID] = p
		}
	}

	records := make([][]any, 0, len(members))
	for _, m := range members {
		row := []any{m.MemberID, m.Email, m.FullName, string(m.Status), "", "", "", "", "", "", utils.FormatTime(m.CreatedAt)}
		if p, ok := profiles[m.MemberID]; ok {
			if p.Details.FullName != "" {
				row[2] = p.Details.FullName
			}
			row[4] = string(p.Status)
			row[5] = string(p.Details.Gender)
			row[6] = p.Details.DateOfBirth
			row[7] = p.Details.Phone
			row[8] = p.Details.Location
			row[9] = p.Details.Occupation
		}
		records = append(records, row)
	}

	data, err := generateMembersWorkbook(records)
	if err != nil {
		return nil, apperrors.ServerFault("export members", err)
	}
	return data, nil
}

func generateMembersWorkbook(records [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(MembersExportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FCE4EC"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range MembersExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(MembersExportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(MembersExportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for col, width := range membersExportColumnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(MembersExportSheet, name, name, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(MembersExportSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
