package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	authutils "github.com/vinothroacs/kalyanmalai-backend/v1/utils"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	membersExportFile = "members.xlsx"
)

// handleAdmin handles the moderation and member administration routes under /api/v1/admin
func (h *V1Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	parts := pathParts(r.URL.Path, "/api/v1/admin")
	if len(parts) == 0 {
		endpointNotFound(w)
		return
	}

	switch parts[0] {
	case "profiles":
		h.routeAdminProfiles(w, r, parts[1:])
	case "connections":
		h.routeAdminConnections(w, r, parts[1:])
	case "members":
		h.routeAdminMembers(w, r, parts[1:])
	case "dashboard":
		if len(parts) != 1 {
			endpointNotFound(w)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.getDashboard(w, r)
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) routeAdminProfiles(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 1 && rest[0] == "pending":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listPendingProfiles(w, r)
	case len(rest) == 2 && (rest[1] == "approve" || rest[1] == "reject"):
		// PUT /api/v1/admin/profiles/:profileId/{approve,reject}
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		if rest[1] == "approve" {
			h.approveProfile(w, r, rest[0])
		} else {
			h.rejectProfile(w, r, rest[0])
		}
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) routeAdminConnections(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 1 && rest[0] == "pending":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listPendingConnections(w, r)
	case len(rest) == 2 && (rest[1] == "approve" || rest[1] == "reject"):
		// PUT /api/v1/admin/connections/:connectionId/{approve,reject}
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.decideConnection(w, r, rest[0], rest[1] == "approve")
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) routeAdminMembers(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listMembers(w, r)
	case len(rest) == 1 && rest[0] == "export":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.exportMembers(w, r)
	case len(rest) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.getMemberDetail(w, r, rest[0])
	case len(rest) == 2 && rest[1] == "status":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.updateMemberStatus(w, r, rest[0])
	case len(rest) == 2 && rest[1] == "deactivate":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.deactivateMember(w, r, rest[0])
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) listPendingProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.moderationService.ListPendingProfiles(r.Context())
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, profiles)
}

func (h *V1Handler) approveProfile(w http.ResponseWriter, r *http.Request, profileID string) {
	profile, err := h.moderationService.ApproveProfile(r.Context(), profileID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, profile)
}

func (h *V1Handler) rejectProfile(w http.ResponseWriter, r *http.Request, profileID string) {
	var req models.RejectProfileRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	profile, err := h.moderationService.RejectProfile(r.Context(), profileID, req.Reason)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, profile)
}

func (h *V1Handler) listPendingConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.moderationService.ListPendingConnections(r.Context())
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, connections)
}

func (h *V1Handler) decideConnection(w http.ResponseWriter, r *http.Request, connectionID string, approve bool) {
	var (
		connection *models.ConnectionResponse
		err        error
	)
	if approve {
		connection, err = h.moderationService.ApproveConnection(r.Context(), connectionID)
	} else {
		connection, err = h.moderationService.RejectConnection(r.Context(), connectionID)
	}
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, connection)
}

func (h *V1Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.ListMembers(r.Context())
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, members)
}

func (h *V1Handler) getMemberDetail(w http.ResponseWriter, r *http.Request, memberID string) {
	member, err := h.memberService.GetMemberDetail(r.Context(), memberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, member)
}

func (h *V1Handler) updateMemberStatus(w http.ResponseWriter, r *http.Request, memberID string) {
	var req models.UpdateMemberStatusRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := h.moderationService.SetMemberStatus(r.Context(), memberID, req.Status); err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"memberId": memberID, "status": req.Status})
}

func (h *V1Handler) deactivateMember(w http.ResponseWriter, r *http.Request, memberID string) {
	if err := h.moderationService.DeactivateMember(r.Context(), memberID); err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"memberId": memberID, "status": string(models.MemberStatusInactive)})
}

func (h *V1Handler) exportMembers(w http.ResponseWriter, r *http.Request) {
	data, err := h.memberService.ExportMembers(r.Context())
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", membersExportFile))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *V1Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.memberService.DashboardStats(r.Context())
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, stats)
}
