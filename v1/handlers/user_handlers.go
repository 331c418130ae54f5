package handlers

import (
	"net/http"

	"github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	authutils "github.com/vinothroacs/kalyanmalai-backend/v1/utils"
)

// handleUser handles the member self-service routes under /api/v1/user
func (h *V1Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	parts := pathParts(r.URL.Path, "/api/v1/user")
	if len(parts) == 0 {
		endpointNotFound(w)
		return
	}

	switch parts[0] {
	case "profile":
		h.routeProfile(w, r, user, parts[1:])
	case "uploads":
		if len(parts) != 1 {
			endpointNotFound(w)
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.createUploadURL(w, r, user)
	case "matches":
		if len(parts) != 1 {
			endpointNotFound(w)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listMatches(w, r, user)
	case "connections":
		h.routeConnections(w, r, user, parts[1:])
	case "notifications":
		h.routeNotifications(w, r, user, parts[1:])
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) routeProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, rest []string) {
	// GET /api/v1/user/profile/status
	if len(rest) == 1 && rest[0] == "status" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.getProfileStatus(w, r, user)
		return
	}
	if len(rest) != 0 {
		endpointNotFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getOwnProfile(w, r, user)
	case http.MethodPost:
		h.submitProfile(w, r, user)
	case http.MethodPut:
		h.updateProfile(w, r, user)
	case http.MethodDelete:
		h.deleteProfile(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (h *V1Handler) routeConnections(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.listMyConnections(w, r, user)
		case http.MethodPost:
			h.requestConnection(w, r, user)
		default:
			methodNotAllowed(w)
		}
	case len(rest) == 2 && rest[1] == "profile":
		// GET /api/v1/user/connections/:memberId/profile
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.getConnectedProfile(w, r, user, rest[0])
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) routeNotifications(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listNotifications(w, r, user)
	case len(rest) == 1 && rest[0] == "read":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.markAllNotificationsRead(w, r, user)
	case len(rest) == 2 && rest[1] == "read":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.markNotificationRead(w, r, user, rest[0])
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) submitProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	var req models.SubmitProfileRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	profile, err := h.profileService.SubmitProfile(r.Context(), user.MemberID, &req)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusCreated, profile)
}

func (h *V1Handler) getProfileStatus(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	status, err := h.profileService.GetProfileStatus(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, status)
}

func (h *V1Handler) getOwnProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	profile, err := h.profileService.GetOwnProfile(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, profile)
}

func (h *V1Handler) updateProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	var req models.UpdateProfileRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), user.MemberID, &req)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, profile)
}

func (h *V1Handler) deleteProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	if err := h.profileService.DeleteProfile(r.Context(), user.MemberID); err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"message": "Profile deleted"})
}

func (h *V1Handler) createUploadURL(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	var req models.CreateUploadRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	upload, err := h.profileService.CreateUploadURL(r.Context(), user.MemberID, &req)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, upload)
}

func (h *V1Handler) listMatches(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	matches, err := h.profileService.ListMatches(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, matches)
}

func (h *V1Handler) requestConnection(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	var req models.CreateConnectionRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	connection, err := h.connectionService.RequestConnection(r.Context(), user.MemberID, req.ReceiverID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusCreated, connection)
}

func (h *V1Handler) listMyConnections(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	connections, err := h.connectionService.ListMyConnections(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, connections)
}

func (h *V1Handler) getConnectedProfile(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, memberID string) {
	profile, err := h.connectionService.GetFullProfile(r.Context(), user.MemberID, memberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, profile)
}

func (h *V1Handler) listNotifications(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	notifications, err := h.notificationService.ListNotifications(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	respondWithList(w, notifications)
}

func (h *V1Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	updated, err := h.notificationService.MarkAllRead(r.Context(), user.MemberID)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *V1Handler) markNotificationRead(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, notificationID string) {
	if err := h.notificationService.MarkRead(r.Context(), user.MemberID, notificationID); err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
