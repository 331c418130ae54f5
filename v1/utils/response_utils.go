package utils

import (
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	sharedutils "github.com/vinothroacs/kalyanmalai-backend/shared/utils"
)

// RespondWithAPIError renders a service error. Internal causes are logged, never sent.
func RespondWithAPIError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apperrors.GetAPIError(err)
	if apiErr == nil {
		apiErr = apperrors.ServerFault("handle request", err)
	}

	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", apiErr.Code,
			"error", apiErr.InternalErr)
	} else {
		slog.Debug("Request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"code", apiErr.Code,
			"message", apiErr.Message)
	}

	sharedutils.RespondWithJSON(w, apiErr.HTTPStatus, sharedutils.ErrorResponse{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// FormatTime renders timestamps the way every response does
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtr renders an optional timestamp
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
