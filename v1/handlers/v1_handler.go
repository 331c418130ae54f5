package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	"github.com/vinothroacs/kalyanmalai-backend/v1/middleware"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/services"
	authutils "github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

const maxRequestBodyBytes = 1 << 20

// Dependencies are the infrastructure handles chosen at startup
type Dependencies struct {
	Tokens  *services.TokenService
	Hasher  services.PasswordHasher
	Limiter services.LoginLimiter
	Blobs   services.BlobStore
	Clock   services.Clock
}

// V1Handler handles all V1 API routes
type V1Handler struct {
	authService         *services.AuthService
	profileService      *services.ProfileService
	connectionService   *services.ConnectionService
	moderationService   *services.ModerationService
	memberService       *services.MemberService
	notificationService *services.NotificationService
}

// NewV1Handler creates a new V1 handler
func NewV1Handler(db *gorm.DB, deps Dependencies) (*V1Handler, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if deps.Clock == nil {
		deps.Clock = services.SystemClock
	}
	if deps.Hasher == nil {
		deps.Hasher = services.NewArgon2Hasher(nil)
	}
	if deps.Limiter == nil {
		deps.Limiter = services.NewMemoryLoginLimiter(0, 0, deps.Clock)
	}
	if deps.Blobs == nil {
		deps.Blobs = services.DisabledBlobStore{}
	}

	emails := services.NewEmailOutbox(db, deps.Clock)
	notifications := services.NewNotificationService(db, deps.Clock)
	connections := services.NewConnectionService(db, deps.Blobs, notifications, emails, deps.Clock)

	return &V1Handler{
		authService:         services.NewAuthService(db, deps.Hasher, deps.Tokens, deps.Limiter, emails),
		profileService:      services.NewProfileService(db, deps.Blobs, deps.Clock),
		connectionService:   connections,
		moderationService:   services.NewModerationService(db, deps.Blobs, connections, notifications, emails, deps.Clock),
		memberService:       services.NewMemberService(db, deps.Blobs),
		notificationService: notifications,
	}, nil
}

// AuthService exposes account bootstrap to the server entrypoint
func (h *V1Handler) AuthService() *services.AuthService {
	return h.authService
}

// SetupV1Routes configures all V1 API routes
func (h *V1Handler) SetupV1Routes(mux *http.ServeMux) {
	// Auth routes
	mux.Handle("/api/v1/auth/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAuth)))

	// Member self-service routes
	mux.Handle("/api/v1/user/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleUser)))

	// Admin routes
	mux.Handle("/api/v1/admin/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAdmin)))
}

// handleAuth handles registration and login
func (h *V1Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/v1/auth")
	if len(parts) != 1 {
		endpointNotFound(w)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	switch parts[0] {
	case "register":
		h.register(w, r)
	case "login":
		h.login(w, r)
	default:
		endpointNotFound(w)
	}
}

func (h *V1Handler) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	member, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusCreated, member)
}

func (h *V1Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		authutils.RespondWithAPIError(w, r, err)
		return
	}
	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

// pathParts splits the path below prefix into its segments
func pathParts(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// requireUser returns the authenticated caller or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (*models.AuthenticatedUser, bool) {
	user, err := middleware.GetUserFromRequest(r)
	if err != nil {
		authutils.RespondWithAPIError(w, r, apperrors.Unauthenticated("Authentication required"))
		return nil, false
	}
	return user, true
}

// decodeBody parses a JSON body into target. An empty body is accepted when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	err := utils.ParseJSONRequest(r, target)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	authutils.RespondWithAPIError(w, r, apperrors.InvalidArgument("invalid request body"))
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func endpointNotFound(w http.ResponseWriter) {
	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

func respondWithList[T any](w http.ResponseWriter, items []T) {
	utils.RespondWithSuccess(w, http.StatusOK, utils.NewListResponse(items))
}
