package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"github.com/vinothroacs/kalyanmalai-backend/v1/utils"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperrors.Unauthenticated("invalid email or password")

// AuthService registers members and logs them in
type AuthService struct {
	db      *gorm.DB
	hasher  PasswordHasher
	tokens  *TokenService
	limiter LoginLimiter
	emails  EmailEnqueuer
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, hasher PasswordHasher, tokens *TokenService, limiter LoginLimiter, emails EmailEnqueuer) *AuthService {
	return &AuthService{
		db:      db,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		emails:  emails,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive member account. The returned session token lets
// the new member submit a profile for review; Login refuses inactive accounts.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.InvalidArgument("email and password are required")
	}
	if len(email) > models.MaxEmailLength {
		return nil, apperrors.InvalidArgument("email is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidArgument("email is invalid")
	}
	if len(req.Password) < models.MinPasswordLength {
		return nil, apperrors.InvalidArgument("password must be at least 8 characters")
	}
	fullName := strings.TrimSpace(req.FullName)
	if len(fullName) > models.MaxNameLength {
		return nil, apperrors.InvalidArgument("full name is too long")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.ServerFault("check email", err)
	}
	if count > 0 {
		return nil, apperrors.DuplicateRequest("email already registered")
	}

	hash, err := s.hasher.HashPassword(ctx, req.Password)
	if err != nil {
		return nil, apperrors.ServerFault("hash password", err)
	}

	member := models.Member{
		MemberID:     models.MemberIDPrefix + uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleMember,
		Status:       models.MemberStatusInactive,
	}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.DuplicateRequest("email already registered")
		}
		return nil, apperrors.ServerFault("create member", err)
	}

	subject, body := welcomeEmail(member.FullName)
	s.emails.Enqueue(ctx, models.EmailJobTypeWelcome, member.Email, subject, body)

	token, expiresAt, err := s.tokens.Issue(&member)
	if err != nil {
		return nil, apperrors.ServerFault("issue token", err)
	}

	slog.Info("Member registered", "memberID", member.MemberID)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventMemberRegistered, true)

	return &models.RegisterResponse{
		MemberResponse: *toMemberResponse(&member, nil),
		Token:          token,
		ExpiresAt:      utils.FormatTime(expiresAt),
	}, nil
}

// Login verifies credentials and issues a session token for active members
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.InvalidArgument("email and password are required")
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// Fail open when the limiter backend is unreachable
		slog.Warn("Login limiter unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		return nil, apperrors.TooManyRequests("too many failed login attempts, try again later")
	}

	var member models.Member
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, email)
			return nil, errInvalidCredentials
		}
		return nil, apperrors.ServerFault("load member", err)
	}

	ok, err := s.hasher.VerifyPassword(ctx, req.Password, member.PasswordHash)
	if err != nil {
		return nil, apperrors.ServerFault("verify password", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, errInvalidCredentials
	}

	if member.Status != models.MemberStatusActive {
		return nil, apperrors.Forbidden("profile waiting for admin approval")
	}

	token, expiresAt, err := s.tokens.Issue(&member)
	if err != nil {
		return nil, apperrors.ServerFault("issue token", err)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		slog.Warn("Failed to reset login limiter", "error", err)
	}

	slog.Info("Member logged in", "memberID", member.MemberID, "role", member.Role)
	monitoring.RecordBusinessEvent(ctx, monitoring.EventLoginSucceeded, true)

	return &models.LoginResponse{
		Token:     token,
		MemberID:  member.MemberID,
		Role:      member.Role,
		ExpiresAt: utils.FormatTime(expiresAt),
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		slog.Warn("Failed to record login failure", "error", err)
	}
}

// EnsureAdmin creates an active admin account for email if none exists.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.HashPassword(ctx, password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := models.Member{
		MemberID:     models.MemberIDPrefix + uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		Status:       models.MemberStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	slog.Info("Admin account created", "memberID", admin.MemberID)
	return nil
}
