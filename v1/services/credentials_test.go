package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
)

func TestArgon2Hasher(t *testing.T) {
	ctx := context.Background()
	hasher := NewArgon2Hasher(TestArgon2Params)

	hash, err := hasher.HashPassword(ctx, "correct horse")
	require.NoError(t, err)

	other, err := hasher.HashPassword(ctx, "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "each hash uses a fresh salt")

	ok, err := hasher.VerifyPassword(ctx, "correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.VerifyPassword(ctx, "battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.VerifyPassword(ctx, "correct horse", "$2a$10$notargon")
	assert.Error(t, err)
}

func TestTokenService(t *testing.T) {
	member := &models.Member{MemberID: "mem_1", Email: "a@example.com", Role: models.RoleAdmin}

	t.Run("RequiresSecret", func(t *testing.T) {
		_, err := NewTokenService("", "issuer", nil)
		assert.Error(t, err)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		tokens, err := NewTokenService(testJWTSecret, "kalyanmalai", FixedClock(testNow))
		require.NoError(t, err)

		token, expiresAt, err := tokens.Issue(member)
		require.NoError(t, err)
		assert.Equal(t, testNow.Add(models.SessionTokenTTL), expiresAt)

		user, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "mem_1", user.MemberID)
		assert.Equal(t, "a@example.com", user.Email)
		assert.True(t, user.IsAdmin())
	})

	t.Run("Expired", func(t *testing.T) {
		issuer, err := NewTokenService(testJWTSecret, "kalyanmalai", FixedClock(testNow))
		require.NoError(t, err)
		token, _, err := issuer.Issue(member)
		require.NoError(t, err)

		later, err := NewTokenService(testJWTSecret, "kalyanmalai", FixedClock(testNow.Add(models.SessionTokenTTL+time.Second)))
		require.NoError(t, err)
		_, err = later.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		issuer, err := NewTokenService("another-secret", "kalyanmalai", FixedClock(testNow))
		require.NoError(t, err)
		token, _, err := issuer.Issue(member)
		require.NoError(t, err)

		verifier, err := NewTokenService(testJWTSecret, "kalyanmalai", FixedClock(testNow))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		issuer, err := NewTokenService(testJWTSecret, "someone-else", FixedClock(testNow))
		require.NoError(t, err)
		token, _, err := issuer.Issue(member)
		require.NoError(t, err)

		verifier, err := NewTokenService(testJWTSecret, "kalyanmalai", FixedClock(testNow))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("RejectsOtherAlgorithms", func(t *testing.T) {
		claims := &models.UserClaims{
			Role: models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "mem_1",
				ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		verifier, err := NewTokenService(testJWTSecret, "", FixedClock(testNow))
		require.NoError(t, err)
		_, err = verifier.Verify(unsigned)
		assert.Error(t, err)
	})

	t.Run("RejectsUnknownRole", func(t *testing.T) {
		claims := &models.UserClaims{
			Role: "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "mem_1",
				ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
		require.NoError(t, err)

		verifier, err := NewTokenService(testJWTSecret, "", FixedClock(testNow))
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		assert.Error(t, err)
	})
}

func TestMemoryLoginLimiter(t *testing.T) {
	ctx := context.Background()
	now := testNow
	limiter := NewMemoryLoginLimiter(3, 15*time.Minute, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
		require.NoError(t, limiter.RecordFailure(ctx, "a@example.com"))
	}

	allowed, _ := limiter.Allow(ctx, "A@example.com")
	assert.False(t, allowed, "keys are case-insensitive")

	allowed, _ = limiter.Allow(ctx, "b@example.com")
	assert.True(t, allowed, "other keys are unaffected")

	now = now.Add(15 * time.Minute)
	allowed, _ = limiter.Allow(ctx, "a@example.com")
	assert.True(t, allowed, "failures age out of the window")

	require.NoError(t, limiter.RecordFailure(ctx, "a@example.com"))
	require.NoError(t, limiter.Reset(ctx, "a@example.com"))
	limiter.mutex.Lock()
	assert.NotContains(t, limiter.failures, "a@example.com")
	limiter.mutex.Unlock()
}

func TestMemoryLoginLimiter_SweepsStaleKeys(t *testing.T) {
	ctx := context.Background()
	now := testNow
	limiter := NewMemoryLoginLimiter(5, 15*time.Minute, func() time.Time { return now })

	for i := 0; i < 1000; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, fmt.Sprintf("user%d@example.com", i)))
	}
	limiter.mutex.Lock()
	assert.Len(t, limiter.failures, 1000)
	limiter.mutex.Unlock()

	now = now.Add(24 * time.Hour)
	require.NoError(t, limiter.RecordFailure(ctx, "fresh@example.com"))

	limiter.mutex.Lock()
	assert.Len(t, limiter.failures, 1, "only the fresh key survives")
	assert.Contains(t, limiter.failures, "fresh@example.com")
	limiter.mutex.Unlock()

	// Keys still inside the window are kept
	now = now.Add(10 * time.Minute)
	require.NoError(t, limiter.RecordFailure(ctx, "other@example.com"))
	now = now.Add(10 * time.Minute)
	allowed, err := limiter.Allow(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	limiter.mutex.Lock()
	assert.NotContains(t, limiter.failures, "fresh@example.com")
	assert.Contains(t, limiter.failures, "other@example.com")
	limiter.mutex.Unlock()
}

func TestBuildBlobKey(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{"Plain", "photo.jpg", "profile_photo/mem_1/1704110400-photo.jpg"},
		{"Spaces", "my photo.jpg", "profile_photo/mem_1/1704110400-my_photo.jpg"},
		{"PathTraversal", "../../etc/passwd", "profile_photo/mem_1/1704110400-passwd"},
		{"WindowsPath", `C:\Users\me\photo.png`, "profile_photo/mem_1/1704110400-photo.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildBlobKey(string(models.UploadKindProfilePhoto), "mem_1", tt.fileName, testNow))
		})
	}
}

func TestDisabledBlobStore(t *testing.T) {
	ctx := context.Background()
	_, _, err := DisabledBlobStore{}.PresignUpload(ctx, "k", "image/png")
	assert.ErrorIs(t, err, ErrBlobStoreDisabled)
	_, err = DisabledBlobStore{}.PresignRead(ctx, "k")
	assert.ErrorIs(t, err, ErrBlobStoreDisabled)

	_, err = NewS3BlobStore(ctx, "ap-south-1", "")
	assert.ErrorIs(t, err, ErrBlobStoreDisabled)
}
