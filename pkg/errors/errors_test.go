package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"Unauthenticated", Unauthenticated("missing token"), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"Forbidden", Forbidden("denied"), http.StatusForbidden, "FORBIDDEN"},
		{"NotFound", NotFound("member"), http.StatusNotFound, "NOT_FOUND"},
		{"DuplicateRequest", DuplicateRequest("exists"), http.StatusConflict, "DUPLICATE_REQUEST"},
		{"Conflict", Conflict("under review"), http.StatusConflict, "CONFLICT"},
		{"InvalidArgument", InvalidArgument("bad status"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"TooManyRequests", TooManyRequests("slow down"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"ServerFault", ServerFault("load member", errors.New("boom")), http.StatusInternalServerError, "SERVER_FAULT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	assert.Equal(t, "member not found", NotFound("member").Message)
}

func TestAPIError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("profile not visible"))

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestServerFault_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ServerFault("insert connection", cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "connection refused")
}

func TestHandleDatabaseError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, HandleDatabaseError(nil, "member", "load member"))
	})

	t.Run("Record not found", func(t *testing.T) {
		err := HandleDatabaseError(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), "member", "load member")
		require.NotNil(t, err)
		assert.Equal(t, ErrorTypeNotFound, err.Type)
	})

	t.Run("Duplicated key", func(t *testing.T) {
		err := HandleDatabaseError(gorm.ErrDuplicatedKey, "connection", "insert connection")
		require.NotNil(t, err)
		assert.Equal(t, ErrorTypeDuplicateRequest, err.Type)
	})

	t.Run("Already an APIError", func(t *testing.T) {
		original := InvalidArgument("bad")
		assert.Same(t, original, HandleDatabaseError(original, "member", "load member"))
	})

	t.Run("Anything else is a server fault", func(t *testing.T) {
		err := HandleDatabaseError(errors.New("disk full"), "member", "load member")
		require.NotNil(t, err)
		assert.Equal(t, ErrorTypeServerFault, err.Type)
	})
}
