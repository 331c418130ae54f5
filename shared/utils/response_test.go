package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bad input", body.Error)
	assert.Empty(t, body.Code)
}

func TestRespondWithJSON_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestNewListResponse(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithSuccess(w, http.StatusOK, NewListResponse[string](nil))
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())

	list := NewListResponse([]int{4, 5})
	assert.Equal(t, 2, list.Count)
}

func TestParseJSONRequest(t *testing.T) {
	var target struct {
		ReceiverID string `json:"receiverId"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"receiverId":"mem_2"}`))

	require.NoError(t, ParseJSONRequest(req, &target))
	assert.Equal(t, "mem_2", target.ReceiverID)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, ParseJSONRequest(bad, &target))
}
