package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "validation", err: customError.NewValidation("amount is required", nil), wantStatus: http.StatusBadRequest, wantCode: customError.ErrCodeValidation},
		{name: "conflict", err: customError.NewConflict("active cycle exists", customError.ErrCycleAlreadyActive), wantStatus: http.StatusConflict, wantCode: customError.ErrCodeConflict},
		{name: "not found", err: customError.NewNotFound("loan not found", nil), wantStatus: http.StatusNotFound, wantCode: customError.ErrCodeNotFound},
		{name: "forbidden", err: customError.NewForbidden("admin only", customError.ErrAdminRequired), wantStatus: http.StatusForbidden, wantCode: customError.ErrCodeForbidden},
		{name: "unauthorized", err: customError.NewUnauthorized("bad token"), wantStatus: http.StatusUnauthorized, wantCode: customError.ErrCodeUnauthorized},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			FromError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
}
