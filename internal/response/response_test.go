package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecotrace/internal/contextutils"
	"ecotrace/internal/services"
	"ecotrace/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteSuccess(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop(), nil)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(contextutils.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	b.WriteSuccess(rec, req, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.NotZero(t, resp.Timestamp)
	assert.Nil(t, resp.Error)
}

func TestWriteErrorStatusMapping(t *testing.T) {
	fieldErr := validation.Errors{{Field: "quantity", Tag: "gte", Param: "0"}}

	tests := []struct {
		name     string
		err      error
		status   int
		errType  string
		message  string
		hasField bool
	}{
		{"validation", services.NewValidationError("invalid activity", fieldErr), http.StatusBadRequest, services.ErrTypeValidation, "invalid activity", true},
		{"auth", services.NewAuthenticationError("invalid email or password"), http.StatusUnauthorized, services.ErrTypeAuthentication, "invalid email or password", false},
		{"not found", services.NewNotFoundError("user not found"), http.StatusNotFound, services.ErrTypeNotFound, "user not found", false},
		{"conflict", services.NewConflictError("email already registered", "EMAIL_TAKEN"), http.StatusConflict, services.ErrTypeConflict, "email already registered", false},
		{"internal", services.NewInternalError("db exploded at host 10.0.0.1", errors.New("boom")), http.StatusInternalServerError, services.ErrTypeInternal, internalErrorMessage, false},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, services.ErrTypeInternal, internalErrorMessage, false},
	}

	b := NewBuilder(nil, zap.NewNop(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			b.WriteError(rec, httptest.NewRequest(http.MethodPost, "/x", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.errType, resp.Error.Type)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, tt.hasField, len(resp.Error.Fields) > 0)
		})
	}
}

func TestUnmaskedInternalErrors(t *testing.T) {
	b := NewBuilder(&Config{MaskInternalErrors: false}, zap.NewNop(), nil)
	rec := httptest.NewRecorder()
	b.WriteError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), services.NewInternalError("failed to load leaderboard", nil))

	resp := decode(t, rec)
	assert.Equal(t, "failed to load leaderboard", resp.Error.Message)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"alice"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"a","extra":1}`, true},
		{"trailing data", `{"name":"a"}{"name":"b"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr {
				assert.True(t, services.IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", p.Name)
		})
	}
}
