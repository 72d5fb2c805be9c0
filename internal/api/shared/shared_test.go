package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(context.Background())))

	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"unknown field", `{"name":"x","other":1}`, true},
		{"trailing object", `{"name":"x"}{"name":"y"}`, true},
		{"malformed", `{"name":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), r, &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", p.Name)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `validate:"required"`
	}
	assert.Error(t, ValidateRequest(&payload{}))
	assert.NoError(t, ValidateRequest(&payload{Name: "x"}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	r = r.WithContext(WithTraceID(r.Context(), "trace-1"))
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, r, http.StatusInternalServerError, "Something failed",
		errors.New("dial postgres://admin:hunter2@db:5432/x"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Something failed", resp.Error)
	assert.Equal(t, "trace-1", resp.TraceID)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}
