package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note,omitempty" validate:"max=5"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"a@b.co"}`},
		{name: "empty body", body: "", wantErr: "request body is empty"},
		{name: "malformed", body: `{"email":`, wantErr: "unexpected EOF"},
		{name: "two values", body: `{"email":"a@b.co"} {"email":"c@d.co"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var req sampleRequest
			err := DecodeJSON(r, &req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@b.co", req.Email)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	t.Parallel()

	body := `{"email":"a@b.co","note":"` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var req sampleRequest
	assert.Error(t, DecodeJSON(r, &req))
}

func TestValidateRequest_UsesJSONFieldNames(t *testing.T) {
	t.Parallel()

	err := ValidateRequest(&sampleRequest{Email: "nope", Note: "too long"})
	require.Error(t, err)

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"email", "note"}, fields)
}
