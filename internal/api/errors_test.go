package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasklist-api/internal/api/shared"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/phrazzld/tasklist-api/internal/service/auth"
	"github.com/phrazzld/tasklist-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusInternalServerError},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked", fmt.Errorf("login: %w", service.ErrAccountLocked), http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"email exists", fmt.Errorf("register: %w", store.ErrEmailExists), http.StatusConflict},
		{"validation", domain.NewValidationError("title", "title is required", domain.ErrEmptyTaskTitle), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"service error wrapping store failure", service.NewServiceError("task", "list", "boom", errors.New("db down")), http.StatusInternalServerError},
		{"unknown", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MsgInvalidCredentials, GetSafeErrorMessage(service.ErrInvalidCredentials))
	assert.Equal(t, MsgAccountLocked, GetSafeErrorMessage(service.ErrAccountLocked))
	assert.Equal(t, "Token expired", GetSafeErrorMessage(auth.ErrExpiredToken))
	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrInvalidToken))
	assert.Equal(t, MsgTaskNotFound, GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, MsgEmailExists, GetSafeErrorMessage(store.ErrEmailExists))
	assert.Equal(t, MsgUnexpected, GetSafeErrorMessage(nil))

	// Internal text never reaches the client.
	internal := errors.New("pq: relation \"tasks\" does not exist")
	assert.Equal(t, MsgUnexpected, GetSafeErrorMessage(internal))
}

func TestValidationDetails(t *testing.T) {
	t.Parallel()

	t.Run("domain validation errors", func(t *testing.T) {
		t.Parallel()
		err := domain.ValidationErrors{
			domain.NewValidationError("email", "email is required", domain.ErrEmptyEmail),
			domain.NewValidationError("password", "passwords do not match", domain.ErrInvalidPassword),
		}
		assert.Equal(t, []string{
			"email: email is required",
			"password: passwords do not match",
		}, ValidationDetails(fmt.Errorf("register: %w", err)))
	})

	t.Run("single validation error", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("title", "title is required", domain.ErrEmptyTaskTitle)
		assert.Equal(t, []string{"title: title is required"}, ValidationDetails(err))
	})

	t.Run("validator errors", func(t *testing.T) {
		t.Parallel()
		req := struct {
			Email    string `json:"email"    validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}{Email: "not-an-email"}
		err := shared.ValidateRequest(&req)
		require.Error(t, err)

		var fieldErrs validator.ValidationErrors
		require.True(t, errors.As(err, &fieldErrs))
		assert.ElementsMatch(t, []string{
			"email: invalid email format",
			"password: required field",
		}, ValidationDetails(err))
	})

	t.Run("no field information", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ValidationDetails(errors.New("plain")))
	})
}

func TestGetValidationTagMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "required field", getValidationTagMessage("required", ""))
	assert.Equal(t, "must be at most 200 characters", getValidationTagMessage("max", "200"))
	assert.Equal(t, "must be one of: a b", getValidationTagMessage("oneof", "a b"))
	assert.Equal(t, "validation failed", getValidationTagMessage("uuid", ""))
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	t.Run("validation failure carries details", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/todoitems", nil)

		HandleAPIError(w, r, domain.NewValidationError("title", "title is required", domain.ErrEmptyTaskTitle))

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgValidationFailed, resp.Error)
		assert.Equal(t, []string{"title: title is required"}, resp.Details)
	})

	t.Run("internal failure is hidden", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/todoitems", nil)

		HandleAPIError(w, r, errors.New("connection refused to 10.0.0.5"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
		assert.Contains(t, w.Body.String(), MsgUnexpected)
	})
}
