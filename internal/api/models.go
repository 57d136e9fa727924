package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/tasklist-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Format and policy checks happen in the domain so that every problem is
// reported at once.
type RegisterRequest struct {
	Email           string `json:"email"           validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginRequest defines the payload for the user login endpoint. The email
// format is not checked here; an address that matches no account gets the
// same refusal as a wrong password.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DateOnlyLayout is the short date form accepted for due dates.
const DateOnlyLayout = "2006-01-02"

// FlexibleTime accepts an RFC 3339 timestamp or a YYYY-MM-DD date, which is
// read as midnight UTC.
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. null and a blank string both
// leave the time zero, which reads as "no date given".
func (f *FlexibleTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := ParseFlexibleTime(s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// ParseFlexibleTime parses an RFC 3339 timestamp or a YYYY-MM-DD date.
func ParseFlexibleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateOnlyLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 timestamp nor a YYYY-MM-DD date", s)
}

func (f *FlexibleTime) ptr() *time.Time {
	if f == nil || f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

// CreateTaskRequest is the body of POST /todoitems.
type CreateTaskRequest struct {
	Title       string        `json:"title"       validate:"required,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=2000"`
	DueDateTime *FlexibleTime `json:"dueDateTime"`
	Priority    *string       `json:"priority"    validate:"omitempty,max=50"`
	Category    *string       `json:"category"    validate:"omitempty,max=100"`
}

// ToInput converts the request into a domain.TaskInput.
func (r CreateTaskRequest) ToInput() domain.TaskInput {
	return domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDateTime: r.DueDateTime.ptr(),
		Priority:    r.Priority,
		Category:    r.Category,
	}
}

// UpdateTaskRequest is the body of PUT /todoitems/{id}. Every field is
// optional; absent, null and blank values leave the stored value alone.
// Clear names optional fields to remove.
type UpdateTaskRequest struct {
	Title       *string       `json:"title"       validate:"omitempty,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=2000"`
	IsComplete  *bool         `json:"isComplete"`
	DueDateTime *FlexibleTime `json:"dueDateTime"`
	Priority    *string       `json:"priority"    validate:"omitempty,max=50"`
	Category    *string       `json:"category"    validate:"omitempty,max=100"`
	Clear       []string      `json:"clear"       validate:"omitempty,dive,oneof=description dueDateTime priority category"`
}

// ToPatch converts the request into a domain.TaskPatch.
func (r UpdateTaskRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		IsComplete:  r.IsComplete,
		DueDateTime: r.DueDateTime.ptr(),
		Priority:    r.Priority,
		Category:    r.Category,
	}
	for _, f := range r.Clear {
		patch.Clear = append(patch.Clear, domain.TaskField(f))
	}
	return patch
}

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsComplete  bool       `json:"isComplete"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDateTime *time.Time `json:"dueDateTime"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsComplete:  t.IsComplete,
		CreatedAt:   t.CreatedAt.UTC(),
		DueDateTime: t.DueDateTime,
		Priority:    t.Priority,
		Category:    t.Category,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
