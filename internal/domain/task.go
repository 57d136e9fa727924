package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for task text.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxPriorityLength    = 50
	MaxCategoryLength    = 100
)

// Priorities understood by the ordering rules. Any other value is accepted and
// sorts below these.
const (
	PriorityHigh   = "Alta"
	PriorityMedium = "Média"
	PriorityLow    = "Baixa"
)

// AllCategories is the category value the client sends for "no category filter".
const AllCategories = "Todas"

// Common validation errors for Task
var (
	ErrEmptyTaskOwnerID  = errors.New("task owner ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskFieldTooLong  = errors.New("task field is too long")
	ErrInvalidClearField = errors.New("field cannot be cleared")
	ErrInvalidTaskStatus = errors.New("invalid task status filter")
)

// Task is a single to-do item owned by one user.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     uuid.UUID  `json:"-"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsComplete  bool       `json:"isComplete"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
	DueDateTime *time.Time `json:"dueDateTime"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
}

// TaskInput carries the caller-supplied fields of a new task.
type TaskInput struct {
	Title       string
	Description *string
	DueDateTime *time.Time
	Priority    *string
	Category    *string
}

// NewTask creates an incomplete task for the given owner.
// Blank optional strings are stored as absent. The ID is assigned by the store.
func NewTask(ownerID uuid.UUID, in TaskInput) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: nonBlank(in.Description),
		IsComplete:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDateTime: utcPtr(in.DueDateTime),
		Priority:    nonBlank(in.Priority),
		Category:    nonBlank(in.Category),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwnerID
	}

	var errs ValidationErrors
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, NewValidationError("title", "title is required", ErrEmptyTaskTitle))
	}
	errs = appendIfTooLong(errs, "title", &t.Title, MaxTitleLength)
	errs = appendIfTooLong(errs, "description", t.Description, MaxDescriptionLength)
	errs = appendIfTooLong(errs, "priority", t.Priority, MaxPriorityLength)
	errs = appendIfTooLong(errs, "category", t.Category, MaxCategoryLength)

	return errs.OrNil()
}

// PriorityRank orders priorities for sorting: higher ranks come first.
func PriorityRank(priority *string) int {
	if priority == nil {
		return 0
	}
	switch strings.TrimSpace(*priority) {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskField names an optional task field that a patch may clear.
type TaskField string

// Clearable fields.
const (
	FieldDescription TaskField = "description"
	FieldDueDateTime TaskField = "dueDateTime"
	FieldPriority    TaskField = "priority"
	FieldCategory    TaskField = "category"
)

// TaskPatch is a partial update. Nil pointers and blank strings leave the
// stored value as it is; fields listed in Clear are removed first.
type TaskPatch struct {
	Title       *string
	Description *string
	IsComplete  *bool
	DueDateTime *time.Time
	Priority    *string
	Category    *string
	Clear       []TaskField
}

// Validate rejects unknown or non-clearable fields in Clear.
func (p TaskPatch) Validate() error {
	var errs ValidationErrors
	for _, f := range p.Clear {
		switch f {
		case FieldDescription, FieldDueDateTime, FieldPriority, FieldCategory:
		default:
			errs = append(errs, NewValidationError("clear",
				fmt.Sprintf("%q cannot be cleared", string(f)), ErrInvalidClearField))
		}
	}
	return errs.OrNil()
}

// Apply merges the patch into the task. The task is left untouched if the
// patch or the merged result is invalid.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}

	merged := *t
	for _, f := range p.Clear {
		switch f {
		case FieldDescription:
			merged.Description = nil
		case FieldDueDateTime:
			merged.DueDateTime = nil
		case FieldPriority:
			merged.Priority = nil
		case FieldCategory:
			merged.Category = nil
		}
	}

	if title := nonBlank(p.Title); title != nil {
		merged.Title = *title
	}
	if v := nonBlank(p.Description); v != nil {
		merged.Description = v
	}
	if p.IsComplete != nil {
		merged.IsComplete = *p.IsComplete
	}
	if p.DueDateTime != nil {
		merged.DueDateTime = utcPtr(p.DueDateTime)
	}
	if v := nonBlank(p.Priority); v != nil {
		merged.Priority = v
	}
	if v := nonBlank(p.Category); v != nil {
		merged.Category = v
	}

	if err := merged.Validate(); err != nil {
		return err
	}

	merged.ID = t.ID
	merged.OwnerID = t.OwnerID
	merged.CreatedAt = t.CreatedAt
	merged.UpdatedAt = now.UTC()
	*t = merged
	return nil
}

// TaskStatus selects tasks by completion.
type TaskStatus string

// Status filter values.
const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus parses a status filter; empty means all.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", TaskStatusAll:
		return TaskStatusAll, nil
	case TaskStatusPending:
		return TaskStatusPending, nil
	case TaskStatusCompleted:
		return TaskStatusCompleted, nil
	default:
		return "", NewValidationError("status",
			"status must be one of all, pending, completed", ErrInvalidTaskStatus)
	}
}

// TaskFilter narrows a task list. The zero value matches everything.
type TaskFilter struct {
	Status   TaskStatus
	Category string
	Search   string
}

// Matches reports whether the task passes the filter.
func (f TaskFilter) Matches(t *Task) bool {
	switch f.Status {
	case TaskStatusPending:
		if t.IsComplete {
			return false
		}
	case TaskStatusCompleted:
		if !t.IsComplete {
			return false
		}
	}

	category := strings.TrimSpace(f.Category)
	if category != "" && !strings.EqualFold(category, AllCategories) {
		if t.Category == nil || !strings.EqualFold(strings.TrimSpace(*t.Category), category) {
			return false
		}
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search != "" {
		inTitle := strings.Contains(strings.ToLower(t.Title), search)
		inDescription := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
		if !inTitle && !inDescription {
			return false
		}
	}

	return true
}

// FilterTasks returns the tasks that pass the filter, preserving order.
func FilterTasks(tasks []*Task, f TaskFilter) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks orders tasks in place: incomplete first, then by due date with
// undated tasks last, then by descending priority rank, then by ID.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsComplete != b.IsComplete {
			return !a.IsComplete
		}
		switch {
		case a.DueDateTime == nil && b.DueDateTime != nil:
			return false
		case a.DueDateTime != nil && b.DueDateTime == nil:
			return true
		case a.DueDateTime != nil && !a.DueDateTime.Equal(*b.DueDateTime):
			return a.DueDateTime.Before(*b.DueDateTime)
		}
		if ra, rb := PriorityRank(a.Priority), PriorityRank(b.Priority); ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})
}

// DistinctCategories returns the sorted set of non-blank categories, compared
// case-insensitively. The first spelling seen wins.
func DistinctCategories(tasks []*Task) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range tasks {
		if t.Category == nil {
			continue
		}
		c := strings.TrimSpace(*t.Category)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func appendIfTooLong(errs ValidationErrors, field string, value *string, limit int) ValidationErrors {
	if value == nil || utf8.RuneCountInString(*value) <= limit {
		return errs
	}
	return append(errs, NewValidationError(field,
		fmt.Sprintf("%s must be at most %d characters", field, limit), ErrTaskFieldTooLong))
}
