package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/api/shared"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTaskRouter mounts the task handlers the way the server does, with a
// stand-in for the auth middleware that injects userID when it is set.
func newTaskRouter(tasks *mocks.MockTaskService, userID uuid.UUID) http.Handler {
	h := NewTaskHandler(tasks, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/todoitems", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/categories", h.ListCategories)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func sampleTask(id int64, ownerID uuid.UUID) *domain.Task {
	category := "Casa"
	return &domain.Task{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Buy milk",
		Category:  &category,
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("passes filter through", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		filter := domain.TaskFilter{Status: domain.TaskStatusPending, Category: "Casa", Search: "milk"}
		tasks.On("List", mock.Anything, userID, filter).
			Return([]*domain.Task{sampleTask(1, userID)}, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodGet,
			"/todoitems?status=pending&category=Casa&search=milk", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, int64(1), resp[0].ID)
		tasks.AssertExpectations(t)
	})

	t.Run("no status means all", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("List", mock.Anything, userID, domain.TaskFilter{Status: domain.TaskStatusAll}).
			Return([]*domain.Task{}, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		tasks.AssertExpectations(t)
	})

	t.Run("bad status", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems?status=done", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, uuid.Nil), http.MethodGet, "/todoitems", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("List", mock.Anything, userID, mock.Anything).
			Return(nil, errors.New("db down"))

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := &mocks.MockTaskService{}
	tasks.On("Categories", mock.Anything, userID).Return([]string(nil), nil).Once()

	w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems/categories", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	tasks.AssertExpectations(t)
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("GetByID", mock.Anything, int64(5), userID).Return(sampleTask(5, userID), true, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems/5", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Buy milk", resp.Title)
		require.NotNil(t, resp.Category)
		assert.Equal(t, "Casa", *resp.Category)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("GetByID", mock.Anything, int64(5), userID).Return(nil, false, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems/5", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), MsgTaskNotFound)
	})

	t.Run("bad id", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, userID), http.MethodGet, "/todoitems/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tasks.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("created with location", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		tasks.On("Create", mock.Anything, userID, mock.MatchedBy(func(in domain.TaskInput) bool {
			return in.Title == "Buy milk" && in.DueDateTime != nil && in.DueDateTime.Equal(due)
		})).Return(sampleTask(12, userID), nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodPost, "/todoitems",
			`{"title":"Buy milk","dueDateTime":"2026-03-01","category":"Casa"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/todoitems/12", w.Header().Get("Location"))
		tasks.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, userID), http.MethodPost, "/todoitems", `{"description":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"title: required field"}, resp.Details)
	})

	t.Run("blank title rejected by service", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("Create", mock.Anything, userID, mock.Anything).
			Return(nil, domain.NewValidationError("title", "title is required", domain.ErrEmptyTaskTitle))

		w := serve(newTaskRouter(tasks, userID), http.MethodPost, "/todoitems", `{"title":"   "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad due date", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, userID), http.MethodPost, "/todoitems",
			`{"title":"x","dueDateTime":"tomorrow"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), MsgInvalidRequest)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("updated", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("Update", mock.Anything, int64(3), userID, mock.MatchedBy(func(p domain.TaskPatch) bool {
			return p.IsComplete != nil && *p.IsComplete && p.Title == nil
		})).Return(true, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodPut, "/todoitems/3", `{"isComplete":true}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		tasks.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("Update", mock.Anything, int64(3), userID, mock.Anything).Return(false, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodPut, "/todoitems/3", `{"title":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blank due date leaves it alone", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}
		tasks.On("Update", mock.Anything, int64(3), userID, mock.MatchedBy(func(p domain.TaskPatch) bool {
			return p.DueDateTime == nil && len(p.Clear) == 0
		})).Return(true, nil)

		w := serve(newTaskRouter(tasks, userID), http.MethodPut, "/todoitems/3", `{"dueDateTime":""}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		tasks.AssertExpectations(t)
	})

	t.Run("title cannot be cleared", func(t *testing.T) {
		t.Parallel()
		tasks := &mocks.MockTaskService{}

		w := serve(newTaskRouter(tasks, userID), http.MethodPut, "/todoitems/3", `{"clear":["title"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := &mocks.MockTaskService{}
	tasks.On("Delete", mock.Anything, int64(8), userID).Return(true, nil).Once()
	tasks.On("Delete", mock.Anything, int64(8), userID).Return(false, nil).Once()
	router := newTaskRouter(tasks, userID)

	first := serve(router, http.MethodDelete, "/todoitems/8", "")
	second := serve(router, http.MethodDelete, "/todoitems/8", "")

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNotFound, second.Code)
	tasks.AssertExpectations(t)
}
