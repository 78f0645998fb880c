package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"taskmaster/internal/apperror"
	"taskmaster/internal/filter"
	"taskmaster/internal/handler"
	"taskmaster/internal/model"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) task(args mock.Arguments) (*model.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, caller uuid.UUID, in service.CreateTaskInput) (*model.Task, error) {
	return m.task(m.Called(ctx, caller, in))
}

func (m *MockTaskService) List(ctx context.Context, caller uuid.UUID, spec filter.TaskSpec, page filter.PageRequest) (filter.Page[model.Task], error) {
	args := m.Called(ctx, caller, spec, page)
	return args.Get(0).(filter.Page[model.Task]), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, caller, taskID uuid.UUID) (*model.Task, error) {
	return m.task(m.Called(ctx, caller, taskID))
}

func (m *MockTaskService) Update(ctx context.Context, caller, taskID uuid.UUID, in service.UpdateTaskInput) (*model.Task, error) {
	return m.task(m.Called(ctx, caller, taskID, in))
}

func (m *MockTaskService) Delete(ctx context.Context, caller, taskID uuid.UUID) error {
	args := m.Called(ctx, caller, taskID)
	return args.Error(0)
}

func (m *MockTaskService) Assign(ctx context.Context, caller, taskID uuid.UUID, assignee *uuid.UUID) (*model.Task, error) {
	return m.task(m.Called(ctx, caller, taskID, assignee))
}

func (m *MockTaskService) ChangeStatus(ctx context.Context, caller, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	return m.task(m.Called(ctx, caller, taskID, status))
}

func setupTaskRouter(caller uuid.UUID) (*gin.Engine, *MockTaskService) {
	r := gin.New()
	mockTasks := new(MockTaskService)
	h := handler.NewTaskHandler(mockTasks)

	g := r.Group("/tasks", withCaller(caller))
	g.POST("", h.Create)
	g.GET("", h.GetAll)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/assign", h.AssignUser)
	g.DELETE("/:id/assign", h.UnassignUser)
	g.POST("/:id/change_status", h.ChangeStatus)
	return r, mockTasks
}

func sampleTask(status model.TaskStatus) *model.Task {
	return &model.Task{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Title:     "Ship it",
		Status:    status,
		Priority:  model.PriorityHigh,
		CreatedBy: uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestTaskHandler_Create(t *testing.T) {
	// Arrange
	caller := uuid.New()
	router, mockTasks := setupTaskRouter(caller)
	task := sampleTask(model.StatusTodo)

	mockTasks.On("Create", mock.Anything, caller, mock.MatchedBy(func(in service.CreateTaskInput) bool {
		return in.ProjectID == task.ProjectID && in.Title == "Ship it" && in.Priority == model.PriorityHigh
	})).Return(task, nil)

	// Act
	w := doJSON(router, http.MethodPost, "/tasks", map[string]any{
		"project":  task.ProjectID.String(),
		"title":    "Ship it",
		"priority": "HIGH",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp handler.TaskResponse
	require.NoError(t, decode(w, &resp))
	assert.Equal(t, "TODO", resp.Status)
	assert.Equal(t, []string{"IN_PROGRESS", "BLOCKED"}, resp.AllowedTransitions)
	mockTasks.AssertExpectations(t)
}

func TestTaskHandler_Create_InvalidPriority(t *testing.T) {
	router, mockTasks := setupTaskRouter(uuid.New())

	w := doJSON(router, http.MethodPost, "/tasks", map[string]any{
		"project":  uuid.NewString(),
		"title":    "Ship it",
		"priority": "CRITICAL",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.ErrorResponse
	require.NoError(t, decode(w, &resp))
	assert.Equal(t, "Priority", resp.Field)
	mockTasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"not a member", apperror.Denied(apperror.ReasonNotAMember), http.StatusForbidden, "NotAMember"},
		{"insufficient role", apperror.Denied(apperror.ReasonInsufficientRole), http.StatusForbidden, "InsufficientRole"},
		{"not found", apperror.ErrNotFound, http.StatusNotFound, ""},
		{"invalid transition", fmt.Errorf("%w: TODO -> DONE", apperror.ErrInvalidTransition), http.StatusConflict, "InvalidTransition"},
		{"assignee not a member", apperror.ErrNotAMember, http.StatusUnprocessableEntity, "NotAMember"},
		{"storage", apperror.Storage("lock task", fmt.Errorf("deadlock detected")), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := uuid.New()
			router, mockTasks := setupTaskRouter(caller)
			taskID := uuid.New()
			mockTasks.On("ChangeStatus", mock.Anything, caller, taskID, model.StatusDone).Return(nil, tt.err)

			w := doJSON(router, http.MethodPost, "/tasks/"+taskID.String()+"/change_status", map[string]string{"status": "DONE"})

			assert.Equal(t, tt.status, w.Code)
			var resp handler.ErrorResponse
			require.NoError(t, decode(w, &resp))
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}
}

func TestTaskHandler_ChangeStatus_UnknownStatus(t *testing.T) {
	router, mockTasks := setupTaskRouter(uuid.New())

	w := doJSON(router, http.MethodPost, "/tasks/"+uuid.NewString()+"/change_status", map[string]string{"status": "ARCHIVED"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTasks.AssertNotCalled(t, "ChangeStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_InvalidID(t *testing.T) {
	router, _ := setupTaskRouter(uuid.New())

	w := doJSON(router, http.MethodGet, "/tasks/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid task ID format")
}

func TestTaskHandler_GetAll(t *testing.T) {
	// Arrange
	caller := uuid.New()
	router, mockTasks := setupTaskRouter(caller)
	tasks := []model.Task{*sampleTask(model.StatusTodo), *sampleTask(model.StatusBlocked)}
	page := filter.Page[model.Task]{Count: 5, TotalPages: 3, CurrentPage: 2, PageSize: 2, Results: tasks}

	mockTasks.On("List", mock.Anything, caller, mock.MatchedBy(func(spec filter.TaskSpec) bool {
		return len(spec.Statuses) == 2 && spec.AssigneeID != nil && *spec.AssigneeID == caller
	}), filter.PageRequest{Page: 2, Size: 2}).Return(page, nil)

	// Act
	w := doJSON(router, http.MethodGet, "/tasks?status=TODO,BLOCKED&assigned_to_me=true&page=2&page_size=2", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.PageResponse[handler.TaskResponse]
	require.NoError(t, decode(w, &resp))
	assert.Equal(t, 5, resp.Count)
	assert.Len(t, resp.Results, 2)
	require.NotNil(t, resp.Next)
	require.NotNil(t, resp.Previous)
	assert.Contains(t, *resp.Next, "page=3")
	assert.Contains(t, *resp.Previous, "page=1")
}

func TestTaskHandler_GetAll_BadFilter(t *testing.T) {
	router, mockTasks := setupTaskRouter(uuid.New())

	w := doJSON(router, http.MethodGet, "/tasks?ordering=title", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.ErrorResponse
	require.NoError(t, decode(w, &resp))
	assert.Equal(t, "ordering", resp.Field)
	mockTasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_Assign(t *testing.T) {
	caller := uuid.New()
	router, mockTasks := setupTaskRouter(caller)
	task := sampleTask(model.StatusInProgress)
	assignee := uuid.New()
	assigned := *task
	assigned.AssignedTo = &assignee

	mockTasks.On("Assign", mock.Anything, caller, task.ID, &assignee).Return(&assigned, nil)
	mockTasks.On("Assign", mock.Anything, caller, task.ID, (*uuid.UUID)(nil)).Return(task, nil)

	w := doJSON(router, http.MethodPost, "/tasks/"+task.ID.String()+"/assign", map[string]string{"user_id": assignee.String()})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.TaskResponse
	require.NoError(t, decode(w, &resp))
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, assignee.String(), *resp.AssignedTo)

	w = doJSON(router, http.MethodDelete, "/tasks/"+task.ID.String()+"/assign", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = handler.TaskResponse{}
	require.NoError(t, decode(w, &resp))
	assert.Nil(t, resp.AssignedTo)
}

func TestTaskHandler_Delete(t *testing.T) {
	caller := uuid.New()
	router, mockTasks := setupTaskRouter(caller)
	taskID := uuid.New()
	mockTasks.On("Delete", mock.Anything, caller, taskID).Return(nil)

	w := doJSON(router, http.MethodDelete, "/tasks/"+taskID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockTasks.AssertExpectations(t)
}
