package handler

import (
	"context"
	"net/http"
	"time"

	"taskmaster/internal/filter"
	"taskmaster/internal/model"
	"taskmaster/internal/service"
	"taskmaster/internal/taskstate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, caller uuid.UUID, in service.CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, caller uuid.UUID, spec filter.TaskSpec, page filter.PageRequest) (filter.Page[model.Task], error)
	Get(ctx context.Context, caller, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, caller, taskID uuid.UUID, in service.UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, caller, taskID uuid.UUID) error
	Assign(ctx context.Context, caller, taskID uuid.UUID, assignee *uuid.UUID) (*model.Task, error)
	ChangeStatus(ctx context.Context, caller, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error)
}

type TaskHandler struct {
	tasks TaskService
	now   func() time.Time
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks, now: time.Now}
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	ProjectID   string     `json:"project" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,task_priority"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *string    `json:"assigned_to" binding:"omitempty,uuid"`
}

// UpdateTaskRequest представляет частичное обновление задачи
type UpdateTaskRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority" binding:"omitempty,task_priority"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// TaskAssignRequest назначает задачу; null снимает назначение
type TaskAssignRequest struct {
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,task_status"`
}

type TaskResponse struct {
	ID                 string   `json:"id"`
	ProjectID          string   `json:"project"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority"`
	CreatedBy          string   `json:"created_by"`
	AssignedTo         *string  `json:"assigned_to"`
	DueDate            *string  `json:"due_date"`
	IsOverdue          bool     `json:"is_overdue"`
	AllowedTransitions []string `json:"allowed_transitions"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

func (h *TaskHandler) toResponse(t model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		ProjectID:   t.ProjectID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedBy:   t.CreatedBy.String(),
		IsOverdue:   t.IsOverdue(h.now()),
		CreatedAt:   t.CreatedAt.Format(timeFormat),
		UpdatedAt:   t.UpdatedAt.Format(timeFormat),
	}
	if t.AssignedTo != nil {
		id := t.AssignedTo.String()
		resp.AssignedTo = &id
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(timeFormat)
		resp.DueDate = &due
	}
	for _, next := range taskstate.NextStates(t.Status) {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(next))
	}
	return resp
}

// Create godoc
// @Summary      Create a task in a project
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateTaskRequest true "Task"
// @Success      201 {object} TaskResponse
// @Failure      403 {object} ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.CreateTaskInput{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != nil {
		id := uuid.MustParse(*req.AssignedTo)
		in.AssignedTo = &id
	}

	task, err := h.tasks.Create(c.Request.Context(), caller, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(*task))
}

// GetAll godoc
// @Summary      List tasks visible to the caller
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        status          query []string false "TODO, IN_PROGRESS, DONE, BLOCKED (repeatable)"
// @Param        priority        query []string false "LOW, MEDIUM, HIGH, URGENT (repeatable)"
// @Param        project         query string   false "Project ID"
// @Param        assigned_to_me  query bool     false "Only tasks assigned to the caller"
// @Param        search          query string   false "Search in title and description"
// @Param        due_after       query string   false "Due at or after"
// @Param        due_before      query string   false "Due at or before"
// @Param        ordering        query string   false "due_date, priority, created_at; prefix - for descending"
// @Param        page            query int      false "Page number"
// @Param        page_size       query int      false "Page size"
// @Success      200 {object} PageResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	query := c.Request.URL.Query()
	spec, err := filter.ParseTaskQuery(query, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := filter.ParsePageRequest(query)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), caller, spec, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, tasks, h.toResponse))
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), caller, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		in.Priority = &p
	}

	task, err := h.tasks.Update(c.Request.Context(), caller, taskID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), caller, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignUser godoc
// @Summary      Assign the task to a project member, or unassign with null
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Task ID"
// @Param        request body TaskAssignRequest true "Assignee"
// @Success      200 {object} TaskResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/tasks/{id}/assign [post]
func (h *TaskHandler) AssignUser(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	var req TaskAssignRequest
	if !bindJSON(c, &req) {
		return
	}

	var assignee *uuid.UUID
	if req.UserID != nil {
		id := uuid.MustParse(*req.UserID)
		assignee = &id
	}
	h.assign(c, caller, taskID, assignee)
}

// UnassignUser снимает назначение с задачи
func (h *TaskHandler) UnassignUser(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	h.assign(c, caller, taskID, nil)
}

func (h *TaskHandler) assign(c *gin.Context, caller, taskID uuid.UUID, assignee *uuid.UUID) {
	task, err := h.tasks.Assign(c.Request.Context(), caller, taskID, assignee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*task))
}

// ChangeStatus godoc
// @Summary      Move the task along its workflow
// @Description  Legal moves: TODO→IN_PROGRESS|BLOCKED, IN_PROGRESS→DONE|BLOCKED|TODO, BLOCKED→TODO|IN_PROGRESS, DONE→IN_PROGRESS
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Task ID"
// @Param        request body ChangeStatusRequest true "New status"
// @Success      200 {object} TaskResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/tasks/{id}/change_status [post]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.ChangeStatus(c.Request.Context(), caller, taskID, model.TaskStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*task))
}
