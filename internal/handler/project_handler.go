package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskmaster/internal/filter"
	"taskmaster/internal/model"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const timeFormat = time.RFC3339

type ProjectService interface {
	Create(ctx context.Context, caller uuid.UUID, in service.ProjectInput) (*model.Project, error)
	List(ctx context.Context, caller uuid.UUID, spec filter.ProjectSpec, page filter.PageRequest) (filter.Page[model.Project], error)
	Get(ctx context.Context, caller, projectID uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, caller, projectID uuid.UUID, in service.ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, caller, projectID uuid.UUID) error
	Members(ctx context.Context, caller, projectID uuid.UUID) ([]model.Membership, error)
	AddMember(ctx context.Context, caller, projectID, userID uuid.UUID) (*model.Membership, error)
	RemoveMember(ctx context.Context, caller, projectID, userID uuid.UUID) error
	Activity(ctx context.Context, caller, projectID uuid.UUID, page filter.PageRequest) (filter.Page[model.Activity], error)
}

type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type ProjectRequest struct {
	Name        string `json:"project_name" binding:"required,max=200"`
	Description string `json:"description"`
}

type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"project_name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type MemberResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type ActivityResponse struct {
	ID        int64           `json:"id"`
	ProjectID string          `json:"project_id"`
	UserID    string          `json:"user_id"`
	Username  string          `json:"username,omitempty"`
	TaskID    *string         `json:"task_id,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	Timestamp string          `json:"timestamp"`
}

func toProjectResponse(p model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.OwnerID.String(),
		CreatedAt:   p.CreatedAt.Format(timeFormat),
		UpdatedAt:   p.UpdatedAt.Format(timeFormat),
	}
}

func toMemberResponse(m model.Membership) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID.String(),
		Username: m.User.Username,
		Email:    m.User.Email,
		Role:     string(m.Role),
		JoinedAt: m.CreatedAt.Format(timeFormat),
	}
}

func toActivityResponse(a model.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:        a.ID,
		ProjectID: a.ProjectID.String(),
		UserID:    a.ActorID.String(),
		Username:  a.Actor.Username,
		Action:    a.Action,
		Details:   json.RawMessage(a.Changes),
		Timestamp: a.CreatedAt.Format(timeFormat),
	}
	if len(resp.Details) == 0 {
		resp.Details = json.RawMessage("{}")
	}
	if a.TaskID != nil {
		id := a.TaskID.String()
		resp.TaskID = &id
	}
	return resp
}

// Create godoc
// @Summary      Create a project owned by the caller
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ProjectRequest true "Project"
// @Success      201 {object} ProjectResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.Create(c.Request.Context(), caller, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(*project))
}

// GetAll godoc
// @Summary      List the caller's projects
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Param        search          query string false "Search in name and description"
// @Param        created_after   query string false "Created at or after (RFC3339 or YYYY-MM-DD)"
// @Param        created_before  query string false "Created at or before"
// @Param        page            query int    false "Page number"
// @Param        page_size       query int    false "Page size"
// @Success      200 {object} PageResponse[ProjectResponse]
// @Router       /api/projects [get]
func (h *ProjectHandler) GetAll(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	spec, err := filter.ParseProjectQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := filter.ParsePageRequest(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	projects, err := h.projects.List(c.Request.Context(), caller, spec, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, projects, toProjectResponse))
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), caller, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(*project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	var req ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projects.Update(c.Request.Context(), caller, projectID, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(*project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), caller, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) Members(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	members, err := h.projects.Members(c.Request.Context(), caller, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

// AddMember godoc
// @Summary      Add a user to the project team (owner only)
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string           true "Project ID"
// @Param        request body AddMemberRequest true "Member"
// @Success      201 {object} MemberResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	membership, err := h.projects.AddMember(c.Request.Context(), caller, projectID, uuid.MustParse(req.UserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(*membership))
}

// RemoveMember godoc
// @Summary      Remove a member; their tasks in the project are unassigned
// @Tags         Projects
// @Security     BearerAuth
// @Param        id       path string true "Project ID"
// @Param        user_id  path string true "User ID"
// @Success      204
// @Router       /api/projects/{id}/members/{user_id} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.projects.RemoveMember(c.Request.Context(), caller, projectID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Activity godoc
// @Summary      Project activity feed, newest first
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Param        id        path  string true  "Project ID"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} PageResponse[ActivityResponse]
// @Router       /api/projects/{id}/activity [get]
func (h *ProjectHandler) Activity(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	page, err := filter.ParsePageRequest(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.projects.Activity(c.Request.Context(), caller, projectID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, entries, toActivityResponse))
}
