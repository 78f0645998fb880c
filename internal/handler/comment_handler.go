package handler

import (
	"context"
	"net/http"

	"taskmaster/internal/filter"
	"taskmaster/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentService interface {
	Create(ctx context.Context, caller, taskID uuid.UUID, text string) (*model.Comment, error)
	List(ctx context.Context, caller, taskID uuid.UUID, page filter.PageRequest) (filter.Page[model.Comment], error)
	Update(ctx context.Context, caller, commentID uuid.UUID, text string) (*model.Comment, error)
	Delete(ctx context.Context, caller, commentID uuid.UUID) error
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        string  `json:"id"`
	TaskID    string  `json:"task"`
	UserID    string  `json:"user"`
	Username  string  `json:"username,omitempty"`
	Text      string  `json:"text"`
	CreatedAt string  `json:"created_at"`
	EditedAt  *string `json:"edited_at"`
}

func toCommentResponse(cm model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        cm.ID.String(),
		TaskID:    cm.TaskID.String(),
		UserID:    cm.AuthorID.String(),
		Username:  cm.Author.Username,
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt.Format(timeFormat),
	}
	if cm.EditedAt != nil {
		edited := cm.EditedAt.Format(timeFormat)
		resp.EditedAt = &edited
	}
	return resp
}

func (h *CommentHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), caller, taskID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(*comment))
}

func (h *CommentHandler) GetAll(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}
	page, err := filter.ParsePageRequest(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.comments.List(c.Request.Context(), caller, taskID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c, comments, toCommentResponse))
}

// Update changes the text of a comment; only its author may do so.
func (h *CommentHandler) Update(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), caller, commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(*comment))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), caller, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
