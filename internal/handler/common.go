package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"taskmaster/internal/apperror"
	"taskmaster/internal/filter"
	"taskmaster/internal/middleware"
	"taskmaster/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

// respondError maps the apperror taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validation *apperror.ValidationError
		denied     *apperror.AuthorizationDenied
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Message, Field: validation.Field})
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Permission denied", Reason: string(denied.Reason)})
	case errors.Is(err, apperror.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token"})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperror.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "InvalidTransition"})
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Already exists"})
	case errors.Is(err, apperror.ErrNotAMember):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "User is not a member of the project", Reason: string(apperror.ReasonNotAMember)})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// callerID returns the authenticated user or writes a 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter or writes a 400.
func pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Field: invalidField(err)})
		return false
	}
	return true
}

func invalidField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}

// PageResponse is the pagination envelope of list endpoints.
type PageResponse[T any] struct {
	Count       int     `json:"count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	Results     []T     `json:"results"`
}

func newPageResponse[T, U any](c *gin.Context, page filter.Page[T], convert func(T) U) PageResponse[U] {
	mapped := filter.Map(page, convert)
	resp := PageResponse[U]{
		Count:       mapped.Count,
		TotalPages:  mapped.TotalPages,
		CurrentPage: mapped.CurrentPage,
		Results:     mapped.Results,
	}
	if page.HasNext() {
		link := pageLink(c, page.CurrentPage+1)
		resp.Next = &link
	}
	if page.HasPrevious() {
		link := pageLink(c, page.CurrentPage-1)
		resp.Previous = &link
	}
	return resp
}

func pageLink(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

// RegisterValidators adds the task enum validators to gin's binding engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	})
}
