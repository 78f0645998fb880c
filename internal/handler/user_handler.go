package handler

import (
	"context"
	"errors"
	"net/http"

	"taskmaster/internal/apperror"
	"taskmaster/internal/auth"
	"taskmaster/internal/model"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, in service.Registration) (*model.User, auth.TokenPair, error)
	Login(ctx context.Context, username, password string) (*model.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Logout(ctx context.Context, caller uuid.UUID, refresh string) error
	CurrentUser(ctx context.Context, caller uuid.UUID) (*model.User, error)
}

type UserHandler struct {
	auth AuthService
}

func NewUserHandler(auth AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DateJoined string `json:"date_joined"`
}

type AuthResponse struct {
	User    UserResponse   `json:"user"`
	Tokens  auth.TokenPair `json:"tokens"`
	Message string         `json:"message,omitempty"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.CreatedAt.Format(timeFormat),
	}
}

// Register godoc
// @Summary      Register a new user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := h.auth.Register(c.Request.Context(), service.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, apperror.ErrConflict) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User with this username or email already exists"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:    toUserResponse(user),
		Tokens:  tokens,
		Message: "User Successfully Registered",
	})
}

// Login godoc
// @Summary      Obtain an access/refresh token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, apperror.ErrAuthentication) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: toUserResponse(user), Tokens: tokens})
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} map[string]string
// @Failure      401 {object} ErrorResponse
// @Router       /api/auth/token/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout revokes the refresh token passed in the body.
func (h *UserHandler) Logout(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid Token"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), caller, req.Refresh); err != nil {
		if errors.Is(err, apperror.ErrAuthentication) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid Token"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout Successful"})
}

func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
