package service

import (
	"context"
	"errors"
	"strings"

	"taskmaster/internal/apperror"
	"taskmaster/internal/auth"
	"taskmaster/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenManager interface {
	Issue(userID uuid.UUID) (auth.TokenPair, error)
	IssueAccess(userID uuid.UUID) (string, error)
	Verify(tokenStr, tokenType string) (*auth.Claims, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	jwt    TokenManager
}

func NewAuthService(users UserStore, tokens TokenStore, jwt TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt}
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

func (s *AuthService) Register(ctx context.Context, in Registration) (*model.User, auth.TokenPair, error) {
	if in.Password != in.Password2 {
		return nil, auth.TokenPair{}, apperror.Invalid("password", "password fields don't match")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	existing, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if existing != nil {
		return nil, auth.TokenPair{}, apperror.ErrConflict
	}
	existing, err = s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if existing != nil {
		return nil, auth.TokenPair{}, apperror.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	user := &model.User{
		ID:             uuid.New(),
		Username:       in.Username,
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		HashedPassword: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, auth.TokenPair{}, err
	}

	pair, err := s.jwt.Issue(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// Login checks the credentials and returns a fresh token pair. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, auth.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if user == nil {
		return nil, auth.TokenPair{}, apperror.ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, auth.TokenPair{}, apperror.ErrAuthentication
	}

	pair, err := s.jwt.Issue(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.verifyRefresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return "", apperror.ErrAuthentication
	}
	return s.jwt.IssueAccess(userID)
}

// Logout revokes the caller's refresh token.
func (s *AuthService) Logout(ctx context.Context, caller uuid.UUID, refresh string) error {
	claims, err := s.verifyRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	owner, err := claims.ParsedUserID()
	if err != nil || owner != caller {
		return apperror.ErrAuthentication
	}
	return s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) verifyRefresh(ctx context.Context, refresh string) (*auth.Claims, error) {
	claims, err := s.jwt.Verify(refresh, auth.TokenRefresh)
	if err != nil {
		return nil, errors.Join(apperror.ErrAuthentication, err)
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, apperror.ErrAuthentication
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperror.ErrAuthentication
	}
	return claims, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, caller uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, caller)
}
