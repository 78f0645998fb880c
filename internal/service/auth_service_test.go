package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskmaster/internal/apperror"
	"taskmaster/internal/auth"
	"taskmaster/internal/model"
	"taskmaster/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	args := m.Called(ctx, jti, expiresAt)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func newAuthService() (*service.AuthService, *MockUserStore, *MockTokenStore, *auth.Manager) {
	users := new(MockUserStore)
	tokens := new(MockTokenStore)
	jwt := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	return service.NewAuthService(users, tokens, jwt), users, tokens, jwt
}

func TestAuthService_Register(t *testing.T) {
	// Arrange
	svc, users, _, jwt := newAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "alice").Return(nil, nil)
	users.On("FindByEmail", ctx, "alice@example.com").Return(nil, nil)
	users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	user, pair, err := svc.Register(ctx, service.Registration{
		Username:  "alice",
		Email:     " Alice@Example.com ",
		Password:  "s3cret-pass",
		Password2: "s3cret-pass",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("s3cret-pass")))

	claims, err := jwt.Verify(pair.Access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	users.AssertExpectations(t)
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	svc, users, _, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), service.Registration{
		Username: "alice", Email: "alice@example.com", Password: "one-password", Password2: "another-one",
	})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	users.On("FindByUsername", ctx, "alice").Return(&model.User{ID: uuid.New()}, nil)

	_, _, err := svc.Register(ctx, service.Registration{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass", Password2: "s3cret-pass",
	})

	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Username: "alice", HashedPassword: string(hash)}

	users.On("FindByUsername", ctx, "alice").Return(user, nil)
	users.On("FindByUsername", ctx, "bob").Return(nil, nil)

	got, pair, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.Refresh)

	_, _, err = svc.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)

	_, _, err = svc.Login(ctx, "bob", "s3cret-pass")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	// Arrange
	svc, _, tokens, jwt := newAuthService()
	ctx := context.Background()
	userID := uuid.New()
	pair, err := jwt.Issue(userID)
	require.NoError(t, err)
	claims, err := jwt.Verify(pair.Refresh, auth.TokenRefresh)
	require.NoError(t, err)

	tokens.On("IsRevoked", ctx, claims.ID).Return(false, nil).Twice()
	tokens.On("Revoke", ctx, claims.ID, claims.ExpiresAt.Time).Return(nil).Once()

	// Act
	access, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, userID, pair.Refresh))

	// Assert
	accessClaims, err := jwt.Verify(access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), accessClaims.UserID)
	tokens.AssertExpectations(t)
}

func TestAuthService_Refresh_Revoked(t *testing.T) {
	svc, _, tokens, jwt := newAuthService()
	ctx := context.Background()
	pair, err := jwt.Issue(uuid.New())
	require.NoError(t, err)

	tokens.On("IsRevoked", ctx, mock.Anything).Return(true, nil)

	_, err = svc.Refresh(ctx, pair.Refresh)

	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	svc, _, tokens, jwt := newAuthService()
	pair, err := jwt.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)

	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInvalidClaims))
	tokens.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
}

func TestAuthService_Logout_OtherUsersToken(t *testing.T) {
	svc, _, tokens, jwt := newAuthService()
	ctx := context.Background()
	pair, err := jwt.Issue(uuid.New())
	require.NoError(t, err)

	tokens.On("IsRevoked", ctx, mock.Anything).Return(false, nil)

	err = svc.Logout(ctx, uuid.New(), pair.Refresh)

	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}
