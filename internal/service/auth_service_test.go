package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type authRepoStub struct {
	users         map[string]*models.User
	usersByLogin  map[string]*models.User
	tokens        map[string]*models.RefreshToken
	revokedIDs    []string
	revokedUsers  []string
	passwordCalls int
}

func newAuthRepoStub(users ...*models.User) *authRepoStub {
	s := &authRepoStub{
		users:        map[string]*models.User{},
		usersByLogin: map[string]*models.User{},
		tokens:       map[string]*models.RefreshToken{},
	}
	for _, u := range users {
		s.users[u.ID] = u
		s.usersByLogin[u.Login] = u
	}
	return s
}

func (s *authRepoStub) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	if u, ok := s.usersByLogin[login]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.passwordCalls++
	if u, ok := s.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (s *authRepoStub) StoreRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string) error {
	s.revokedIDs = append(s.revokedIDs, id)
	for _, t := range s.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (s *authRepoStub) RevokeUserTokens(ctx context.Context, userID string) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "timetable-api",
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Role:         models.RoleAdmin,
		FirstName:    "Anna",
		LastName:     "Petrova",
		Login:        "apetrova",
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Len(t, repo.tokens, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "apetrova", claims.Login)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "nope-nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUser(t *testing.T) {
	repo := newAuthRepoStub()
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Login: "nobody", Password: "secret123"})
	require.Error(t, err)
	// Unknown login and wrong password are indistinguishable to the caller.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "secret123")
	user.Active = false
	repo := newAuthRepoStub(user)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, login.RefreshToken, resp.RefreshToken)

	// The used token is revoked, so replaying it fails.
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenExpired(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	repo.tokens["other"] = &models.RefreshToken{
		ID:        "rt-2",
		UserID:    "user-2",
		Token:     "other",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	err := svc.Logout(context.Background(), "other", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestChangePassword(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "evenMoreSecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.passwordCalls)
	assert.Equal(t, []string{"user-1"}, repo.revokedUsers)

	// The stored hash now matches the new password only.
	_, err = svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "secret123"})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "evenMoreSecret1"})
	require.NoError(t, err)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong-one",
		NewPassword: "evenMoreSecret1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.passwordCalls)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t, "secret123"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Login: "apetrova", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different-secret", AccessTokenExpiry: time.Minute})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
