package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"concertly/internal/shared/config"
	"concertly/pkg/logger"
)

type memoryRepository struct {
	users map[string]*AdminUser
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]*AdminUser)}
}

func (m *memoryRepository) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (m *memoryRepository) Create(ctx context.Context, user *AdminUser) error {
	user.ID = uint(len(m.users) + 1)
	m.users[user.Username] = user
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    "test-secret",
			ExpiresIn: time.Hour,
		},
	}
}

func newAuthService(t *testing.T) (Service, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["admin"] = &AdminUser{
		ID:           1,
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	return NewService(repo, authTestConfig(), logger.GetDefault()), repo
}

func TestLoginIssuesAccessToken(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, "admin", resp.Role)

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "admin123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyGoogleToken(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.VerifyGoogleToken(context.Background(), "a-plausible-google-id-token")
	require.NoError(t, err)
	assert.True(t, resp.Verified)

	_, err = svc.VerifyGoogleToken(context.Background(), "short")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	svc, repo := newAuthService(t)

	require.NoError(t, svc.EnsureDefaultAdmin(context.Background(), "admin", "admin123"))
	assert.Len(t, repo.users, 1)

	require.NoError(t, svc.EnsureDefaultAdmin(context.Background(), "operator", "s3cret"))
	assert.Len(t, repo.users, 2)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "operator", Password: "s3cret"})
	assert.NoError(t, err)
}
