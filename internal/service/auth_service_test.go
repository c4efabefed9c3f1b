package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usercenter/internal/core/auth"
	"usercenter/internal/domain"
)

func newTestAuth(repo *MockUserRepository) (*AuthService, *auth.JWTer) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "usercenter", TTL: 24 * time.Hour}
	return NewAuthService(repo, testHasher, j, nil), j
}

func TestAuthService_Login(t *testing.T) {
	active := func() *domain.User {
		return &domain.User{
			ID: 11, Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin,
			Status: domain.StatusActive, PasswordHash: mustHash(t, "secret1"),
		}
	}

	t.Run("success issues token for the user", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("FindCredentialsByEmail", mock.Anything, "alice@example.com").Return(active(), nil)
		svc, j := newTestAuth(repo)

		res, err := svc.Login(context.Background(), "Alice@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, uint(11), res.User.ID)

		claims, err := j.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(11), claims.UserID)
		assert.Equal(t, "ADMIN", claims.Role)
		assert.Equal(t, "ACTIVE", claims.Status)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("FindCredentialsByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.NotFound("user not found"))
		svc, _ := newTestAuth(repo)

		_, err := svc.Login(context.Background(), "nobody@example.com", "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("FindCredentialsByEmail", mock.Anything, "alice@example.com").Return(active(), nil)
		svc, _ := newTestAuth(repo)

		_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	for _, pw := range []string{"secret1", "wrong"} {
		t.Run("banned account with password "+pw, func(t *testing.T) {
			u := active()
			u.Status = domain.StatusBanned
			repo := &MockUserRepository{}
			repo.On("FindCredentialsByEmail", mock.Anything, "alice@example.com").Return(u, nil)
			svc, _ := newTestAuth(repo)

			_, err := svc.Login(context.Background(), "alice@example.com", pw)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
