package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mescude1/skinly-ecomm/internal/auth"
	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/repository"
	repoMocks "github.com/mescude1/skinly-ecomm/internal/repository/mocks"
)

func newAuthService(t *testing.T) (AuthService, *repoMocks.MockUserRepository, *auth.TokenManager) {
	t.Helper()
	tm, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	users := new(repoMocks.MockUserRepository)
	return NewAuthService(users, tm), users, tm
}

func TestAuth_Signup(t *testing.T) {
	ctx := context.Background()
	in := SignupInput{Username: "ana", Email: "ana@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass"}

	t.Run("creates user and issues token", func(t *testing.T) {
		svc, users, tm := newAuthService(t)
		users.On("Exists", ctx, "ana", "ana@example.com").Return(false, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "ana" && auth.CheckPassword(u.PasswordHash, "s3cret-pass")
		})).Return(&model.User{ID: "u1", Username: "ana"}, nil)

		sess, err := svc.Signup(ctx, in)
		require.NoError(t, err)
		claims, err := tm.Parse(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID())
	})

	t.Run("short password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Signup(ctx, SignupInput{Username: "ana", Password: "short", PasswordConfirm: "short"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("mismatch", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Signup(ctx, SignupInput{Username: "ana", Password: "long-enough", PasswordConfirm: "long-enough!"})
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("taken", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("Exists", ctx, "ana", "ana@example.com").Return(true, nil)
		_, err := svc.Signup(ctx, in)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("lost race on insert", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("Exists", ctx, "ana", "ana@example.com").Return(false, nil)
		users.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
		_, err := svc.Signup(ctx, in)
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)

	svc, users, _ := newAuthService(t)
	users.On("FindByLogin", ctx, "ana@example.com").Return(&model.User{ID: "u1", PasswordHash: hash}, nil)
	users.On("FindByLogin", ctx, "ghost").Return(nil, sql.ErrNoRows)

	sess, err := svc.Login(ctx, " ana@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "u1", sess.User.ID)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
