package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/streetlight-service/internal/domain"
	apperrors "github.com/spec-kit/streetlight-service/pkg/util"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		res, err := f.identity.Login(ctx, "user@example.com", "user123")
		require.NoError(t, err)
		assert.Equal(t, domain.PublicUser{ID: f.user.ID, Name: "Regular User", Email: "user@example.com", Role: domain.RoleUser}, res.User)
		assert.NotEmpty(t, res.Token)

		current, err := f.identity.CurrentUser(ctx, res.Session.ID)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, f.user.ID, current.ID)
		assert.Empty(t, current.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.identity.Login(ctx, "user@example.com", "nope")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.identity.Login(ctx, "ghost@example.com", "user123")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
	})

	t.Run("email match is exact", func(t *testing.T) {
		_, err := f.identity.Login(ctx, "USER@example.com", "user123")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCredentials))
	})
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.identity.Register(ctx, "Copy", "user@example.com", "pw")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateAccount))
	})

	t.Run("new account gets user role and can log back in", func(t *testing.T) {
		res, err := f.identity.Register(ctx, "Jane Doe", "jane@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, res.User.Role)
		assert.Equal(t, "Jane Doe", res.User.Name)

		require.NoError(t, f.identity.Logout(ctx, res.Session.ID))
		again, err := f.identity.Login(ctx, "jane@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, again.User.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.identity.Register(ctx, " ", "x@y.z", "pw")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.identity.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)

	require.NoError(t, f.identity.Logout(ctx, res.Session.ID))
	require.NoError(t, f.identity.Logout(ctx, res.Session.ID))
	require.NoError(t, f.identity.Logout(ctx, ""))

	current, err := f.identity.CurrentUser(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = f.identity.ResolveToken(ctx, res.Token)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthenticated))
}

func TestResolveToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.identity.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)

	session, err := f.identity.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, session.ID)
	assert.Equal(t, domain.RoleAdmin, session.User.Role)

	_, err = f.identity.ResolveToken(ctx, "garbage")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthenticated))
}

func TestCurrentUserWithoutSession(t *testing.T) {
	f := newFixture(t)
	user, err := f.identity.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}
