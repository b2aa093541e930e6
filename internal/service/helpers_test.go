package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/config"
	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/repository"
)

type fixture struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
	identity   *IdentityService
	registry   *ComplaintService
	admin      *domain.User
	user       *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		users:      repository.NewMemoryUserRepository(),
		complaints: repository.NewMemoryComplaintRepository(),
		sessions:   repository.NewMemorySessionRepository(),
		dispatcher: events.NewInMemoryDispatcher(nil),
	}
	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}
	f.identity = NewIdentityService(authCfg, IdentityDependencies{UserRepo: f.users, SessionRepo: f.sessions})
	f.registry = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: f.complaints,
		UserRepo:      f.users,
		Dispatcher:    f.dispatcher,
	})

	f.admin = f.addAccount(t, ctx, "Admin User", "admin@example.com", "admin123", domain.RoleAdmin)
	f.user = f.addAccount(t, ctx, "Regular User", "user@example.com", "user123", domain.RoleUser)
	return f
}

func (f *fixture) addAccount(t *testing.T, ctx context.Context, name, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, CreatedAt: time.Now()}
	require.NoError(t, f.users.Create(ctx, user))
	return user
}

func (f *fixture) file(t *testing.T, owner *domain.User, address, description string) *domain.Complaint {
	t.Helper()
	c, err := f.registry.Create(context.Background(), owner, ComplaintCreateInput{
		Address: address, Lat: 40.0, Lng: -74.0, Description: description,
	})
	require.NoError(t, err)
	return c
}
