package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/repository"
)

func TestLoadDefaultSeed(t *testing.T) {
	file, err := Load("")
	require.NoError(t, err)

	assert.Len(t, file.Accounts, 4)
	assert.Len(t, file.Complaints, 3)
	assert.Equal(t, domain.RoleAdmin, file.Accounts[0].Role)
	assert.Equal(t, 48*time.Hour, file.Complaints[0].CreatedAgo)
	assert.Equal(t, domain.ComplaintStatusInProgress, file.Complaints[1].Status)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown role": `accounts: [{name: A, email: a@x, password: p, role: root}]`,
		"duplicate":    `accounts: [{name: A, email: a@x, password: p, role: user}, {name: B, email: a@x, password: p, role: user}]`,
		"owner":        `complaints: [{owner: ghost@x, status: pending}]`,
		"status": `accounts: [{name: A, email: a@x, password: p, role: user}]
complaints: [{owner: a@x, status: closed}]`,
		"ordering": `accounts: [{name: A, email: a@x, password: p, role: user}]
complaints: [{owner: a@x, status: pending, created_ago: 1h, updated_ago: 2h}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`accounts: [{name: Ops, email: ops@x, password: pw, role: admin}]`), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	require.Len(t, file.Accounts, 1)
	assert.Equal(t, "ops@x", file.Accounts[0].Email)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeederApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	complaints := repository.NewMemoryComplaintRepository()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	seeder := Seeder{Users: users, Complaints: complaints, BcryptCost: bcrypt.MinCost, Now: func() time.Time { return now }}

	file, err := Load("")
	require.NoError(t, err)
	require.NoError(t, seeder.Apply(ctx, file))
	require.NoError(t, seeder.Apply(ctx, file))

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	admin, err := users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "admin123"))

	total, err := complaints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	first, err := complaints.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "2", first.UserID)
	assert.Equal(t, "Regular User", first.UserName)
	assert.Equal(t, now.Add(-48*time.Hour), first.CreatedAt)

	third, err := complaints.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", third.UserName)
	require.NotNil(t, third.AdminNotes)
	assert.Equal(t, "All lights repaired and functioning properly", *third.AdminNotes)
}
