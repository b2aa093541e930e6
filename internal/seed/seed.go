// Package seed loads the initial accounts and complaints into empty stores.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/domain"
	"github.com/spec-kit/streetlight-service/internal/repository"
)

//go:embed default.yaml
var defaultSeed []byte

// File is the on-disk seed document.
type File struct {
	Accounts   []Account   `yaml:"accounts"`
	Complaints []Complaint `yaml:"complaints"`
}

// Account is a seeded login. Passwords are hashed on load.
type Account struct {
	Name     string      `yaml:"name"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

// Complaint is a seeded complaint; ages are relative to load time.
type Complaint struct {
	Owner       string                 `yaml:"owner"`
	Address     string                 `yaml:"address"`
	Lat         float64                `yaml:"lat"`
	Lng         float64                `yaml:"lng"`
	Description string                 `yaml:"description"`
	Status      domain.ComplaintStatus `yaml:"status"`
	CreatedAgo  time.Duration          `yaml:"created_ago"`
	UpdatedAgo  time.Duration          `yaml:"updated_ago"`
	AdminNotes  string                 `yaml:"admin_notes"`
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Load reads the seed at path, or the embedded default when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

func (f *File) validate() error {
	emails := make(map[string]struct{}, len(f.Accounts))
	for i, acc := range f.Accounts {
		if acc.Email == "" || acc.Password == "" || acc.Name == "" {
			return fmt.Errorf("seed account %d: name, email and password required", i)
		}
		if !acc.Role.Valid() {
			return fmt.Errorf("seed account %s: unknown role %q", acc.Email, acc.Role)
		}
		if _, dup := emails[acc.Email]; dup {
			return fmt.Errorf("seed account %s: duplicate email", acc.Email)
		}
		emails[acc.Email] = struct{}{}
	}
	for i, c := range f.Complaints {
		if _, ok := emails[c.Owner]; !ok {
			return fmt.Errorf("seed complaint %d: unknown owner %q", i, c.Owner)
		}
		if !c.Status.Valid() {
			return fmt.Errorf("seed complaint %d: unknown status %q", i, c.Status)
		}
		if c.UpdatedAgo > c.CreatedAgo {
			return fmt.Errorf("seed complaint %d: updated before created", i)
		}
	}
	return nil
}

// Seeder writes a seed document into repositories.
type Seeder struct {
	Users      repository.UserRepository
	Complaints repository.ComplaintRepository
	BcryptCost int
	Logger     *zap.Logger
	Now        func() time.Time
}

// Apply inserts accounts missing by email, then complaints when the complaint store is empty.
// Running it again against a populated store is a no-op.
func (s Seeder) Apply(ctx context.Context, file *File) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	owners := make(map[string]*domain.User, len(file.Accounts))
	created := 0
	for _, acc := range file.Accounts {
		existing, err := s.Users.GetByEmail(ctx, acc.Email)
		if err == nil {
			owners[acc.Email] = existing
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		hash, err := auth.HashPassword(acc.Password, s.BcryptCost)
		if err != nil {
			return err
		}
		user := &domain.User{Name: acc.Name, Email: acc.Email, PasswordHash: hash, Role: acc.Role, CreatedAt: now()}
		if err := s.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed account %s: %w", acc.Email, err)
		}
		owners[acc.Email] = user
		created++
	}

	count, err := s.Complaints.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("complaint store not empty; skipping complaint seed", zap.Int("accounts_created", created))
		return nil
	}

	at := now()
	for _, c := range file.Complaints {
		owner := owners[c.Owner]
		complaint := &domain.Complaint{
			UserID:   owner.ID,
			UserName: owner.Name,
			Location: domain.Location{
				Address:     c.Address,
				Coordinates: domain.Coordinates{Lat: c.Lat, Lng: c.Lng},
			},
			Description: c.Description,
			Status:      c.Status,
			CreatedAt:   at.Add(-c.CreatedAgo),
			UpdatedAt:   at.Add(-c.UpdatedAgo),
		}
		if c.AdminNotes != "" {
			notes := c.AdminNotes
			complaint.AdminNotes = &notes
		}
		if err := s.Complaints.Create(ctx, complaint); err != nil {
			return fmt.Errorf("seed complaint: %w", err)
		}
	}

	logger.Info("seed applied", zap.Int("accounts_created", created), zap.Int("complaints_created", len(file.Complaints)))
	return nil
}
