// Package repository defines the user, skill and notification stores and
// their errors.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/skillmatch/internal/domain/model"
)

// SkillStore reads skill records.
type SkillStore interface {
	// FindSkills returns the skills of owner in the given direction, in
	// store order. With activeOnly set, inactive skills are skipped.
	FindSkills(ctx context.Context, ownerID string, direction model.Direction, activeOnly bool) ([]model.Skill, error)
}

// UserStore reads user records.
type UserStore interface {
	// FindUser returns the user with id, or ErrNotFound.
	FindUser(ctx context.Context, id string) (model.User, error)
	// FindActiveUsers returns every active user except excludeID, in store
	// order.
	FindActiveUsers(ctx context.Context, excludeID string) ([]model.User, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// Store is every collaborator the match service reads from or writes to.
type Store interface {
	SkillStore
	UserStore
	NotificationStore

	// Close releases connections held by the store.
	Close(ctx context.Context) error
}

// Fixture is the on-disk seed format shared by every store.
type Fixture struct {
	Users  []model.User  `json:"users"`
	Skills []model.Skill `json:"skills"`
}

// DecodeFixture reads a JSON fixture and validates it: every user needs an
// id, every skill an owner and a known direction. Directions are normalized.
func DecodeFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("%w: decode: %w", ErrInvalidFixture, err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.ID) == "" {
			return Fixture{}, fmt.Errorf("%w: user %d has no id", ErrInvalidFixture, i)
		}
	}
	for i, sk := range f.Skills {
		if strings.TrimSpace(sk.OwnerID) == "" {
			return Fixture{}, fmt.Errorf("%w: skill %d has no owner", ErrInvalidFixture, i)
		}
		dir, err := model.ParseDirection(string(sk.Direction))
		if err != nil {
			return Fixture{}, fmt.Errorf("%w: skill %d: %w", ErrInvalidFixture, i, err)
		}
		f.Skills[i].Direction = dir
	}
	return f, nil
}

// ReadFixture decodes the JSON fixture at path.
func ReadFixture(path string) (Fixture, error) {
	file, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return Fixture{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	defer func() { _ = file.Close() }()
	return DecodeFixture(file)
}
