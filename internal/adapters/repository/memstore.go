package repository

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/okian/skillmatch/internal/domain/model"
)

// MemoryStore is an in-memory Store. Iteration order is insertion order.
type MemoryStore struct {
	mu            sync.RWMutex
	users         []model.User
	userIdx       map[string]int
	skills        map[string][]model.Skill // owner id -> skills
	notifications []model.Notification
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		userIdx: make(map[string]int),
		skills:  make(map[string][]model.Skill),
	}
}

// PutUser inserts or replaces a user, keeping its original position.
func (s *MemoryStore) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.userIdx[u.ID]; ok {
		s.users[i] = u
		return
	}
	s.userIdx[u.ID] = len(s.users)
	s.users = append(s.users, u)
}

// AddSkill appends a skill to its owner's list.
func (s *MemoryStore) AddSkill(sk model.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills[sk.OwnerID] = append(s.skills[sk.OwnerID], sk)
}

// Load adds the users and skills of a JSON fixture.
func (s *MemoryStore) Load(r io.Reader) error {
	f, err := DecodeFixture(r)
	if err != nil {
		return err
	}
	return s.Seed(context.Background(), f)
}

// LoadFile loads a JSON fixture from path.
func (s *MemoryStore) LoadFile(path string) error {
	f, err := ReadFixture(path)
	if err != nil {
		return err
	}
	return s.Seed(context.Background(), f)
}

// Seed adds every user and skill of a validated fixture.
func (s *MemoryStore) Seed(_ context.Context, f Fixture) error {
	for _, u := range f.Users {
		s.PutUser(u)
	}
	for _, sk := range f.Skills {
		s.AddSkill(sk)
	}
	return nil
}

// FindSkills implements SkillStore.
func (s *MemoryStore) FindSkills(ctx context.Context, ownerID string, direction model.Direction, activeOnly bool) ([]model.Skill, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Skill
	for _, sk := range s.skills[ownerID] {
		if sk.Direction != direction || (activeOnly && !sk.Active) {
			continue
		}
		out = append(out, sk)
	}
	return out, nil
}

// FindUser implements UserStore.
func (s *MemoryStore) FindUser(ctx context.Context, id string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.userIdx[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.users[i], nil
}

// FindActiveUsers implements UserStore.
func (s *MemoryStore) FindActiveUsers(ctx context.Context, excludeID string) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == excludeID || !u.Active() {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// CreateNotification implements NotificationStore.
func (s *MemoryStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

// Notifications returns the notifications stored for recipient, oldest first.
func (s *MemoryStore) Notifications(recipient string) []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Notification
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of users held.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }
