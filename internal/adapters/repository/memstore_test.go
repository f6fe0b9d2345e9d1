package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/okian/skillmatch/internal/domain/model"
)

const fixture = `{
  "users": [
    {"id": "u1", "name": "Ana"},
    {"id": "u2", "name": "Bo", "disabled": true},
    {"id": "u3", "name": "Cy"}
  ],
  "skills": [
    {"id": "s1", "ownerId": "u1", "title": "Guitar", "level": "Beginner", "direction": "Offering", "active": true},
    {"id": "s2", "ownerId": "u1", "title": "Spanish", "level": "Beginner", "direction": "learning", "active": true},
    {"id": "s3", "ownerId": "u1", "title": "Piano", "level": "Beginner", "direction": "Offering", "active": false}
  ]
}`

func TestMemoryStore_Load(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Load(strings.NewReader(fixture)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.Count(); got != 3 {
		t.Errorf("expected 3 users, got %d", got)
	}

	offered, err := s.FindSkills(ctx, "u1", model.DirectionOffering, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offered) != 1 || offered[0].Title != "Guitar" {
		t.Errorf("expected only active Guitar, got %+v", offered)
	}

	all, err := s.FindSkills(ctx, "u1", model.DirectionOffering, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 offered skills including inactive, got %d", len(all))
	}

	needed, err := s.FindSkills(ctx, "u1", model.DirectionLearning, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(needed) != 1 || needed[0].Direction != model.DirectionLearning {
		t.Errorf("expected direction to be normalized, got %+v", needed)
	}
}

func TestMemoryStore_LoadRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"users": [`,
		"missing id":    `{"users": [{"name": "x"}]}`,
		"missing owner": `{"skills": [{"title": "x", "direction": "Offering"}]}`,
		"bad direction": `{"skills": [{"ownerId": "u", "title": "x", "direction": "Sideways"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := NewMemoryStore().Load(strings.NewReader(body))
			if !errors.Is(err, ErrInvalidFixture) {
				t.Errorf("expected ErrInvalidFixture, got %v", err)
			}
		})
	}
}

func TestMemoryStore_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewMemoryStore()
	if err := s.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("expected 3 users, got %d", s.Count())
	}
	if err := s.LoadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrInvalidFixture) {
		t.Errorf("expected ErrInvalidFixture for missing file, got %v", err)
	}
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Load(strings.NewReader(fixture)); err != nil {
		t.Fatal(err)
	}

	users, err := s.FindActiveUsers(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u3" {
		t.Errorf("expected only u3, got %+v", users)
	}

	if _, err := s.FindUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	s.PutUser(model.User{ID: "u1", Name: "Ana Maria"})
	u, err := s.FindUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Ana Maria" {
		t.Errorf("expected replaced user, got %q", u.Name)
	}
	users, _ = s.FindActiveUsers(ctx, "")
	if users[0].ID != "u1" {
		t.Errorf("expected replace to keep position, got %s first", users[0].ID)
	}
}

func TestMemoryStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	if _, err := s.FindActiveUsers(ctx, ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := s.FindSkills(ctx, "u", model.DirectionOffering, true); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := s.CreateNotification(ctx, model.Notification{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestMemoryStore_ConcurrentNotifications(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.CreateNotification(ctx, model.Notification{Recipient: "r"})
		}()
	}
	wg.Wait()

	if got := len(s.Notifications("r")); got != 100 {
		t.Errorf("expected 100 notifications, got %d", got)
	}
	if got := len(s.Notifications("other")); got != 0 {
		t.Errorf("expected none for other recipient, got %d", got)
	}
}
