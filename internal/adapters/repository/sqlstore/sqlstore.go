// Package sqlstore implements repository.Store on PostgreSQL or SQLite
// through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const slowQueryThreshold = time.Second

// Store is a gorm-backed repository.Store.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects with driver and dsn and migrates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownDriver, driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", repository.ErrStoreUnavailable, driver, err)
	}
	return New(ctx, db)
}

// New wraps an open gorm handle and migrates the schema.
func New(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(&userRow{}, &skillRow{}, &notificationRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", repository.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// FindSkills implements repository.SkillStore.
func (s *Store) FindSkills(ctx context.Context, ownerID string, direction model.Direction, activeOnly bool) ([]model.Skill, error) {
	q := s.db.WithContext(ctx).
		Where("owner_id = ? AND direction = ?", ownerID, string(direction))
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var rows []skillRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, unavailable("find_skills", err)
	}

	out := make([]model.Skill, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// FindUser implements repository.UserStore.
func (s *Store) FindUser(ctx context.Context, id string) (model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return model.User{}, unavailable("find_user", err)
	}
	return row.toModel(), nil
}

// FindActiveUsers implements repository.UserStore.
func (s *Store) FindActiveUsers(ctx context.Context, excludeID string) ([]model.User, error) {
	var rows []userRow
	err := s.db.WithContext(ctx).
		Where("id <> ? AND disabled = ?", excludeID, false).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, unavailable("find_active_users", err)
	}

	out := make([]model.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// CreateNotification implements repository.NotificationStore.
func (s *Store) CreateNotification(ctx context.Context, n model.Notification) error {
	row := notificationFromModel(n)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return unavailable("create_notification", err)
	}
	return nil
}

// Seed upserts the users and skills of a fixture.
func (s *Store) Seed(ctx context.Context, f repository.Fixture) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range f.Users {
			row := userFromModel(u)
			if err := tx.Save(&row).Error; err != nil {
				return unavailable("seed_user", err)
			}
		}
		for _, sk := range f.Skills {
			row := skillFromModel(sk)
			if err := tx.Save(&row).Error; err != nil {
				return unavailable("seed_skill", err)
			}
		}
		return nil
	})
}

// Close implements repository.Store.
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	return sqlDB.Close()
}

func unavailable(op string, err error) error {
	metrics.RecordStoreError(op)
	return fmt.Errorf("%w: %s: %w", repository.ErrStoreUnavailable, op, err)
}
