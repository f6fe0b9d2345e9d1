// Package mongostore implements repository.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Collection names.
const (
	UsersCollection         = "users"
	SkillsCollection        = "skills"
	NotificationsCollection = "notifications"
)

// Store is a MongoDB-backed repository.Store.
type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	skills        *mongo.Collection
	notifications *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Open connects to uri and uses database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", repository.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping: %w", repository.ErrStoreUnavailable, err)
	}

	s := New(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps a connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:        client,
		users:         db.Collection(UsersCollection),
		skills:        db.Collection(SkillsCollection),
		notifications: db.Collection(NotificationsCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.skills.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "skillType", Value: 1}},
	})
	if err != nil {
		return unavailable("create_index", err)
	}
	_, err = s.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return unavailable("create_index", err)
	}
	_, err = s.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return unavailable("create_index", err)
	}
	return nil
}

// FindSkills implements repository.SkillStore.
func (s *Store) FindSkills(ctx context.Context, ownerID string, direction model.Direction, activeOnly bool) ([]model.Skill, error) {
	filter := skillFilter(ownerID, direction, activeOnly)
	cur, err := s.skills.Find(ctx, filter)
	if err != nil {
		return nil, unavailable("find_skills", err)
	}

	var docs []skillDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("find_skills", err)
	}
	out := make([]model.Skill, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// FindUser implements repository.UserStore.
func (s *Store) FindUser(ctx context.Context, id string) (model.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return model.User{}, unavailable("find_user", err)
	}
	return doc.toModel(), nil
}

// FindActiveUsers implements repository.UserStore.
func (s *Store) FindActiveUsers(ctx context.Context, excludeID string) ([]model.User, error) {
	cur, err := s.users.Find(ctx, activeUsersFilter(excludeID))
	if err != nil {
		return nil, unavailable("find_active_users", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("find_active_users", err)
	}
	out := make([]model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// CreateNotification implements repository.NotificationStore.
func (s *Store) CreateNotification(ctx context.Context, n model.Notification) error {
	if _, err := s.notifications.InsertOne(ctx, notificationFromModel(n)); err != nil {
		return unavailable("create_notification", err)
	}
	return nil
}

// Seed upserts the users and skills of a fixture.
func (s *Store) Seed(ctx context.Context, f repository.Fixture) error {
	upsert := options.Replace().SetUpsert(true)
	for _, u := range f.Users {
		if _, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, userFromModel(u), upsert); err != nil {
			return unavailable("seed_user", err)
		}
	}
	for _, sk := range f.Skills {
		if _, err := s.skills.ReplaceOne(ctx, bson.M{"_id": sk.ID}, skillFromModel(sk), upsert); err != nil {
			return unavailable("seed_skill", err)
		}
	}
	return nil
}

// Close implements repository.Store.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func skillFilter(ownerID string, direction model.Direction, activeOnly bool) bson.M {
	f := bson.M{"createdBy": ownerID, "skillType": string(direction)}
	if activeOnly {
		f["isActive"] = true
	}
	return f
}

func activeUsersFilter(excludeID string) bson.M {
	return bson.M{
		"_id":      bson.M{"$ne": excludeID},
		"disabled": bson.M{"$ne": true},
	}
}

func unavailable(op string, err error) error {
	metrics.RecordStoreError(op)
	return fmt.Errorf("%w: %s: %w", repository.ErrStoreUnavailable, op, err)
}
