package sqlstore

import (
	"time"

	"gorm.io/datatypes"

	"github.com/okian/skillmatch/internal/domain/model"
)

type userRow struct {
	ID                     string `gorm:"primaryKey;size:64"`
	Name                   string
	Email                  string `gorm:"index"`
	Avatar                 string
	Bio                    string
	City                   string
	Country                string
	Timezone               string
	LastActive             time.Time
	SuccessfulExchanges    int
	Rating                 float64
	AvailableForMentoring  bool
	PreferredCommunication string
	Badges                 datatypes.JSONSlice[model.Badge]
	EmailVerified          bool
	Disabled               bool `gorm:"index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (userRow) TableName() string { return "users" }

func userFromModel(u model.User) userRow {
	return userRow{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		Avatar:                 u.Avatar,
		Bio:                    u.Bio,
		City:                   u.Location.City,
		Country:                u.Location.Country,
		Timezone:               u.Location.Timezone,
		LastActive:             u.Stats.LastActive,
		SuccessfulExchanges:    u.Stats.SuccessfulExchanges,
		Rating:                 u.Stats.Rating,
		AvailableForMentoring:  u.Preferences.AvailableForMentoring,
		PreferredCommunication: u.Preferences.PreferredCommunication,
		Badges:                 datatypes.JSONSlice[model.Badge](u.Badges),
		EmailVerified:          u.EmailVerified,
		Disabled:               u.Disabled,
	}
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:     r.ID,
		Name:   r.Name,
		Email:  r.Email,
		Avatar: r.Avatar,
		Bio:    r.Bio,
		Location: model.Location{
			City:     r.City,
			Country:  r.Country,
			Timezone: r.Timezone,
		},
		Stats: model.Stats{
			LastActive:          r.LastActive,
			SuccessfulExchanges: r.SuccessfulExchanges,
			Rating:              r.Rating,
		},
		Preferences: model.Preferences{
			AvailableForMentoring:  r.AvailableForMentoring,
			PreferredCommunication: r.PreferredCommunication,
		},
		Badges:        []model.Badge(r.Badges),
		EmailVerified: r.EmailVerified,
		Disabled:      r.Disabled,
	}
}

type skillRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	OwnerID   string `gorm:"index:idx_skill_owner_direction;size:64"`
	Title     string
	Category  string
	Level     string
	Direction string `gorm:"index:idx_skill_owner_direction;size:16"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (skillRow) TableName() string { return "skills" }

func skillFromModel(s model.Skill) skillRow {
	return skillRow{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Title:     s.Title,
		Category:  string(s.Category),
		Level:     string(s.Level),
		Direction: string(s.Direction),
		Active:    s.Active,
	}
}

func (r skillRow) toModel() model.Skill {
	return model.Skill{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Category:  model.Category(r.Category),
		Level:     model.Level(r.Level),
		Direction: model.Direction(r.Direction),
		Active:    r.Active,
	}
}

type notificationRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Recipient string `gorm:"index:idx_notification_recipient;size:64"`
	Sender    string `gorm:"size:64"`
	Type      string `gorm:"index;size:32"`
	Title     string `gorm:"size:100"`
	Message   string `gorm:"size:300"`
	Data      datatypes.JSONType[model.NotificationData]
	Priority  string `gorm:"size:16"`
	ActionURL string
	IsRead    bool
	CreatedAt time.Time `gorm:"index:idx_notification_recipient"`
	ExpiresAt *time.Time
}

func (notificationRow) TableName() string { return "notifications" }

func notificationFromModel(n model.Notification) notificationRow {
	return notificationRow{
		ID:        n.ID,
		Recipient: n.Recipient,
		Sender:    n.Sender,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      datatypes.NewJSONType(n.Data),
		Priority:  n.Priority,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}
