package mongostore

import (
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
)

type locationDoc struct {
	City     string `bson:"city"`
	Country  string `bson:"country"`
	Timezone string `bson:"timezone"`
}

type statsDoc struct {
	SuccessfulExchanges int       `bson:"successfulExchanges"`
	Rating              float64   `bson:"rating"`
	LastActive          time.Time `bson:"lastActive"`
}

type preferencesDoc struct {
	AvailableForMentoring  bool   `bson:"availableForMentoring"`
	PreferredCommunication string `bson:"preferredCommunication"`
}

type badgeDoc struct {
	Name     string    `bson:"name"`
	EarnedAt time.Time `bson:"earnedAt"`
}

type userDoc struct {
	ID              string         `bson:"_id"`
	Name            string         `bson:"name"`
	Email           string         `bson:"email"`
	Avatar          string         `bson:"avatar"`
	Bio             string         `bson:"bio"`
	Location        locationDoc    `bson:"location"`
	Stats           statsDoc       `bson:"stats"`
	Preferences     preferencesDoc `bson:"preferences"`
	Badges          []badgeDoc     `bson:"badges"`
	IsEmailVerified bool           `bson:"isEmailVerified"`
	Disabled        bool           `bson:"disabled,omitempty"`
}

func userFromModel(u model.User) userDoc {
	badges := make([]badgeDoc, 0, len(u.Badges))
	for _, b := range u.Badges {
		badges = append(badges, badgeDoc(b))
	}
	return userDoc{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Bio:    u.Bio,
		Location: locationDoc{
			City:     u.Location.City,
			Country:  u.Location.Country,
			Timezone: u.Location.Timezone,
		},
		Stats: statsDoc{
			SuccessfulExchanges: u.Stats.SuccessfulExchanges,
			Rating:              u.Stats.Rating,
			LastActive:          u.Stats.LastActive,
		},
		Preferences: preferencesDoc{
			AvailableForMentoring:  u.Preferences.AvailableForMentoring,
			PreferredCommunication: u.Preferences.PreferredCommunication,
		},
		Badges:          badges,
		IsEmailVerified: u.EmailVerified,
		Disabled:        u.Disabled,
	}
}

func (d userDoc) toModel() model.User {
	var badges []model.Badge
	for _, b := range d.Badges {
		badges = append(badges, model.Badge(b))
	}
	return model.User{
		ID:     d.ID,
		Name:   d.Name,
		Email:  d.Email,
		Avatar: d.Avatar,
		Bio:    d.Bio,
		Location: model.Location{
			City:     d.Location.City,
			Country:  d.Location.Country,
			Timezone: d.Location.Timezone,
		},
		Stats: model.Stats{
			LastActive:          d.Stats.LastActive,
			SuccessfulExchanges: d.Stats.SuccessfulExchanges,
			Rating:              d.Stats.Rating,
		},
		Preferences: model.Preferences{
			AvailableForMentoring:  d.Preferences.AvailableForMentoring,
			PreferredCommunication: d.Preferences.PreferredCommunication,
		},
		Badges:        badges,
		EmailVerified: d.IsEmailVerified,
		Disabled:      d.Disabled,
	}
}

type skillDoc struct {
	ID        string `bson:"_id"`
	CreatedBy string `bson:"createdBy"`
	Title     string `bson:"title"`
	Category  string `bson:"category"`
	Level     string `bson:"level"`
	SkillType string `bson:"skillType"`
	IsActive  bool   `bson:"isActive"`
}

func skillFromModel(s model.Skill) skillDoc {
	return skillDoc{
		ID:        s.ID,
		CreatedBy: s.OwnerID,
		Title:     s.Title,
		Category:  string(s.Category),
		Level:     string(s.Level),
		SkillType: string(s.Direction),
		IsActive:  s.Active,
	}
}

func (d skillDoc) toModel() model.Skill {
	return model.Skill{
		ID:        d.ID,
		OwnerID:   d.CreatedBy,
		Title:     d.Title,
		Category:  model.Category(d.Category),
		Level:     model.Level(d.Level),
		Direction: model.Direction(d.SkillType),
		Active:    d.IsActive,
	}
}

type notificationDataDoc struct {
	UserID   string         `bson:"userId,omitempty"`
	URL      string         `bson:"url,omitempty"`
	Metadata map[string]any `bson:"metadata,omitempty"`
}

type notificationDoc struct {
	ID        string              `bson:"_id"`
	Recipient string              `bson:"recipient"`
	Sender    string              `bson:"sender,omitempty"`
	Type      string              `bson:"type"`
	Title     string              `bson:"title"`
	Message   string              `bson:"message"`
	Data      notificationDataDoc `bson:"data"`
	Priority  string              `bson:"priority"`
	ActionURL string              `bson:"actionUrl,omitempty"`
	IsRead    bool                `bson:"isRead"`
	CreatedAt time.Time           `bson:"createdAt"`
	ExpiresAt *time.Time          `bson:"expiresAt,omitempty"`
}

func notificationFromModel(n model.Notification) notificationDoc {
	return notificationDoc{
		ID:        n.ID,
		Recipient: n.Recipient,
		Sender:    n.Sender,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data: notificationDataDoc{
			UserID:   n.Data.UserID,
			URL:      n.Data.URL,
			Metadata: n.Data.Metadata,
		},
		Priority:  n.Priority,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
	}
}
