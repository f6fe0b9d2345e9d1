package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRowMapping(t *testing.T) {
	Convey("Given domain records", t, func() {
		active := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		u := model.User{
			ID:       "u1",
			Name:     "Ana",
			Email:    "ana@example.com",
			Avatar:   "ana.png",
			Bio:      "Guitarist",
			Location: model.Location{City: "Lisbon", Country: "Portugal", Timezone: "Europe/Lisbon"},
			Stats:    model.Stats{LastActive: active, SuccessfulExchanges: 4, Rating: 4.5},
			Preferences: model.Preferences{
				AvailableForMentoring:  true,
				PreferredCommunication: "Video",
			},
			Badges:        []model.Badge{{Name: "Mentor", EarnedAt: active}},
			EmailVerified: true,
		}
		sk := model.Skill{
			ID: "s1", OwnerID: "u1", Title: "Guitar", Category: "Music Production",
			Level: model.LevelAdvanced, Direction: model.DirectionOffering, Active: true,
		}

		Convey("When mapped to rows and back", func() {
			gotUser := userFromModel(u).toModel()
			gotSkill := skillFromModel(sk).toModel()

			Convey("Then every field survives", func() {
				So(gotUser, ShouldResemble, u)
				So(gotSkill, ShouldResemble, sk)
			})
		})

		Convey("When a notification is mapped", func() {
			exp := active.Add(7 * 24 * time.Hour)
			row := notificationFromModel(model.Notification{
				ID:        "n1",
				Recipient: "u1",
				Type:      "skill_match",
				Data:      model.NotificationData{UserID: "u2", Metadata: map[string]any{"score": 0.8}},
				ExpiresAt: &exp,
			})

			Convey("Then the payload is kept as JSON data", func() {
				So(row.Data.Data().UserID, ShouldEqual, "u2")
				So(row.ExpiresAt, ShouldEqual, &exp)
				So(row.TableName(), ShouldEqual, "notifications")
			})
		})
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	Convey("Given an unsupported driver", t, func() {
		_, err := Open(context.Background(), "oracle", "dsn")

		Convey("Then ErrUnknownDriver is returned", func() {
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}
