package loadtest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/loadtest"
	"github.com/okian/skillmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	_ = logger.Init()

	Convey("Given a generator config", t, func() {
		ctx := context.Background()
		cfg := loadtest.GenerateConfig{Users: 25, MaxSkills: 3, Seed: 7}

		Convey("When a fixture is generated", func() {
			f, err := loadtest.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then every user offers and learns something", func() {
				So(f.Users, ShouldHaveLength, 25)
				counts := map[string]map[model.Direction]int{}
				for _, sk := range f.Skills {
					if counts[sk.OwnerID] == nil {
						counts[sk.OwnerID] = map[model.Direction]int{}
					}
					counts[sk.OwnerID][sk.Direction]++
				}
				for _, u := range f.Users {
					So(u.ID, ShouldNotBeEmpty)
					So(counts[u.ID][model.DirectionOffering], ShouldBeBetweenOrEqual, 1, 3)
					So(counts[u.ID][model.DirectionLearning], ShouldBeBetweenOrEqual, 1, 3)
				}
			})

			Convey("Then the same seed yields the same profiles", func() {
				again, err := loadtest.Generate(ctx, cfg)
				So(err, ShouldBeNil)
				So(again.Skills, ShouldHaveLength, len(f.Skills))
				for i := range f.Skills {
					So(again.Skills[i].Title, ShouldEqual, f.Skills[i].Title)
					So(again.Skills[i].Level, ShouldEqual, f.Skills[i].Level)
				}
			})

			Convey("Then it round trips through a fixture file", func() {
				path := filepath.Join(t.TempDir(), "nested", "fixture.json")
				So(loadtest.WriteFixture(ctx, path, f), ShouldBeNil)

				back, err := repository.ReadFixture(path)
				So(err, ShouldBeNil)
				So(back.Users, ShouldHaveLength, len(f.Users))
				So(back.Skills, ShouldHaveLength, len(f.Skills))
			})
		})

		Convey("When no users are requested", func() {
			_, err := loadtest.Generate(ctx, loadtest.GenerateConfig{})
			So(errors.Is(err, loadtest.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
