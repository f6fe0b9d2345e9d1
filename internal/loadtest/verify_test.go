package loadtest_test

import (
	"errors"
	"testing"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/internal/loadtest"
	. "github.com/smartystreets/goconvey/convey"
)

func response(limit int, scores ...float64) types.MatchResponse {
	resp := types.MatchResponse{Filters: types.Filters{Limit: limit}, Total: len(scores)}
	for i, s := range scores {
		resp.MatchedUsers = append(resp.MatchedUsers, model.MatchCandidate{
			User:       model.CandidateProfile{ID: string(rune('a' + i))},
			TotalScore: s,
		})
	}
	return resp
}

func TestVerify(t *testing.T) {
	Convey("Given match responses", t, func() {
		Convey("When sorted, within limit and above the threshold", func() {
			So(loadtest.Verify(response(3, 0.9, 0.5, 0.5), true), ShouldBeNil)
		})

		Convey("When empty", func() {
			So(loadtest.Verify(response(20), true), ShouldBeNil)
		})

		Convey("When out of order", func() {
			err := loadtest.Verify(response(3, 0.4, 0.6), true)
			So(errors.Is(err, loadtest.ErrViolation), ShouldBeTrue)
		})

		Convey("When over the limit", func() {
			err := loadtest.Verify(response(1, 0.9, 0.8), true)
			So(errors.Is(err, loadtest.ErrViolation), ShouldBeTrue)
		})

		Convey("When a score is at the threshold", func() {
			So(errors.Is(loadtest.Verify(response(3, 0.5, 0.2), true), loadtest.ErrViolation), ShouldBeTrue)

			Convey("Then a lenient policy accepts it", func() {
				So(loadtest.Verify(response(3, 0.5, 0.2), false), ShouldBeNil)
			})
		})

		Convey("When the total disagrees with the candidates", func() {
			resp := response(3, 0.9)
			resp.Total = 4
			So(errors.Is(loadtest.Verify(resp, true), loadtest.ErrViolation), ShouldBeTrue)
		})
	})
}
