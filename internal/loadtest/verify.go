package loadtest

import (
	"fmt"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
)

// Verify checks a match response: candidates sorted by descending score,
// at most the echoed limit of them, total equal to their count, and with
// strict set every score above ranking.MinScore.
func Verify(resp types.MatchResponse, strict bool) error {
	if resp.Total != len(resp.MatchedUsers) {
		return fmt.Errorf("%w: total %d but %d candidates", ErrViolation, resp.Total, len(resp.MatchedUsers))
	}
	if resp.Filters.Limit > 0 && len(resp.MatchedUsers) > resp.Filters.Limit {
		return fmt.Errorf("%w: %d candidates over limit %d", ErrViolation, len(resp.MatchedUsers), resp.Filters.Limit)
	}
	for i, c := range resp.MatchedUsers {
		if c.TotalScore < 0 {
			return fmt.Errorf("%w: candidate %s has negative score %.3f", ErrViolation, c.User.ID, c.TotalScore)
		}
		if strict && c.TotalScore <= ranking.MinScore {
			return fmt.Errorf("%w: candidate %s score %.3f not above %.1f", ErrViolation, c.User.ID, c.TotalScore, ranking.MinScore)
		}
		if i > 0 && c.TotalScore > resp.MatchedUsers[i-1].TotalScore {
			return fmt.Errorf("%w: position %d scores above position %d", ErrViolation, i, i-1)
		}
	}
	return nil
}
