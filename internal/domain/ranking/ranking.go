// Package ranking filters scored candidates and orders them for display.
package ranking

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Policy names accepted by ParsePolicy.
const (
	PolicyStrict    = "strict"
	PolicyCascading = "cascading"
)

// MinScore is the strict policy's inclusion threshold.
const MinScore = 0.2

// DefaultLimit caps results when the caller does not.
const DefaultLimit = 20

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("unknown ranking policy")

// Filters narrow the candidate list before thresholds apply. Empty fields
// do not filter.
type Filters struct {
	Category string
	Level    string
	Location string
}

// Policy selects and orders the filtered candidates.
type Policy interface {
	Name() string
	Select(candidates []model.MatchCandidate, limit int) []model.MatchCandidate
}

// StrictThreshold keeps candidates above MinScore.
type StrictThreshold struct{}

// Name implements Policy.
func (StrictThreshold) Name() string { return PolicyStrict }

// Select implements Policy.
func (StrictThreshold) Select(candidates []model.MatchCandidate, limit int) []model.MatchCandidate {
	out := truncate(sortByScore(above(candidates, MinScore)), limit)
	metrics.RecordRankingTier(PolicyStrict, "strict")
	return out
}

type tier struct {
	name     string
	minScore float64
	cap      int
}

// CascadingFallback loosens the threshold in steps until some candidate
// qualifies.
type CascadingFallback struct{}

var cascade = []tier{ //nolint:gochecknoglobals // immutable tier table
	{name: "primary", minScore: 0.3, cap: 20},
	{name: "relaxed", minScore: 0.1, cap: 10},
	{name: "any", minScore: 0, cap: 5},
}

// Name implements Policy.
func (CascadingFallback) Name() string { return PolicyCascading }

// Select implements Policy.
func (CascadingFallback) Select(candidates []model.MatchCandidate, limit int) []model.MatchCandidate {
	for _, t := range cascade {
		kept := above(candidates, t.minScore)
		if len(kept) == 0 {
			continue
		}
		metrics.RecordRankingTier(PolicyCascading, t.name)
		return truncate(truncate(sortByScore(kept), t.cap), limit)
	}
	metrics.RecordRankingTier(PolicyCascading, "empty")
	return []model.MatchCandidate{}
}

// ParsePolicy returns the policy named s. Empty selects StrictThreshold.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", PolicyStrict:
		return StrictThreshold{}, nil
	case PolicyCascading:
		return CascadingFallback{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Ranker applies filters and a policy.
type Ranker struct {
	policy Policy
}

// NewRanker creates a ranker using p, or StrictThreshold when p is nil.
func NewRanker(p Policy) *Ranker {
	if p == nil {
		p = StrictThreshold{}
	}
	return &Ranker{policy: p}
}

// Policy returns the active policy.
func (r *Ranker) Policy() Policy { return r.policy }

// Rank filters candidates, applies the policy and truncates to limit. The
// input order breaks score ties. The result is never nil.
func (r *Ranker) Rank(candidates []model.MatchCandidate, f Filters, limit int) []model.MatchCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return r.policy.Select(Apply(candidates, f), limit)
}

// Apply returns the candidates passing every non-empty filter, in order.
func Apply(candidates []model.MatchCandidate, f Filters) []model.MatchCandidate {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	level := strings.TrimSpace(f.Level)
	location := strings.ToLower(strings.TrimSpace(f.Location))

	out := make([]model.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if category != "" && !matchesCategory(c, category) {
			continue
		}
		if level != "" && !matchesLevel(c, level) {
			continue
		}
		if location != "" && !matchesLocation(c, location) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesCategory(c model.MatchCandidate, needle string) bool {
	for _, m := range c.SkillMatches {
		if strings.Contains(strings.ToLower(m.RequesterSkill), needle) ||
			strings.Contains(strings.ToLower(m.CandidateSkill), needle) {
			return true
		}
	}
	return false
}

func matchesLevel(c model.MatchCandidate, level string) bool {
	for _, m := range c.SkillMatches {
		if strings.EqualFold(string(m.CandidateLevel), level) {
			return true
		}
	}
	return false
}

func matchesLocation(c model.MatchCandidate, needle string) bool {
	return strings.Contains(strings.ToLower(c.User.Location.City), needle) ||
		strings.Contains(strings.ToLower(c.User.Location.Country), needle)
}

func above(candidates []model.MatchCandidate, minScore float64) []model.MatchCandidate {
	out := make([]model.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.TotalScore > minScore {
			out = append(out, c)
		}
	}
	return out
}

func sortByScore(candidates []model.MatchCandidate) []model.MatchCandidate {
	slices.SortStableFunc(candidates, func(a, b model.MatchCandidate) int {
		switch {
		case a.TotalScore > b.TotalScore:
			return -1
		case a.TotalScore < b.TotalScore:
			return 1
		default:
			return 0
		}
	})
	return candidates
}

func truncate(candidates []model.MatchCandidate, limit int) []model.MatchCandidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
