// Package scoring computes the weighted compatibility of a candidate with a
// requester.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/similarity"
)

const (
	defaultJitterSeed = 42

	recencyWindowDays  = 30
	exchangeBonus      = 0.1
	maxRating          = 5
	verifiedBonus      = 0.2
	avatarScore        = 0.3
	bioScore           = 0.3
	cityScore          = 0.2
	badgeScore         = 0.05
	maxBadgeScore      = 0.2
	sameCityScore      = 1.0
	sameCountryScore   = 0.6
	bothLocatedScore   = 0.3
	unknownLocation    = 0.1
	mentoringScore     = 0.5
	communicationScore = 0.3
	jitterScale        = 0.2
	mutualScore        = 1.0
	oneSidedScore      = 0.5
	excellentThreshold = 0.8
	greatThreshold     = 0.6
	goodThreshold      = 0.4
	hoursPerDay        = 24
)

// Recommendations by score band.
const (
	RecommendExcellent = "Excellent match! You have highly complementary skills."
	RecommendGreat     = "Great match with strong skill alignment."
	RecommendGood      = "Good match with some shared interests."
	RecommendPotential = "Potential match worth exploring."
)

// Input holds the requester, the candidate and their skills split by direction.
type Input struct {
	Requester        model.User
	RequesterOffered []model.Skill
	RequesterNeeded  []model.Skill
	Candidate        model.User
	CandidateOffered []model.Skill
	CandidateNeeded  []model.Skill
}

// Scorer computes a candidate's compatibility with a requester.
type Scorer interface {
	// Score scores one candidate, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (model.MatchCandidate, error)
}

// WeightedScorer combines independent factors by fixed weights.
type WeightedScorer struct {
	jitter     Jitter
	now        func() time.Time
	similarity func(a, b string) float64
}

// NewWeightedScorer creates a scorer. Jitter defaults to a seeded source.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		jitter:     NewSeededJitter(defaultJitterSeed),
		now:        time.Now,
		similarity: similarity.Similarity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes every factor for in.Candidate and combines them.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (model.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return model.MatchCandidate{}, fmt.Errorf("score candidate %s: %w", in.Candidate.ID, err)
	}

	skillScore, matches, err := s.SkillFactor(ctx, in)
	if err != nil {
		return model.MatchCandidate{}, fmt.Errorf("score candidate %s: %w", in.Candidate.ID, err)
	}
	factors := []model.FactorScore{
		{Name: FactorSkill, Score: skillScore, Weight: WeightSkill},
		{Name: FactorActivity, Score: ActivityFactor(in.Candidate, s.now()), Weight: WeightActivity},
		{Name: FactorProfile, Score: ProfileFactor(in.Candidate), Weight: WeightProfile},
		{Name: FactorLocation, Score: LocationFactor(in.Requester.Location, in.Candidate.Location), Weight: WeightLocation},
		{Name: FactorAvailability, Score: s.availabilityFactor(in.Requester, in.Candidate), Weight: WeightAvailability},
		{Name: FactorMutual, Score: MutualFactor(matches), Weight: WeightMutual},
	}

	total := Total(factors)
	return model.MatchCandidate{
		User:           model.ProfileOf(in.Candidate),
		TotalScore:     total,
		Factors:        factors,
		SkillMatches:   matches,
		OfferedSkills:  model.Titles(in.CandidateOffered),
		NeededSkills:   model.Titles(in.CandidateNeeded),
		Recommendation: Recommendation(total),
	}, nil
}

// SkillFactor sums the scores of every qualifying skill pair. Learn pairs
// match what the requester needs with what the candidate offers; teach pairs
// the reverse. It stops with ctx's error once ctx is done.
func (s *WeightedScorer) SkillFactor(ctx context.Context, in Input) (float64, []model.SkillMatch, error) {
	var (
		total   float64
		matches []model.SkillMatch
	)
	for _, need := range in.RequesterNeeded {
		for _, offer := range in.CandidateOffered {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
			if m, ok := s.pair(model.MatchLearn, need, offer, need.Level, offer.Level, offer.Category); ok {
				total += m.Score
				matches = append(matches, m)
			}
		}
	}
	for _, offer := range in.RequesterOffered {
		for _, need := range in.CandidateNeeded {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
			if m, ok := s.pair(model.MatchTeach, offer, need, need.Level, offer.Level, offer.Category); ok {
				total += m.Score
				matches = append(matches, m)
			}
		}
	}
	return total, matches, nil
}

func (s *WeightedScorer) pair(
	kind string,
	mine, theirs model.Skill,
	learner, teacher model.Level,
	offered model.Category,
) (model.SkillMatch, bool) {
	if strings.TrimSpace(mine.Title) == "" || strings.TrimSpace(theirs.Title) == "" {
		return model.SkillMatch{}, false
	}
	sim := s.similarity(mine.Title, theirs.Title)
	if sim <= PairThreshold {
		return model.SkillMatch{}, false
	}

	bonus := differentCategoryBonus
	if strings.EqualFold(string(mine.Category), string(theirs.Category)) {
		bonus = sameCategoryBonus
	}

	return model.SkillMatch{
		Type:           kind,
		RequesterSkill: mine.Title,
		CandidateSkill: theirs.Title,
		Score:          sim * bonus * LevelCompatibility(learner, teacher) * CategoryWeight(offered),
		RequesterLevel: mine.Level,
		CandidateLevel: theirs.Level,
	}, true
}

// ActivityFactor rewards recent activity, completed exchanges, rating and a
// verified email. It is not clamped.
func ActivityFactor(u model.User, now time.Time) float64 {
	days := now.Sub(u.Stats.LastActive).Hours() / hoursPerDay
	score := math.Max(0, 1-days/recencyWindowDays)
	score += exchangeBonus * float64(u.Stats.SuccessfulExchanges)
	score += u.Stats.Rating / maxRating
	if u.EmailVerified {
		score += verifiedBonus
	}
	return score
}

// ProfileFactor rewards a filled-in profile.
func ProfileFactor(u model.User) float64 {
	var score float64
	if strings.TrimSpace(u.Avatar) != "" {
		score += avatarScore
	}
	if strings.TrimSpace(u.Bio) != "" {
		score += bioScore
	}
	if strings.TrimSpace(u.Location.City) != "" {
		score += cityScore
	}
	return score + math.Min(maxBadgeScore, float64(len(u.Badges))*badgeScore)
}

// LocationFactor scores geographic proximity.
func LocationFactor(a, b model.Location) float64 {
	switch {
	case sameNonEmpty(a.City, b.City):
		return sameCityScore
	case sameNonEmpty(a.Country, b.Country):
		return sameCountryScore
	case a.HasAny() && b.HasAny():
		return bothLocatedScore
	default:
		return unknownLocation
	}
}

// AvailabilityFactor scores mentoring availability and communication fit,
// without jitter.
func AvailabilityFactor(requester, candidate model.User) float64 {
	var score float64
	if candidate.Preferences.AvailableForMentoring {
		score += mentoringScore
	}
	if sameNonEmpty(requester.Preferences.PreferredCommunication, candidate.Preferences.PreferredCommunication) {
		score += communicationScore
	}
	return score
}

func (s *WeightedScorer) availabilityFactor(requester, candidate model.User) float64 {
	return AvailabilityFactor(requester, candidate) + jitterScale*s.jitter.Float64()
}

// MutualFactor is full when the candidate can both teach and learn.
func MutualFactor(matches []model.SkillMatch) float64 {
	var learn, teach bool
	for _, m := range matches {
		switch m.Type {
		case model.MatchLearn:
			learn = true
		case model.MatchTeach:
			teach = true
		}
	}
	if learn && teach {
		return mutualScore
	}
	return oneSidedScore
}

// Total combines factors by their weights.
func Total(factors []model.FactorScore) float64 {
	var total float64
	for _, f := range factors {
		total += f.Score * f.Weight
	}
	return total
}

// Recommendation returns the human readable band for total.
func Recommendation(total float64) string {
	switch {
	case total > excellentThreshold:
		return RecommendExcellent
	case total > greatThreshold:
		return RecommendGreat
	case total > goodThreshold:
		return RecommendGood
	default:
		return RecommendPotential
	}
}

func sameNonEmpty(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
