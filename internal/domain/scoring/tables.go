package scoring

import (
	"strings"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Factor names and weights. The weights sum to 1.
const (
	FactorSkill        = "skill"
	FactorActivity     = "activity"
	FactorProfile      = "profile"
	FactorLocation     = "location"
	FactorAvailability = "availability"
	FactorMutual       = "mutual"

	WeightSkill        = 0.4
	WeightActivity     = 0.2
	WeightProfile      = 0.15
	WeightLocation     = 0.1
	WeightAvailability = 0.1
	WeightMutual       = 0.05
)

// Skill pair constants.
const (
	// PairThreshold is the similarity a pair must exceed to qualify.
	PairThreshold = 0.3

	sameCategoryBonus      = 1.2
	differentCategoryBonus = 0.8
	defaultLevelMultiplier = 0.5
	defaultCategoryWeight  = 1.0
)

// levelCompat maps learner level, then teacher level, to a multiplier.
var levelCompat = map[model.Level]map[model.Level]float64{ //nolint:gochecknoglobals // immutable lookup table
	model.LevelBeginner: {
		model.LevelBeginner:     0.6,
		model.LevelIntermediate: 1.0,
		model.LevelAdvanced:     1.2,
	},
	model.LevelIntermediate: {
		model.LevelBeginner:     0.8,
		model.LevelIntermediate: 1.0,
		model.LevelAdvanced:     1.1,
	},
	model.LevelAdvanced: {
		model.LevelBeginner:     0.5,
		model.LevelIntermediate: 0.9,
		model.LevelAdvanced:     1.0,
	},
}

// categoryWeights favours categories with the most exchange demand.
var categoryWeights = map[model.Category]float64{ //nolint:gochecknoglobals // immutable lookup table
	"Programming":        1.2,
	"Machine Learning":   1.2,
	"Data Science":       1.15,
	"Web Development":    1.1,
	"Mobile Development": 1.1,
	"Cloud Computing":    1.1,
	"Cybersecurity":      1.1,
	"DevOps":             1.05,
	"UI/UX Design":       1.05,
	"Language Learning":  1.0,
	"Business":           1.0,
	"Finance":            1.0,
	"Graphic Design":     0.95,
	"Digital Marketing":  0.95,
	"Music Production":   0.9,
	"Photography":        0.9,
	"Video Editing":      0.9,
	"Sales":              0.85,
	"Other":              0.8,
}

// LevelCompatibility returns the multiplier for a learner at learner level
// being taught by someone at teacher level.
func LevelCompatibility(learner, teacher model.Level) float64 {
	l, err := model.ParseLevel(string(learner))
	if err != nil {
		return defaultLevelMultiplier
	}
	t, err := model.ParseLevel(string(teacher))
	if err != nil {
		return defaultLevelMultiplier
	}
	if m, ok := levelCompat[l][t]; ok {
		return m
	}
	return defaultLevelMultiplier
}

// CategoryWeight returns the weight of category c, 1 for unlisted ones.
func CategoryWeight(c model.Category) float64 {
	name := strings.TrimSpace(string(c))
	for cat, w := range categoryWeights {
		if strings.EqualFold(name, string(cat)) {
			return w
		}
	}
	return defaultCategoryWeight
}
