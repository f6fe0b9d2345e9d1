package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600

	disabledShare = 0.05
	verifiedShare = 0.6
	inactiveShare = 0.1
	maxExchanges  = 40
	maxIdleDays   = 60
)

type catalogEntry struct {
	category model.Category
	titles   []string
}

var catalog = []catalogEntry{ //nolint:gochecknoglobals // immutable lookup table
	{"Programming", []string{"Go", "Python", "Java", "Rust", "TypeScript"}},
	{"Web Development", []string{"React", "Vue", "CSS Layout", "Node.js"}},
	{"Data Science", []string{"Pandas", "Statistics", "SQL Analytics"}},
	{"Machine Learning", []string{"PyTorch", "Deep Learning", "NLP"}},
	{"Language Learning", []string{"Spanish", "Portuguese", "Japanese", "German"}},
	{"Music Production", []string{"Guitar", "Piano", "Mixing"}},
	{"Photography", []string{"Portrait Photography", "Lightroom"}},
	{"Business", []string{"Negotiation", "Pitching"}},
}

var places = []model.Location{ //nolint:gochecknoglobals // immutable lookup table
	{City: "Lisbon", Country: "Portugal"},
	{City: "Porto", Country: "Portugal"},
	{City: "Madrid", Country: "Spain"},
	{City: "Berlin", Country: "Germany"},
	{City: "Tokyo", Country: "Japan"},
	{},
}

var comms = []string{"video", "chat", "in-person", ""} //nolint:gochecknoglobals // immutable lookup table

// Generate builds a fixture of cfg.Users synthetic users. Profiles depend only
// on cfg.Seed; ids are random.
func Generate(ctx context.Context, cfg GenerateConfig) (repository.Fixture, error) {
	if cfg.Users < 1 {
		return repository.Fixture{}, fmt.Errorf("%w: users must be positive", ErrInvalidConfig)
	}
	maxSkills := max(1, cfg.MaxSkills)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data
	now := time.Now().UTC()

	f := repository.Fixture{
		Users:  make([]model.User, 0, cfg.Users),
		Skills: make([]model.Skill, 0, cfg.Users*maxSkills*2),
	}
	for i := range cfg.Users {
		if err := ctx.Err(); err != nil {
			return repository.Fixture{}, fmt.Errorf("generate: %w", err)
		}
		u := generateUser(rng, i, now)
		f.Users = append(f.Users, u)
		for _, dir := range []model.Direction{model.DirectionOffering, model.DirectionLearning} {
			for range 1 + rng.IntN(maxSkills) {
				f.Skills = append(f.Skills, generateSkill(rng, u.ID, dir))
			}
		}
	}

	logger.Get().Info(ctx, "generated fixture",
		logger.Int("users", len(f.Users)),
		logger.Int("skills", len(f.Skills)))
	return f, nil
}

func generateUser(rng *rand.Rand, i int, now time.Time) model.User {
	u := model.User{
		ID:            uuid.NewString(),
		Name:          fmt.Sprintf("User %d", i+1),
		Location:      places[rng.IntN(len(places))],
		EmailVerified: rng.Float64() < verifiedShare,
		Disabled:      rng.Float64() < disabledShare,
		Stats: model.Stats{
			LastActive:          now.Add(-time.Duration(rng.IntN(maxIdleDays*24)) * time.Hour),
			SuccessfulExchanges: rng.IntN(maxExchanges),
			Rating:              float64(rng.IntN(51)) / 10,
		},
		Preferences: model.Preferences{
			AvailableForMentoring:  rng.IntN(2) == 0,
			PreferredCommunication: comms[rng.IntN(len(comms))],
		},
	}
	if rng.IntN(2) == 0 {
		u.Bio = "Happy to swap skills."
	}
	if rng.IntN(3) == 0 {
		u.Avatar = "https://example.com/avatars/" + u.ID + ".png"
	}
	return u
}

func generateSkill(rng *rand.Rand, owner string, dir model.Direction) model.Skill {
	entry := catalog[rng.IntN(len(catalog))]
	return model.Skill{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Title:     entry.titles[rng.IntN(len(entry.titles))],
		Category:  entry.category,
		Level:     model.Levels[rng.IntN(len(model.Levels))],
		Direction: dir,
		Active:    rng.Float64() >= inactiveShare,
	}
}

// WriteFixture writes f as indented JSON to path, creating its directory.
func WriteFixture(ctx context.Context, path string, f repository.Fixture) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	logger.Get().Info(ctx, "fixture saved", logger.String("path", path))
	return nil
}
