// Package suggest produces profile-improvement nudges for a requester.
package suggest

import (
	"strings"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Suggestion texts.
const (
	AddOffered   = "Add skills you can teach so others can find you."
	AddNeeded    = "Add skills you want to learn to get better matches."
	AddBio       = "Write a short bio to tell others about yourself."
	AddAvatar    = "Upload a profile picture to build trust."
	AddLocation  = "Add your city to find people near you."
	VerifyEmail  = "Verify your email address to boost your match score."
	BroadenQuery = "Try removing filters or adding more skills to see more matches."
)

// Input is what suggestions are derived from.
type Input struct {
	Requester     model.User
	OfferedSkills int
	NeededSkills  int
	Matches       int
}

// For returns suggestions in a fixed order. It never returns nil.
func For(in Input) []string {
	out := []string{}
	if in.OfferedSkills == 0 {
		out = append(out, AddOffered)
	}
	if in.NeededSkills == 0 {
		out = append(out, AddNeeded)
	}
	if strings.TrimSpace(in.Requester.Bio) == "" {
		out = append(out, AddBio)
	}
	if strings.TrimSpace(in.Requester.Avatar) == "" {
		out = append(out, AddAvatar)
	}
	if strings.TrimSpace(in.Requester.Location.City) == "" {
		out = append(out, AddLocation)
	}
	if !in.Requester.EmailVerified {
		out = append(out, VerifyEmail)
	}
	if in.Matches == 0 {
		out = append(out, BroadenQuery)
	}
	return out
}
