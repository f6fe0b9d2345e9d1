package model

// Skill match types.
const (
	MatchLearn = "learn" // requester learns from the candidate
	MatchTeach = "teach" // requester teaches the candidate
)

// FactorScore is one weighted component of a candidate's total score.
type FactorScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// SkillMatch is a qualifying (requester skill, candidate skill) pair.
type SkillMatch struct {
	Type           string  `json:"type"`
	RequesterSkill string  `json:"requesterSkill"`
	CandidateSkill string  `json:"candidateSkill"`
	Score          float64 `json:"score"`
	RequesterLevel Level   `json:"requesterLevel"`
	CandidateLevel Level   `json:"candidateLevel"`
}

// CandidateProfile is the public part of a candidate returned to clients.
type CandidateProfile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar,omitempty"`
	Bio      string   `json:"bio,omitempty"`
	Location Location `json:"location"`
}

// MatchCandidate is a scored candidate. It is derived and never persisted.
type MatchCandidate struct {
	User           CandidateProfile `json:"user"`
	TotalScore     float64          `json:"totalScore"`
	Factors        []FactorScore    `json:"factors"`
	SkillMatches   []SkillMatch     `json:"skillMatches"`
	OfferedSkills  []string         `json:"offeredSkills"`
	NeededSkills   []string         `json:"neededSkills"`
	Recommendation string           `json:"recommendation"`
}

// HasMatchType reports whether any skill match has type t.
func (c MatchCandidate) HasMatchType(t string) bool {
	for _, m := range c.SkillMatches {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Factor returns the named factor score.
func (c MatchCandidate) Factor(name string) (FactorScore, bool) {
	for _, f := range c.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorScore{}, false
}

// ProfileOf extracts the public profile of u.
func ProfileOf(u User) CandidateProfile {
	return CandidateProfile{
		ID:       u.ID,
		Name:     u.DisplayName(),
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Location: u.Location,
	}
}
