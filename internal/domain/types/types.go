// Package types contains common types used across the application
package types

import (
	"strings"

	"github.com/okian/skillmatch/internal/domain/model"
)

// DefaultLimit is the result cap used when a request does not set one.
const DefaultLimit = 20

// MatchRequest asks for ranked matches for a requester.
type MatchRequest struct {
	RequesterID string
	Limit       int
	Category    string
	Level       string
	Location    string
}

// Filters echoes the filters applied to a match request.
type Filters struct {
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit"`
}

// FiltersOf normalizes the request filters and resolves the limit.
func FiltersOf(r MatchRequest) Filters {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Filters{
		Category: strings.TrimSpace(r.Category),
		Level:    strings.TrimSpace(r.Level),
		Location: strings.TrimSpace(r.Location),
		Limit:    limit,
	}
}

// MatchResponse is the result of a match request.
type MatchResponse struct {
	MatchedUsers []model.MatchCandidate `json:"matchedUsers"`
	Total        int                    `json:"total"`
	Filters      Filters                `json:"filters"`
	Suggestions  []string               `json:"suggestions"`
}
