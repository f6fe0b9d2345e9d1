package model

import (
	"strings"
	"time"
)

// Location is a user's coarse location.
type Location struct {
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// HasAny reports whether any of city or country is set.
func (l Location) HasAny() bool {
	return strings.TrimSpace(l.City) != "" || strings.TrimSpace(l.Country) != ""
}

// Stats holds activity statistics.
type Stats struct {
	LastActive          time.Time `json:"lastActive"`
	SuccessfulExchanges int       `json:"successfulExchanges"`
	Rating              float64   `json:"rating"`
}

// Preferences holds availability preferences.
type Preferences struct {
	AvailableForMentoring  bool   `json:"availableForMentoring"`
	PreferredCommunication string `json:"preferredCommunication,omitempty"`
}

// Badge is an earned achievement; only the count is used for matching.
type Badge struct {
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earnedAt"`
}

// User is a member of the exchange.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email,omitempty"`
	Avatar        string      `json:"avatar,omitempty"`
	Bio           string      `json:"bio,omitempty"`
	Location      Location    `json:"location"`
	Stats         Stats       `json:"stats"`
	Preferences   Preferences `json:"preferences"`
	Badges        []Badge     `json:"badges,omitempty"`
	EmailVerified bool        `json:"emailVerified"`
	Disabled      bool        `json:"disabled,omitempty"`
}

// DisplayName returns the user's name or a placeholder.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) == "" {
		return "Anonymous User"
	}
	return u.Name
}

// Active reports whether the user may appear as a candidate.
func (u User) Active() bool { return !u.Disabled }
