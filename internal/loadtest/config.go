// Package loadtest generates synthetic skill exchange profiles and drives
// match requests against a running server, checking every response.
package loadtest

import "time"

// Config holds the settings of a load run.
type Config struct {
	BaseURL  string        // base URL of the service
	Fixture  string        // fixture file whose users are sampled as requesters
	Secret   string        // JWT secret shared with the server
	Requests int           // match requests to issue
	Workers  int           // concurrent requesters
	Limit    int           // limit query parameter, 0 leaves it unset
	Timeout  time.Duration // per request timeout
	Strict   bool          // expect the strict ranking threshold
	Verbose  bool
}

// Stats holds counters of a load run.
type Stats struct {
	Requests   int
	Succeeded  int
	Failed     int
	Violations int
	Matches    int
	StartTime  time.Time
	Duration   time.Duration
}

// GenerateConfig holds the settings of fixture generation.
type GenerateConfig struct {
	Users     int    // users to generate
	MaxSkills int    // skills per direction, at least one
	Seed      uint64 // seed of the profile generator
	Output    string // fixture path
}
