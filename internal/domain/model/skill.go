// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Level is a proficiency level of a skill.
type Level string

// Skill levels.
const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists every level in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced} //nolint:gochecknoglobals // fixed enum

// Direction tells whether a user offers (teaches) or needs (learns) a skill.
type Direction string

// Skill directions.
const (
	DirectionOffering Direction = "Offering"
	DirectionLearning Direction = "Learning"
)

// Category is one of the fixed skill categories.
type Category string

// CategoryOther is the fallback category.
const CategoryOther Category = "Other"

// Categories is the fixed set of skill categories.
var Categories = []Category{ //nolint:gochecknoglobals // fixed enum
	"Programming", "Web Development", "Mobile Development", "Data Science", "Machine Learning",
	"DevOps", "Cloud Computing", "Cybersecurity", "UI/UX Design", "Graphic Design",
	"Digital Marketing", "Content Writing", "Photography", "Video Editing", "Music Production",
	"Language Learning", "Business", "Finance", "Project Management", "Sales",
	"Communication", "Leadership", "Teaching", "Research", CategoryOther,
}

// Sentinel errors for enum parsing.
var (
	ErrUnknownLevel     = errors.New("unknown skill level")
	ErrUnknownDirection = errors.New("unknown skill direction")
)

// Skill is a single skill record owned by a user.
type Skill struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Level     Level     `json:"level"`
	Direction Direction `json:"direction"`
	Active    bool      `json:"active"`
}

// ParseLevel parses a level case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(DirectionOffering)):
		return DirectionOffering, nil
	case strings.EqualFold(strings.TrimSpace(s), string(DirectionLearning)):
		return DirectionLearning, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// ParseCategory maps s onto a known category; unknown values become Other.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c
		}
	}
	return CategoryOther
}

// Titles returns the titles of skills in order.
func Titles(skills []Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Title)
	}
	return out
}
