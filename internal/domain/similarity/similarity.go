// Package similarity scores how alike two skill titles are.
//
// Scores are in [0,1]. An exact case-insensitive match is 1. Otherwise the
// first title (at most MaxPatternLength runes of it) is searched approximately
// inside the second: the best window of the second title by edit distance
// produces a fuzzy score
//
//	errors/len(pattern) + offset/Distance
//
// which must not exceed Threshold to count as a hit; the similarity is then
// 1 - score. Titles that miss the fuzzy search but contain one another score
// PartialMatch.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Fixed matching knobs. They are constants so scores are reproducible.
const (
	// Threshold is the largest fuzzy score still considered a hit.
	Threshold = 0.4
	// Distance is how far from the start of the text a match may drift
	// before the offset alone exhausts the threshold budget.
	Distance = 100
	// PartialMatch is the floor for titles that contain one another.
	PartialMatch = 0.7
	// MaxPatternLength caps how many runes of the pattern are searched.
	MaxPatternLength = 32

	maxOffset = int(Threshold * Distance)
)

// Similarity returns a deterministic similarity of a to b in [0,1].
func Similarity(a, b string) float64 {
	pa := strings.ToLower(strings.TrimSpace(a))
	pb := strings.ToLower(strings.TrimSpace(b))
	if pa == "" || pb == "" {
		return 0
	}
	if pa == pb {
		return 1
	}
	if score, ok := fuzzyScore(pa, pb); ok {
		return 1 - score
	}
	if strings.Contains(pa, pb) || strings.Contains(pb, pa) {
		return PartialMatch
	}
	return 0
}

// fuzzyScore searches pattern approximately in text and returns the best
// score and whether it is within Threshold. Patterns are cut to
// MaxPatternLength runes and only windows starting at most
// Threshold*Distance runes into the text are tried, since later ones cannot
// score within Threshold.
func fuzzyScore(pattern, text string) (float64, bool) {
	p := []rune(pattern)
	if len(p) > MaxPatternLength {
		p = p[:MaxPatternLength]
	}
	t := []rune(text)
	m, n := len(p), len(t)

	maxErr := int(Threshold * float64(m))
	minW := max(1, m-maxErr)
	maxW := min(n, m+maxErr)

	if n < minW {
		return hit(float64(levenshtein.ComputeDistance(string(p), text)) / float64(m))
	}

	best := -1.0
	prev := make([]int, maxW+1)
	cur := make([]int, maxW+1)
	for off := 0; off <= min(n-minW, maxOffset); off++ {
		window := t[off:min(n, off+maxW)]
		dist := prefixDistances(p, window, prev, cur)
		for w := minW; w <= len(window); w++ {
			score := float64(dist[w])/float64(m) + float64(off)/Distance
			if best < 0 || score < best {
				best = score
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return hit(best)
}

func hit(score float64) (float64, bool) {
	if score > Threshold {
		return 0, false
	}
	return score, true
}

// prefixDistances returns, for every j, the edit distance between pattern and
// window[:j], computed in one pass over rows prev and cur.
func prefixDistances(pattern, window []rune, prev, cur []int) []int {
	k := len(window)
	prev, cur = prev[:k+1], cur[:k+1]
	for j := range prev {
		prev[j] = j
	}
	for i, pr := range pattern {
		cur[0] = i + 1
		for j, wr := range window {
			cost := 1
			if pr == wr {
				cost = 0
			}
			cur[j+1] = min(prev[j+1]+1, cur[j]+1, prev[j]+cost)
		}
		prev, cur = cur, prev
	}
	return prev
}
