// Package matching implements field similarity and identity scoring for
// duplicate detection over contact and account records.
package matching

import (
	"sort"
	"strings"
)

// Scorer provides the string comparison primitives the field similarity
// functions are built from. All methods are symmetric and return values
// in [0, 1].
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// ExactMatch returns 1.0 for exact match, 0.0 otherwise
func (s *Scorer) ExactMatch(a, b string, caseSensitive bool) float64 {
	if !caseSensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	if a == b {
		return 1.0
	}
	return 0.0
}

// Ratio is the character edit-distance similarity between two strings.
func (s *Scorer) Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(s.LevenshteinDistance(a, b))/float64(maxLen)
}

// PartialRatio is the best Ratio of the shorter string against every
// same-length window of the longer string.
func (s *Scorer) PartialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 1.0
		}
		return 0.0
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := s.Ratio(shorter, longer[i:i+len(shorter)])
		if score > best {
			best = score
		}
		if best == 1.0 {
			break
		}
	}
	return best
}

// TokenSortRatio compares the strings with their tokens sorted, making the
// score insensitive to word order.
func (s *Scorer) TokenSortRatio(a, b string) float64 {
	return s.Ratio(sortTokens(a), sortTokens(b))
}

// TokenSetRatio compares the strings on their shared and distinct token
// sets, making the score insensitive to both word order and duplicated
// words.
func (s *Scorer) TokenSetRatio(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	var common, onlyA, onlyB []string
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if _, ok := tokensA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := s.Ratio(base, combinedA)
	if score := s.Ratio(base, combinedB); score > best {
		best = score
	}
	if score := s.Ratio(combinedA, combinedB); score > best {
		best = score
	}
	return best
}

// Levenshtein calculates the Levenshtein distance between two strings
// Returns a similarity score between 0.0 and 1.0
func (s *Scorer) Levenshtein(a, b string) float64 {
	return s.Ratio(a, b)
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create two rows for dynamic programming
	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

// WeightedScore calculates a weighted average of scores
func (s *Scorer) WeightedScore(scores map[string]float64, weights map[string]float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	var totalWeight float64
	var weightedSum float64

	for field, score := range scores {
		weight := 1.0 // Default weight
		if w, ok := weights[field]; ok {
			weight = w
		}
		weightedSum += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0.0
	}

	return weightedSum / totalWeight
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
