package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Ratio(t *testing.T) {
	scorer := NewScorer()

	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.Ratio("acme corp", "acme corp"))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.Ratio("", ""))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.Ratio("acme", ""))
	})

	t.Run("single character difference", func(t *testing.T) {
		// one substitution over four characters
		assert.InDelta(t, 0.75, scorer.Ratio("acme", "acne"), 0.001)
	})

	t.Run("completely different", func(t *testing.T) {
		score := scorer.Ratio("abcd", "wxyz")
		assert.Equal(t, 0.0, score)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, scorer.Ratio("kitten", "sitting"), scorer.Ratio("sitting", "kitten"))
	})
}

func TestScorer_LevenshteinDistance(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"equal", "abc", "abc", 0},
		{"empty left", "", "abc", 3},
		{"empty right", "abc", "", 3},
		{"classic", "kitten", "sitting", 3},
		{"substitution", "flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestScorer_PartialRatio(t *testing.T) {
	scorer := NewScorer()

	t.Run("substring scores perfect", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.PartialRatio("acme", "acme corporation"))
	})

	t.Run("order independent of argument length", func(t *testing.T) {
		assert.Equal(t, scorer.PartialRatio("acme corporation", "acme"), scorer.PartialRatio("acme", "acme corporation"))
	})

	t.Run("empty shorter against non-empty", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.PartialRatio("", "acme"))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Less(t, scorer.PartialRatio("xyz", "acme corporation"), 0.5)
	})
}

func TestScorer_TokenSortRatio(t *testing.T) {
	scorer := NewScorer()

	t.Run("reordered words score perfect", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.TokenSortRatio("corp acme", "acme corp"))
	})

	t.Run("different words score low", func(t *testing.T) {
		assert.Less(t, scorer.TokenSortRatio("acme corp", "globex inc"), 0.5)
	})
}

func TestScorer_TokenSetRatio(t *testing.T) {
	scorer := NewScorer()

	t.Run("subset of tokens scores perfect", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.TokenSetRatio("acme", "acme corporation"))
	})

	t.Run("duplicated tokens ignored", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.TokenSetRatio("acme acme corp", "corp acme"))
	})
}

func TestScorer_WeightedScore(t *testing.T) {
	scorer := NewScorer()

	t.Run("empty scores", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.WeightedScore(nil, nil))
	})

	t.Run("default weight is one", func(t *testing.T) {
		scores := map[string]float64{"a": 1.0, "b": 0.0}
		assert.Equal(t, 0.5, scorer.WeightedScore(scores, nil))
	})

	t.Run("explicit weights", func(t *testing.T) {
		scores := map[string]float64{"name": 1.0, "email": 0.0}
		weights := map[string]float64{"name": 3.0, "email": 1.0}
		assert.InDelta(t, 0.75, scorer.WeightedScore(scores, weights), 0.001)
	})
}
