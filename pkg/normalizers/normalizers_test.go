package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "ACME Corp", "acme corp"},
		{"strips punctuation", "Acme, Inc.", "acme inc"},
		{"collapses whitespace", "  Acme   Corp  ", "acme corp"},
		{"empty", "", ""},
		{"punctuation only", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestApplyAbbreviations(t *testing.T) {
	t.Run("whole word rewrite", func(t *testing.T) {
		got := ApplyAbbreviations("acme corporation", BusinessAbbreviations())
		assert.Equal(t, "acme corp", got)
	})

	t.Run("substring inside a word untouched", func(t *testing.T) {
		got := ApplyAbbreviations("corporationx", BusinessAbbreviations())
		assert.Equal(t, "corporationx", got)
	})

	t.Run("multi word phrase rewrite", func(t *testing.T) {
		got := ApplyAbbreviations("new york", CityAbbreviations())
		assert.Equal(t, "nyc", got)
	})

	t.Run("phrase inside a longer string", func(t *testing.T) {
		got := ApplyAbbreviations("east new york office", CityAbbreviations())
		assert.Equal(t, "east nyc office", got)
	})

	t.Run("nil map is identity", func(t *testing.T) {
		assert.Equal(t, "acme corporation", ApplyAbbreviations("acme corporation", nil))
	})
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5551234567", DigitsOnly("(555) 123-4567"))
	assert.Equal(t, "", DigitsOnly("n/a"))
}

func TestNormalizeWebsite(t *testing.T) {
	assert.Equal(t, "acme.com", NormalizeWebsite("https://www.acme.com"))
	assert.Equal(t, "acme.com/about", NormalizeWebsite("HTTP://acme.com/about"))
}

func TestRegistry(t *testing.T) {
	t.Run("built-ins registered", func(t *testing.T) {
		for _, name := range []string{"lowercase", "trim", "nphone", "nemail", "nmatch", "remove_whitespace", "digits_only", "alphanumeric"} {
			_, ok := Get(name)
			assert.True(t, ok, name)
		}
	})

	t.Run("apply unknown normalizer is identity", func(t *testing.T) {
		assert.Equal(t, "Value", Apply("Value", "missing"))
	})

	t.Run("chain", func(t *testing.T) {
		assert.Equal(t, "acmecorp", ApplyChain("  ACME Corp ", "trim", "lowercase", "remove_whitespace"))
	})
}
