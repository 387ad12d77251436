// Package normalizers provides field normalization for identity matching
package normalizers

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("nphone", NormalizePhone)
	Register("nemail", NormalizeEmail)
	Register("nmatch", Normalize)
	Register("remove_whitespace", RemoveWhitespace)
	Register("digits_only", DigitsOnly)
	Register("alphanumeric", Alphanumeric)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize is the canonical pre-comparison form: lowercase, punctuation
// replaced with single spaces, whitespace collapsed. Empty in, empty out.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// AbbreviationMap rewrites known long forms to their short forms. Keys and
// values are expected to already be in normalized (lowercase) form.
type AbbreviationMap map[string]string

// ApplyAbbreviations rewrites whole words and whole phrases of text using
// the map. It never touches substrings inside a word.
func ApplyAbbreviations(text string, abbreviations AbbreviationMap) string {
	if len(abbreviations) == 0 {
		return text
	}

	for long, short := range abbreviations {
		if !strings.Contains(long, " ") {
			continue
		}
		padded := strings.ReplaceAll(" "+text+" ", " "+long+" ", " "+short+" ")
		text = strings.TrimSpace(padded)
	}

	words := strings.Fields(text)
	for i, word := range words {
		if short, ok := abbreviations[word]; ok {
			words[i] = short
		}
	}
	return strings.Join(words, " ")
}

// BusinessAbbreviations is the default long-form table for business names
// and street addresses. Callers may supply their own map instead.
func BusinessAbbreviations() AbbreviationMap {
	return AbbreviationMap{
		"corporation":  "corp",
		"incorporated": "inc",
		"limited":      "ltd",
		"company":      "co",
		"and":          "&",
		"plus":         "+",
		"street":       "st",
		"avenue":       "ave",
		"boulevard":    "blvd",
		"drive":        "dr",
		"road":         "rd",
		"suite":        "ste",
		"floor":        "fl",
	}
}

// CityAbbreviations is the default city nickname table.
func CityAbbreviations() AbbreviationMap {
	return AbbreviationMap{
		"new york":      "nyc",
		"los angeles":   "la",
		"san francisco": "sf",
		"washington dc": "dc",
		"chicago":       "chi",
	}
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePhone removes all non-digit characters from a phone number
func NormalizePhone(s string) string {
	return DigitsOnly(s)
}

// NormalizeEmail normalizes an email address (lowercase, trim)
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeWebsite strips scheme and www prefix and lowercases the rest.
func NormalizeWebsite(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return s
}
