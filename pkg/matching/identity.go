package matching

import (
	"strings"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/normalizers"
)

// Contact scoring strategies. The rules strategy averages exact-match
// indicator rules and is the canonical one; weighted is the legacy
// fuzzy blend kept for tuning comparisons.
const (
	StrategyRules    = "rules"
	StrategyWeighted = "weighted"
)

// Thresholds at which a scored pair is accepted as a duplicate.
const (
	ContactAcceptThreshold         = 0.95
	ContactWeightedAcceptThreshold = 0.3
	AccountAcceptThreshold         = 1.0
)

// Weights for the legacy weighted contact strategy. Only positive field
// scores contribute.
var weightedContactWeights = map[string]float64{
	"name":         0.35,
	"email":        0.25,
	"phone":        0.20,
	"mobile_phone": 0.20,
}

// IdentityScorer computes the pairwise identity score that decides
// whether two records describe the same real-world entity.
type IdentityScorer struct {
	fields   *FieldSimilarity
	strategy string
}

// NewIdentityScorer creates an IdentityScorer. An unknown strategy falls
// back to rules.
func NewIdentityScorer(fields *FieldSimilarity, strategy string) *IdentityScorer {
	if strategy != StrategyWeighted {
		strategy = StrategyRules
	}
	return &IdentityScorer{
		fields:   fields,
		strategy: strategy,
	}
}

// Strategy returns the active contact scoring strategy.
func (s *IdentityScorer) Strategy() string {
	return s.strategy
}

// AcceptanceThreshold returns the score at or above which a candidate
// pair of the given kind is treated as a duplicate.
func (s *IdentityScorer) AcceptanceThreshold(kind models.EntityKind) float64 {
	if kind == models.EntityKindAccount {
		return AccountAcceptThreshold
	}
	if s.strategy == StrategyWeighted {
		return ContactWeightedAcceptThreshold
	}
	return ContactAcceptThreshold
}

// ContactScore scores a contact pair with the active strategy. The
// returned map holds the per-field scores that produced the composite.
func (s *IdentityScorer) ContactScore(a, b *models.ContactRecord) (float64, map[string]float64) {
	if s.strategy == StrategyWeighted {
		return s.weightedContactScore(a, b)
	}
	return s.rulesContactScore(a, b)
}

// rulesContactScore averages the indicator rules that have values on
// both sides. Rules with a missing side are excluded from the average
// rather than counted as zero, so sparse records are not punished for
// fields they never had.
func (s *IdentityScorer) rulesContactScore(a, b *models.ContactRecord) (float64, map[string]float64) {
	fieldScores := make(map[string]float64)
	var sum float64
	var count int

	if a.FirstName != "" && b.FirstName != "" {
		score := 0.0
		if s.fields.FirstName(a.FirstName, b.FirstName) >= 0.8 {
			score = 0.8
		}
		fieldScores["first_name"] = score
		sum += score
		count++
	}

	// Exact rules compare lowercased trimmed values only; punctuation
	// differences keep them at zero.
	if a.LastName != "" && b.LastName != "" {
		score := 0.0
		if strings.ToLower(strings.TrimSpace(a.LastName)) == strings.ToLower(strings.TrimSpace(b.LastName)) {
			score = 1.0
		}
		fieldScores["last_name"] = score
		sum += score
		count++
	}

	if a.Email != "" && b.Email != "" {
		score := 0.0
		if strings.ToLower(strings.TrimSpace(a.Email)) == strings.ToLower(strings.TrimSpace(b.Email)) {
			score = 1.0
		}
		fieldScores["email"] = score
		sum += score
		count++
	}

	// The phone rule participates whenever both sides carry a raw value;
	// digit-less phones score zero instead of dropping out of the average.
	if a.Phone != "" && b.Phone != "" {
		digitsA := normalizers.DigitsOnly(a.Phone)
		digitsB := normalizers.DigitsOnly(b.Phone)
		score := 0.0
		if digitsA != "" && digitsA == digitsB {
			score = 1.0
		}
		fieldScores["phone"] = score
		sum += score
		count++
	}

	if count == 0 {
		return 0.0, fieldScores
	}
	return sum / float64(count), fieldScores
}

// weightedContactScore is the legacy blend: weighted sum of the fuzzy
// field similarities, counting only fields that scored above zero.
func (s *IdentityScorer) weightedContactScore(a, b *models.ContactRecord) (float64, map[string]float64) {
	fieldScores := map[string]float64{
		"name":         s.fields.ContactName(a.FirstName, a.LastName, b.FirstName, b.LastName),
		"email":        s.fields.Email(a.Email, b.Email),
		"phone":        s.fields.Phone(a.Phone, b.Phone),
		"mobile_phone": s.fields.Phone(a.MobilePhone, b.MobilePhone),
	}

	var total float64
	for field, score := range fieldScores {
		if score > 0 {
			total += score * weightedContactWeights[field]
		}
	}
	if total > 1.0 {
		total = 1.0
	}
	return total, fieldScores
}

// AccountScore scores an account pair. Accounts match on the enterprise
// identifier alone.
func (s *IdentityScorer) AccountScore(a, b *models.AccountRecord) (float64, map[string]float64) {
	score := s.fields.EnterpriseID(a.EnterpriseID, b.EnterpriseID)
	return score, map[string]float64{"enterprise_id": score}
}

// ContactMatchReasons explains which rules fired for a scored contact
// pair, for reviewers reading the match report.
func ContactMatchReasons(fieldScores map[string]float64) []string {
	var reasons []string
	if fieldScores["first_name"] > 0 {
		reasons = append(reasons, "Fuzzy first name match")
	}
	if fieldScores["last_name"] > 0 {
		reasons = append(reasons, "Exact last name match")
	}
	if fieldScores["email"] > 0 {
		reasons = append(reasons, "Exact email match")
	}
	if fieldScores["phone"] > 0 {
		reasons = append(reasons, "Exact phone match")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "No matching fields")
	}
	return reasons
}

// AccountMatchReasons explains an account match.
func AccountMatchReasons(fieldScores map[string]float64) []string {
	if fieldScores["enterprise_id"] >= 1.0 {
		return []string{"Exact enterprise ID match"}
	}
	return []string{"No matching fields"}
}
