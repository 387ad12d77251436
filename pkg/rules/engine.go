// Package rules applies per-segment merge policy to scored match
// candidates. Thresholds are configuration, not code: the engine is
// constructed from whatever threshold set the caller loaded, falling
// back to the built-in defaults.
package rules

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/mirrorlake/unify/pkg/models"
)

// MinQualityScore is the completeness floor below which a group is routed
// to data quality review regardless of match confidence.
const MinQualityScore = 0.6

// multipleIndicatorScore is the per-candidate score a candidate must beat
// to count as an independent match indicator.
const multipleIndicatorScore = 0.7

// Thresholds is the per-segment policy triple.
type Thresholds struct {
	MinConfidence             float64
	ManualReviewThreshold     float64
	RequireMultipleIndicators bool
}

// DefaultThresholds returns the built-in segment policy table.
func DefaultThresholds() map[string]Thresholds {
	return map[string]Thresholds{
		models.SegmentConsumer:   {MinConfidence: 0.20, ManualReviewThreshold: 0.30},
		models.SegmentBusiness:   {MinConfidence: 0.25, ManualReviewThreshold: 0.35},
		models.SegmentPartner:    {MinConfidence: 0.20, ManualReviewThreshold: 0.30},
		models.SegmentEnterprise: {MinConfidence: 0.30, ManualReviewThreshold: 0.50},
		models.SegmentMidMarket:  {MinConfidence: 0.25, ManualReviewThreshold: 0.40},
		models.SegmentSMB:        {MinConfidence: 0.20, ManualReviewThreshold: 0.30},
	}
}

// Evaluation is what the engine needs to know about one primary record
// and its candidate set.
type Evaluation struct {
	Kind            models.EntityKind
	Segment         string
	QualityScore    float64
	CandidateScores []float64 // sorted descending by the resolver
}

// Decision is the engine's verdict plus the trail of rules it walked.
type Decision struct {
	Action     string
	Thresholds Thresholds
	Trail      []string
}

// Engine evaluates the segment rule ladder. Rules are checked in order
// and the first match wins.
type Engine struct {
	thresholds map[string]Thresholds
	log        ectologger.Logger
}

// NewEngine creates an Engine from the given threshold table. Segments
// missing from the table pick up the defaults; a nil table means
// defaults only.
func NewEngine(log ectologger.Logger, thresholds map[string]Thresholds) *Engine {
	merged := DefaultThresholds()
	for segment, t := range thresholds {
		merged[segment] = t
	}
	return &Engine{
		thresholds: merged,
		log:        log,
	}
}

// ContactSegment maps a contact's type to its rule segment. Blank types
// resolve to Consumer.
func ContactSegment(c *models.ContactRecord) string {
	if c.ContactType == "" {
		return models.SegmentConsumer
	}
	return c.ContactType
}

// DeriveAccountSegment buckets an account by revenue and headcount.
func DeriveAccountSegment(a *models.AccountRecord) string {
	if a.AnnualRevenue >= 10_000_000 || a.EmployeeCount >= 1000 {
		return models.SegmentEnterprise
	}
	if a.AnnualRevenue >= 1_000_000 || a.EmployeeCount >= 100 {
		return models.SegmentMidMarket
	}
	return models.SegmentSMB
}

// ThresholdsFor resolves the policy for a segment. Unknown segments fall
// back to the kind's default segment with a warning, never an error.
func (e *Engine) ThresholdsFor(ctx context.Context, kind models.EntityKind, segment string) (Thresholds, string) {
	if t, ok := e.thresholds[segment]; ok {
		return t, segment
	}

	fallback := models.SegmentConsumer
	if kind == models.EntityKindAccount {
		fallback = models.SegmentSMB
	}
	e.log.WithContext(ctx).WithFields(map[string]any{
		"segment":  segment,
		"fallback": fallback,
	}).Warn("Unknown segment, using fallback thresholds")

	return e.thresholds[fallback], fallback
}

// Evaluate walks the decision ladder for one primary record.
func (e *Engine) Evaluate(ctx context.Context, eval Evaluation) Decision {
	thresholds, segment := e.ThresholdsFor(ctx, eval.Kind, eval.Segment)

	trail := []string{fmt.Sprintf("segment=%s min_confidence=%.2f manual_review=%.2f", segment, thresholds.MinConfidence, thresholds.ManualReviewThreshold)}
	decide := func(action string) Decision {
		return Decision{Action: action, Thresholds: thresholds, Trail: append(trail, "action: "+action)}
	}

	if len(eval.CandidateScores) == 0 {
		trail = append(trail, "no candidates")
		return decide(models.ActionNoMatches)
	}
	trail = append(trail, fmt.Sprintf("candidates=%d best=%.3f", len(eval.CandidateScores), eval.CandidateScores[0]))

	if eval.QualityScore < MinQualityScore {
		trail = append(trail, fmt.Sprintf("quality %.3f below %.2f", eval.QualityScore, MinQualityScore))
		return decide(models.ActionDataQualityReview)
	}
	trail = append(trail, fmt.Sprintf("quality %.3f acceptable", eval.QualityScore))

	if thresholds.RequireMultipleIndicators {
		strong := 0
		for _, score := range eval.CandidateScores {
			if score > multipleIndicatorScore {
				strong++
			}
		}
		if strong >= 2 {
			trail = append(trail, fmt.Sprintf("%d indicators above %.2f", strong, multipleIndicatorScore))
			return decide(models.ActionMultipleVerified)
		}
		trail = append(trail, fmt.Sprintf("only %d indicators above %.2f", strong, multipleIndicatorScore))
	}

	best := eval.CandidateScores[0]
	if best >= thresholds.ManualReviewThreshold {
		trail = append(trail, fmt.Sprintf("best %.3f at or above manual review threshold", best))
		return decide(models.ActionAutoMerge)
	}
	if best >= thresholds.MinConfidence {
		trail = append(trail, fmt.Sprintf("best %.3f at or above min confidence", best))
		return decide(models.ActionManualReview)
	}

	trail = append(trail, fmt.Sprintf("best %.3f below min confidence", best))
	return decide(models.ActionBelowThreshold)
}
