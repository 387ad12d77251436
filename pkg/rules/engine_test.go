package rules

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"

	"github.com/mirrorlake/unify/pkg/models"
)

func newEngine(thresholds map[string]Thresholds) *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger, thresholds)
}

func TestDeriveAccountSegment(t *testing.T) {
	tests := []struct {
		name    string
		account models.AccountRecord
		want    string
	}{
		{"high revenue", models.AccountRecord{AnnualRevenue: 10_000_000}, models.SegmentEnterprise},
		{"large headcount", models.AccountRecord{EmployeeCount: 1000}, models.SegmentEnterprise},
		{"mid revenue", models.AccountRecord{AnnualRevenue: 1_000_000}, models.SegmentMidMarket},
		{"mid headcount", models.AccountRecord{EmployeeCount: 100}, models.SegmentMidMarket},
		{"small", models.AccountRecord{AnnualRevenue: 50_000, EmployeeCount: 5}, models.SegmentSMB},
		{"empty", models.AccountRecord{}, models.SegmentSMB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAccountSegment(&tt.account))
		})
	}
}

func TestContactSegment(t *testing.T) {
	assert.Equal(t, models.SegmentBusiness, ContactSegment(&models.ContactRecord{ContactType: "Business"}))
	assert.Equal(t, models.SegmentConsumer, ContactSegment(&models.ContactRecord{}))
}

func TestEngine_ThresholdsFor(t *testing.T) {
	engine := newEngine(nil)
	ctx := context.Background()

	t.Run("known segment", func(t *testing.T) {
		thresholds, segment := engine.ThresholdsFor(ctx, models.EntityKindContact, models.SegmentEnterprise)
		assert.Equal(t, models.SegmentEnterprise, segment)
		assert.Equal(t, 0.30, thresholds.MinConfidence)
		assert.Equal(t, 0.50, thresholds.ManualReviewThreshold)
	})

	t.Run("unknown contact segment falls back to consumer", func(t *testing.T) {
		thresholds, segment := engine.ThresholdsFor(ctx, models.EntityKindContact, "Wholesale")
		assert.Equal(t, models.SegmentConsumer, segment)
		assert.Equal(t, 0.20, thresholds.MinConfidence)
	})

	t.Run("unknown account segment falls back to smb", func(t *testing.T) {
		_, segment := engine.ThresholdsFor(ctx, models.EntityKindAccount, "Galactic")
		assert.Equal(t, models.SegmentSMB, segment)
	})

	t.Run("overrides replace defaults", func(t *testing.T) {
		overridden := newEngine(map[string]Thresholds{
			models.SegmentSMB: {MinConfidence: 0.5, ManualReviewThreshold: 0.9},
		})
		thresholds, _ := overridden.ThresholdsFor(ctx, models.EntityKindAccount, models.SegmentSMB)
		assert.Equal(t, 0.5, thresholds.MinConfidence)
	})
}

func TestEngine_Evaluate(t *testing.T) {
	engine := newEngine(nil)
	ctx := context.Background()

	t.Run("no candidates", func(t *testing.T) {
		decision := engine.Evaluate(ctx, Evaluation{
			Kind:         models.EntityKindContact,
			Segment:      models.SegmentConsumer,
			QualityScore: 0.9,
		})
		assert.Equal(t, models.ActionNoMatches, decision.Action)
		assert.NotEmpty(t, decision.Trail)
	})

	t.Run("low quality routes to review before any merge", func(t *testing.T) {
		decision := engine.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentConsumer,
			QualityScore:    0.5,
			CandidateScores: []float64{0.99},
		})
		assert.Equal(t, models.ActionDataQualityReview, decision.Action)
	})

	t.Run("multiple indicators when required", func(t *testing.T) {
		strict := newEngine(map[string]Thresholds{
			models.SegmentBusiness: {MinConfidence: 0.25, ManualReviewThreshold: 0.35, RequireMultipleIndicators: true},
		})
		decision := strict.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentBusiness,
			QualityScore:    0.9,
			CandidateScores: []float64{0.95, 0.8},
		})
		assert.Equal(t, models.ActionMultipleVerified, decision.Action)
	})

	t.Run("single indicator when multiple required", func(t *testing.T) {
		strict := newEngine(map[string]Thresholds{
			models.SegmentBusiness: {MinConfidence: 0.25, ManualReviewThreshold: 0.35, RequireMultipleIndicators: true},
		})
		decision := strict.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentBusiness,
			QualityScore:    0.9,
			CandidateScores: []float64{0.95, 0.5},
		})
		assert.Equal(t, models.ActionAutoMerge, decision.Action)
	})

	t.Run("auto merge at manual review threshold", func(t *testing.T) {
		decision := engine.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentConsumer,
			QualityScore:    0.9,
			CandidateScores: []float64{0.30},
		})
		assert.Equal(t, models.ActionAutoMerge, decision.Action)
	})

	t.Run("manual review band", func(t *testing.T) {
		decision := engine.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentConsumer,
			QualityScore:    0.9,
			CandidateScores: []float64{0.25},
		})
		assert.Equal(t, models.ActionManualReview, decision.Action)
	})

	t.Run("below threshold", func(t *testing.T) {
		decision := engine.Evaluate(ctx, Evaluation{
			Kind:            models.EntityKindContact,
			Segment:         models.SegmentConsumer,
			QualityScore:    0.9,
			CandidateScores: []float64{0.1},
		})
		assert.Equal(t, models.ActionBelowThreshold, decision.Action)
	})

	t.Run("monotone in best score", func(t *testing.T) {
		rank := map[string]int{
			models.ActionBelowThreshold: 0,
			models.ActionManualReview:   1,
			models.ActionAutoMerge:      2,
		}
		prev := -1
		for _, score := range []float64{0.05, 0.15, 0.22, 0.25, 0.30, 0.6, 0.99} {
			decision := engine.Evaluate(ctx, Evaluation{
				Kind:            models.EntityKindContact,
				Segment:         models.SegmentConsumer,
				QualityScore:    0.9,
				CandidateScores: []float64{score},
			})
			current := rank[decision.Action]
			assert.GreaterOrEqual(t, current, prev, "score %.2f", score)
			prev = current
		}
	})
}
