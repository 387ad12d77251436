package models

import "time"

// MatchCandidate is an ephemeral pairing produced during candidate search.
// It is consumed by the resolver and never persisted on its own.
type MatchCandidate struct {
	PrimaryID   string             `json:"primary_id"`
	CandidateID string             `json:"candidate_id"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores,omitempty"`
}

// MatchType buckets a group's overall confidence.
const (
	MatchTypeExact         = "Exact Match"
	MatchTypeProbabilistic = "Probabilistic Match"
	MatchTypeFuzzy         = "Fuzzy Match"
)

// Recommended actions produced by the business rule engine, in decision
// order.
const (
	ActionNoMatches         = "No Matches Found"
	ActionDataQualityReview = "Data Quality Review Required"
	ActionMultipleVerified  = "Multiple Indicators Verified - Auto-Merge"
	ActionAutoMerge         = "High Confidence - Auto-Merge"
	ActionManualReview      = "Manual Review Required"
	ActionBelowThreshold    = "No Action - Below Threshold"
)

// MatchGroup is the output unit of a resolution run: one surviving primary
// record plus the duplicates merged into it. UnifiedGroupID is minted fresh
// per group and is independent of any source record id.
type MatchGroup struct {
	RunID             string    `json:"run_id" db:"run_id"`
	EntityKind        string    `json:"entity_kind" db:"entity_kind"`
	PrimaryID         string    `json:"primary_id" db:"primary_id"`
	DuplicateIDs      []string  `json:"duplicate_ids" db:"-"`
	UnifiedGroupID    string    `json:"unified_group_id" db:"unified_group_id"`
	ConfidenceScore   float64   `json:"confidence_score" db:"confidence_score"`
	MatchType         string    `json:"match_type" db:"match_type"`
	MatchReason       string    `json:"match_reason" db:"match_reason"`
	QualityScore      float64   `json:"quality_score" db:"quality_score"`
	RecommendedAction string    `json:"recommended_action" db:"recommended_action"`
	RuleTrail         []string  `json:"rule_trail" db:"-"`
	TotalInGroup      int       `json:"total_in_group" db:"total_in_group"`
	LinkedAccountIDs  []string  `json:"linked_account_ids,omitempty" db:"-"`
	TotalRevenue      float64   `json:"total_revenue,omitempty" db:"total_revenue"`
	TotalEmployees    int       `json:"total_employees,omitempty" db:"total_employees"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// AllMemberIDs returns the primary id followed by every duplicate id.
func (g *MatchGroup) AllMemberIDs() []string {
	ids := make([]string, 0, len(g.DuplicateIDs)+1)
	ids = append(ids, g.PrimaryID)
	ids = append(ids, g.DuplicateIDs...)
	return ids
}

// ResolutionRun records one execution of the resolver over a batch.
type ResolutionRun struct {
	ID             string     `json:"id" db:"id"`
	EntityKind     string     `json:"entity_kind" db:"entity_kind"`
	Status         string     `json:"status" db:"status"`
	TotalRecords   int        `json:"total_records" db:"total_records"`
	MatchedRecords int        `json:"matched_records" db:"matched_records"`
	GroupCount     int        `json:"group_count" db:"group_count"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ResolutionRun status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SegmentRule is a per-segment threshold triple. These are configuration,
// stored as data so they can be tuned without a redeploy.
type SegmentRule struct {
	Segment                   string    `json:"segment" db:"segment"`
	MinConfidence             float64   `json:"min_confidence" db:"min_confidence"`
	ManualReviewThreshold     float64   `json:"manual_review_threshold" db:"manual_review_threshold"`
	RequireMultipleIndicators bool      `json:"require_multiple_indicators" db:"require_multiple_indicators"`
	UpdatedAt                 time.Time `json:"updated_at" db:"updated_at"`
}
