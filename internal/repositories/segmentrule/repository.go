// Package segmentrule stores per-segment threshold configuration.
package segmentrule

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/mirrorlake/unify/pkg/database"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

var columns = []string{
	"segment", "min_confidence", "manual_review_threshold",
	"require_multiple_indicators", "updated_at",
}

var segmentRuleStruct = database.NewStruct(new(models.SegmentRule))

// Repository handles segment rule persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new segment rule repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListAll returns every stored segment rule.
func (r *Repository) ListAll(ctx context.Context) ([]*models.SegmentRule, error) {
	ctx, span := tracing.StartSpan(ctx, "segmentrule.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("segment_rules")
	sb.OrderBy("segment")

	query, args := sb.Build()
	rules := []*models.SegmentRule{}
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list segment rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list segment rules")
	}

	return rules, nil
}

// Upsert creates or replaces the rule for a segment.
func (r *Repository) Upsert(ctx context.Context, rule *models.SegmentRule) (*models.SegmentRule, error) {
	ctx, span := tracing.StartSpan(ctx, "segmentrule.Repository.Upsert")
	defer span.End()

	rule.UpdatedAt = time.Now().UTC()

	ib := segmentRuleStruct.InsertInto("segment_rules", rule)
	ub := ib.OnConflict("segment")
	ub.Set(
		ub.Assign("min_confidence", database.Excluded("min_confidence")),
		ub.Assign("manual_review_threshold", database.Excluded("manual_review_threshold")),
		ub.Assign("require_multiple_indicators", database.Excluded("require_multiple_indicators")),
		ub.Assign("updated_at", database.Excluded("updated_at")),
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"segment": rule.Segment}).Error("Failed to upsert segment rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert segment rule")
	}

	return rule, nil
}
