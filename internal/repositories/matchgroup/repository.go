// Package matchgroup persists resolved match groups and their members.
package matchgroup

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

var groupColumns = []string{
	"unified_group_id", "run_id", "entity_kind", "primary_id",
	"confidence_score", "match_type", "match_reason", "quality_score",
	"recommended_action", "rule_trail", "total_in_group",
	"linked_account_ids", "total_revenue", "total_employees", "created_at",
}

// groupRow is the storage shape of a MatchGroup. The string slices live
// in jsonb columns.
type groupRow struct {
	UnifiedGroupID    string                    `db:"unified_group_id"`
	RunID             string                    `db:"run_id"`
	EntityKind        string                    `db:"entity_kind"`
	PrimaryID         string                    `db:"primary_id"`
	ConfidenceScore   float64                   `db:"confidence_score"`
	MatchType         string                    `db:"match_type"`
	MatchReason       string                    `db:"match_reason"`
	QualityScore      float64                   `db:"quality_score"`
	RecommendedAction string                    `db:"recommended_action"`
	RuleTrail         database.JSONB[[]string]  `db:"rule_trail"`
	TotalInGroup      int                       `db:"total_in_group"`
	LinkedAccountIDs  database.JSONB[[]string]  `db:"linked_account_ids"`
	TotalRevenue      float64                   `db:"total_revenue"`
	TotalEmployees    int                       `db:"total_employees"`
	CreatedAt         time.Time                 `db:"created_at"`
}

func (row *groupRow) toModel() *models.MatchGroup {
	return &models.MatchGroup{
		RunID:             row.RunID,
		EntityKind:        row.EntityKind,
		PrimaryID:         row.PrimaryID,
		UnifiedGroupID:    row.UnifiedGroupID,
		ConfidenceScore:   row.ConfidenceScore,
		MatchType:         row.MatchType,
		MatchReason:       row.MatchReason,
		QualityScore:      row.QualityScore,
		RecommendedAction: row.RecommendedAction,
		RuleTrail:         row.RuleTrail.Data,
		TotalInGroup:      row.TotalInGroup,
		LinkedAccountIDs:  row.LinkedAccountIDs.Data,
		TotalRevenue:      row.TotalRevenue,
		TotalEmployees:    row.TotalEmployees,
		CreatedAt:         row.CreatedAt,
	}
}

// memberRow is one record's membership in a group.
type memberRow struct {
	UnifiedGroupID string `db:"unified_group_id"`
	RecordID       string `db:"record_id"`
	Role           string `db:"role"`
}

// Repository handles match group persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match group repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch persists a run's groups and memberships in one
// transaction.
func (r *Repository) CreateBatch(ctx context.Context, groups []*models.MatchGroup) error {
	ctx, span := tracing.StartSpan(ctx, "matchgroup.Repository.CreateBatch")
	defer span.End()

	if len(groups) == 0 {
		return nil
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("match_groups")
	sb.Cols(groupColumns...)

	mb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	mb.InsertInto("match_group_members")
	mb.Cols("unified_group_id", "run_id", "record_id", "role")

	for _, group := range groups {
		sb.Values(
			group.UnifiedGroupID, group.RunID, group.EntityKind, group.PrimaryID,
			group.ConfidenceScore, group.MatchType, group.MatchReason, group.QualityScore,
			group.RecommendedAction, database.JSONB[[]string]{Data: group.RuleTrail}, group.TotalInGroup,
			database.JSONB[[]string]{Data: group.LinkedAccountIDs}, group.TotalRevenue, group.TotalEmployees, group.CreatedAt,
		)
		mb.Values(group.UnifiedGroupID, group.RunID, group.PrimaryID, "PRIMARY")
		for _, id := range group.DuplicateIDs {
			mb.Values(group.UnifiedGroupID, group.RunID, id, "DUPLICATE")
		}
	}

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create match groups batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match groups")
	}

	query, args = mb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create match group members batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match group members")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit match groups")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(groups)}).Debug("Created match groups batch")
	return nil
}

// ListByRun returns a run's groups with their duplicate ids restored
// from the membership table.
func (r *Repository) ListByRun(ctx context.Context, runID string) ([]*models.MatchGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "matchgroup.Repository.ListByRun")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(groupColumns...)
	sb.From("match_groups")
	sb.Where(sb.Equal("run_id", runID))
	sb.OrderBy("created_at", "unified_group_id")

	query, args := sb.Build()
	rows := []*groupRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match groups")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match groups")
	}

	mb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	mb.Select("unified_group_id", "record_id", "role")
	mb.From("match_group_members")
	mb.Where(
		mb.Equal("run_id", runID),
		mb.Equal("role", "DUPLICATE"),
	)
	mb.OrderBy("record_id")

	query, args = mb.Build()
	members := []*memberRow{}
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match group members")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match group members")
	}

	duplicates := make(map[string][]string, len(rows))
	for _, m := range members {
		duplicates[m.UnifiedGroupID] = append(duplicates[m.UnifiedGroupID], m.RecordID)
	}

	groups := make([]*models.MatchGroup, len(rows))
	for i, row := range rows {
		group := row.toModel()
		group.DuplicateIDs = duplicates[row.UnifiedGroupID]
		groups[i] = group
	}

	return groups, nil
}
