// Package resolutionrun tracks resolution run bookkeeping.
package resolutionrun

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/mirrorlake/unify/pkg/database"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

var columns = []string{
	"id", "entity_kind", "status", "total_records", "matched_records",
	"group_count", "started_at", "completed_at",
}

// Repository handles resolution run persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new resolution run repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records the start of a run.
func (r *Repository) Create(ctx context.Context, entityKind models.EntityKind) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "resolutionrun.Repository.Create")
	defer span.End()

	run := &models.ResolutionRun{
		ID:         uuid.New().String(),
		EntityKind: string(entityKind),
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("resolution_runs")
	sb.Cols("id", "entity_kind", "status", "started_at")
	sb.Values(run.ID, run.EntityKind, run.Status, run.StartedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create resolution run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create resolution run")
	}

	return run, nil
}

// Complete marks a run finished with its final counts.
func (r *Repository) Complete(ctx context.Context, run *models.ResolutionRun) error {
	ctx, span := tracing.StartSpan(ctx, "resolutionrun.Repository.Complete")
	defer span.End()

	now := time.Now().UTC()
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &now

	return r.update(ctx, run)
}

// Fail marks a run failed.
func (r *Repository) Fail(ctx context.Context, run *models.ResolutionRun) error {
	ctx, span := tracing.StartSpan(ctx, "resolutionrun.Repository.Fail")
	defer span.End()

	now := time.Now().UTC()
	run.Status = models.RunStatusFailed
	run.CompletedAt = &now

	return r.update(ctx, run)
}

func (r *Repository) update(ctx context.Context, run *models.ResolutionRun) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("resolution_runs")
	ub.Set(
		ub.Assign("status", run.Status),
		ub.Assign("total_records", run.TotalRecords),
		ub.Assign("matched_records", run.MatchedRecords),
		ub.Assign("group_count", run.GroupCount),
		ub.Assign("completed_at", run.CompletedAt),
	)
	ub.Where(ub.Equal("id", run.ID))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID}).Error("Failed to update resolution run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update resolution run")
	}

	return nil
}

// Get retrieves a run by id.
func (r *Repository) Get(ctx context.Context, id string) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "resolutionrun.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("resolution_runs")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var run models.ResolutionRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("resolution run %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get resolution run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get resolution run")
	}

	return &run, nil
}

// Latest returns the most recent run for an entity kind.
func (r *Repository) Latest(ctx context.Context, entityKind models.EntityKind) (*models.ResolutionRun, error) {
	ctx, span := tracing.StartSpan(ctx, "resolutionrun.Repository.Latest")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("resolution_runs")
	sb.Where(sb.Equal("entity_kind", string(entityKind)))
	sb.OrderBy("started_at DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var run models.ResolutionRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no runs for %s", entityKind))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get latest resolution run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get latest resolution run")
	}

	return &run, nil
}
