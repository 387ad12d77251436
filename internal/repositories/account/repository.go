// Package account reads account records from the warehouse.
package account

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/mirrorlake/unify/pkg/database"
	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

var columns = []string{
	"account_id", "account_name", "account_type", "parent_account_id", "segment",
	"address", "city", "state", "zip_code", "country", "phone", "email",
	"annual_revenue", "employee_count", "enterprise_id", "status",
}

// Repository handles account record access
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new account repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListAll returns every account, ordered by account_id. Zero rows yields
// an empty slice, not an error.
func (r *Repository) ListAll(ctx context.Context) ([]*models.AccountRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("accounts")
	sb.OrderBy("account_id")

	query, args := sb.Build()
	records := []*models.AccountRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list accounts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list accounts")
	}

	return records, nil
}
