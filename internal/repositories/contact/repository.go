// Package contact reads contact records from the warehouse.
package contact

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
	"contact_id", "first_name", "last_name", "email", "phone", "mobile_phone",
	"contact_type", "account_id", "job_title", "department",
	"address_line1", "city", "state", "zip_code", "status",
}

// Repository handles contact record access
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListAll returns every contact, ordered by contact_id. The primary key
// guarantees the unique-id precondition the resolver depends on. Zero
// rows yields an empty slice, not an error.
func (r *Repository) ListAll(ctx context.Context) ([]*models.ContactRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("contacts")
	sb.OrderBy("contact_id")

	query, args := sb.Build()
	records := []*models.ContactRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list contacts")
	}

	return records, nil
}
