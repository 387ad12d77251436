// Package segmentrule exposes segment threshold configuration endpoints.
package segmentrule

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/service"
	"github.com/mirrorlake/unify/pkg/tracing"
)

var validate = validator.New()

// Register registers segment rule routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.PUT("/:segment", Update)
}

// List returns every segment's thresholds, stored values merged over
// defaults.
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "segmentrule_handler.List")
	defer span.End()

	ctx, svc, err := ectoinject.GetContext[*service.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rules, err := svc.ListSegmentRules(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rules)
}

// UpdateSegmentRuleRequest is the request body for updating a segment's
// thresholds.
type UpdateSegmentRuleRequest struct {
	MinConfidence             float64 `json:"min_confidence" validate:"gte=0,lte=1"`
	ManualReviewThreshold     float64 `json:"manual_review_threshold" validate:"gte=0,lte=1,gtefield=MinConfidence"`
	RequireMultipleIndicators bool    `json:"require_multiple_indicators"`
}

// Update stores the thresholds for a segment
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "segmentrule_handler.Update")
	defer span.End()

	segment := c.Param("segment")
	if segment == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "segment is required")
	}

	var req UpdateSegmentRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*service.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rule, err := svc.UpsertSegmentRule(ctx, &models.SegmentRule{
		Segment:                   segment,
		MinConfidence:             req.MinConfidence,
		ManualReviewThreshold:     req.ManualReviewThreshold,
		RequireMultipleIndicators: req.RequireMultipleIndicators,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rule)
}
