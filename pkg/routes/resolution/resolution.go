// Package resolution exposes resolution run endpoints.
package resolution

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/service"
	"github.com/mirrorlake/unify/pkg/tracing"
)

// Register registers resolution routes
func Register(g *echo.Group) {
	g.POST("/:kind/runs", TriggerRun)
	g.GET("/:kind/runs/latest", LatestRun)
	g.GET("/runs/:id/groups", ListRunGroups)
}

// TriggerRun starts a resolution run for one entity kind and returns the
// run summary once it completes.
func TriggerRun(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "resolution_handler.TriggerRun")
	defer span.End()

	kind := models.EntityKind(c.Param("kind"))
	if kind != models.EntityKindContact && kind != models.EntityKindAccount {
		return httperror.NewHTTPError(http.StatusBadRequest, "kind must be contacts or accounts")
	}

	ctx, svc, err := ectoinject.GetContext[*service.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.RunResolution(ctx, kind)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// LatestRun returns the most recent run for an entity kind.
func LatestRun(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "resolution_handler.LatestRun")
	defer span.End()

	kind := models.EntityKind(c.Param("kind"))
	if kind != models.EntityKindContact && kind != models.EntityKindAccount {
		return httperror.NewHTTPError(http.StatusBadRequest, "kind must be contacts or accounts")
	}

	ctx, svc, err := ectoinject.GetContext[*service.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	run, err := svc.LatestRun(ctx, kind)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, run)
}

// ListRunGroups returns the match groups persisted for a run.
func ListRunGroups(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "resolution_handler.ListRunGroups")
	defer span.End()

	id := c.Param("id")

	ctx, svc, err := ectoinject.GetContext[*service.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	groups, err := svc.ListGroups(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, groups)
}
