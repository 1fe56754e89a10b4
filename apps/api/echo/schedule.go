package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	cg := g.Group("/cronograma", auth)
	cg.GET("/periodos", api.queryPeriods)

	cg.GET("/tipo-documento", api.queryDocumentTypes)
	cg.POST("/tipo-documento", api.createDocumentType)
	cg.PUT("/tipo-documento/:id", api.updateDocumentType)
	cg.DELETE("/tipo-documento/:id", api.destroyDocumentType)

	cg.GET("", api.queryEntries)
	cg.POST("", api.createEntry)
	cg.PUT("/:id", api.updateEntry)
	cg.DELETE("/:id", api.destroyEntry)
}

func (api *scheduleApi) queryPeriods(ctx echo.Context) error {
	periods, err := api.svc.Periods(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *scheduleApi) queryDocumentTypes(ctx echo.Context) error {
	types, err := api.svc.DocumentTypes(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *scheduleApi) createDocumentType(ctx echo.Context) error {
	var data schedule.NewDocumentType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocumentType")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	dt, err := api.svc.CreateDocumentType(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dt)
}

func (api *scheduleApi) updateDocumentType(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data schedule.UpdateDocumentType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDocumentType")
	}

	dt, err := api.svc.UpdateDocumentType(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dt)
}

func (api *scheduleApi) destroyDocumentType(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteDocumentType(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) queryEntries(ctx echo.Context) error {
	entries, err := api.svc.Entries(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *scheduleApi) createEntry(ctx echo.Context) error {
	var data schedule.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	entry, err := api.svc.CreateEntry(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *scheduleApi) updateEntry(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data schedule.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}

	entry, err := api.svc.UpdateEntry(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *scheduleApi) destroyEntry(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteEntry(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
