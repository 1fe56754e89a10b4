package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core/academics"
)

type academicsApi struct {
	svc      *academics.Service
	validate *validator.Validate
}

func registerAcademicsAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *academics.Service, validate *validator.Validate) {
	api := academicsApi{svc: svc, validate: validate}

	ag := g.Group("", auth)
	ag.GET("/periodos", api.queryPeriods)
	ag.GET("/niveles", api.queryLevels)
	ag.GET("/asignaturas", api.querySubjects)
	ag.GET("/docentes", api.queryProfessors)
	ag.GET("/alumnos", api.queryStudents)
	ag.GET("/secciones", api.querySections)

	// both spellings served, older clients still use the singular one
	for _, prefix := range []string{"/notas-parciales", "/nota-parcial"} {
		ng := ag.Group(prefix)
		ng.GET("", api.queryGrades)
		ng.POST("", api.createGrade)
		ng.PUT("/:id", api.updateGrade)
		ng.DELETE("/:id", api.destroyGrade)
	}
}

func (api *academicsApi) queryPeriods(ctx echo.Context) error {
	periods, err := api.svc.PeriodsWithLevels(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *academicsApi) queryLevels(ctx echo.Context) error {
	periodID, err := intQuery(ctx, "periodoId", "periodoid")
	if err != nil {
		return err
	}
	levels, err := api.svc.Levels(ctx.Request().Context(), periodID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *academicsApi) querySubjects(ctx echo.Context) error {
	spID, err := intQuery(ctx, "semestrePeriodoId", "semestreperiodoid")
	if err != nil {
		return err
	}
	sectionID, err := optionalIntQuery(ctx, "seccionId", "seccionid")
	if err != nil {
		return err
	}

	subjects, err := api.svc.Subjects(ctx.Request().Context(), spID, sectionID)
	if err != nil {
		switch errors.Cause(err) {
		case academics.ErrNoCoursesForSection, academics.ErrNoSubjectsForLevel:
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *academicsApi) queryProfessors(ctx echo.Context) error {
	if _, err := intQuery(ctx, "semestrePeriodoId", "semestreperiodoid"); err != nil {
		return err
	}
	sectionID, err := intQuery(ctx, "seccionId", "seccionid")
	if err != nil {
		return err
	}
	subjectID, err := intQuery(ctx, "asignaturaId", "asignaturaid")
	if err != nil {
		return err
	}

	professors, err := api.svc.Professors(ctx.Request().Context(), subjectID, sectionID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, professors)
}

func (api *academicsApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *academicsApi) querySections(ctx echo.Context) error {
	sections, err := api.svc.Sections(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *academicsApi) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.Grades(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicsApi) createGrade(ctx echo.Context) error {
	var data academics.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	grade, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grade)
}

func (api *academicsApi) updateGrade(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}

	grade, err := api.svc.UpdateGrade(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *academicsApi) destroyGrade(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteGrade(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
