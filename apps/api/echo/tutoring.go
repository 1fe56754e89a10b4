package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core/schedule"
	"github.com/edukia/academia/core/tutoring"
)

type tutoringApi struct {
	svc      *tutoring.Service
	schedSvc *schedule.Service
	validate *validator.Validate
}

func registerTutoringAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	svc *tutoring.Service,
	schedSvc *schedule.Service,
	validate *validator.Validate,
) {
	api := tutoringApi{svc: svc, schedSvc: schedSvc, validate: validate}

	tg := g.Group("/tutorias", auth)
	tg.GET("/candidatos", api.queryCandidates)
	tg.GET("/historial", api.queryHistory)
	tg.POST("", api.assign)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)

	dg := g.Group("/tutoria-detalle", auth)
	dg.GET("/estados", api.queryStatuses)
	dg.GET("", api.queryDetails)
	dg.POST("", api.createDetail)
	dg.PUT("/:id", api.updateDetail)
	dg.DELETE("/:id", api.destroyDetail)

	rg := g.Group("/reportes-tutoria", auth)
	rg.GET("/asignaturas", api.queryTeacherSubjects)
	rg.GET("/formatos", api.queryFormats)
	rg.GET("/tipos-documento", api.queryDocumentTypes)
	rg.GET("/estudiantes-riesgo", api.queryAtRiskStudents)
	rg.POST("/registrar", api.registerReport)
}

func (api *tutoringApi) queryCandidates(ctx echo.Context) error {
	spID, err := intQuery(ctx, "semestrePeriodoId", "semestreperiodoid")
	if err != nil {
		return err
	}
	candidates, err := api.svc.Candidates(ctx.Request().Context(), spID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, candidates)
}

func (api *tutoringApi) queryHistory(ctx echo.Context) error {
	history, err := api.svc.History(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, history)
}

func (api *tutoringApi) assign(ctx echo.Context) error {
	var data tutoring.NewTutoring
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTutoring")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	tut, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tut)
}

func (api *tutoringApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data tutoring.UpdateTutoring
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTutoring")
	}

	tut, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tut)
}

func (api *tutoringApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Tutoría eliminada"})
}

// Sessions

func (api *tutoringApi) queryStatuses(ctx echo.Context) error {
	statuses, err := api.svc.Statuses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statuses)
}

func (api *tutoringApi) queryDetails(ctx echo.Context) error {
	tutoringID, err := intQuery(ctx, "tutoriaid", "tutoriaId")
	if err != nil {
		return err
	}
	details, err := api.svc.Details(ctx.Request().Context(), tutoringID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *tutoringApi) createDetail(ctx echo.Context) error {
	var data tutoring.NewDetail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDetail")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	det, err := api.svc.CreateDetail(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, det)
}

func (api *tutoringApi) updateDetail(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data tutoring.UpdateDetail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDetail")
	}

	det, err := api.svc.UpdateDetail(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, det)
}

func (api *tutoringApi) destroyDetail(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteDetail(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Reports

// queryTeacherSubjects serves the report screen; the professor defaults to the
// authenticated user but coordinators may ask for another one.
func (api *tutoringApi) queryTeacherSubjects(ctx echo.Context) error {
	spID, err := intQuery(ctx, "semestreperiodoid", "semestrePeriodoId")
	if err != nil {
		return err
	}
	professorID, err := api.resolveProfessor(ctx)
	if err != nil {
		return err
	}

	subjects, err := api.svc.TeacherSubjects(ctx.Request().Context(), professorID, spID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *tutoringApi) queryFormats(ctx echo.Context) error {
	formats, err := api.svc.Formats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, formats)
}

func (api *tutoringApi) queryDocumentTypes(ctx echo.Context) error {
	types, err := api.schedSvc.DocumentTypes(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *tutoringApi) queryAtRiskStudents(ctx echo.Context) error {
	spID, err := intQuery(ctx, "semestreperiodoid", "semestrePeriodoId")
	if err != nil {
		return err
	}
	professorID, err := api.resolveProfessor(ctx)
	if err != nil {
		return err
	}

	students, err := api.svc.AtRiskStudents(ctx.Request().Context(), spID, professorID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *tutoringApi) registerReport(ctx echo.Context) error {
	var data tutoring.RegisterReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterReport")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	tut, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tut)
}

func (api *tutoringApi) resolveProfessor(ctx echo.Context) (int, error) {
	if usr, err := getContextUser(ctx); err == nil && usr.ProfessorID.Valid {
		return usr.ProfessorID.Int, nil
	}
	return intQuery(ctx, "profesorid", "profesorId")
}
