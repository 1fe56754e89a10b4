package echoapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core/document"
)

type documentApi struct {
	svc      *document.Service
	validate *validator.Validate
}

func registerDocumentAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *document.Service, validate *validator.Validate) {
	api := documentApi{svc: svc, validate: validate}

	dg := g.Group("/documentos", auth)
	dg.POST("", api.upload)
	dg.GET("", api.queryByProfessor)
}

// upload accepts a multipart form with the file under key "archivo" and the
// placement ids as plain form fields.
func (api *documentApi) upload(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.ProfessorID.Valid {
		return echo.NewHTTPError(http.StatusBadRequest, "the authenticated user has no professor profile")
	}

	fileHeader, err := ctx.FormFile("archivo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, `missing file under key "archivo"`)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	data := document.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Content:     content,
	}
	for field, dest := range map[string]*int{
		"cronogramaid":      &data.ScheduleID,
		"asignaturaid":      &data.SubjectID,
		"tipodocumentoid":   &data.DocumentTypeID,
		"semestreperiodoid": &data.SemesterPeriodID,
		"seccionid":         &data.SectionID,
	} {
		n, err := strconv.Atoi(ctx.FormValue(field))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("field %q must be an integer", field))
		}
		*dest = n
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	doc, err := api.svc.Upload(ctx.Request().Context(), usr.ProfessorID.Int, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Documento subido correctamente",
		"data":    doc,
	})
}

func (api *documentApi) queryByProfessor(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.ProfessorID.Valid {
		return echo.NewHTTPError(http.StatusBadRequest, "the authenticated user has no professor profile")
	}

	docs, err := api.svc.ByProfessor(ctx.Request().Context(), usr.ProfessorID.Int)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}
