package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/user"
)

type authApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	// un-authed endpoints; logout validates the presented token itself
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)

	ag := g.Group("/auth", auth)
	ag.GET("/validate", api.validateSession)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, token, err := api.svc.Login(ctx.Request().Context(), data.Username, data.Password, requestMeta(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Message: "Login exitoso",
		User:    usr,
		Token:   token,
	})
}

func (api *authApi) validateSession(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Sesión válida",
		"user":    usr,
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if err := api.svc.Logout(ctx.Request().Context(), header); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Sesión cerrada"})
}

type userAdminApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAdminAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userAdminApi{svc: svc, validate: validate}

	ug := g.Group("/gestion-usuarios", auth)
	ug.GET("/roles", api.queryRoles)
	ug.GET("/docentes", api.queryProfessors)
	ug.GET("/usuarios", api.query)
	ug.POST("/usuarios", api.create)
	ug.PUT("/usuarios/:id", api.update)
	ug.DELETE("/usuarios/:id", api.destroy)
}

func (api *userAdminApi) queryRoles(ctx echo.Context) error {
	roles, err := api.svc.Roles(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *userAdminApi) queryProfessors(ctx echo.Context) error {
	options, err := api.svc.ProfessorOptions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, options)
}

func (api *userAdminApi) query(ctx echo.Context) error {
	users, err := api.svc.Users(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userAdminApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"loginid": id})
}

func (api *userAdminApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Usuario actualizado"})
}

func (api *userAdminApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Username string `json:"usuario" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Message string    `json:"message"`
		User    user.User `json:"user"`
		Token   string    `json:"token"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}
