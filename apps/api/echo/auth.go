package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core/user"
)

const contextUserKey = "user"

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// bearerAuthMiddleware validates the Authorization header against the session
// store and attaches the enriched principal to the request context. Every
// failure mode surfaces as user.ErrInvalidToken (-> 401).
func bearerAuthMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			usr, err := svc.ValidateBearer(ctx.Request().Context(), header)
			if err != nil {
				return err
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

func requestMeta(ctx echo.Context) user.RequestMeta {
	return user.RequestMeta{
		IP:        ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}
}
