package echoapi

import (
	stderrors "errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/document"
	"github.com/edukia/academia/core/schedule"
	"github.com/edukia/academia/core/tutoring"
	"github.com/edukia/academia/core/user"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. signalShutdown is called whenever a core.shutdown
// error is caught so the Server can stop gracefully.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		default:
			switch {
			case isUnauthorized(err):
				code = http.StatusUnauthorized
				message = origErr.Error()
			case isNotFound(err):
				code = http.StatusNotFound
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if ctxUsr, cErr := getContextUser(ctx); cErr == nil {
					usr = ctxUsr
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func isUnauthorized(err error) bool {
	return stderrors.Is(err, user.ErrInvalidCredentials) || stderrors.Is(err, user.ErrInvalidToken)
}

func isNotFound(err error) bool {
	for _, sentinel := range []error{
		user.ErrNotFound,
		academics.ErrNotFound,
		tutoring.ErrNotFound,
		schedule.ErrNotFound,
		document.ErrNotFound,
	} {
		if stderrors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
