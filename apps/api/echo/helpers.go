package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// intQuery reads the first present query parameter among names. A missing or
// non-numeric value is a 400.
func intQuery(ctx echo.Context, names ...string) (int, error) {
	for _, name := range names {
		raw := ctx.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("parameter %q must be an integer", name))
		}
		return n, nil
	}
	return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("missing parameter %q", names[0]))
}

// optionalIntQuery is intQuery without the missing-parameter error; absence
// reads as 0.
func optionalIntQuery(ctx echo.Context, names ...string) (int, error) {
	for _, name := range names {
		if ctx.QueryParam(name) != "" {
			return intQuery(ctx, name)
		}
	}
	return 0, nil
}

func intParam(ctx echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("parameter %q must be an integer", name))
	}
	return n, nil
}
