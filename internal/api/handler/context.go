package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ambulink/dispatch-core/internal/api/middleware"
)

// operatorID extracts the identity injected by the Auth middleware. Its
// presence proves the middleware ran.
func operatorID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.OperatorIDKey).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing operator identity")
	}
	return id, nil
}

// bindAndValidate binds the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
