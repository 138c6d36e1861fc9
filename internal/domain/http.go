package domain

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// BindBody decodes the request body into v. Path and query parameters are
// left alone so patch types only see the JSON payload.
func BindBody(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			return InvalidInput(err)
		}
		if he.Code != http.StatusBadRequest {
			return he
		}
		if he.Internal != nil {
			return InvalidInput(he.Internal)
		}
		return InvalidInput(errors.New("malformed request body"))
	}
	return nil
}

// InvalidInput maps a rejected input to 400. Field problems are listed
// under "errors".
func InvalidInput(err error) error {
	body := map[string]any{"message": "Invalid input"}
	if ve, ok := IsValidation(err); ok {
		body["errors"] = ve.Fields
	} else if err != nil {
		body["errors"] = []FieldError{{Field: "body", Message: err.Error()}}
	}
	return echo.NewHTTPError(http.StatusBadRequest, body)
}

// NotFound answers 404 with the given message.
func NotFound(message string) error {
	return echo.NewHTTPError(http.StatusNotFound, message)
}

// ParamID parses a positive integer path parameter. what names the record
// kind in the error message ("Invalid patient ID").
func ParamID(c echo.Context, name, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// Conflict maps ErrReferenced to 409; other errors become 500.
func Conflict(err error) error {
	if errors.Is(err, ErrReferenced) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
