package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on each request's context and runs the
// handler on the request goroutine. Handlers observe the deadline through
// the context. A handler that fails with the deadline error, or returns
// after the deadline without writing anything, yields 504. A response the
// handler already wrote is left as is.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if c.Response().Committed {
				return err
			}
			expired := errors.Is(ctx.Err(), context.DeadlineExceeded)
			if errors.Is(err, context.DeadlineExceeded) || (err == nil && expired) {
				return echo.NewHTTPError(http.StatusGatewayTimeout, "Request timed out").SetInternal(err)
			}
			return err
		}
	}
}
