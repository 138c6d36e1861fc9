package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths reachable without a session: probes, the
// metrics scrape endpoint and the sign-in flow.
var publicPaths = map[string]bool{
	"/health":            true,
	"/metrics":           true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
	"/api/auth/logout":   true,
}

// SessionSkipper reports whether a request bypasses RequireSession.
func SessionSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether path is reachable without a session.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
