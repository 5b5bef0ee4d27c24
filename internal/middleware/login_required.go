package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// LoginURL is where anonymous requests to protected routes are sent.
const LoginURL = "/auth/login/"

// LoginRequired redirects anonymous requests to the login page with a next parameter
// pointing back at the original request URI.
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			return c.Redirect(http.StatusFound, LoginRedirectURL(c.Request().RequestURI))
		}
	}
}

// LoginRedirectURL builds "/auth/login/?next=<escaped uri>", leaving slashes readable.
func LoginRedirectURL(requestURI string) string {
	next := strings.ReplaceAll(url.QueryEscape(requestURI), "%2F", "/")
	return LoginURL + "?next=" + next
}
