package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFCookie holds the token the submitted value is compared against.
	CSRFCookie = "_csrf"
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "csrf_token"
	csrfKey   = "csrf"
)

// CSRF rejects unsafe requests whose X-CSRF-Token header or csrf_token field
// does not match the token cookie.
func CSRF() echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:" + CSRFField,
		ContextKey:     csrfKey,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// CSRFToken returns the token to embed in forms rendered for c.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfKey).(string)
	return token
}
