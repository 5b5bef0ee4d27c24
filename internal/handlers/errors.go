package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HTTPErrorHandler renders the not-found and server-error pages. Other statuses
// (405, 400 from binding) fall back to echo's default handler.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
	}

	var page string
	data := echo.Map{}
	switch {
	case code == http.StatusNotFound:
		page = "misc/404.html"
		data["path"] = c.Request().URL.Path
	case code >= http.StatusInternalServerError:
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		page = "misc/500.html"
		code = http.StatusInternalServerError
	default:
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			c.Logger().Error(err)
		}
		return
	}
	if c.Echo().Renderer == nil {
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}
	if rerr := c.Render(code, page, data); rerr != nil {
		c.Logger().Errorf("rendering %s: %v", page, rerr)
		_ = c.String(code, http.StatusText(code))
	}
}
