package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// viewer is the authenticated requester, or nil.
func viewer(c echo.Context) *models.JwtCustomClaims {
	return middleware.CurrentUser(c)
}

// notFoundOr maps a missing record to a 404 and passes every other error through.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// postID parses the :post_id path parameter. Anything but a positive integer is a 404.
func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return uint(id), nil
}

func postURL(username string, id uint) string {
	return fmt.Sprintf("/%s/%d/", username, id)
}

func profileURL(username string) string {
	return "/" + username + "/"
}

// canFollow reports whether the follow controls apply to author for this viewer.
func canFollow(v *models.JwtCustomClaims, author *models.User) bool {
	return v != nil && v.UserID != author.ID
}
