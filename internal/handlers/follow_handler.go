package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow and unfollow actions
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(e *echo.Echo, login echo.MiddlewareFunc) {
	e.POST("/:username/follow/", h.ProfileFollow, login)
	e.POST("/:username/unfollow/", h.ProfileUnfollow, login)
}

// ProfileFollow subscribes the viewer to :username. Following twice or following
// oneself changes nothing; both end on the profile.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err, "user not found")
	}

	v := viewer(c)
	if v.UserID != author.ID {
		created, err := h.followRepository.FollowAuthor(ctx, v.UserID, author.ID)
		if err != nil {
			return err
		}
		if created {
			c.Logger().Infof("%s now follows %s", v.Username, author.Username)
		}
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow removes the viewer's subscription to :username if there is one.
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	username := c.Param("username")
	if err := h.followRepository.UnfollowAuthor(c.Request().Context(), viewer(c).UserID, username); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, profileURL(username))
}
