package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/pagination"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	PostsPerPage       = 4
	FollowPostsPerPage = 10

	// IndexCachePrefix prefixes every cached home page.
	IndexCachePrefix = "index_page"
)

// FeedHandler serves the post listings: home, group, profile and the personalized feed.
type FeedHandler struct {
	postRepository   repositories.PostRepository
	groupRepository  repositories.GroupRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	pageCache        cache.PageCache
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	pageCache cache.PageCache,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		groupRepository:  groupRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
		pageCache:        pageCache,
	}
}

// RegisterFeedRoutes registers the listing routes. login guards the personalized feed.
func (h *FeedHandler) RegisterFeedRoutes(e *echo.Echo, login echo.MiddlewareFunc) {
	e.GET("/", h.Index)
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/follow/", h.FollowIndex, login)
	e.GET("/:username/", h.Profile)
}

func (h *FeedHandler) listPosts(ctx context.Context, raw string, perPage int, filter repositories.PostFilter) (*pagination.Page[models.Post], error) {
	return pagination.Paginate(ctx, raw, perPage,
		func(ctx context.Context) (int64, error) {
			return h.postRepository.CountPosts(ctx, filter)
		},
		func(ctx context.Context, offset, limit int) ([]models.Post, error) {
			return h.postRepository.ListPosts(ctx, filter, offset, limit)
		},
	)
}

// Index renders every post, newest first. The rendered page is cached per viewer and URI.
func (h *FeedHandler) Index(c echo.Context) error {
	key := indexCacheKey(c)
	if body, ok := h.pageCache.Get(key); ok {
		return c.HTMLBlob(http.StatusOK, body)
	}

	page, err := h.listPosts(c.Request().Context(), c.QueryParam("page"), PostsPerPage, repositories.PostFilter{})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.Echo().Renderer.Render(&buf, "index.html", echo.Map{"page": page}, c); err != nil {
		return err
	}
	h.pageCache.Set(key, buf.Bytes())
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func indexCacheKey(c echo.Context) string {
	who := "anonymous"
	if v := viewer(c); v != nil {
		who = v.Username
	}
	return IndexCachePrefix + ":" + who + ":" + c.Request().URL.RequestURI()
}

// GroupPosts lists the posts of the group identified by :slug.
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groupRepository.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return notFoundOr(err, "group not found")
	}

	page, err := h.listPosts(ctx, c.QueryParam("page"), PostsPerPage, repositories.PostFilter{GroupID: &group.ID})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "group.html", echo.Map{"group": group, "page": page})
}

// Profile lists the posts of :username along with the viewer's follow state.
func (h *FeedHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err, "user not found")
	}

	page, err := h.listPosts(ctx, c.QueryParam("page"), PostsPerPage, repositories.PostFilter{AuthorID: &author.ID})
	if err != nil {
		return err
	}

	following, err := isFollowing(ctx, h.followRepository, viewer(c), author)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "profile.html", echo.Map{
		"author":      author,
		"page":        page,
		"posts_count": page.Count,
		"following":   following,
		"can_follow":  canFollow(viewer(c), author),
	})
}

// FollowIndex lists posts by the authors the viewer follows.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	v := viewer(c)
	page, err := h.listPosts(c.Request().Context(), c.QueryParam("page"), FollowPostsPerPage, repositories.PostFilter{FollowerID: &v.UserID})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "follow.html", echo.Map{"page": page})
}

func isFollowing(ctx context.Context, follows repositories.FollowRepository, v *models.JwtCustomClaims, author *models.User) (bool, error) {
	if v == nil {
		return false, nil
	}
	return follows.IsFollowing(ctx, v.UserID, author.Username)
}
