package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler serves the standalone comment form.
type CommentHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(e *echo.Echo, login echo.MiddlewareFunc) {
	e.GET("/:username/:post_id/comment/", h.AddComment, login)
	e.POST("/:username/:post_id/comment/", h.AddComment, login)
}

// AddComment stores a comment on the post and returns to it; invalid input re-renders the form.
func (h *CommentHandler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByAuthor(ctx, username, id)
	if err != nil {
		return notFoundOr(err, "post not found")
	}

	form := forms.NewCommentForm()
	data := echo.Map{
		"post":   post,
		"form":   form,
		"action": c.Request().URL.Path,
	}
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "new_comment.html", data)
	}

	if err := c.Bind(&form.CommentInput); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	ok, err := form.Validate(c.Echo().Validator)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusOK, "new_comment.html", data)
	}

	if err := h.commentRepository.CreateComment(ctx, form.Comment(post, viewer(c).UserID)); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, postURL(username, post.ID))
}
