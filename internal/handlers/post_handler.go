package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post creation, the detail page and editing.
type PostHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
	followRepository  repositories.FollowRepository
	userRepository    repositories.UserRepository
	images            storage.ImageStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	commentRepo repositories.CommentRepository,
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	images storage.ImageStore,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
		followRepository:  followRepo,
		userRepository:    userRepo,
		images:            images,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, login echo.MiddlewareFunc) {
	e.GET("/new/", h.NewPost, login)
	e.POST("/new/", h.NewPost, login)
	e.GET("/:username/:post_id/", h.PostView)
	e.POST("/:username/:post_id/", h.PostView)
	e.GET("/:username/:post_id/edit/", h.PostEdit, login)
	e.POST("/:username/:post_id/edit/", h.PostEdit, login)
}

// NewPost renders the authoring form and publishes valid submissions.
func (h *PostHandler) NewPost(c echo.Context) error {
	ctx := c.Request().Context()
	groups, err := h.groupRepository.ListGroups(ctx)
	if err != nil {
		return err
	}

	form := forms.NewPostForm(groups, nil)
	if c.Request().Method != http.MethodPost {
		return h.renderPostForm(c, form, nil)
	}

	if err := bindPostForm(c, form); err != nil {
		return err
	}
	ok, err := form.Validate(ctx, c.Echo().Validator, h.groupRepository)
	if err != nil {
		return err
	}
	if !ok {
		return h.renderPostForm(c, form, nil)
	}

	post := &models.Post{AuthorID: viewer(c).UserID}
	form.Apply(post)
	if post.Image, err = h.storeUpload(ctx, form); err != nil {
		return err
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return err
	}
	c.Logger().Infof("post %d created by %s", post.ID, viewer(c).Username)
	return c.Redirect(http.StatusFound, "/")
}

// PostView shows a post with its comments. A POST carrying a valid comment stores it first;
// the page always comes back with an empty comment form.
func (h *PostHandler) PostView(c echo.Context) error {
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

	v := viewer(c)
	if c.Request().Method == http.MethodPost {
		if v == nil {
			return c.Redirect(http.StatusFound, middleware.LoginRedirectURL(c.Request().RequestURI))
		}
		submitted := forms.NewCommentForm()
		if err := c.Bind(&submitted.CommentInput); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		ok, err := submitted.Validate(c.Echo().Validator)
		if err != nil {
			return err
		}
		if ok {
			if err := h.commentRepository.CreateComment(ctx, submitted.Comment(post, v.UserID)); err != nil {
				return err
			}
		}
	}

	comments, err := h.commentRepository.ListCommentsByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	postsCount, err := h.postRepository.CountPosts(ctx, repositories.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return err
	}
	following, err := isFollowing(ctx, h.followRepository, v, &post.Author)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "post.html", echo.Map{
		"post":        post,
		"author":      &post.Author,
		"comments":    comments,
		"form":        forms.NewCommentForm(),
		"action":      postURL(username, post.ID),
		"posts_count": postsCount,
		"following":   following,
		"can_follow":  canFollow(v, &post.Author),
		"is_owner":    v != nil && v.UserID == post.AuthorID,
	})
}

// PostEdit lets the author change a post. Anyone else is sent back to the post.
func (h *PostHandler) PostEdit(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")
	id, err := postID(c)
	if err != nil {
		return err
	}

	if viewer(c).Username != username {
		return c.Redirect(http.StatusFound, postURL(username, id))
	}

	post, err := h.postRepository.GetPostByAuthor(ctx, username, id)
	if err != nil {
		return notFoundOr(err, "post not found")
	}
	groups, err := h.groupRepository.ListGroups(ctx)
	if err != nil {
		return err
	}

	form := forms.NewPostForm(groups, post)
	if c.Request().Method != http.MethodPost {
		return h.renderPostForm(c, form, post)
	}

	if err := bindPostForm(c, form); err != nil {
		return err
	}
	ok, err := form.Validate(ctx, c.Echo().Validator, h.groupRepository)
	if err != nil {
		return err
	}
	if !ok {
		return h.renderPostForm(c, form, post)
	}

	form.Apply(post)
	if stored, err := h.storeUpload(ctx, form); err != nil {
		return err
	} else if stored != "" {
		post.Image = stored
	}
	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, postURL(username, post.ID))
}

func (h *PostHandler) renderPostForm(c echo.Context, form *forms.PostForm, post *models.Post) error {
	return c.Render(http.StatusOK, "new_post.html", echo.Map{
		"form":    form,
		"post":    post,
		"is_edit": post != nil,
	})
}

// bindPostForm replaces the form input with the submitted fields. An empty file input
// arrives as a plain value, so the image part is read separately.
func bindPostForm(c echo.Context, form *forms.PostForm) error {
	form.PostInput = forms.PostInput{}
	if err := c.Bind(&form.PostInput); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if fh, err := c.FormFile("image"); err == nil {
		form.Image = fh
	}
	return nil
}

// storeUpload saves the validated image, if any, and returns its storage path.
func (h *PostHandler) storeUpload(ctx context.Context, form *forms.PostForm) (string, error) {
	upload := form.Upload()
	if upload == nil {
		return "", nil
	}
	return h.images.Save(ctx, upload.Ext, bytes.NewReader(upload.Data))
}
