package router

import (
	"log"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/handlers"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/views"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/pkg/storage"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps carries everything the handlers need.
type Deps struct {
	Users    repositories.UserRepository
	Groups   repositories.GroupRepository
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Follows  repositories.FollowRepository

	Images    storage.ImageStore
	PageCache cache.PageCache
	// Firebase is nil when Firebase login is not configured.
	Firebase firebase.TokenVerifier

	JWTSecret  string
	SessionTTL time.Duration
}

// NewPostgresDeps wires the gorm repositories and an in-memory page cache.
func NewPostgresDeps(db *gorm.DB, images storage.ImageStore, indexCacheTTL time.Duration) *Deps {
	return &Deps{
		Users:     repositories.NewPostgresUserRepository(db),
		Groups:    repositories.NewPostgresGroupRepository(db),
		Posts:     repositories.NewPostgresPostRepository(db),
		Comments:  repositories.NewPostgresCommentRepository(db),
		Follows:   repositories.NewPostgresFollowRepository(db),
		Images:    images,
		PageCache: cache.NewMemoryPageCache(indexCacheTTL),
	}
}

// SetupRoutes installs the renderer, validator, error pages, session and CSRF middleware and every route.
func SetupRoutes(e *echo.Echo, deps *Deps) error {
	renderer, err := views.NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Use(middleware.CSRF())
	e.Use(middleware.JWTAuthMiddleware(deps.JWTSecret, deps.Users))
	login := middleware.LoginRequired()

	e.GET("/health", handlers.HealthCheck)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Firebase, deps.JWTSecret, deps.SessionTTL)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))
	if deps.Firebase == nil {
		log.Println("Firebase not configured, /auth/firebase-login/ disabled.")
	}

	mediaHandler := handlers.NewMediaHandler(deps.Images)
	mediaHandler.RegisterMediaRoutes(e)

	feedHandler := handlers.NewFeedHandler(deps.Posts, deps.Groups, deps.Users, deps.Follows, deps.PageCache)
	feedHandler.RegisterFeedRoutes(e, login)

	postHandler := handlers.NewPostHandler(deps.Posts, deps.Groups, deps.Comments, deps.Follows, deps.Users, deps.Images)
	postHandler.RegisterPostRoutes(e, login)

	commentHandler := handlers.NewCommentHandler(deps.Posts, deps.Comments)
	commentHandler.RegisterCommentRoutes(e, login)

	followHandler := handlers.NewFollowHandler(deps.Follows, deps.Users)
	followHandler.RegisterFollowRoutes(e, login)

	return nil
}
