package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles signup, login and logout. Firebase login is available when a verifier is configured.
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   firebase.TokenVerifier
	jwtSecret      string
	sessionTTL     time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth firebase.TokenVerifier, jwtSecret string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		sessionTTL:     sessionTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/signup/", h.Signup)
	g.POST("/signup/", h.Signup)
	g.GET("/login/", h.Login)
	g.POST("/login/", h.Login)
	g.POST("/logout/", h.Logout)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login/", h.FirebaseLogin)
	}
}

// Signup creates a local account and logs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	form := forms.NewSignupForm()
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "auth/signup.html", echo.Map{"form": form})
	}

	if err := c.Bind(&form.SignupInput); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	ok, err := form.Validate(c.Echo().Validator)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if ok {
		_, err := h.userRepository.GetUserByUsername(ctx, form.Username)
		switch {
		case err == nil:
			form.Errors.Add("username", forms.MsgUsernameTaken)
			ok = false
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	if !ok {
		return c.Render(http.StatusOK, "auth/signup.html", echo.Map{"form": form})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Name:     strings.TrimSpace(form.Name),
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// Login checks username and password and redirects to the safe "next" destination.
func (h *AuthHandler) Login(c echo.Context) error {
	form := forms.NewLoginForm(c.QueryParam("next"))
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "auth/login.html", echo.Map{"form": form})
	}

	if err := c.Bind(&form.LoginInput); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	ok, err := form.Validate(c.Echo().Validator)
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusOK, "auth/login.html", echo.Map{"form": form})
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), form.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if user == nil || user.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		form.Errors.Add(validators.NonFieldKey, forms.MsgBadLogin)
		return c.Render(http.StatusOK, "auth/login.html", echo.Map{"form": form})
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, form.SafeNext())
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/")
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" form:"idToken" validate:"required"`
}

// FirebaseLogin exchanges a Firebase ID token for a session, creating or linking the account.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.firebaseUser(ctx, token.UID, firebase.Email(token), firebase.EmailVerified(token), firebase.DisplayName(token))
	if err != nil {
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"username": user.Username})
}

// firebaseUser finds the account linked to uid, links the single unlinked account with the
// same verified email, or creates a new one.
func (h *AuthHandler) firebaseUser(ctx context.Context, uid, email string, emailVerified bool, name string) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if email != "" && emailVerified {
		matches, err := h.userRepository.ListUsersByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if len(matches) == 1 && matches[0].FirebaseUID == nil {
			user = &matches[0]
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to link firebase account: %w", err)
			}
			return user, nil
		}
	}

	username, err := h.freeUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Username:    username,
		Email:       email,
		Name:        name,
		FirebaseUID: &uid,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

var nonUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := nonUsernameChars.ReplaceAllString(local, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		return "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}
	return base
}

// freeUsername returns base, or base with the first free numeric suffix.
func (h *AuthHandler) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		_, err := h.userRepository.GetUserByUsername(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	token, err := middleware.SignSessionToken(h.jwtSecret, user, h.sessionTTL)
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}
	middleware.SetSessionCookie(c, token, h.sessionTTL)
	return nil
}
