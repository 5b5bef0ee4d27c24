package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "session"

// userKey is the echo context key holding *models.JwtCustomClaims.
const userKey = "user"

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// SignSessionToken issues a session token for user valid for ttl.
func SignSessionToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates tokenString and returns its claims.
func ParseSessionToken(secret, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// SetSessionCookie writes the session cookie for token.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserLookup resolves the account a session belongs to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// JWTAuthMiddleware reads the session from the cookie or a Bearer Authorization header.
// Requests without a valid token, or whose account no longer exists, continue anonymously.
func JWTAuthMiddleware(secret string, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c.Request().Header.Get("Authorization"))
			if tokenString == "" {
				if cookie, err := c.Cookie(SessionCookie); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				return next(c)
			}

			claims, err := ParseSessionToken(secret, tokenString)
			if err != nil {
				c.Logger().Debugf("ignoring invalid session token: %v", err)
				return next(c)
			}

			user, err := users.GetUserByID(c.Request().Context(), claims.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Logger().Infof("dropping session of deleted user %d", claims.UserID)
				ClearSessionCookie(c)
				return next(c)
			}
			if err != nil {
				return err
			}
			claims.Username = user.Username

			c.Set(userKey, claims)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user's claims, or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(userKey).(*models.JwtCustomClaims)
	return claims
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
