package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account that can author posts, comment and follow other authors.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Email       string    `json:"email" gorm:"size:254;index"`
	Name        string    `json:"name" gorm:"size:150"`
	// bcrypt hash; empty for accounts that only sign in through Firebase
	Password    string    `json:"-"`
	// set once the account is linked to a Firebase login
	FirebaseUID *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName returns the full name when present and the username otherwise.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// JwtCustomClaims are the claims carried by the session cookie.
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
