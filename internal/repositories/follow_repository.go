package repositories

import (
	"context"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	FollowAuthor(ctx context.Context, userID, authorID uint) (created bool, err error)
	UnfollowAuthor(ctx context.Context, userID uint, authorUsername string) error
	IsFollowing(ctx context.Context, userID uint, authorUsername string) (bool, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// FollowAuthor is get-or-create on the (user, author) pair. The unique index settles concurrent requests.
func (r *PostgresFollowRepository) FollowAuthor(ctx context.Context, userID, authorID uint) (bool, error) {
	follow := &models.Follow{UserID: userID, AuthorID: authorID}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UnfollowAuthor removes the edge if present; deleting nothing is not an error.
func (r *PostgresFollowRepository) UnfollowAuthor(ctx context.Context, userID uint, authorUsername string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id IN (?)", userID, r.authorIDs(authorUsername)).
		Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, userID uint, authorUsername string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN (?)", userID, r.authorIDs(authorUsername)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) authorIDs(username string) *gorm.DB {
	return r.db.Model(&models.User{}).Select("id").Where("username = ?", username)
}
