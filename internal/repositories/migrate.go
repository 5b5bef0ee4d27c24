package repositories

import (
	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables, indexes and foreign keys of every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
}
