package db

import (
	"github.com/commitzapp/commitz/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

// FindOrCreate provisions the bare user row on first sight. Users are
// identifiers, nothing more.
func (repo *UserRepository) FindOrCreate(userID string) error {
	user := models.User{ID: userID}
	return repo.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
}
