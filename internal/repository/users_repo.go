package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

type UsersRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	DeleteUserByID(userID uint) error
}

type usersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) UsersRepository {
	return &usersRepository{db: db}
}

func (r *usersRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *usersRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *usersRepository) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id").Find(&users).Error; err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

func (r *usersRepository) DeleteUserByID(userID uint) error {
	result := r.db.Delete(&models.User{}, userID)

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	return nil
}
