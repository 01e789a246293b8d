package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

type CoinsRepository interface {
	AddCoin(coin *models.Coin) error
	GetCoin(userID uint, name, symbol string) (*models.Coin, error)
	GetAllCoinsForUser(userID uint) ([]models.Coin, error)
	DeleteCoin(userID uint, name, symbol string) error
}

type coinsRepository struct {
	db *gorm.DB
}

func NewCoinsRepository(db *gorm.DB) CoinsRepository {
	return &coinsRepository{db: db}
}

func (r *coinsRepository) AddCoin(coin *models.Coin) error {
	if err := r.db.Create(coin).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *coinsRepository) GetCoin(userID uint, name, symbol string) (*models.Coin, error) {
	var coin models.Coin

	err := r.db.Where("user_id = ? AND name = ? AND symbol = ?", userID, name, symbol).First(&coin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, translateError(err)
	}

	return &coin, nil
}

func (r *coinsRepository) GetAllCoinsForUser(userID uint) ([]models.Coin, error) {
	var coins []models.Coin
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&coins).Error; err != nil {
		return nil, translateError(err)
	}
	return coins, nil
}

func (r *coinsRepository) DeleteCoin(userID uint, name, symbol string) error {
	result := r.db.Where("user_id = ? AND name = ? AND symbol = ?", userID, name, symbol).Delete(&models.Coin{})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	return nil
}
