package repository

import (
	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
)

// TransactionsRepository appends to the immutable ledger. There is no update
// or delete: rows only disappear through coin/user cascades.
type TransactionsRepository interface {
	Append(txn *models.CoinTransaction) error
	GetAllForCoin(userID, coinID uint) ([]models.CoinTransaction, error)
}

type transactionsRepository struct {
	db *gorm.DB
}

func NewTransactionsRepository(db *gorm.DB) TransactionsRepository {
	return &transactionsRepository{db: db}
}

func (r *transactionsRepository) Append(txn *models.CoinTransaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *transactionsRepository) GetAllForCoin(userID, coinID uint) ([]models.CoinTransaction, error) {
	var txns []models.CoinTransaction

	err := r.db.Where("user_id = ? AND coin_id = ?", userID, coinID).Order("id").Find(&txns).Error
	if err != nil {
		return nil, translateError(err)
	}

	return txns, nil
}
