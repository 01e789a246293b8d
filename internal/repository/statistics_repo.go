package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

type StatisticsRepository interface {
	Get(userID, coinID uint) (*models.CoinStatistics, error)
	// GetForUpdate takes a row-level exclusive lock on the statistics row so
	// concurrent applies for the same (user, coin) pair serialize. Must run
	// inside a transaction.
	GetForUpdate(userID, coinID uint) (*models.CoinStatistics, error)
	Save(stats *models.CoinStatistics) error
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) Get(userID, coinID uint) (*models.CoinStatistics, error) {
	return r.get(r.db, userID, coinID)
}

func (r *statisticsRepository) GetForUpdate(userID, coinID uint) (*models.CoinStatistics, error) {
	tx := r.db
	// sqlite has no SELECT ... FOR UPDATE; its single writer lock serializes
	// the transaction anyway.
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(tx, userID, coinID)
}

func (r *statisticsRepository) get(tx *gorm.DB, userID, coinID uint) (*models.CoinStatistics, error) {
	var stats models.CoinStatistics

	err := tx.Where("user_id = ? AND coin_id = ?", userID, coinID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, translateError(err)
	}

	return &stats, nil
}

func (r *statisticsRepository) Save(stats *models.CoinStatistics) error {
	if err := r.db.Save(stats).Error; err != nil {
		return translateError(err)
	}
	return nil
}
