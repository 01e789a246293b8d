package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/config"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
)

type Storage struct {
	DB *gorm.DB
}

func New(cfg config.DBConfig) (*Storage, error) {
	const op = "storage/postgres"

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port)

	var db *gorm.DB
	var err error

	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		slog.Warn("failed to connect to postgres, retrying...", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after multiple retries: %w", op, err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("%s: failed to auto-migrate database: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Migrate creates or updates the four tables: users, coins,
// coin_transactions, coin_statistics.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Coin{},
		&models.CoinTransaction{},
		&models.CoinStatistics{},
	)
}

func (s *Storage) Stop() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
