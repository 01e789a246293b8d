package repository_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/repository"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Coin{},
		&models.CoinTransaction{},
		&models.CoinStatistics{},
	); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := repository.NewUsersRepository(db).CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return user
}

func mustAddCoin(t *testing.T, db *gorm.DB, userID uint, name, symbol string) *models.Coin {
	t.Helper()

	coin := &models.Coin{UserID: userID, Name: name, Symbol: symbol}
	if err := repository.NewCoinsRepository(db).AddCoin(coin); err != nil {
		t.Fatalf("AddCoin(%q) failed: %v", name, err)
	}
	return coin
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	usersRepo := repository.NewUsersRepository(db)

	t.Run("success_create_user", func(t *testing.T) {
		user := mustCreateUser(t, db, "test_user")

		found, err := usersRepo.GetUserByUsername("test_user")
		if err != nil {
			t.Fatalf("GetUserByUsername failed after create: %v", err)
		}
		if found.ID != user.ID {
			t.Errorf("expected user id %d, got %d", user.ID, found.ID)
		}
	})

	t.Run("duplicate_username", func(t *testing.T) {
		mustCreateUser(t, db, "duplicate_user")

		err := usersRepo.CreateUser(&models.User{
			Username:     "duplicate_user",
			Email:        "other@example.com",
			PasswordHash: "x",
		})
		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		if _, err := usersRepo.GetUserByUsername("nobody"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCoinsRepository(t *testing.T) {
	db := setupTestDB(t)
	coinsRepo := repository.NewCoinsRepository(db)
	user := mustCreateUser(t, db, "coin_owner")

	mustAddCoin(t, db, user.ID, "Bitcoin", "BTC")

	t.Run("duplicate_coin", func(t *testing.T) {
		err := coinsRepo.AddCoin(&models.Coin{UserID: user.ID, Name: "Bitcoin", Symbol: "BTC"})
		if !errors.Is(err, errs.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("same_coin_other_user", func(t *testing.T) {
		other := mustCreateUser(t, db, "other_owner")
		if err := coinsRepo.AddCoin(&models.Coin{UserID: other.ID, Name: "Bitcoin", Symbol: "BTC"}); err != nil {
			t.Errorf("same coin for another user must be allowed, got %v", err)
		}
	})

	t.Run("list_and_delete", func(t *testing.T) {
		mustAddCoin(t, db, user.ID, "Ethereum", "ETH")

		coins, err := coinsRepo.GetAllCoinsForUser(user.ID)
		if err != nil {
			t.Fatalf("GetAllCoinsForUser failed: %v", err)
		}
		if len(coins) != 2 {
			t.Fatalf("expected 2 coins, got %d", len(coins))
		}

		if err := coinsRepo.DeleteCoin(user.ID, "Ethereum", "ETH"); err != nil {
			t.Fatalf("DeleteCoin failed: %v", err)
		}
		if err := coinsRepo.DeleteCoin(user.ID, "Ethereum", "ETH"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestTransactionsRepository(t *testing.T) {
	db := setupTestDB(t)
	txnRepo := repository.NewTransactionsRepository(db)

	user := mustCreateUser(t, db, "trader")
	coin := mustAddCoin(t, db, user.ID, "Bitcoin", "BTC")

	first := &models.CoinTransaction{
		UserID: user.ID, CoinID: coin.ID,
		Buy: decimal.NewFromInt(10), Paid: decimal.NewFromInt(50), AveragePrice: decimal.NewFromInt(5),
	}
	second := &models.CoinTransaction{
		UserID: user.ID, CoinID: coin.ID,
		Sell: decimal.NewFromInt(4), Paid: decimal.NewFromInt(32), AveragePrice: decimal.NewFromInt(8),
	}

	for _, txn := range []*models.CoinTransaction{first, second} {
		if err := txnRepo.Append(txn); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	txns, err := txnRepo.GetAllForCoin(user.ID, coin.ID)
	if err != nil {
		t.Fatalf("GetAllForCoin failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if !txns[0].Buy.Equal(decimal.NewFromInt(10)) || !txns[1].Sell.Equal(decimal.NewFromInt(4)) {
		t.Error("transactions not returned in insertion order")
	}
}

func TestStatisticsRepository(t *testing.T) {
	db := setupTestDB(t)
	statsRepo := repository.NewStatisticsRepository(db)

	user := mustCreateUser(t, db, "stats_owner")
	coin := mustAddCoin(t, db, user.ID, "Bitcoin", "BTC")

	if _, err := statsRepo.Get(user.ID, coin.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	stats := &models.CoinStatistics{UserID: user.ID, CoinID: coin.ID}
	stats.Apply(&models.CoinTransaction{Buy: decimal.NewFromInt(10), Paid: decimal.NewFromInt(50), AveragePrice: decimal.NewFromInt(5)})

	if err := statsRepo.Save(stats); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := statsRepo.GetForUpdate(user.ID, coin.ID)
	if err != nil {
		t.Fatalf("GetForUpdate failed: %v", err)
	}
	if !loaded.BuyTotal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected buy_total 10, got %s", loaded.BuyTotal)
	}

	loaded.Apply(&models.CoinTransaction{Sell: decimal.NewFromInt(4), Paid: decimal.NewFromInt(32), AveragePrice: decimal.NewFromInt(8)})
	if err := statsRepo.Save(loaded); err != nil {
		t.Fatalf("Save after update failed: %v", err)
	}

	if n := count(t, db, &models.CoinStatistics{}); n != 1 {
		t.Errorf("expected a single statistics row, got %d", n)
	}

	t.Run("unique_pair_constraint", func(t *testing.T) {
		err := db.Create(&models.CoinStatistics{UserID: user.ID, CoinID: coin.ID}).Error
		if err == nil {
			t.Error("expected unique constraint violation for duplicate (user, coin) pair")
		}
	})
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)

	user := mustCreateUser(t, db, "cascade_user")
	keeper := mustCreateUser(t, db, "untouched_user")

	coin := mustAddCoin(t, db, user.ID, "Bitcoin", "BTC")
	keeperCoin := mustAddCoin(t, db, keeper.ID, "Bitcoin", "BTC")

	for _, c := range []*models.Coin{coin, keeperCoin} {
		if err := db.Create(&models.CoinTransaction{UserID: c.UserID, CoinID: c.ID, Buy: decimal.NewFromInt(1)}).Error; err != nil {
			t.Fatalf("seed transaction failed: %v", err)
		}
		if err := db.Create(&models.CoinStatistics{UserID: c.UserID, CoinID: c.ID}).Error; err != nil {
			t.Fatalf("seed statistics failed: %v", err)
		}
	}

	if err := repository.NewUsersRepository(db).DeleteUserByID(user.ID); err != nil {
		t.Fatalf("DeleteUserByID failed: %v", err)
	}

	if n := count(t, db, &models.Coin{}); n != 1 {
		t.Errorf("expected 1 remaining coin, got %d", n)
	}
	if n := count(t, db, &models.CoinTransaction{}); n != 1 {
		t.Errorf("expected 1 remaining transaction, got %d", n)
	}
	if n := count(t, db, &models.CoinStatistics{}); n != 1 {
		t.Errorf("expected 1 remaining statistics row, got %d", n)
	}
}

func TestDeleteCoinCascades(t *testing.T) {
	db := setupTestDB(t)

	user := mustCreateUser(t, db, "coin_cascade_user")
	doomed := mustAddCoin(t, db, user.ID, "Bitcoin", "BTC")
	kept := mustAddCoin(t, db, user.ID, "Ethereum", "ETH")

	for _, c := range []*models.Coin{doomed, kept} {
		if err := db.Create(&models.CoinTransaction{UserID: user.ID, CoinID: c.ID, Buy: decimal.NewFromInt(1)}).Error; err != nil {
			t.Fatalf("seed transaction failed: %v", err)
		}
		if err := db.Create(&models.CoinStatistics{UserID: user.ID, CoinID: c.ID}).Error; err != nil {
			t.Fatalf("seed statistics failed: %v", err)
		}
	}

	if err := repository.NewCoinsRepository(db).DeleteCoin(user.ID, "Bitcoin", "BTC"); err != nil {
		t.Fatalf("DeleteCoin failed: %v", err)
	}

	if n := count(t, db, &models.CoinTransaction{}); n != 1 {
		t.Errorf("expected the kept coin's transaction to survive, got %d rows", n)
	}
	if n := count(t, db, &models.CoinStatistics{}); n != 1 {
		t.Errorf("expected the kept coin's statistics to survive, got %d rows", n)
	}
}
