package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/events"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/repository"
	redisstore "github.com/SAYREKAS/CryptoSphereAPI/storage/redis"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/trade"
)

type TransactionsService interface {
	// Apply normalizes op, appends it to the ledger and folds it into the
	// (user, coin) statistics row — ledger append and statistics update
	// commit or roll back together. Returns the post-apply snapshot.
	Apply(ctx context.Context, username, coinName, coinSymbol string, op trade.Operation) (*models.StatisticsView, error)
	GetStatistics(ctx context.Context, username, coinName, coinSymbol string) (*models.StatisticsView, error)
}

type transactionsService struct {
	db        *gorm.DB
	usersRepo repository.UsersRepository
	coinsRepo repository.CoinsRepository
	cache     *redisstore.Client
	publisher *events.Publisher
	log       *slog.Logger
}

// NewTransactionsService wires the statistics aggregation core. cache and
// publisher may be nil; the apply path then skips the corresponding fan-out.
func NewTransactionsService(
	db *gorm.DB,
	usersRepo repository.UsersRepository,
	coinsRepo repository.CoinsRepository,
	cache *redisstore.Client,
	publisher *events.Publisher,
	log *slog.Logger,
) TransactionsService {
	return &transactionsService{
		db:        db,
		usersRepo: usersRepo,
		coinsRepo: coinsRepo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

func (s *transactionsService) Apply(ctx context.Context, username, coinName, coinSymbol string, op trade.Operation) (*models.StatisticsView, error) {
	op, err := trade.Normalize(op)
	if err != nil {
		return nil, err
	}

	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	coin, err := s.coinsRepo.GetCoin(user.ID, coinName, coinSymbol)
	if err != nil {
		return nil, err
	}

	txn := models.CoinTransaction{
		UserID:       user.ID,
		CoinID:       coin.ID,
		Buy:          op.Buy,
		Sell:         op.Sell,
		Paid:         op.Paid,
		AveragePrice: op.AveragePrice,
		Fee:          op.Fee,
	}

	var stats *models.CoinStatistics

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnRepo := repository.NewTransactionsRepository(tx)
		statsRepo := repository.NewStatisticsRepository(tx)

		if err := txnRepo.Append(&txn); err != nil {
			return err
		}

		stats, err = statsRepo.GetForUpdate(user.ID, coin.ID)
		if err != nil {
			if !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			// First transaction for this pair: start the fold from zero.
			stats = &models.CoinStatistics{UserID: user.ID, CoinID: coin.ID}
		}

		stats.Apply(&txn)

		return statsRepo.Save(stats)
	})

	if err != nil {
		// Two first transactions for the same pair can race past the
		// absent-row check; the unique (user, coin) index rejects one of
		// them. The loser rolled back completely and can just be retried.
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, fmt.Errorf("statistics row contention: %w", errs.ErrConcurrency)
		}
		return nil, fmt.Errorf("failed to apply transaction: %w", err)
	}

	view := stats.View(user.Username, coin.Name, coin.Symbol)
	s.fanOut(user, coin, &txn, view)

	return &view, nil
}

func (s *transactionsService) GetStatistics(ctx context.Context, username, coinName, coinSymbol string) (*models.StatisticsView, error) {
	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	coin, err := s.coinsRepo.GetCoin(user.ID, coinName, coinSymbol)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if view, ok := s.cache.GetStatistics(ctx, user.ID, coin.ID); ok {
			return view, nil
		}
	}

	stats, err := repository.NewStatisticsRepository(s.db.WithContext(ctx)).Get(user.ID, coin.ID)
	if err != nil {
		return nil, err
	}

	view := stats.View(user.Username, coin.Name, coin.Symbol)

	if s.cache != nil {
		s.cache.SetStatistics(ctx, user.ID, coin.ID, view)
	}

	return &view, nil
}

// fanOut runs after commit: refresh the cache, notify websocket subscribers
// through redis and stream the event to kafka. All best-effort.
func (s *transactionsService) fanOut(user *models.User, coin *models.Coin, txn *models.CoinTransaction, view models.StatisticsView) {
	event := models.TransactionAppliedEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		CoinID:       coin.ID,
		CoinName:     coin.Name,
		CoinSymbol:   coin.Symbol,
		Buy:          txn.Buy,
		Sell:         txn.Sell,
		Paid:         txn.Paid,
		AveragePrice: txn.AveragePrice,
		Fee:          txn.Fee,
		Statistics:   view,
		AppliedAt:    time.Now().UTC(),
	}

	// The request context may already be done; fan-out should still get a
	// chance to run.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.cache != nil {
		s.cache.SetStatistics(ctx, user.ID, coin.ID, view)
		s.cache.PublishStatsUpdate(ctx, event)
	}

	s.publisher.PublishTransactionApplied(ctx, event)
}
