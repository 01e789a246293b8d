package service

import (
	"context"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/repository"
)

type CoinsService interface {
	AddCoin(ctx context.Context, username, coinName, coinSymbol string) (*models.Coin, error)
	GetAllCoins(ctx context.Context, username string) ([]models.CoinView, error)
	// DeleteCoin removes a watchlist entry; the coin's transactions and
	// statistics row go with it.
	DeleteCoin(ctx context.Context, username, coinName, coinSymbol string) error
}

type coinsService struct {
	usersRepo repository.UsersRepository
	coinsRepo repository.CoinsRepository
}

func NewCoinsService(usersRepo repository.UsersRepository, coinsRepo repository.CoinsRepository) CoinsService {
	return &coinsService{
		usersRepo: usersRepo,
		coinsRepo: coinsRepo,
	}
}

func (s *coinsService) AddCoin(_ context.Context, username, coinName, coinSymbol string) (*models.Coin, error) {
	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	coin := models.Coin{
		UserID: user.ID,
		Name:   coinName,
		Symbol: coinSymbol,
	}

	if err := s.coinsRepo.AddCoin(&coin); err != nil {
		return nil, err
	}

	return &coin, nil
}

func (s *coinsService) GetAllCoins(_ context.Context, username string) ([]models.CoinView, error) {
	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	coins, err := s.coinsRepo.GetAllCoinsForUser(user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CoinView, 0, len(coins))
	for i := range coins {
		views = append(views, coins[i].View())
	}

	return views, nil
}

func (s *coinsService) DeleteCoin(_ context.Context, username, coinName, coinSymbol string) error {
	user, err := s.usersRepo.GetUserByUsername(username)
	if err != nil {
		return err
	}

	return s.coinsRepo.DeleteCoin(user.ID, coinName, coinSymbol)
}
