package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserView struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		RegisteredAt: u.RegisteredAt,
	}
}

type CoinView struct {
	CoinName   string `json:"coin_name"`
	CoinSymbol string `json:"coin_symbol"`
}

func (c *Coin) View() CoinView {
	return CoinView{CoinName: c.Name, CoinSymbol: c.Symbol}
}

// StatisticsView is the snapshot returned to clients and pushed over the
// websocket stream.
type StatisticsView struct {
	Username   string `json:"username"`
	CoinName   string `json:"coin_name"`
	CoinSymbol string `json:"coin_symbol"`

	BuyTotal      decimal.Decimal `json:"buy_total"`
	InvestedTotal decimal.Decimal `json:"invested_total"`
	InvestedAvg   decimal.Decimal `json:"invested_avg"`

	SellTotal     decimal.Decimal `json:"sell_total"`
	RealizedTotal decimal.Decimal `json:"realized_total"`
	RealizedAvg   decimal.Decimal `json:"realized_avg"`

	Holdings          decimal.Decimal `json:"holdings"`
	FeeTotal          decimal.Decimal `json:"fee_total"`
	TransactionsCount uint            `json:"transactions_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (s *CoinStatistics) View(username, coinName, coinSymbol string) StatisticsView {
	return StatisticsView{
		Username:          username,
		CoinName:          coinName,
		CoinSymbol:        coinSymbol,
		BuyTotal:          s.BuyTotal,
		InvestedTotal:     s.InvestedTotal,
		InvestedAvg:       s.InvestedAvg,
		SellTotal:         s.SellTotal,
		RealizedTotal:     s.RealizedTotal,
		RealizedAvg:       s.RealizedAvg,
		Holdings:          s.Holdings,
		FeeTotal:          s.FeeTotal,
		TransactionsCount: s.TransactionsCount,
		UpdatedAt:         s.UpdatedAt,
	}
}
