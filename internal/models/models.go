package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User owns a watchlist of coins. Deleting a user cascades to every coin,
// transaction and statistics row it owns.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:70;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:72;not null" json:"-"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`

	Coins []Coin `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Coin is a single watchlist entry, unique per (user, name, symbol).
type Coin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null;uniqueIndex:uix_user_coin_name_symbol" json:"user_id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uix_user_coin_name_symbol" json:"name"`
	Symbol    string    `gorm:"size:100;not null;uniqueIndex:uix_user_coin_name_symbol" json:"symbol"`
	DateAdded time.Time `gorm:"autoCreateTime" json:"date_added"`

	Transactions []CoinTransaction `gorm:"foreignKey:CoinID;constraint:OnDelete:CASCADE" json:"-"`
	Statistics   *CoinStatistics   `gorm:"foreignKey:CoinID;constraint:OnDelete:CASCADE" json:"-"`
}

// CoinTransaction is one immutable ledger row. Exactly one of Buy/Sell is
// positive; rows are never updated or deleted except through cascades.
type CoinTransaction struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`
	CoinID uint `gorm:"index;not null" json:"coin_id"`

	Buy          decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"buy"`
	Sell         decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"sell"`
	Paid         decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"paid"`
	AveragePrice decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"average_price"`
	Fee          decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"fee"`

	DateAdded time.Time `gorm:"autoCreateTime" json:"date_added"`
}

func (CoinTransaction) TableName() string { return "coin_transactions" }

// CoinStatistics is the running aggregate for one (user, coin) pair. It is a
// derived cache: its correctness is defined by the fold of Apply over the
// pair's transactions in commit order.
type CoinStatistics struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	UserID uint `gorm:"not null;uniqueIndex:uix_statistics_user_coin" json:"user_id"`
	CoinID uint `gorm:"not null;uniqueIndex:uix_statistics_user_coin" json:"coin_id"`

	BuyTotal      decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"buy_total"`
	InvestedTotal decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"invested_total"`
	InvestedAvg   decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"invested_avg"`

	SellTotal     decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"sell_total"`
	RealizedTotal decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"realized_total"`
	RealizedAvg   decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"realized_avg"`

	Holdings          decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"holdings"`
	FeeTotal          decimal.Decimal `gorm:"type:decimal(25,10);not null;default:0" json:"fee_total"`
	TransactionsCount uint            `gorm:"not null;default:0" json:"transactions_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (CoinStatistics) TableName() string { return "coin_statistics" }

// Apply folds one transaction into the running aggregate. Averages are
// always recomputed from the totals, so replaying a transaction sequence
// row by row gives the same result as a single batch computation.
func (s *CoinStatistics) Apply(txn *CoinTransaction) {
	s.BuyTotal = s.BuyTotal.Add(txn.Buy)
	s.SellTotal = s.SellTotal.Add(txn.Sell)

	if txn.Buy.IsPositive() {
		s.InvestedTotal = s.InvestedTotal.Add(txn.Paid)
	} else {
		s.RealizedTotal = s.RealizedTotal.Add(txn.Paid)
	}

	s.Holdings = s.Holdings.Add(txn.Buy).Sub(txn.Sell)
	s.FeeTotal = s.FeeTotal.Add(txn.Fee)
	s.TransactionsCount++

	if s.BuyTotal.IsPositive() {
		s.InvestedAvg = s.InvestedTotal.Div(s.BuyTotal)
	} else {
		s.InvestedAvg = decimal.Zero
	}

	if s.SellTotal.IsPositive() {
		s.RealizedAvg = s.RealizedTotal.Div(s.SellTotal)
	} else {
		s.RealizedAvg = decimal.Zero
	}
}
