package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionAppliedEvent is emitted after a transaction and its statistics
// update have committed. It feeds the Kafka analytics topic and the redis
// channel the websocket manager listens on.
type TransactionAppliedEvent struct {
	EventID    string `json:"event_id"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	CoinID     uint   `json:"coin_id"`
	CoinName   string `json:"coin_name"`
	CoinSymbol string `json:"coin_symbol"`

	Buy          decimal.Decimal `json:"buy"`
	Sell         decimal.Decimal `json:"sell"`
	Paid         decimal.Decimal `json:"paid"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Fee          decimal.Decimal `json:"fee"`

	Statistics StatisticsView `json:"statistics"`
	AppliedAt  time.Time      `json:"applied_at"`
}
