// Package model standardizes payloads shared between the exchange, bot, and dashboard layers.
package model

import "time"

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a closing/short order.
	Sell Side = "SELL"
)

// OrderType enumerates supported order kinds.
type OrderType string

const (
	// Market executes immediately at the best available price.
	Market OrderType = "MARKET"
	// Limit rests at the given price until filled or cancelled.
	Limit OrderType = "LIMIT"
)

// Order records a placement the system made, successful or not.
type Order struct {
	OrderID   int64     `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Profit    float64   `json:"profit"`
	Bot       string    `json:"bot"`
}

// Position tracks an open holding a bot manages until exit.
type Position struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	Quantity   float64   `json:"quantity"`
	EntryTime  time.Time `json:"entry_time"`
	TakeProfit float64   `json:"take_profit"`
	StopLoss   float64   `json:"stop_loss"`
}

// Stats summarizes a bot's performance for the dashboard.
type Stats struct {
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol,omitempty"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	TotalProfit      float64 `json:"total_profit"`
	WinRate          float64 `json:"win_rate"`
	CurrentPositions int     `json:"current_positions"`
	Running          bool    `json:"running"`
}

// Kline is a single OHLCV candle from the exchange stream or REST history.
type Kline struct {
	Symbol    string
	Interval  string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
	Closed    bool
}

// AssetBalance holds free and locked amounts for one asset.
type AssetBalance struct {
	Free   float64 `json:"free"`
	Locked float64 `json:"locked"`
}

// Ticker24h carries the fields of the 24h ticker statistics the bots rank on.
type Ticker24h struct {
	Symbol             string
	LastPrice          float64
	Volume             float64
	PriceChangePercent float64
}

// SymbolFilters captures the exchange trading rules needed to size orders.
type SymbolFilters struct {
	StepSize    float64
	TickSize    float64
	MinNotional float64
}
