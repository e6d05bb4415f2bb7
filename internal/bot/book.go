package bot

import (
	"sync"

	"multibot-go/internal/model"
)

// Recorder persists filled orders, typically the JSONL journal.
type Recorder interface {
	Record(order model.Order)
}

// maxOrders bounds in-memory order history per bot.
const maxOrders = 500

// Book is the shared per-bot ledger of orders, open positions, and stats.
type Book struct {
	name string
	rec  Recorder

	mu            sync.Mutex
	orders        []model.Order
	positions     map[string]model.Position
	totalTrades   int
	winningTrades int
	totalProfit   float64
	running       bool
}

func NewBook(name string, rec Recorder) *Book {
	return &Book{
		name:      name,
		rec:       rec,
		positions: make(map[string]model.Position),
	}
}

// AddOrder appends an order to the history and journals it.
func (b *Book) AddOrder(order model.Order) {
	b.mu.Lock()
	b.orders = append(b.orders, order)
	if len(b.orders) > maxOrders {
		b.orders = b.orders[len(b.orders)-maxOrders:]
	}
	b.mu.Unlock()
	if b.rec != nil {
		b.rec.Record(order)
	}
}

// Orders returns a copy of the history, oldest first.
func (b *Book) Orders() []model.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

func (b *Book) OpenPosition(pos model.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions[pos.Symbol] = pos
}

func (b *Book) ClosePosition(symbol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.positions, symbol)
}

func (b *Book) Position(symbol string) (model.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pos, ok := b.positions[symbol]
	return pos, ok
}

// Positions returns a copy of every open position.
func (b *Book) Positions() []model.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, pos)
	}
	return out
}

// RecordTrade tallies a closed round trip.
func (b *Book) RecordTrade(profit float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalTrades++
	if profit > 0 {
		b.winningTrades++
	}
	b.totalProfit += profit
}

func (b *Book) SetRunning(running bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = running
}

// Stats snapshots the book for the dashboard. Win rate is zero until the
// first trade closes.
func (b *Book) Stats() model.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := model.Stats{
		Name:             b.name,
		TotalTrades:      b.totalTrades,
		WinningTrades:    b.winningTrades,
		TotalProfit:      b.totalProfit,
		CurrentPositions: len(b.positions),
		Running:          b.running,
	}
	if b.totalTrades > 0 {
		stats.WinRate = float64(b.winningTrades) / float64(b.totalTrades) * 100
	}
	return stats
}
