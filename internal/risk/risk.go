// Package risk holds the guard-rails the executors consult before submitting orders.
package risk

import "sync"

// Limits bounds per-trade size and cumulative losses. Fractions are relative
// to the starting bankroll.
type Limits struct {
	MaxNotionalPerTrade float64
	DailyLossFraction   float64
	DrawdownFraction    float64
}

// Monitor applies Limits against running loss totals.
type Monitor struct {
	limits   Limits
	bankroll float64

	mu        sync.Mutex
	dailyLoss float64
	totalLoss float64
}

// NewMonitor builds a monitor for the given bankroll.
func NewMonitor(limits Limits, bankroll float64) *Monitor {
	return &Monitor{limits: limits, bankroll: bankroll}
}

// Allow reports whether a trade of the given notional may proceed.
func (m *Monitor) Allow(notional float64) bool {
	if m.limits.MaxNotionalPerTrade > 0 && notional > m.limits.MaxNotionalPerTrade {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limits.DailyLossFraction > 0 && m.dailyLoss >= m.limits.DailyLossFraction*m.bankroll {
		return false
	}
	if m.limits.DrawdownFraction > 0 && m.totalLoss >= m.limits.DrawdownFraction*m.bankroll {
		return false
	}
	return true
}

// RecordPnL feeds realized profit into the loss counters. Profits shrink the
// running losses but never below zero.
func (m *Monitor) RecordPnL(profit float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyLoss -= profit
	if m.dailyLoss < 0 {
		m.dailyLoss = 0
	}
	m.totalLoss -= profit
	if m.totalLoss < 0 {
		m.totalLoss = 0
	}
}

// ResetDaily clears the daily loss counter; the entrypoint calls it at midnight rollover.
func (m *Monitor) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyLoss = 0
}
