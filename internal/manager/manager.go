// Package manager supervises the bot fleet: registration, lifecycle, and
// aggregated reporting for the dashboard.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"multibot-go/internal/bot"
	"multibot-go/internal/metrics"
	"multibot-go/internal/model"
)

// ErrUnknownBot is returned when a lifecycle call names an unregistered bot.
var ErrUnknownBot = errors.New("unknown bot")

type runningBot struct {
	bot    bot.Bot
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns the registered bots and starts or stops them on demand.
// Each running bot gets its own cancellable context derived from the
// manager's base context.
type Manager struct {
	log zerolog.Logger

	mu      sync.Mutex
	base    context.Context
	order   []string
	bots    map[string]bot.Bot
	running map[string]*runningBot
}

func New(base context.Context, log zerolog.Logger) *Manager {
	return &Manager{
		log:     log.With().Str("component", "manager").Logger(),
		base:    base,
		bots:    make(map[string]bot.Bot),
		running: make(map[string]*runningBot),
	}
}

// Register adds a bot to the fleet. Registration order is preserved in
// reporting.
func (m *Manager) Register(b bot.Bot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := b.Name()
	if _, exists := m.bots[name]; exists {
		return
	}
	m.bots[name] = b
	m.order = append(m.order, name)
}

// StartBot launches the named bot. Starting a running bot is a no-op.
func (m *Manager) StartBot(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(name)
}

func (m *Manager) startLocked(name string) error {
	b, ok := m.bots[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBot, name)
	}
	if _, up := m.running[name]; up {
		return nil
	}

	ctx, cancel := context.WithCancel(m.base)
	rb := &runningBot{bot: b, cancel: cancel, done: make(chan struct{})}
	m.running[name] = rb
	m.setRunningFlag(b, true)
	metrics.RunningBots.Inc()

	go func() {
		defer close(rb.done)
		if err := b.Run(ctx); err != nil {
			m.log.Error().Err(err).Str("bot", name).Msg("bot exited with error")
		}
		m.mu.Lock()
		if m.running[name] == rb {
			delete(m.running, name)
			m.setRunningFlag(b, false)
			metrics.RunningBots.Dec()
		}
		m.mu.Unlock()
	}()

	m.log.Info().Str("bot", name).Msg("bot started")
	return nil
}

// StopBot cancels the named bot and waits for its loop to return.
func (m *Manager) StopBot(name string) error {
	m.mu.Lock()
	if _, ok := m.bots[name]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownBot, name)
	}
	rb, up := m.running[name]
	m.mu.Unlock()
	if !up {
		return nil
	}

	rb.cancel()
	<-rb.done
	m.log.Info().Str("bot", name).Msg("bot stopped")
	return nil
}

// StartAll starts every registered bot.
func (m *Manager) StartAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range m.order {
		if err := m.startLocked(name); err != nil {
			m.log.Error().Err(err).Str("bot", name).Msg("start failed")
		}
	}
}

// StopAll stops every running bot and waits for each to wind down.
func (m *Manager) StopAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.running))
	for name := range m.running {
		names = append(names, name)
	}
	m.mu.Unlock()
	for _, name := range names {
		if err := m.StopBot(name); err != nil {
			m.log.Error().Err(err).Str("bot", name).Msg("stop failed")
		}
	}
}

// Running reports how many bots are currently up.
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}

// Total reports how many bots are registered.
func (m *Manager) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bots)
}

// Names lists registered bots in registration order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Stats collects per-bot stats in registration order.
func (m *Manager) Stats() []model.Stats {
	m.mu.Lock()
	bots := make([]bot.Bot, 0, len(m.order))
	for _, name := range m.order {
		bots = append(bots, m.bots[name])
	}
	m.mu.Unlock()

	out := make([]model.Stats, 0, len(bots))
	for _, b := range bots {
		out = append(out, b.Stats())
	}
	return out
}

// Orders merges every bot's history, newest first.
func (m *Manager) Orders() []model.Order {
	m.mu.Lock()
	bots := make([]bot.Bot, 0, len(m.order))
	for _, name := range m.order {
		bots = append(bots, m.bots[name])
	}
	m.mu.Unlock()

	var out []model.Order
	for _, b := range bots {
		out = append(out, b.Orders()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// setRunningFlag flips the book flag on bots that expose one.
func (m *Manager) setRunningFlag(b bot.Bot, running bool) {
	type booked interface{ Book() *bot.Book }
	if bb, ok := b.(booked); ok {
		bb.Book().SetRunning(running)
	}
}
