package manager

import (
	"context"
	"testing"
	"time"

	"multibot-go/internal/model"
	"multibot-go/internal/util"
)

type fakeBot struct {
	name    string
	stats   model.Stats
	orders  []model.Order
	started chan struct{}
}

func newFakeBot(name string) *fakeBot {
	return &fakeBot{name: name, started: make(chan struct{})}
}

func (f *fakeBot) Name() string { return f.name }

func (f *fakeBot) Run(ctx context.Context) error {
	close(f.started)
	<-ctx.Done()
	return nil
}

func (f *fakeBot) Orders() []model.Order { return f.orders }

func (f *fakeBot) Stats() model.Stats {
	s := f.stats
	s.Name = f.name
	return s
}

func TestStartStopBot(t *testing.T) {
	m := New(context.Background(), util.NewLogger("error"))
	b := newFakeBot("scalping")
	m.Register(b)

	if err := m.StartBot("scalping"); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-b.started:
	case <-time.After(time.Second):
		t.Fatal("bot never started")
	}
	if m.Running() != 1 {
		t.Fatalf("running = %d, want 1", m.Running())
	}

	// Starting again is a no-op.
	if err := m.StartBot("scalping"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if m.Running() != 1 {
		t.Fatalf("running after restart = %d, want 1", m.Running())
	}

	if err := m.StopBot("scalping"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if m.Running() != 0 {
		t.Fatalf("running after stop = %d, want 0", m.Running())
	}
}

func TestUnknownBot(t *testing.T) {
	m := New(context.Background(), util.NewLogger("error"))
	if err := m.StartBot("nope"); err == nil {
		t.Fatal("expected error for unknown bot")
	}
	if err := m.StopBot("nope"); err == nil {
		t.Fatal("expected error for unknown bot")
	}
}

func TestStartAllStopAll(t *testing.T) {
	m := New(context.Background(), util.NewLogger("error"))
	bots := []*fakeBot{newFakeBot("scalping"), newFakeBot("new_listing"), newFakeBot("high_volume")}
	for _, b := range bots {
		m.Register(b)
	}

	m.StartAll()
	for _, b := range bots {
		select {
		case <-b.started:
		case <-time.After(time.Second):
			t.Fatalf("%s never started", b.name)
		}
	}
	if m.Running() != 3 || m.Total() != 3 {
		t.Fatalf("running/total = %d/%d, want 3/3", m.Running(), m.Total())
	}

	m.StopAll()
	if m.Running() != 0 {
		t.Fatalf("running after stop all = %d, want 0", m.Running())
	}
}

func TestOrdersNewestFirst(t *testing.T) {
	m := New(context.Background(), util.NewLogger("error"))
	now := time.Now()

	a := newFakeBot("scalping")
	a.orders = []model.Order{
		{OrderID: 1, Timestamp: now.Add(-2 * time.Minute)},
		{OrderID: 3, Timestamp: now},
	}
	b := newFakeBot("high_volume")
	b.orders = []model.Order{{OrderID: 2, Timestamp: now.Add(-time.Minute)}}
	m.Register(a)
	m.Register(b)

	orders := m.Orders()
	if len(orders) != 3 {
		t.Fatalf("len = %d, want 3", len(orders))
	}
	for i, want := range []int64{3, 2, 1} {
		if orders[i].OrderID != want {
			t.Fatalf("orders[%d].OrderID = %d, want %d", i, orders[i].OrderID, want)
		}
	}
}

func TestStatsRegistrationOrder(t *testing.T) {
	m := New(context.Background(), util.NewLogger("error"))
	m.Register(newFakeBot("scalping"))
	m.Register(newFakeBot("new_listing"))

	stats := m.Stats()
	if len(stats) != 2 || stats[0].Name != "scalping" || stats[1].Name != "new_listing" {
		t.Fatalf("stats = %+v", stats)
	}
}
