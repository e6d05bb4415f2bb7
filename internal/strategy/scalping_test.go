package strategy

import (
	"math"
	"testing"

	"multibot-go/internal/config"
	"multibot-go/internal/model"
)

func defaultIndicators() config.Indicators {
	return config.Indicators{
		EMAShort:   9,
		EMALong:    21,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

func feed(s *Scalping, closes []float64) Signal {
	var sig Signal
	for _, c := range closes {
		sig = s.OnClose(model.Kline{Symbol: "BTCUSDT", Close: c, Closed: true})
	}
	return sig
}

func TestOnCloseHoldsUntilWarm(t *testing.T) {
	strat := NewScalping(defaultIndicators())
	sig := strat.OnClose(model.Kline{Close: 100, Closed: true})
	if sig.Action != Hold || sig.Confidence != 0 {
		t.Fatalf("expected hold before warmup, got %+v", sig)
	}
}

func TestDetermineTrend(t *testing.T) {
	up := Indicators{EMAShort: 101, EMALong: 100, MACD: 1, MACDSignal: 0.5, RSI: 60}
	if got := determineTrend(up); got != Uptrend {
		t.Fatalf("expected uptrend, got %s", got)
	}

	down := Indicators{EMAShort: 99, EMALong: 100, MACD: -1, MACDSignal: -0.5, RSI: 40}
	if got := determineTrend(down); got != Downtrend {
		t.Fatalf("expected downtrend, got %s", got)
	}

	mixed := Indicators{EMAShort: 101, EMALong: 100, MACD: -1, MACDSignal: -0.5, RSI: 55}
	if got := determineTrend(mixed); got != Neutral {
		t.Fatalf("expected neutral, got %s", got)
	}
}

func TestDecideUptrendDip(t *testing.T) {
	ind := Indicators{BBLower: 100, BBUpper: 110, RSI: 30}
	sig := decide(99, Uptrend, ind)
	if sig.Action != Buy {
		t.Fatalf("expected buy on uptrend dip, got %s", sig.Action)
	}
	if sig.Confidence != 0.8 {
		t.Fatalf("expected 0.8 confidence, got %.2f", sig.Confidence)
	}
}

func TestDecideDowntrendRally(t *testing.T) {
	ind := Indicators{BBLower: 100, BBUpper: 110, RSI: 70}
	sig := decide(111, Downtrend, ind)
	if sig.Action != Sell {
		t.Fatalf("expected sell on downtrend rally, got %s", sig.Action)
	}
	if sig.Confidence != 0.75 {
		t.Fatalf("expected 0.75 confidence, got %.2f", sig.Confidence)
	}
}

func TestDecideRange(t *testing.T) {
	ind := Indicators{BBLower: 100, BBUpper: 110, RSI: 25}
	if sig := decide(99, Neutral, ind); sig.Action != Buy {
		t.Fatalf("expected range buy, got %s", sig.Action)
	}

	ind.RSI = 75
	if sig := decide(111, Neutral, ind); sig.Action != Sell {
		t.Fatalf("expected range sell, got %s", sig.Action)
	}

	ind.RSI = 50
	if sig := decide(105, Neutral, ind); sig.Action != Hold {
		t.Fatalf("expected hold mid-range, got %s", sig.Action)
	}
}

func TestOnCloseProducesIndicatorsAfterWarmup(t *testing.T) {
	strat := NewScalping(defaultIndicators())

	closes := make([]float64, 60)
	for i := range closes {
		// gentle upward drift with a wobble so RSI stays defined
		closes[i] = 100 + float64(i)*0.5 + math.Sin(float64(i))*0.2
	}
	sig := feed(strat, closes)
	if sig.Action == "" {
		t.Fatalf("expected a decision after warmup")
	}
	if strat.Trend() != Uptrend {
		t.Fatalf("expected uptrend on rising closes, got %s", strat.Trend())
	}
}

func TestCloseWindowTrims(t *testing.T) {
	strat := NewScalping(defaultIndicators())
	for i := 0; i < 150; i++ {
		strat.OnClose(model.Kline{Close: 100 + float64(i%10), Closed: true})
	}
	strat.mu.Lock()
	n := len(strat.closes)
	strat.mu.Unlock()
	if n > maxCloses {
		t.Fatalf("close window exceeded cap: %d", n)
	}
}
