package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "multibot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.DashboardPort != 5002 {
		t.Fatalf("unexpected dashboard port: %d", cfg.App.DashboardPort)
	}
	if cfg.Trading.Symbol != "ETHUSDT" {
		t.Fatalf("unexpected symbol: %s", cfg.Trading.Symbol)
	}
	if cfg.Trading.StopLoss != 0.015 {
		t.Fatalf("unexpected stop loss: %.3f", cfg.Trading.StopLoss)
	}
	if cfg.Indicators.EMAShort != 7 {
		t.Fatalf("unexpected ema short: %d", cfg.Indicators.EMAShort)
	}
	if cfg.Listing.ProfitTarget != 0.04 {
		t.Fatalf("unexpected listing profit target: %.2f", cfg.Listing.ProfitTarget)
	}
	if cfg.Volume.ScoreThreshold != 75 {
		t.Fatalf("unexpected score threshold: %.1f", cfg.Volume.ScoreThreshold)
	}
	if cfg.Paper.StartingCash != 5000 {
		t.Fatalf("unexpected starting cash: %.2f", cfg.Paper.StartingCash)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join("testdata", "minimal.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "multi-bot-trading-dashboard" {
		t.Fatalf("expected default app name, got %s", cfg.App.Name)
	}
	if cfg.App.DashboardPort != 5002 {
		t.Fatalf("expected default port 5002, got %d", cfg.App.DashboardPort)
	}
	if cfg.Trading.Symbol != "BTCUSDT" {
		t.Fatalf("expected default symbol, got %s", cfg.Trading.Symbol)
	}
	if cfg.Indicators.EMALong != 21 {
		t.Fatalf("expected default ema long 21, got %d", cfg.Indicators.EMALong)
	}
	if cfg.Volume.TopN != 5 {
		t.Fatalf("expected default top n 5, got %d", cfg.Volume.TopN)
	}
	if cfg.Paper.JournalPath != "logs/orders.jsonl" {
		t.Fatalf("expected default journal path, got %s", cfg.Paper.JournalPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestBaseAsset(t *testing.T) {
	if got := (Trading{Symbol: "BTCUSDT"}).BaseAsset(); got != "BTC" {
		t.Fatalf("expected BTC, got %s", got)
	}
	if got := (Trading{Symbol: "SOLUSDT"}).BaseAsset(); got != "SOL" {
		t.Fatalf("expected SOL, got %s", got)
	}
}

func TestEnvValidate(t *testing.T) {
	e := Env{DryRun: true}
	if err := e.Validate(); err != nil {
		t.Fatalf("dry run should not require credentials: %v", err)
	}

	e = Env{DryRun: false}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected error for live mode without credentials")
	}

	e = Env{DryRun: false, APIKey: "k", APISecret: "s"}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected credentials to satisfy live mode: %v", err)
	}
}

func TestEnvBaseURL(t *testing.T) {
	e := Env{Live: false, TestnetAPIURL: "https://testnet.binance.vision", ProdAPIURL: "https://api.binance.com"}
	if e.BaseURL() != "https://testnet.binance.vision" {
		t.Fatalf("expected testnet url, got %s", e.BaseURL())
	}
	e.Live = true
	if e.BaseURL() != "https://api.binance.com" {
		t.Fatalf("expected prod url, got %s", e.BaseURL())
	}
}
