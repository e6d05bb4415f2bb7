package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"multibot-go/internal/bot"
	"multibot-go/internal/config"
	"multibot-go/internal/dashboard"
	"multibot-go/internal/exchange"
	"multibot-go/internal/execution"
	"multibot-go/internal/manager"
	"multibot-go/internal/metrics"
	"multibot-go/internal/model"
	"multibot-go/internal/notify"
	"multibot-go/internal/paper"
	"multibot-go/internal/risk"
	"multibot-go/internal/util"
)

// orderFanout journals every fill and mirrors it to Telegram.
type orderFanout struct {
	journal  *paper.Journal
	telegram *notify.Telegram
}

func (f *orderFanout) Record(order model.Order) {
	if f.journal != nil {
		f.journal.Record(order)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	f.telegram.NotifyOrder(ctx, order)
}

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to YAML config")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load environment")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := util.NewLogger(cfg.App.LogLevel)
	if err := env.Validate(); err != nil {
		log.Fatal().Err(err).Msg("environment invalid")
	}

	for _, dir := range []string{cfg.App.LogsDir, cfg.App.TemplatesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("create directory")
		}
	}

	metricsSrv := metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := exchange.NewBinanceClient(env.BaseURL(), env.APIKey, env.APISecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("exchange client")
	}

	journal, err := paper.NewJournal(cfg.Paper.JournalPath)
	if err != nil {
		log.Fatal().Err(err).Msg("order journal")
	}
	defer journal.Close()

	telegram := notify.NewTelegram(env.TelegramBotToken, env.TelegramChatID, log)
	recorder := &orderFanout{journal: journal, telegram: telegram}

	account := paper.NewAccount(cfg.Paper.StartingCash)
	var exec execution.Executor
	var cash bot.CashSource
	if env.DryRun {
		exec = execution.NewPaper(account)
		cash = account
		log.Info().Float64("cash", cfg.Paper.StartingCash).Msg("dry run, orders fill against the paper account")
	} else {
		exec = execution.NewLive(client, log)
		cash = bot.ExchangeCash{Client: client, Asset: cfg.Trading.QuoteAsset()}
		log.Warn().Bool("live", env.Live).Msg("orders will be sent to the exchange")
	}

	limits := risk.Limits{
		MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade,
		DailyLossFraction:   cfg.Risk.DailyLossLimit,
		DrawdownFraction:    cfg.Risk.MaxDrawdown,
	}
	monitor := risk.NewMonitor(limits, cfg.Paper.StartingCash)
	go dailyReset(ctx, monitor, log)

	feed := exchange.NewKlineFeed(
		env.FeedProvider,
		[]string{cfg.Trading.Symbol},
		log,
		exchange.WithWSBase(env.WSBaseURL),
	)

	scalper := bot.NewScalping(cfg, client, exec, feed, monitor, recorder, log)
	mgr := manager.New(ctx, log)
	mgr.Register(scalper)
	mgr.Register(bot.NewNewListing(cfg, client, exec, cash, recorder, log))
	mgr.Register(bot.NewHighVolume(cfg, client, exec, cash, recorder, log))
	mgr.StartAll()

	srv := dashboard.New(cfg, &env, mgr, account, client, scalper, log).Serve()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	mgr.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics shutdown")
	}
}

// dailyReset clears the daily loss counter at each UTC midnight.
func dailyReset(ctx context.Context, monitor *risk.Monitor, log zerolog.Logger) {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			monitor.ResetDaily()
			log.Info().Msg("daily loss counter reset")
		}
	}
}
