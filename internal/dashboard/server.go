// Package dashboard serves the web UI and control API for the bot fleet.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"multibot-go/internal/config"
	"multibot-go/internal/exchange"
	"multibot-go/internal/manager"
	"multibot-go/internal/model"
	"multibot-go/internal/paper"
)

// ordersLimit caps how many recent orders the API returns.
const ordersLimit = 50

// ForceTrader is the manual-entry hook the scalping bot provides.
type ForceTrader interface {
	ForceTrade(ctx context.Context) (model.Order, error)
}

// Server hosts the dashboard page and the JSON control API.
type Server struct {
	cfg     *config.Config
	env     *config.Env
	mgr     *manager.Manager
	account *paper.Account
	client  exchange.Client
	force   ForceTrader
	log     zerolog.Logger
	engine  *gin.Engine
}

func New(cfg *config.Config, env *config.Env, mgr *manager.Manager, account *paper.Account, client exchange.Client, force ForceTrader, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		env:     env,
		mgr:     mgr,
		account: account,
		client:  client,
		force:   force,
		log:     log.With().Str("component", "dashboard").Logger(),
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), RequestID(), Logger(s.log), CORS())
	s.routes()
	return s
}

func (s *Server) routes() {
	index := filepath.Join(s.cfg.App.TemplatesDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		s.engine.LoadHTMLFiles(index)
		s.engine.GET("/", s.handleIndex)
	} else {
		s.log.Warn().Str("path", index).Msg("dashboard template missing, serving placeholder")
		s.engine.GET("/", func(c *gin.Context) {
			c.String(http.StatusOK, "%s\n", s.cfg.App.Name)
		})
	}

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/stats", s.handleStats)
		api.GET("/orders", s.handleOrders)
		api.GET("/balance", s.handleBalance)
		api.GET("/config", s.handleConfig)
		api.POST("/start", s.handleStartAll)
		api.POST("/stop", s.handleStopAll)
		api.POST("/start-bot/:name", s.handleStartBot)
		api.POST("/stop-bot/:name", s.handleStopBot)
		api.POST("/force-trade", s.handleForceTrade)
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve starts the HTTP listener in the background and returns the server
// for shutdown control.
func (s *Server) Serve() *http.Server {
	addr := fmt.Sprintf("%s:%d", s.cfg.App.DashboardHost, s.cfg.App.DashboardPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("dashboard server stopped")
		}
	}()
	return srv
}
