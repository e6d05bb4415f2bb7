package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"multibot-go/internal/manager"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"service": s.cfg.App.Name,
		"bots":    s.mgr.Names(),
		"dry_run": s.env.DryRun,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"total_bots":   s.mgr.Total(),
		"running_bots": s.mgr.Running(),
		"service":      s.cfg.App.Name,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats := s.mgr.Stats()
	var totalProfit float64
	var totalTrades int
	for _, st := range stats {
		totalProfit += st.TotalProfit
		totalTrades += st.TotalTrades
	}
	c.JSON(http.StatusOK, gin.H{
		"bots":         stats,
		"total_profit": totalProfit,
		"total_trades": totalTrades,
		"running_bots": s.mgr.Running(),
	})
}

func (s *Server) handleOrders(c *gin.Context) {
	orders := s.mgr.Orders()
	if len(orders) > ordersLimit {
		orders = orders[:ordersLimit]
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (s *Server) handleBalance(c *gin.Context) {
	if s.env.DryRun {
		snap := s.account.Snapshot(nil)
		c.JSON(http.StatusOK, gin.H{
			"mode":         "paper",
			"cash":         snap.Cash,
			"equity":       snap.Equity,
			"realized_pnl": snap.RealizedPnL,
			"positions":    snap.Positions,
		})
		return
	}
	balances, err := s.client.AccountBalances(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": "live", "balances": balances})
}

// handleConfig reports runtime settings. Credentials never appear here: the
// YAML config carries none and the env struct is not serialized.
func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"config":  s.cfg,
		"dry_run": s.env.DryRun,
		"live":    s.env.Live,
	})
}

func (s *Server) handleStartAll(c *gin.Context) {
	s.mgr.StartAll()
	c.JSON(http.StatusOK, gin.H{"status": "started", "running_bots": s.mgr.Running()})
}

func (s *Server) handleStopAll(c *gin.Context) {
	s.mgr.StopAll()
	c.JSON(http.StatusOK, gin.H{"status": "stopped", "running_bots": s.mgr.Running()})
}

func (s *Server) handleStartBot(c *gin.Context) {
	name := c.Param("name")
	if err := s.mgr.StartBot(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, manager.ErrUnknownBot) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started", "bot": name})
}

func (s *Server) handleStopBot(c *gin.Context) {
	name := c.Param("name")
	if err := s.mgr.StopBot(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, manager.ErrUnknownBot) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped", "bot": name})
}

// handleForceTrade places a manual market entry. Disabled outside dry-run
// so a stray click cannot spend real balance.
func (s *Server) handleForceTrade(c *gin.Context) {
	if s.force == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no bot supports forced trades"})
		return
	}
	if !s.env.DryRun {
		c.JSON(http.StatusForbidden, gin.H{"error": "forced trades are only available in dry-run mode"})
		return
	}
	order, err := s.force.ForceTrade(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "executed", "order": order})
}
