// Command status queries a running dashboard and prints a fleet summary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"multibot-go/internal/model"
)

type healthResponse struct {
	Status      string `json:"status"`
	TotalBots   int    `json:"total_bots"`
	RunningBots int    `json:"running_bots"`
	Service     string `json:"service"`
}

type statsResponse struct {
	Bots        []model.Stats `json:"bots"`
	TotalProfit float64       `json:"total_profit"`
	TotalTrades int           `json:"total_trades"`
}

type ordersResponse struct {
	Orders []model.Order `json:"orders"`
	Count  int           `json:"count"`
}

func fetch(client *http.Client, base, path string, out any) error {
	resp, err := client.Get(base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func main() {
	addr := flag.String("addr", "http://localhost:5002", "dashboard base URL")
	showOrders := flag.Int("orders", 5, "how many recent orders to print")
	flag.Parse()

	base := strings.TrimSuffix(*addr, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	var health healthResponse
	if err := fetch(client, base, "/api/health", &health); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %s (%d/%d bots running)\n", health.Service, health.Status, health.RunningBots, health.TotalBots)

	var stats statsResponse
	if err := fetch(client, base, "/api/stats", &stats); err != nil {
		fmt.Fprintf(os.Stderr, "stats: %v\n", err)
		os.Exit(1)
	}
	for _, b := range stats.Bots {
		state := "stopped"
		if b.Running {
			state = "running"
		}
		fmt.Printf("  %-12s %-8s trades=%d win=%.1f%% profit=%.4f positions=%d\n",
			b.Name, state, b.TotalTrades, b.WinRate, b.TotalProfit, b.CurrentPositions)
	}
	fmt.Printf("  total: trades=%d profit=%.4f\n", stats.TotalTrades, stats.TotalProfit)

	if *showOrders <= 0 {
		return
	}
	var orders ordersResponse
	if err := fetch(client, base, "/api/orders", &orders); err != nil {
		fmt.Fprintf(os.Stderr, "orders: %v\n", err)
		os.Exit(1)
	}
	if orders.Count == 0 {
		fmt.Println("  no orders yet")
		return
	}
	fmt.Println("recent orders:")
	for i, o := range orders.Orders {
		if i >= *showOrders {
			break
		}
		fmt.Printf("  %s %-4s %-12s qty=%.6f price=%.6f %s\n",
			o.Timestamp.Format(time.RFC3339), o.Side, o.Symbol, o.Quantity, o.Price, o.Reason)
	}
}
