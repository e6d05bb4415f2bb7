package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	KlinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "klines_total", Help: "Count of closed klines consumed"},
		[]string{"symbol"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"bot", "side"},
	)
	RunningBots = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "running_bots", Help: "Number of bots currently running"},
	)
)

func init() {
	prometheus.MustRegister(KlinesTotal, OrdersTotal, RunningBots)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
