package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RoomsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Live rooms currently held in memory",
		},
	)
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Open websocket connections",
		},
	)
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_moves_total",
			Help: "Accepted game moves by game id",
		},
		[]string{"game"},
	)
	ReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_reconnects_total",
			Help: "Session reconnect attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RoomsActive)
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(MovesTotal)
	prometheus.MustRegister(ReconnectsTotal)
}
