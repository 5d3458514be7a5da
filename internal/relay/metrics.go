package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "frames_total",
		Help:      "Total decoded SSE frames",
	})

	framesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped before delivery",
	}, []string{"reason"})

	reconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "reconnects_total",
		Help:      "Reconnect attempts after a failed or ended stream",
	})

	notificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "notifications_total",
		Help:      "Turn-completion notifications fired",
	})

	connectedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "connected",
		Help:      "1 while the upstream stream is live",
	})

	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "subscribers",
		Help:      "Registered downstream subscribers",
	})

	bufferSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentrelay",
		Subsystem: "relay",
		Name:      "replay_buffer_size",
		Help:      "Events currently held in the replay buffer",
	})
)

func init() {
	prometheus.MustRegister(
		framesTotal,
		framesDroppedTotal,
		reconnectsTotal,
		notificationsTotal,
		connectedGauge,
		subscribersGauge,
		bufferSizeGauge,
	)
}
