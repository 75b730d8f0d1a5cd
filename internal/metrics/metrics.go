package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics covers the realtime path: relayed messages, live rooms, presence
// table size. A nil *Metrics is valid and records nothing, so tests can
// instantiate rooms without touching the global prometheus registry.
type Metrics struct {
	messagesRelayed *prometheus.CounterVec
	activeRooms     prometheus.Gauge
	presenceEntries prometheus.Gauge
	activeSockets   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		messagesRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskhub",
			Subsystem: "realtime",
			Name:      "messages_relayed_total",
			Help:      "Messages fanned out to board rooms, by message type",
		}, []string{"type"}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taskhub",
			Subsystem: "realtime",
			Name:      "active_rooms",
			Help:      "Board rooms with at least one live socket",
		}),
		presenceEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taskhub",
			Subsystem: "realtime",
			Name:      "presence_entries",
			Help:      "Live cursor entries across all boards",
		}),
		activeSockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "taskhub",
			Subsystem: "realtime",
			Name:      "active_sockets",
			Help:      "Open websocket connections",
		}),
	}
	prometheus.MustRegister(m.messagesRelayed, m.activeRooms, m.presenceEntries, m.activeSockets)
	return m
}

// Close unregisters the collectors so another instance can be created.
func (m *Metrics) Close() {
	if m == nil {
		return
	}
	prometheus.Unregister(m.messagesRelayed)
	prometheus.Unregister(m.activeRooms)
	prometheus.Unregister(m.presenceEntries)
	prometheus.Unregister(m.activeSockets)
}

func (m *Metrics) RelayedMessage(msgType string) {
	if m == nil {
		return
	}
	m.messagesRelayed.WithLabelValues(msgType).Inc()
}

func (m *Metrics) RoomOpened() {
	if m == nil {
		return
	}
	m.activeRooms.Inc()
}

func (m *Metrics) RoomClosed() {
	if m == nil {
		return
	}
	m.activeRooms.Dec()
}

func (m *Metrics) PresenceAdded() {
	if m == nil {
		return
	}
	m.presenceEntries.Inc()
}

func (m *Metrics) PresenceRemoved() {
	if m == nil {
		return
	}
	m.presenceEntries.Dec()
}

func (m *Metrics) SocketOpened() {
	if m == nil {
		return
	}
	m.activeSockets.Inc()
}

func (m *Metrics) SocketClosed() {
	if m == nil {
		return
	}
	m.activeSockets.Dec()
}
