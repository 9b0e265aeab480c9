package game

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metric descriptors for the engine.
type Metrics struct {
	game *Game

	requestsCreated    prometheus.Counter
	requestsOpen       prometheus.Gauge
	requestsArchived   prometheus.Gauge
	notificationsTotal *prometheus.CounterVec
	cleanupDeleted     prometheus.Counter
	actorsConnected    prometheus.Gauge
	guestsActive       prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics for the game.
func NewMetrics(game *Game) *Metrics {
	m := &Metrics{
		game: game,
		requestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emberfall_requests_created_total",
			Help: "Total requests created since server start.",
		}),
		requestsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emberfall_requests_open",
			Help: "Number of requests currently in the active view.",
		}),
		requestsArchived: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emberfall_requests_archived",
			Help: "Number of requests currently in the archive view.",
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emberfall_request_notifications_total",
			Help: "Request notifications delivered, by delivery mode.",
		}, []string{"mode"}),
		cleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emberfall_request_cleanup_deleted_total",
			Help: "Archived requests deleted by retention cleanup.",
		}),
		actorsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emberfall_actors_connected",
			Help: "Number of currently connected actors.",
		}),
		guestsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emberfall_guests_active",
			Help: "Number of active guest actors.",
		}),
	}

	prometheus.MustRegister(
		m.requestsCreated,
		m.requestsOpen,
		m.requestsArchived,
		m.notificationsTotal,
		m.cleanupDeleted,
		m.actorsConnected,
		m.guestsActive,
	)

	return m
}

// RequestCreated increments the created-requests counter. A nil receiver is
// a no-op so callers don't have to care whether metrics are enabled.
func (m *Metrics) RequestCreated() {
	if m == nil {
		return
	}
	m.requestsCreated.Inc()
}

// NotificationDelivered counts one delivered notification. live selects the
// delivery mode label.
func (m *Metrics) NotificationDelivered(live bool) {
	if m == nil {
		return
	}
	mode := "queued"
	if live {
		mode = "live"
	}
	m.notificationsTotal.WithLabelValues(mode).Inc()
}

// CleanupDeleted adds to the retention-cleanup deletion counter.
func (m *Metrics) CleanupDeleted(n int) {
	if m == nil {
		return
	}
	m.cleanupDeleted.Add(float64(n))
}

// Update refreshes all gauge metrics from current game state.
func (m *Metrics) Update() {
	open, archived := 0, 0
	for _, r := range m.game.Store.All() {
		if r.InArchive() {
			archived++
		} else {
			open++
		}
	}
	m.requestsOpen.Set(float64(open))
	m.requestsArchived.Set(float64(archived))
	m.actorsConnected.Set(float64(len(m.game.Dir.Connected())))
	m.guestsActive.Set(float64(m.game.Guests.Count()))
}

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		promhttp.Handler().ServeHTTP(w, r)
	})
}
