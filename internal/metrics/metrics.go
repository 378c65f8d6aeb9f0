package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "simplemud"

// Metrics holds the server's Prometheus collectors. Each Metrics has its own
// registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	world    *game.World

	sessionsOpen     prometheus.Gauge
	sessionsTotal    prometheus.Counter
	commandsTotal    *prometheus.CounterVec
	deliveryFailures prometheus.Counter
	playersLoggedIn  prometheus.Gauge
	playersActive    prometheus.Gauge
	uptimeSeconds    prometheus.Gauge
}

func New(world *game.World) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		world:    world,
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Number of open client sessions.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions opened since server start.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed since server start, by verb.",
		}, []string{"verb"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Messages that could not be delivered to a player.",
		}),
		playersLoggedIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_logged_in",
			Help:      "Number of logged-in players.",
		}),
		playersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_active",
			Help:      "Number of players currently in the realm.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the world started.",
		}),
	}

	m.registry.MustRegister(
		m.sessionsOpen,
		m.sessionsTotal,
		m.commandsTotal,
		m.deliveryFailures,
		m.playersLoggedIn,
		m.playersActive,
		m.uptimeSeconds,
	)
	return m
}

// Observe sets the world the gauges are read from.
func (m *Metrics) Observe(w *game.World) {
	m.world = w
}

func (m *Metrics) SessionOpened() {
	m.sessionsOpen.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) SessionClosed() {
	m.sessionsOpen.Dec()
}

func (m *Metrics) CommandExecuted(verb string) {
	m.commandsTotal.WithLabelValues(verb).Inc()
}

// Update refreshes the gauges read from the world.
func (m *Metrics) Update() {
	if m.world == nil {
		return
	}
	var loggedIn, active int
	for _, p := range m.world.Players.All() {
		if p.LoggedIn() {
			loggedIn++
		}
		if p.Active() {
			active++
		}
	}
	m.playersLoggedIn.Set(float64(loggedIn))
	m.playersActive.Set(float64(active))
	m.uptimeSeconds.Set(m.world.Uptime().Seconds())
}

// Tick refreshes the world gauges once per driver tick.
func (m *Metrics) Tick(context.Context) error {
	m.Update()
	return nil
}

// Handler serves the registry, updating the world gauges first.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		inner.ServeHTTP(w, r)
	})
}

// Server exposes Metrics over HTTP at /metrics.
type Server struct {
	addr    string
	metrics *Metrics
}

func NewServer(addr string, m *Metrics) *Server {
	return &Server{addr: addr, metrics: m}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	svr := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svr.Shutdown(shutdownCtx); err != nil {
			slog.Warn("stopping metrics server", "error", err)
		}
	}()

	slog.InfoContext(ctx, "serving metrics", "addr", s.addr)
	err := svr.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving metrics on %s: %w", s.addr, err)
	}
	return nil
}
