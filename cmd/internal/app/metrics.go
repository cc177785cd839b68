package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the portal's Prometheus registry and collectors. A private
// registry keeps tests isolated from the global default.
type Metrics struct {
	reg *prometheus.Registry

	logins    *prometheus.CounterVec
	checkins  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	guard     *prometheus.CounterVec
	proxied   prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		reg: reg,
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "portal",
			Name:      "login_attempts_total",
			Help:      "Operator login attempts by outcome.",
		}, []string{"outcome"}),
		checkins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "portal",
			Name:      "checkin_attempts_total",
			Help:      "Member QR check-in attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "session",
			Name:      "permission_refreshes_total",
			Help:      "Permission refresh resolutions by outcome.",
		}, []string{"outcome"}),
		guard: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "guard",
			Name:      "decisions_total",
			Help:      "Route guard decisions.",
		}, []string{"decision"}),
		proxied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Requests forwarded to the academy backend.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) LoginOutcome(outcome string) { m.logins.WithLabelValues(outcome).Inc() }

func (m *Metrics) CheckinOutcome(outcome string) { m.checkins.WithLabelValues(outcome).Inc() }

func (m *Metrics) RefreshOutcome(outcome string) { m.refreshes.WithLabelValues(outcome).Inc() }

func (m *Metrics) ProxyRequest() { m.proxied.Inc() }

func (m *Metrics) GuardDecision(allowed bool) {
	if allowed {
		m.guard.WithLabelValues("allowed").Inc()
		return
	}
	m.guard.WithLabelValues("redirected").Inc()
}
