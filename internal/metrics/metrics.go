// Package metrics exposes Prometheus counters for the auth and scraping flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the set of measurements the HTTP layer reports.
type Recorder interface {
	RecordRegistration()
	RecordLogin(kind, outcome string)
	RecordAdminAction(action string)
	RecordScrapingSession(status string, leads int)
	RecordPasswordReset(stage string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	registrations  prometheus.Counter
	logins         *prometheus.CounterVec
	adminActions   *prometheus.CounterVec
	sessions       *prometheus.CounterVec
	leadsExported  prometheus.Counter
	passwordResets *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadgate_registrations_total",
			Help: "Accounts registered.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_logins_total",
			Help: "Login attempts by kind (user, admin) and outcome.",
		}, []string{"kind", "outcome"}),
		adminActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_admin_actions_total",
			Help: "Successful admin mutations by action.",
		}, []string{"action"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_scraping_sessions_total",
			Help: "Scraping sessions logged by status.",
		}, []string{"status"}),
		leadsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadgate_leads_exported_total",
			Help: "Leads reported by completed scraping sessions.",
		}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_password_resets_total",
			Help: "Password reset requests and completions.",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.adminActions,
		c.sessions,
		c.leadsExported,
		c.passwordResets,
	)
	return c
}

// RecordRegistration counts a new account.
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin counts a login attempt by kind (user or admin) and outcome.
func (c *Collector) RecordLogin(kind, outcome string) {
	c.logins.WithLabelValues(kind, outcome).Inc()
}

// RecordAdminAction counts a successful admin mutation.
func (c *Collector) RecordAdminAction(action string) {
	c.adminActions.WithLabelValues(action).Inc()
}

// RecordScrapingSession counts a logged session and adds its leads to the export total.
func (c *Collector) RecordScrapingSession(status string, leads int) {
	c.sessions.WithLabelValues(status).Inc()
	if leads > 0 {
		c.leadsExported.Add(float64(leads))
	}
}

// RecordPasswordReset counts a reset request or completion.
func (c *Collector) RecordPasswordReset(stage string) {
	c.passwordResets.WithLabelValues(stage).Inc()
}

// Handler returns the HTTP handler serving gatherer in the exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards every measurement.
type Nop struct{}

func (Nop) RecordRegistration()               {}
func (Nop) RecordLogin(string, string)        {}
func (Nop) RecordAdminAction(string)          {}
func (Nop) RecordScrapingSession(string, int) {}
func (Nop) RecordPasswordReset(string)        {}
