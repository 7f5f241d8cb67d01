// Package metrics holds the Prometheus instruments for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsClassified   *prometheus.CounterVec
	EventsUnclassified prometheus.Counter
	AccountsCreated    prometheus.Counter
	WarningFlips       *prometheus.CounterVec
	SweepRuns          prometheus.Counter
	Imports            prometheus.Counter
	ImportedDomains    prometheus.Counter
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pwledger_events_classified_total",
			Help: "Browser signals classified into a lifecycle event, by kind",
		}, []string{"kind"}),
		EventsUnclassified: factory.NewCounter(prometheus.CounterOpts{
			Name: "pwledger_events_unclassified_total",
			Help: "Browser signals that produced no classification",
		}),
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pwledger_accounts_created_total",
			Help: "Account records created",
		}),
		WarningFlips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pwledger_warning_flips_total",
			Help: "Warning flag flips persisted, by direction",
		}, []string{"direction"}),
		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "pwledger_sweep_runs_total",
			Help: "Full expiry sweeps executed",
		}),
		Imports: factory.NewCounter(prometheus.CounterOpts{
			Name: "pwledger_imports_total",
			Help: "CSV imports processed",
		}),
		ImportedDomains: factory.NewCounter(prometheus.CounterOpts{
			Name: "pwledger_imported_domains_total",
			Help: "Unique domains imported from CSV files",
		}),
	}
}

func (m *Metrics) IncEventClassified(kind string) {
	m.EventsClassified.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncEventUnclassified() {
	m.EventsUnclassified.Inc()
}

func (m *Metrics) IncAccountsCreated() {
	m.AccountsCreated.Inc()
}

func (m *Metrics) IncWarningFlips(on bool) {
	direction := "off"
	if on {
		direction = "on"
	}
	m.WarningFlips.WithLabelValues(direction).Inc()
}

func (m *Metrics) IncSweepRuns() {
	m.SweepRuns.Inc()
}

func (m *Metrics) IncImports() {
	m.Imports.Inc()
}

func (m *Metrics) AddImportedDomains(n int) {
	m.ImportedDomains.Add(float64(n))
}
