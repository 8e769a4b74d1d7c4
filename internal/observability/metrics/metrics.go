package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics exposes counters for the ledger sync engine.
type Metrics struct {
	entriesCreated prometheus.Counter
	syncRuns       prometheus.Counter
	syncFailures   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkledger_income_entries_created_total",
			Help: "Income entries created from concession payments.",
		}),
		syncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkledger_sync_runs_total",
			Help: "Reconciliation sweeps started.",
		}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkledger_sync_item_failures_total",
			Help: "Payments skipped during reconciliation due to errors.",
		}),
	}
	reg.MustRegister(m.entriesCreated, m.syncRuns, m.syncFailures)
	return m
}

func (m *Metrics) IncEntriesCreated() { m.entriesCreated.Inc() }
func (m *Metrics) IncSyncRuns()       { m.syncRuns.Inc() }
func (m *Metrics) IncSyncFailures()   { m.syncFailures.Inc() }

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func provide(reg *prometheus.Registry) *Metrics {
	return New(reg)
}

// Module provides the prometheus registry and engine counters.
var Module = fx.Module("observability.metrics",
	fx.Provide(
		provideRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		provide,
	),
)
