// Package metrics exposes the syncer's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// hub sync
	HubSyncPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_hub_pages_fetched_total",
			Help: "Total number of pages fetched from the hub",
		},
		[]string{"entity"},
	)

	HubTicketsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncer_hub_tickets_ingested_total",
		Help: "Total number of tickets ingested from the hub ticket log",
	})

	HubLatestSeq = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syncer_hub_latest_seq",
		Help: "Highest hub ticket sequence currently stored",
	})

	// reconciliation
	ReconcileCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_reconcile_cycles_total",
			Help: "Reconciliation cycles per chain and result",
		},
		[]string{"chain", "result"},
	)

	TicketsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_tickets_finalized_total",
			Help: "Tickets transitioned to Finalized, per destination chain",
		},
		[]string{"chain"},
	)

	TicketsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_tickets_skipped_total",
			Help: "Single-ticket reconciliation attempts skipped on error",
		},
		[]string{"chain"},
	)

	TombstonesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_tombstones_created_total",
			Help: "Tickets demoted to tombstones, per custom chain",
		},
		[]string{"chain"},
	)

	// scheduler
	TaskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_task_runs_total",
			Help: "Scheduled task runs per task and result",
		},
		[]string{"task", "result"},
	)

	TaskPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_task_panics_total",
			Help: "Panics recovered inside scheduled task bodies",
		},
		[]string{"task"},
	)

	// database pool
	DBConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syncer_db_connections_open",
		Help: "Open database connections",
	})

	DBConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syncer_db_connections_idle",
		Help: "Idle database connections",
	})

	// events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncer_events_published_total",
			Help: "Ticket lifecycle events published to NATS",
		},
		[]string{"subject"},
	)
)
