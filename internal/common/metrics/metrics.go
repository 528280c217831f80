package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_poll_cycles_total",
			Help: "Total number of poll cycles by outcome",
		},
		[]string{"status"},
	)

	AlertsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_alerts_emitted_total",
			Help: "Total number of alerts handed to the emitter",
		},
		[]string{"kind", "channel"},
	)

	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_alerts_suppressed_total",
			Help: "Total number of alerts suppressed by the reconciler",
		},
		[]string{"reason"},
	)

	RemindersFiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_reminders_fired_total",
			Help: "Total number of reminders promoted into notifications",
		},
	)

	MutationSyncFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_mutation_sync_failures_total",
			Help: "Total number of feed mutation calls that failed after the optimistic local update",
		},
		[]string{"op"},
	)

	StoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_store_size",
			Help: "Current number of notifications held in the store",
		},
	)

	UnreadCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_unread_count",
			Help: "Current number of unread notifications in the store",
		},
	)
)
