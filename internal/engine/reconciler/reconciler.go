// Package reconciler merges poll batches from the server feed into the
// session store without duplicating entries and without re-alerting for
// records the user has already seen.
package reconciler

import (
	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/metrics"
	"notify-engine/internal/engine/store"
	"notify-engine/internal/models"
)

// Reconciler tracks which server ids have been merged at least once. The
// seen-set only suppresses repeat alerts; store uniqueness rests on id
// equality inside the store itself.
type Reconciler struct {
	store  *store.Store
	seen   map[string]struct{}
	synced bool
	logger logger.Logger
}

func New(st *store.Store, log logger.Logger) *Reconciler {
	return &Reconciler{
		store:  st,
		seen:   make(map[string]struct{}),
		logger: log.WithFields(map[string]interface{}{"component": "reconciler"}),
	}
}

// Apply merges one poll batch in delivery order and returns the entries that
// should alert the user. An item never alerts when
//   - this is the first batch since the engine started (hydration is silent),
//   - its id was already seen in an earlier cycle, or
//   - it arrives already read.
func (r *Reconciler) Apply(batch []models.Notification) []models.Notification {
	initialSync := !r.synced

	var toAlert []models.Notification
	for _, item := range batch {
		if item.ID == "" {
			// Feed records without an id cannot be reconciled across
			// cycles; drop rather than let them multiply.
			r.logger.Warn("feed item without id skipped", map[string]interface{}{
				"title": item.Title,
			})
			continue
		}

		_, alreadySeen := r.seen[item.ID]
		result := r.store.Insert(item)

		switch {
		case initialSync:
			metrics.AlertsSuppressedTotal.WithLabelValues("bootstrap").Inc()
		case alreadySeen:
			metrics.AlertsSuppressedTotal.WithLabelValues("seen").Inc()
		case item.Read:
			metrics.AlertsSuppressedTotal.WithLabelValues("read").Inc()
		default:
			toAlert = append(toAlert, result.Notification)
		}

		r.seen[item.ID] = struct{}{}
	}

	r.synced = true
	return toAlert
}

// Seen reports whether an id has been merged in any earlier batch.
func (r *Reconciler) Seen(id string) bool {
	_, ok := r.seen[id]
	return ok
}

// Bootstrapped reports whether the first poll cycle has completed.
func (r *Reconciler) Bootstrapped() bool {
	return r.synced
}
