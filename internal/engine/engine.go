// Package engine ties the feed, store, reconciler, scheduler and settings
// together behind one facade and drives them from a single goroutine.
package engine

import (
	"context"
	"sync"
	"time"

	"notify-engine/internal/common/config"
	"notify-engine/internal/common/errors"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/metrics"
	"notify-engine/internal/common/observability"
	"notify-engine/internal/engine/reconciler"
	"notify-engine/internal/engine/scheduler"
	"notify-engine/internal/engine/settings"
	"notify-engine/internal/engine/store"
	"notify-engine/internal/models"
)

// Feed is the server-side notification source and mutation sink.
type Feed interface {
	List(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// Alerter receives the notifications that should reach the user.
type Alerter interface {
	Deliver(ctx context.Context, n models.Notification)
}

// StateStore persists reminders and settings across restarts.
type StateStore interface {
	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminders(ctx context.Context, reminders []models.Reminder) error
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// Engine owns all mutable notification state. Both periodic cycles run on
// the goroutine inside Run; public operations take their own locks on the
// subcomponents, so callers may invoke them from anywhere.
type Engine struct {
	cfg      config.EngineConfig
	feed     Feed
	alerter  Alerter
	state    StateStore
	obs      *observability.Observability
	store    *store.Store
	recon    *reconciler.Reconciler
	sched    *scheduler.Scheduler
	settings *settings.Store
	errs     *errors.Handler
	logger   logger.Logger

	mu           sync.Mutex
	serverUnread int
}

func New(cfg config.EngineConfig, feed Feed, alerter Alerter, state StateStore, obs *observability.Observability, log logger.Logger) *Engine {
	st := store.New(log, cfg.ErrorWindow(), cfg.DefaultWindow())
	return &Engine{
		cfg:      cfg,
		feed:     feed,
		alerter:  alerter,
		state:    state,
		obs:      obs,
		store:    st,
		recon:    reconciler.New(st, log),
		sched:    scheduler.New(st, log),
		settings: settings.New(),
		errs:     errors.NewHandler(log),
		logger:   log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// Store exposes the session store (tests only).
func (e *Engine) Store() *store.Store {
	return e.store
}

// Scheduler exposes the reminder scheduler (tests only).
func (e *Engine) Scheduler() *scheduler.Scheduler {
	return e.sched
}

// Hydrate loads persisted reminders and settings. Load failures keep the
// defaults; the engine starts either way.
func (e *Engine) Hydrate(ctx context.Context) {
	reminders, err := e.state.LoadReminders(ctx)
	if err != nil {
		e.errs.Handle("load reminders", err)
	} else {
		e.sched.Load(reminders)
	}

	loaded, err := e.state.LoadSettings(ctx)
	if err != nil {
		e.errs.Handle("load settings", err)
	}
	e.settings.Replace(loaded)
}

// Run drives both periodic cycles until the context is cancelled. The first
// poll and reminder check happen immediately, not one interval in.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("engine started", map[string]interface{}{
		"pollInterval":     e.cfg.PollEvery().String(),
		"reminderInterval": e.cfg.ReminderEvery().String(),
	})

	pollTicker := time.NewTicker(e.cfg.PollEvery())
	defer pollTicker.Stop()
	reminderTicker := time.NewTicker(e.cfg.ReminderEvery())
	defer reminderTicker.Stop()

	e.PollCycle(ctx)
	e.ReminderCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", nil)
			return
		case <-pollTicker.C:
			e.PollCycle(ctx)
		case <-reminderTicker.C:
			e.ReminderCycle(ctx)
		}
	}
}

// PollCycle fetches the feed, merges it into the store and alerts for the
// entries the reconciler lets through. Any failure leaves local state as it
// was; the next tick retries.
func (e *Engine) PollCycle(ctx context.Context) {
	start := time.Now()

	batch, err := e.feed.List(ctx)
	if err != nil {
		e.errs.Handle("poll feed", err)
		metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		e.obs.RecordCycle(ctx, "poll", "error")
		return
	}

	for _, n := range e.recon.Apply(batch) {
		e.alerter.Deliver(ctx, n)
	}

	if count, err := e.feed.UnreadCount(ctx); err != nil {
		e.errs.Handle("poll unread count", err)
	} else {
		e.mu.Lock()
		e.serverUnread = count
		e.mu.Unlock()
	}

	metrics.PollCyclesTotal.WithLabelValues("success").Inc()
	metrics.StoreSize.Set(float64(e.store.Len()))
	metrics.UnreadCount.Set(float64(e.store.UnreadCount()))
	e.obs.RecordCycle(ctx, "poll", "success")
	e.obs.RecordCycleDuration(ctx, "poll", time.Since(start))
}

// ReminderCycle fires due reminders and alerts for them. Fired reminders
// change state (deactivated or advanced), so the collection is flushed
// afterwards.
func (e *Engine) ReminderCycle(ctx context.Context) {
	start := time.Now()

	fired := e.sched.Check(e.settings.Get().Lead())
	for _, n := range fired {
		e.alerter.Deliver(ctx, n)
	}

	if len(fired) > 0 {
		e.flushReminders(ctx)
	}

	e.obs.RecordCycle(ctx, "reminder", "success")
	e.obs.RecordCycleDuration(ctx, "reminder", time.Since(start))
}

// Notifications returns the session's notifications, newest first.
func (e *Engine) Notifications() []models.Notification {
	return e.store.List()
}

// UnreadCount returns the locally computed unread count.
func (e *Engine) UnreadCount() int {
	return e.store.UnreadCount()
}

// ServerUnreadCount returns the unread counter reported by the feed on the
// last successful poll.
func (e *Engine) ServerUnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serverUnread
}

// MarkRead flips one notification to read locally and best-effort syncs the
// flip to the server. The local state is kept even when the sync fails.
func (e *Engine) MarkRead(ctx context.Context, id string) {
	e.store.MarkRead(id)
	e.syncMutation(ctx, "mark_read", func() error { return e.feed.MarkRead(ctx, id) })
}

// MarkAllRead flips every notification to read, syncing best-effort.
func (e *Engine) MarkAllRead(ctx context.Context) {
	e.store.MarkAllRead()
	e.syncMutation(ctx, "mark_all_read", func() error { return e.feed.MarkAllRead(ctx) })
}

// Remove deletes one notification locally, syncing best-effort.
func (e *Engine) Remove(ctx context.Context, id string) {
	e.store.Remove(id)
	e.syncMutation(ctx, "delete", func() error { return e.feed.Delete(ctx, id) })
}

// Clear empties the store, syncing best-effort.
func (e *Engine) Clear(ctx context.Context) {
	e.store.Clear()
	e.syncMutation(ctx, "delete_all", func() error { return e.feed.DeleteAll(ctx) })
}

func (e *Engine) syncMutation(ctx context.Context, op string, fn func() error) {
	if err := fn(); err != nil {
		metrics.MutationSyncFailuresTotal.WithLabelValues(op).Inc()
		e.errs.Handle("sync "+op, err)
	}
	metrics.StoreSize.Set(float64(e.store.Len()))
	metrics.UnreadCount.Set(float64(e.store.UnreadCount()))
}

// NotifySuccess inserts a local success notification and alerts for it.
func (e *Engine) NotifySuccess(ctx context.Context, title, message string) string {
	return e.notify(ctx, models.Notification{
		Kind:        models.KindSuccess,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityMedium,
		AutoDismiss: true,
		Duration:    5 * time.Second,
	})
}

// NotifyError inserts a local error notification. Errors are high priority
// and never auto-dismiss.
func (e *Engine) NotifyError(ctx context.Context, title, message string) string {
	return e.notify(ctx, models.Notification{
		Kind:     models.KindError,
		Title:    title,
		Message:  message,
		Priority: models.PriorityHigh,
	})
}

// NotifyWarning inserts a local warning notification and alerts for it.
func (e *Engine) NotifyWarning(ctx context.Context, title, message string) string {
	return e.notify(ctx, models.Notification{
		Kind:        models.KindWarning,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityMedium,
		AutoDismiss: true,
		Duration:    5 * time.Second,
	})
}

// NotifyInfo inserts a local info notification and alerts for it.
func (e *Engine) NotifyInfo(ctx context.Context, title, message string) string {
	return e.notify(ctx, models.Notification{
		Kind:        models.KindInfo,
		Title:       title,
		Message:     message,
		Priority:    models.PriorityLow,
		AutoDismiss: true,
		Duration:    5 * time.Second,
	})
}

func (e *Engine) notify(ctx context.Context, n models.Notification) string {
	result := e.store.Insert(n)
	if result.Inserted {
		e.alerter.Deliver(ctx, result.Notification)
	}
	metrics.StoreSize.Set(float64(e.store.Len()))
	metrics.UnreadCount.Set(float64(e.store.UnreadCount()))
	return result.Notification.ID
}

// AddReminder creates or replaces a reminder and flushes the collection.
func (e *Engine) AddReminder(ctx context.Context, in scheduler.Input) string {
	id := e.sched.Add(in)
	e.flushReminders(ctx)
	return id
}

// UpdateReminder applies a partial mutation and flushes when it changed
// anything.
func (e *Engine) UpdateReminder(ctx context.Context, id string, fn func(*models.Reminder)) bool {
	if !e.sched.Update(id, fn) {
		return false
	}
	e.flushReminders(ctx)
	return true
}

// RemoveReminder deletes a reminder and flushes when it existed.
func (e *Engine) RemoveReminder(ctx context.Context, id string) bool {
	if !e.sched.Remove(id) {
		return false
	}
	e.flushReminders(ctx)
	return true
}

// Reminders returns a copy of the reminder collection.
func (e *Engine) Reminders() []models.Reminder {
	return e.sched.List()
}

func (e *Engine) flushReminders(ctx context.Context) {
	if err := e.state.SaveReminders(ctx, e.sched.List()); err != nil {
		e.errs.Handle("flush reminders", err)
	}
}

// Settings returns the current settings.
func (e *Engine) Settings() models.Settings {
	return e.settings.Get()
}

// SettingsFunc returns a live accessor for the current settings, for wiring
// into the alert dispatcher.
func (e *Engine) SettingsFunc() func() models.Settings {
	return e.settings.Get
}

// UpdateSettings patches the settings and flushes the result.
func (e *Engine) UpdateSettings(ctx context.Context, p settings.Patch) models.Settings {
	updated := e.settings.Apply(p)
	if err := e.state.SaveSettings(ctx, updated); err != nil {
		e.errs.Handle("flush settings", err)
	}
	return updated
}
