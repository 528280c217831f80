package alert

import (
	"context"

	"notify-engine/internal/common/errors"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/metrics"
	"notify-engine/internal/models"
)

// Dispatcher fans one notification out to the enabled channels. Channel
// enablement comes from the persisted user settings, read fresh per
// delivery; channel availability (push endpoint registered, audio output
// unlocked) is a precondition checked on top of the toggle.
type Dispatcher struct {
	settings func() models.Settings
	email    Emitter
	push     *PushEmitter
	system   SystemNotifier
	cue      Cue
	errs     *errors.Handler
	logger   logger.Logger
}

func NewDispatcher(settings func() models.Settings, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		errs:     errors.NewHandler(log),
		logger:   log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// WithEmail attaches the email channel.
func (d *Dispatcher) WithEmail(email Emitter) *Dispatcher {
	d.email = email
	return d
}

// WithPush attaches the push channel.
func (d *Dispatcher) WithPush(push *PushEmitter) *Dispatcher {
	d.push = push
	return d
}

// WithSystem attaches the OS-level notification channel.
func (d *Dispatcher) WithSystem(system SystemNotifier) *Dispatcher {
	d.system = system
	return d
}

// WithCue attaches the audible cue.
func (d *Dispatcher) WithCue(cue Cue) *Dispatcher {
	d.cue = cue
	return d
}

// Deliver sends one notification through every channel that is both enabled
// and available. Delivery failures are logged and counted; one channel
// failing never blocks the others, and Deliver itself never fails.
func (d *Dispatcher) Deliver(ctx context.Context, n models.Notification) {
	current := d.settings()

	if current.EmailNotifications && d.email != nil {
		if err := Emit(ctx, d.email, n); err != nil {
			d.errs.Handle("deliver email alert", err)
		} else {
			metrics.AlertsEmittedTotal.WithLabelValues(string(n.Kind), "email").Inc()
		}
	}

	if current.PushNotifications && d.push != nil && d.push.Registered() {
		if err := Emit(ctx, d.push, n); err != nil {
			d.errs.Handle("deliver push alert", err)
		} else {
			metrics.AlertsEmittedTotal.WithLabelValues(string(n.Kind), "push").Inc()
		}
	}

	if current.BrowserNotifications && d.system != nil && d.system.Granted() {
		if err := Emit(ctx, d.system, n); err != nil {
			d.errs.Handle("deliver system alert", err)
		} else {
			metrics.AlertsEmittedTotal.WithLabelValues(string(n.Kind), "system").Inc()
		}
	}

	if current.SoundEnabled && d.cue != nil && d.cue.Unlocked() {
		d.cue.Play(n.Kind)
		metrics.AlertsEmittedTotal.WithLabelValues(string(n.Kind), "sound").Inc()
	}
}
