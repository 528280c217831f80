// Package alert performs the user-facing side effects for notifications the
// reconciler decided to surface. The engine decides whether to alert; this
// package decides nothing, it only delivers.
package alert

import (
	"context"
	"time"

	"notify-engine/internal/models"
)

// Options carries presentation hints alongside an alert.
type Options struct {
	AutoDismiss bool
	Duration    time.Duration
	Entity      *models.EntityRef
}

// Emitter is the five-variant alert capability.
type Emitter interface {
	Success(ctx context.Context, title, message string, opts Options) error
	Error(ctx context.Context, title, message string, opts Options) error
	Warning(ctx context.Context, title, message string, opts Options) error
	Info(ctx context.Context, title, message string, opts Options) error
	Reminder(ctx context.Context, title, message string, opts Options) error
}

// Cue is the audible notification capability. Unlocked is an environment
// fact (audio output may be unavailable); it is checked before every Play,
// never re-derived here.
type Cue interface {
	Unlocked() bool
	Play(kind models.Kind)
}

// SystemNotifier posts notifications at the OS level. Granted reports
// whether the environment has authorized them; like Cue.Unlocked it is a
// fact to check, not to re-derive.
type SystemNotifier interface {
	Emitter
	Granted() bool
}

// Emit routes one notification to the matching emitter variant.
func Emit(ctx context.Context, e Emitter, n models.Notification) error {
	opts := Options{
		AutoDismiss: n.AutoDismiss,
		Duration:    n.Duration,
		Entity:      n.Entity,
	}

	switch n.Kind {
	case models.KindSuccess:
		return e.Success(ctx, n.Title, n.Message, opts)
	case models.KindError:
		return e.Error(ctx, n.Title, n.Message, opts)
	case models.KindWarning:
		return e.Warning(ctx, n.Title, n.Message, opts)
	case models.KindReminder:
		return e.Reminder(ctx, n.Title, n.Message, opts)
	default:
		return e.Info(ctx, n.Title, n.Message, opts)
	}
}
