// Package scheduler owns user-defined reminders and promotes the ones that
// enter their lead-time window into reminder notifications.
package scheduler

import (
	"sync"
	"time"

	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/metrics"
	"notify-engine/internal/engine/store"
	"notify-engine/internal/models"

	"github.com/google/uuid"
)

// Input is the caller-facing shape for creating or replacing a reminder.
// EntityType accepts aliases; they are normalized on the way in.
type Input struct {
	ID           string
	Title        string
	Message      string
	ScheduledFor time.Time
	EntityType   string
	EntityID     string
	Recurrence   *models.Recurrence
	Active       *bool
}

// Scheduler holds the reminder collection. Firing goes through the store's
// local-insert path so the content-window dedup prevents a reminder from
// re-firing on every tick while it is still inside the window.
type Scheduler struct {
	mu        sync.Mutex
	reminders []*models.Reminder
	store     *store.Store
	logger    logger.Logger

	now func() time.Time
}

func New(st *store.Store, log logger.Logger) *Scheduler {
	return &Scheduler{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "scheduler"}),
		now:    time.Now,
	}
}

// SetClock overrides the time source (tests only).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Load replaces the collection with rehydrated reminders.
func (s *Scheduler) Load(reminders []models.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = make([]*models.Reminder, 0, len(reminders))
	for i := range reminders {
		r := reminders[i]
		r.EntityType = models.NormalizeEntityType(string(r.EntityType))
		s.reminders = append(s.reminders, &r)
	}
}

// Add creates a reminder, or replaces the existing one when the input
// carries a known id. Returns the reminder id.
func (s *Scheduler) Add(in Input) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.normalize(in)
	for i, existing := range s.reminders {
		if existing.ID == r.ID {
			s.reminders[i] = &r
			return r.ID
		}
	}
	s.reminders = append(s.reminders, &r)
	return r.ID
}

func (s *Scheduler) normalize(in Input) models.Reminder {
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}

	scheduledFor := in.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = s.now()
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return models.Reminder{
		ID:           id,
		Title:        in.Title,
		Message:      in.Message,
		ScheduledFor: scheduledFor,
		EntityType:   models.NormalizeEntityType(in.EntityType),
		EntityID:     in.EntityID,
		Recurrence:   in.Recurrence,
		Active:       active,
	}
}

// Update applies a partial mutation to the reminder with the given id.
// Updating an absent id is a no-op.
func (s *Scheduler) Update(id string, fn func(*models.Reminder)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reminders {
		if r.ID == id {
			fn(r)
			r.EntityType = models.NormalizeEntityType(string(r.EntityType))
			return true
		}
	}
	return false
}

// Remove deletes the reminder with the given id; absent ids are a no-op.
func (s *Scheduler) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reminders {
		if r.ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of all reminders.
func (s *Scheduler) List() []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Reminder, len(s.reminders))
	for i, r := range s.reminders {
		out[i] = *r
	}
	return out
}

// Check fires every active reminder whose scheduled time falls inside
// (now, now+lead]. Fired one-shot reminders go inactive; recurring ones
// advance to their next occurrence after now and stay active. Returns the
// notifications actually inserted (entries suppressed by the dedup window
// do not alert again).
func (s *Scheduler) Check(lead time.Duration) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dueWindow := now.Add(lead)

	var fired []models.Notification
	for _, r := range s.reminders {
		if !r.Active {
			continue
		}
		if !r.ScheduledFor.After(now) || r.ScheduledFor.After(dueWindow) {
			continue
		}

		n := models.Notification{
			Kind:     models.KindReminder,
			Title:    "Reminder: " + r.Title,
			Message:  r.Message,
			Priority: models.PriorityHigh,
			Entity: &models.EntityRef{
				Type: r.EntityType,
				ID:   r.EntityID,
			},
		}

		result := s.store.Insert(n)
		if result.Inserted {
			fired = append(fired, result.Notification)
			metrics.RemindersFiredTotal.Inc()
		}

		if r.Recurrence == nil {
			r.Active = false
			continue
		}

		// Advance until the next occurrence is in the future; repeated
		// steps cover reminders that sat overdue while the engine was
		// not running.
		next := r.Recurrence.Next(r.ScheduledFor)
		for !next.After(now) {
			next = r.Recurrence.Next(next)
		}
		r.ScheduledFor = next
	}

	return fired
}
