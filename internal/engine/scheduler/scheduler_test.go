package scheduler

import (
	"testing"
	"time"

	"notify-engine/internal/common/logger"
	"notify-engine/internal/engine/store"
	"notify-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*store.Store, *Scheduler) {
	st := store.New(logger.NewTestLogger(t), 2*time.Minute, 5*time.Minute)
	st.SetClock(func() time.Time { return testNow })

	s := New(st, logger.NewTestLogger(t))
	s.SetClock(func() time.Time { return testNow })
	return st, s
}

func TestScheduler_Check_FiresInsideLeadWindow(t *testing.T) {
	tests := []struct {
		name         string
		scheduledFor time.Time
		wantFired    bool
	}{
		{"due in 10 minutes", testNow.Add(10 * time.Minute), true},
		{"due exactly at lead boundary", testNow.Add(15 * time.Minute), true},
		{"due past the window", testNow.Add(16 * time.Minute), false},
		{"already past", testNow.Add(-1 * time.Minute), false},
		{"due exactly now", testNow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s := newTestScheduler(t)
			s.Add(Input{Title: "Standup", ScheduledFor: tt.scheduledFor})

			fired := s.Check(15 * time.Minute)

			if tt.wantFired {
				assert.Len(t, fired, 1)
				assert.Equal(t, models.KindReminder, fired[0].Kind)
				assert.Equal(t, "Reminder: Standup", fired[0].Title)
				assert.Equal(t, models.PriorityHigh, fired[0].Priority)
			} else {
				assert.Empty(t, fired)
			}
		})
	}
}

func TestScheduler_Check_OneShotGoesInactive(t *testing.T) {
	_, s := newTestScheduler(t)
	id := s.Add(Input{Title: "Call customer", ScheduledFor: testNow.Add(5 * time.Minute)})

	assert.Len(t, s.Check(15*time.Minute), 1)

	reminders := s.List()
	assert.Len(t, reminders, 1)
	assert.Equal(t, id, reminders[0].ID)
	assert.False(t, reminders[0].Active)

	// Inactive reminders never fire again.
	assert.Empty(t, s.Check(15*time.Minute))
}

func TestScheduler_Check_RecurringAdvancesToFuture(t *testing.T) {
	tests := []struct {
		name       string
		recurrence models.Recurrence
		wantNext   time.Time
	}{
		{"daily", models.Recurrence{Type: models.RecurDaily, Interval: 1}, testNow.Add(5 * time.Minute).AddDate(0, 0, 1)},
		{"every two days", models.Recurrence{Type: models.RecurDaily, Interval: 2}, testNow.Add(5 * time.Minute).AddDate(0, 0, 2)},
		{"weekly", models.Recurrence{Type: models.RecurWeekly, Interval: 1}, testNow.Add(5 * time.Minute).AddDate(0, 0, 7)},
		{"monthly", models.Recurrence{Type: models.RecurMonthly, Interval: 1}, testNow.Add(5 * time.Minute).AddDate(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s := newTestScheduler(t)
			rec := tt.recurrence
			s.Add(Input{
				Title:        "Weekly report",
				ScheduledFor: testNow.Add(5 * time.Minute),
				Recurrence:   &rec,
			})

			assert.Len(t, s.Check(15*time.Minute), 1)

			reminders := s.List()
			assert.True(t, reminders[0].Active, "recurring reminders stay active")
			assert.Equal(t, tt.wantNext, reminders[0].ScheduledFor)
		})
	}
}

func TestScheduler_Check_OverdueReminderDoesNotFire(t *testing.T) {
	_, s := newTestScheduler(t)

	rec := models.Recurrence{Type: models.RecurDaily, Interval: 1}
	s.Add(Input{
		Title:        "Daily digest",
		ScheduledFor: testNow.AddDate(0, 0, -21),
		Recurrence:   &rec,
	})

	// An occurrence already in the past stays put until edited; only
	// entries entering the lead window fire and advance.
	assert.Empty(t, s.Check(15*time.Minute))

	s.Update(s.List()[0].ID, func(r *models.Reminder) {
		r.ScheduledFor = testNow.Add(5 * time.Minute)
	})
	assert.Len(t, s.Check(15*time.Minute), 1)

	next := s.List()[0].ScheduledFor
	assert.True(t, next.After(testNow), "advanced occurrence lands strictly in the future")
}

func TestScheduler_Check_RefireInsideDedupWindowDoesNotAlert(t *testing.T) {
	st, s := newTestScheduler(t)

	rec := models.Recurrence{Type: models.RecurDaily, Interval: 1}
	s.Add(Input{Title: "Standup", ScheduledFor: testNow.Add(5 * time.Minute), Recurrence: &rec})

	assert.Len(t, s.Check(15*time.Minute), 1)

	// Drag the next occurrence back inside the window: the store's content
	// dedup swallows the duplicate, so nothing fires again.
	s.Update(s.List()[0].ID, func(r *models.Reminder) {
		r.ScheduledFor = testNow.Add(6 * time.Minute)
	})
	assert.Empty(t, s.Check(15*time.Minute))
	assert.Equal(t, 1, st.Len())
}

func TestScheduler_Add_NormalizesEntityAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  models.EntityType
	}{
		{"client", models.EntityCustomer},
		{"customer", models.EntityCustomer},
		{"meeting", models.EntityCalendar},
		{"appointment", models.EntityCalendar},
		{"proposal", models.EntityProposal},
		{"task", models.EntityTask},
		{"", models.EntityCalendar},
		{"unknown-thing", models.EntityCalendar},
	}

	for _, tt := range tests {
		t.Run("alias "+tt.alias, func(t *testing.T) {
			_, s := newTestScheduler(t)
			s.Add(Input{Title: "r", EntityType: tt.alias, ScheduledFor: testNow.Add(time.Hour)})
			assert.Equal(t, tt.want, s.List()[0].EntityType)
		})
	}
}

func TestScheduler_Add_ReplacesKnownId(t *testing.T) {
	_, s := newTestScheduler(t)

	id := s.Add(Input{Title: "first", ScheduledFor: testNow.Add(time.Hour)})
	got := s.Add(Input{ID: id, Title: "second", ScheduledFor: testNow.Add(2 * time.Hour)})

	assert.Equal(t, id, got)
	assert.Len(t, s.List(), 1)
	assert.Equal(t, "second", s.List()[0].Title)
}

func TestScheduler_UpdateAndRemove_AbsentIdIsNoOp(t *testing.T) {
	_, s := newTestScheduler(t)

	assert.False(t, s.Update("missing", func(r *models.Reminder) { r.Title = "x" }))
	assert.False(t, s.Remove("missing"))

	id := s.Add(Input{Title: "r", ScheduledFor: testNow.Add(time.Hour)})
	assert.True(t, s.Update(id, func(r *models.Reminder) { r.Title = "renamed" }))
	assert.Equal(t, "renamed", s.List()[0].Title)
	assert.True(t, s.Remove(id))
	assert.Empty(t, s.List())
}

func TestScheduler_Load_ReplacesCollection(t *testing.T) {
	_, s := newTestScheduler(t)
	s.Add(Input{Title: "stale", ScheduledFor: testNow.Add(time.Hour)})

	s.Load([]models.Reminder{
		{ID: "r-1", Title: "hydrated", EntityType: "client", ScheduledFor: testNow.Add(time.Hour), Active: true},
	})

	reminders := s.List()
	assert.Len(t, reminders, 1)
	assert.Equal(t, "hydrated", reminders[0].Title)
	assert.Equal(t, models.EntityCustomer, reminders[0].EntityType)
}
