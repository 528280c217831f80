package statestore

import (
	"context"
	"testing"
	"time"

	"notify-engine/internal/common/database"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(database.NewRedisFromClient(client), logger.NewTestLogger(t)), mr
}

func TestStore_Reminders_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	scheduledFor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := []models.Reminder{
		{
			ID:           "r-1",
			Title:        "Customer call",
			Message:      "prepare the proposal",
			ScheduledFor: scheduledFor,
			EntityType:   models.EntityCustomer,
			EntityID:     "c-42",
			Recurrence:   &models.Recurrence{Type: models.RecurWeekly, Interval: 2},
			Active:       true,
		},
		{
			ID:           "r-2",
			Title:        "One shot",
			ScheduledFor: scheduledFor,
			EntityType:   models.EntityCalendar,
			Active:       false,
		},
	}

	assert.NoError(t, s.SaveReminders(ctx, in))

	out, err := s.LoadReminders(ctx)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "r-1", out[0].ID)
	assert.True(t, out[0].ScheduledFor.Equal(scheduledFor))
	assert.Equal(t, models.RecurWeekly, out[0].Recurrence.Type)
	assert.Equal(t, 2, out[0].Recurrence.Interval)
	assert.False(t, out[1].Active)
}

func TestStore_LoadReminders_MissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	out, err := s.LoadReminders(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestStore_LoadReminders_DiscardsUndecodableBlob(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Set("notify:reminders", "{not json")

	out, err := s.LoadReminders(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestStore_LoadReminders_LenientRecords(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Set("notify:reminders", `[
		{"id":"r-1","scheduledFor":"not-a-timestamp","entityType":"client"},
		{"id":"r-2","title":"Legacy","dateTime":"2026-03-01T09:00:00Z","entityType":"meeting","active":false}
	]`)

	out, err := s.LoadReminders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, out, 2)

	// Unparseable timestamp coerces to now; missing title gets a default;
	// missing active defaults to true; aliases are normalized.
	assert.Equal(t, "Reminder", out[0].Title)
	assert.WithinDuration(t, time.Now(), out[0].ScheduledFor, 5*time.Second)
	assert.Equal(t, models.EntityCustomer, out[0].EntityType)
	assert.True(t, out[0].Active)

	// The legacy dateTime field still loads.
	assert.Equal(t, "Legacy", out[1].Title)
	assert.True(t, out[1].ScheduledFor.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.EntityCalendar, out[1].EntityType)
	assert.False(t, out[1].Active)
}

func TestStore_Settings_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in := models.Settings{
		SoundEnabled:         false,
		BrowserNotifications: true,
		EmailNotifications:   true,
		PushNotifications:    false,
		ReminderLeadMinutes:  30,
	}
	assert.NoError(t, s.SaveSettings(ctx, in))

	out, err := s.LoadSettings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStore_LoadSettings_MissingKeyYieldsDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	out, err := s.LoadSettings(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), out)
}

func TestStore_LoadSettings_UndecodableBlobYieldsDefaults(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Set("notify:settings", "][")

	out, err := s.LoadSettings(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), out)
}

func TestStore_LoadSettings_PartialBlobKeepsDefaults(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Set("notify:settings", `{"emailNotifications":true}`)

	out, err := s.LoadSettings(context.Background())
	assert.NoError(t, err)
	assert.True(t, out.EmailNotifications)
	// Fields absent from the blob keep the defaults.
	assert.True(t, out.SoundEnabled)
	assert.Equal(t, 15, out.ReminderLeadMinutes)
}

func TestStore_LoadReminders_RedisDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.LoadReminders(context.Background())
	assert.Error(t, err)
}
