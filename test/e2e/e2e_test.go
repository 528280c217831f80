// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-engine/internal/common/config"
	"notify-engine/internal/common/database"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/engine"
	"notify-engine/internal/engine/scheduler"
	"notify-engine/internal/engine/settings"
	"notify-engine/internal/feed"
	"notify-engine/internal/models"
	"notify-engine/internal/statestore"
)

// feedServer is an in-process stand-in for the notification backend.
type feedServer struct {
	mu    sync.Mutex
	items []map[string]interface{}
}

func (f *feedServer) add(id, typ, title string, read bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, map[string]interface{}{
		"id":        id,
		"type":      typ,
		"title":     title,
		"message":   "update for " + id,
		"read":      read,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *feedServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(f.items)
		case http.MethodDelete:
			f.items = nil
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		count := 0
		for _, item := range f.items {
			if read, _ := item["read"].(bool); !read {
				count++
			}
		}
		json.NewEncoder(w).Encode(map[string]int{"count": count})
	})
	mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
		// Single-item mutations; the engine treats them as fire-and-forget.
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type capturingAlerter struct {
	mu        sync.Mutex
	delivered []models.Notification
}

func (c *capturingAlerter) Deliver(ctx context.Context, n models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, n)
}

func (c *capturingAlerter) snapshot() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.delivered))
	copy(out, c.delivered)
	return out
}

func newTestEngine(t *testing.T) (*engine.Engine, *feedServer, *capturingAlerter, *statestore.Store) {
	fs := &feedServer{}
	server := httptest.NewServer(fs.handler())
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	redisClient := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	log := logger.NewTestLogger(t)
	state := statestore.New(redisClient, log)
	client := feed.NewClient(config.FeedConfig{BaseURL: server.URL, Timeout: 2000}, log)

	alerter := &capturingAlerter{}
	cfg := config.EngineConfig{PollInterval: 30, ReminderInterval: 60, ErrorDedupWindow: 120, DedupWindow: 300}
	eng := engine.New(cfg, client, alerter, state, nil, log)
	return eng, fs, alerter, state
}

func TestEndToEnd_PollReconcileAlert(t *testing.T) {
	eng, fs, alerter, _ := newTestEngine(t)
	ctx := context.Background()

	fs.add("n-1", "QUOTE_APPROVED", "Quote 1 approved", false)
	fs.add("n-2", "QUOTE_PENDING", "Quote 2 pending", true)

	eng.Hydrate(ctx)
	eng.PollCycle(ctx)

	// Bootstrap: state hydrated, nothing alerted.
	assert.Len(t, eng.Notifications(), 2)
	assert.Empty(t, alerter.snapshot())
	assert.Equal(t, 1, eng.ServerUnreadCount())

	// Second cycle with one new unread and one new already-read item.
	fs.add("n-3", "QUOTE_REJECTED", "Quote 3 rejected", false)
	fs.add("n-4", "QUOTE_APPROVED", "Quote 4 approved", true)
	eng.PollCycle(ctx)

	delivered := alerter.snapshot()
	require.Len(t, delivered, 1, "only the new unread item alerts")
	assert.Equal(t, "n-3", delivered[0].ID)
	assert.Equal(t, models.KindError, delivered[0].Kind)
	assert.Len(t, eng.Notifications(), 4)

	// Third cycle re-delivers everything; one entry per id, no new alerts.
	eng.PollCycle(ctx)
	assert.Len(t, eng.Notifications(), 4)
	assert.Len(t, alerter.snapshot(), 1)
}

func TestEndToEnd_StatePersistsAcrossRestart(t *testing.T) {
	eng, _, _, state := newTestEngine(t)
	ctx := context.Background()
	eng.Hydrate(ctx)

	scheduledFor := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	id := eng.AddReminder(ctx, scheduler.Input{
		Title:        "Renewal call",
		ScheduledFor: scheduledFor,
		EntityType:   "client",
		EntityID:     "c-7",
	})

	enabled := true
	eng.UpdateSettings(ctx, settings.Patch{PushNotifications: &enabled})

	// A fresh engine against the same Redis picks the state back up.
	log := logger.NewTestLogger(t)
	cfg := config.EngineConfig{PollInterval: 30, ReminderInterval: 60, ErrorDedupWindow: 120, DedupWindow: 300}
	restarted := engine.New(cfg, &staticFeed{}, &capturingAlerter{}, state, nil, log)
	restarted.Hydrate(ctx)

	reminders := restarted.Reminders()
	require.Len(t, reminders, 1)
	assert.Equal(t, id, reminders[0].ID)
	assert.Equal(t, "Renewal call", reminders[0].Title)
	assert.Equal(t, models.EntityCustomer, reminders[0].EntityType)
	assert.True(t, reminders[0].ScheduledFor.Equal(scheduledFor))

	assert.True(t, restarted.Settings().PushNotifications)

	// Notifications themselves never persist.
	assert.Empty(t, restarted.Notifications())
}

func TestEndToEnd_ReminderFiresThroughEngine(t *testing.T) {
	eng, _, alerter, _ := newTestEngine(t)
	ctx := context.Background()
	eng.Hydrate(ctx)

	eng.AddReminder(ctx, scheduler.Input{
		Title:        "Standup",
		ScheduledFor: time.Now().Add(10 * time.Minute),
		EntityType:   "meeting",
	})

	eng.ReminderCycle(ctx)

	delivered := alerter.snapshot()
	require.Len(t, delivered, 1)
	assert.Equal(t, models.KindReminder, delivered[0].Kind)
	assert.Equal(t, "Reminder: Standup", delivered[0].Title)
	assert.Equal(t, models.EntityCalendar, delivered[0].Entity.Type)

	// The fired one-shot is inactive and a second pass stays quiet.
	eng.ReminderCycle(ctx)
	assert.Len(t, alerter.snapshot(), 1)
}

// staticFeed satisfies the engine's feed dependency without a server.
type staticFeed struct{}

func (s *staticFeed) List(ctx context.Context) ([]models.Notification, error) { return nil, nil }
func (s *staticFeed) UnreadCount(ctx context.Context) (int, error)            { return 0, nil }
func (s *staticFeed) MarkRead(ctx context.Context, id string) error           { return nil }
func (s *staticFeed) MarkAllRead(ctx context.Context) error                   { return nil }
func (s *staticFeed) Delete(ctx context.Context, id string) error             { return nil }
func (s *staticFeed) DeleteAll(ctx context.Context) error                     { return nil }
