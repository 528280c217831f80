// Package store holds the in-memory ordered collection of notifications for
// the current session. Entries are never persisted: they are re-derived from
// the feed on every session so one user's notifications cannot leak into
// another session on the same device.
package store

import (
	"sync"
	"time"

	"notify-engine/internal/common/logger"
	"notify-engine/internal/models"

	"github.com/google/uuid"
)

// Result reports what Insert did with a record.
type Result struct {
	Notification models.Notification
	Inserted     bool
	Updated      bool
	Deduped      bool
	Unchanged    bool
}

// Store is the single owner of the session's notification collection. All
// mutation goes through its methods; every mutating call on an absent id is
// a safe no-op.
type Store struct {
	mu          sync.Mutex
	items       []*models.Notification
	errorWindow time.Duration
	otherWindow time.Duration
	logger      logger.Logger

	now func() time.Time
}

func New(log logger.Logger, errorWindow, otherWindow time.Duration) *Store {
	return &Store{
		errorWindow: errorWindow,
		otherWindow: otherWindow,
		logger:      log.WithFields(map[string]interface{}{"component": "store"}),
		now:         time.Now,
	}
}

// SetClock overrides the time source (tests only).
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Insert adds or updates a notification.
//
// Records carrying an id are upserted: when the id is already present the
// mutable fields are rewritten in place so the id stays unique no matter how
// often the same id is delivered. Records without an id are locally
// synthesized; they get a generated id and pass through the content-window
// dedup first.
func (s *Store) Insert(n models.Notification) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}

	if n.ID != "" {
		if existing := s.find(n.ID); existing != nil {
			return s.update(existing, n)
		}
		s.prepend(&n)
		return Result{Notification: n, Inserted: true}
	}

	if dup := s.recentSimilar(n); dup != nil {
		s.logger.Debug("duplicate notification suppressed", map[string]interface{}{
			"title": n.Title,
			"kind":  string(n.Kind),
		})
		return Result{Notification: *dup, Deduped: true}
	}

	n.ID = uuid.New().String()
	s.prepend(&n)
	return Result{Notification: n, Inserted: true}
}

func (s *Store) update(existing *models.Notification, n models.Notification) Result {
	unchanged := existing.Kind == n.Kind &&
		existing.Title == n.Title &&
		existing.Message == n.Message &&
		existing.Read == n.Read &&
		existing.Priority == n.Priority &&
		existing.CreatedAt.Equal(n.CreatedAt)
	if unchanged {
		return Result{Notification: *existing, Unchanged: true}
	}

	existing.Kind = n.Kind
	existing.Title = n.Title
	existing.Message = n.Message
	existing.Read = n.Read
	existing.Priority = n.Priority
	existing.CreatedAt = n.CreatedAt
	existing.AutoDismiss = n.AutoDismiss
	existing.Duration = n.Duration
	existing.Entity = n.Entity
	return Result{Notification: *existing, Updated: true}
}

// recentSimilar finds an entry with identical content created inside the
// dedup window. Errors use a shorter window than the other kinds.
func (s *Store) recentSimilar(n models.Notification) *models.Notification {
	window := s.otherWindow
	if n.Kind == models.KindError {
		window = s.errorWindow
	}
	cutoff := s.now().Add(-window)

	key := n.ContentKey()
	for _, item := range s.items {
		if item.ContentKey() == key && item.CreatedAt.After(cutoff) {
			return item
		}
	}
	return nil
}

func (s *Store) find(id string) *models.Notification {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *Store) prepend(n *models.Notification) {
	s.items = append([]*models.Notification{n}, s.items...)
}

// MarkRead flips a single entry to read. Marking an absent or already-read
// id is a no-op.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(id); item != nil && !item.Read {
		item.Read = true
		return true
	}
	return false
}

// MarkAllRead flips every entry to read and returns how many changed.
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, item := range s.items {
		if !item.Read {
			item.Read = true
			changed++
		}
	}
	return changed
}

// Remove deletes a single entry. Removing an absent id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the store and returns how many entries were dropped.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = nil
	return n
}

// UnreadCount is always computed from the live collection so it can never
// drift from the entries themselves.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		if !item.Read {
			count++
		}
	}
	return count
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id string) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(id); item != nil {
		return *item, true
	}
	return models.Notification{}, false
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, len(s.items))
	for i, item := range s.items {
		out[i] = *item
	}
	return out
}
