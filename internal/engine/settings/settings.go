// Package settings holds the small persisted user configuration. Persistence
// is an explicit Flush invoked by the owner, not a hidden side effect of
// every setter.
package settings

import (
	"sync"

	"notify-engine/internal/models"
)

// Patch updates any subset of fields; nil fields are left untouched.
// Out-of-range values (a negative lead time, say) are accepted as-is.
type Patch struct {
	SoundEnabled         *bool
	BrowserNotifications *bool
	EmailNotifications   *bool
	PushNotifications    *bool
	ReminderLeadMinutes  *int
}

// Store guards the current settings value.
type Store struct {
	mu      sync.Mutex
	current models.Settings
}

func New() *Store {
	return &Store{current: models.DefaultSettings()}
}

// Get returns the current settings.
func (s *Store) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Replace swaps in a rehydrated settings value.
func (s *Store) Replace(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings
}

// Apply patches the current value and returns the result.
func (s *Store) Apply(p Patch) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.SoundEnabled != nil {
		s.current.SoundEnabled = *p.SoundEnabled
	}
	if p.BrowserNotifications != nil {
		s.current.BrowserNotifications = *p.BrowserNotifications
	}
	if p.EmailNotifications != nil {
		s.current.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		s.current.PushNotifications = *p.PushNotifications
	}
	if p.ReminderLeadMinutes != nil {
		s.current.ReminderLeadMinutes = *p.ReminderLeadMinutes
	}
	return s.current
}
