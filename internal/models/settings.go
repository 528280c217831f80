package models

import "time"

// Settings is the small persisted user configuration consulted by the
// reconciler and the scheduler. Values are accepted as-is; there is no range
// validation beyond types.
type Settings struct {
	SoundEnabled         bool `json:"soundEnabled"`
	BrowserNotifications bool `json:"browserNotifications"`
	EmailNotifications   bool `json:"emailNotifications"`
	PushNotifications    bool `json:"pushNotifications"`
	ReminderLeadMinutes  int  `json:"reminderLeadMinutes"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:         true,
		BrowserNotifications: true,
		EmailNotifications:   false,
		PushNotifications:    false,
		ReminderLeadMinutes:  15,
	}
}

// Lead converts the configured lead minutes to a duration.
func (s Settings) Lead() time.Duration {
	return time.Duration(s.ReminderLeadMinutes) * time.Minute
}
