// Package statestore persists reminders and settings as JSON blobs under
// fixed Redis keys and rehydrates them at startup. Loading is lenient: a
// malformed timestamp is coerced to now, an undecodable reminder is skipped,
// and missing keys yield defaults. Notifications are never persisted here.
package statestore

import (
	"context"
	"encoding/json"
	"time"

	"notify-engine/internal/common/database"
	"notify-engine/internal/common/errors"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/models"
)

const (
	keyReminders = "notify:reminders"
	keySettings  = "notify:settings"
)

type Store struct {
	redis  *database.RedisClient
	logger logger.Logger
}

func New(redis *database.RedisClient, log logger.Logger) *Store {
	return &Store{
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"component": "statestore"}),
	}
}

// reminderRecord is the wire shape. Timestamps are strings so a bad value
// degrades to a coercion instead of a decode failure; dateTime is the legacy
// field name still found in old blobs.
type reminderRecord struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	ScheduledFor string             `json:"scheduledFor"`
	DateTime     string             `json:"dateTime,omitempty"`
	EntityType   string             `json:"entityType"`
	EntityID     string             `json:"entityId,omitempty"`
	Recurrence   *models.Recurrence `json:"recurrence,omitempty"`
	Active       *bool              `json:"active"`
}

// LoadReminders rehydrates the reminder collection. A missing key returns an
// empty slice; a blob that is not a JSON array is discarded.
func (s *Store) LoadReminders(ctx context.Context) ([]models.Reminder, error) {
	raw, err := s.redis.Get(ctx, keyReminders)
	if database.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStateLoadFailedError(keyReminders, err)
	}

	var records []reminderRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("discarding undecodable reminder blob", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	reminders := make([]models.Reminder, 0, len(records))
	for _, rec := range records {
		if rec.Title == "" {
			rec.Title = "Reminder"
		}

		active := true
		if rec.Active != nil {
			active = *rec.Active
		}

		reminders = append(reminders, models.Reminder{
			ID:           rec.ID,
			Title:        rec.Title,
			Message:      rec.Message,
			ScheduledFor: parseTimestamp(rec.ScheduledFor, rec.DateTime),
			EntityType:   models.NormalizeEntityType(rec.EntityType),
			EntityID:     rec.EntityID,
			Recurrence:   rec.Recurrence,
			Active:       active,
		})
	}
	return reminders, nil
}

// parseTimestamp tries the current field then the legacy one, coercing
// anything unparseable to now.
func parseTimestamp(value, legacy string) time.Time {
	for _, candidate := range []string{value, legacy} {
		if candidate == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, candidate); err == nil {
			return ts
		}
	}
	return time.Now()
}

// SaveReminders persists the full reminder collection.
func (s *Store) SaveReminders(ctx context.Context, reminders []models.Reminder) error {
	records := make([]reminderRecord, 0, len(reminders))
	for _, r := range reminders {
		active := r.Active
		records = append(records, reminderRecord{
			ID:           r.ID,
			Title:        r.Title,
			Message:      r.Message,
			ScheduledFor: r.ScheduledFor.UTC().Format(time.RFC3339),
			EntityType:   string(r.EntityType),
			EntityID:     r.EntityID,
			Recurrence:   r.Recurrence,
			Active:       &active,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return errors.NewStateSaveFailedError(keyReminders, err)
	}
	if err := s.redis.Set(ctx, keyReminders, data, 0); err != nil {
		return errors.NewStateSaveFailedError(keyReminders, err)
	}
	return nil
}

// LoadSettings rehydrates settings on top of the defaults, so blobs written
// by older versions missing newer fields still load.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	raw, err := s.redis.Get(ctx, keySettings)
	if database.IsNil(err) {
		return settings, nil
	}
	if err != nil {
		return settings, errors.NewStateLoadFailedError(keySettings, err)
	}

	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.Warn("discarding undecodable settings blob", map[string]interface{}{
			"error": err.Error(),
		})
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings persists the settings record.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.NewStateSaveFailedError(keySettings, err)
	}
	if err := s.redis.Set(ctx, keySettings, data, 0); err != nil {
		return errors.NewStateSaveFailedError(keySettings, err)
	}
	return nil
}
