package models

import "time"

// EntityType is the closed set of entities a reminder can target.
type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntityProposal EntityType = "proposal"
	EntityTask     EntityType = "task"
	EntityCalendar EntityType = "calendar"
)

// NormalizeEntityType maps legacy and aliased spellings onto the canonical
// set. Unrecognized values fall back to the calendar category so a reminder
// never fails to load over its entity type.
func NormalizeEntityType(raw string) EntityType {
	switch EntityType(raw) {
	case EntityCustomer, EntityProposal, EntityTask, EntityCalendar:
		return EntityType(raw)
	}
	switch raw {
	case "client":
		return EntityCustomer
	case "meeting", "appointment":
		return EntityCalendar
	default:
		return EntityCalendar
	}
}

// RecurrenceType is the repetition unit of a recurring reminder.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
)

// Recurrence describes how a reminder repeats after firing.
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
}

// Next returns the occurrence after from. A non-positive interval counts
// as 1.
func (r Recurrence) Next(from time.Time) time.Time {
	interval := r.Interval
	if interval <= 0 {
		interval = 1
	}
	switch r.Type {
	case RecurDaily:
		return from.AddDate(0, 0, interval)
	case RecurWeekly:
		return from.AddDate(0, 0, 7*interval)
	case RecurMonthly:
		return from.AddDate(0, interval, 0)
	default:
		return from.AddDate(0, 0, interval)
	}
}

// Reminder is a user-scheduled prompt that the scheduler promotes into a
// notification once it enters the lead-time window.
type Reminder struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Message      string      `json:"message"`
	ScheduledFor time.Time   `json:"scheduledFor"`
	EntityType   EntityType  `json:"entityType"`
	EntityID     string      `json:"entityId,omitempty"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	Active       bool        `json:"active"`
}
