package models

import (
	"strings"
	"time"
)

// Kind tags the notification variant.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
	KindReminder Kind = "reminder"
)

// Priority orders notifications by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// EntityRef points a notification at the business entity it concerns.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id,omitempty"`
}

// ActionRef is a tagged reference to a caller-resolved action. It carries an
// action id plus parameters instead of a live callback so the record stays
// serializable and comparable.
type ActionRef struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Params map[string]string `json:"params,omitempty"`
}

// Notification is a single entry in the session store. The ID is either
// server-assigned (durable across polls) or a locally generated uuid for
// synthesized entries.
type Notification struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	CreatedAt   time.Time     `json:"createdAt"`
	Read        bool          `json:"read"`
	Priority    Priority      `json:"priority"`
	Entity      *EntityRef    `json:"entity,omitempty"`
	AutoDismiss bool          `json:"autoDismiss"`
	Duration    time.Duration `json:"duration,omitempty"`
	Action      *ActionRef    `json:"action,omitempty"`
}

// ContentKey identifies a notification by content rather than id, used for
// the sliding-window dedup of locally synthesized entries.
func (n Notification) ContentKey() string {
	entity := ""
	if n.Entity != nil {
		entity = string(n.Entity.Type) + ":" + n.Entity.ID
	}
	return strings.Join([]string{n.Title, string(n.Kind), n.Message, entity}, "\x1f")
}
