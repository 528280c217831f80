package feed

import (
	"time"

	"notify-engine/internal/models"
)

// Notification is the wire shape of one feed entry.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

// MapKind translates the server's business type onto a notification kind.
// Unknown types land on info.
func MapKind(serverType string) models.Kind {
	switch serverType {
	case "QUOTE_APPROVED":
		return models.KindSuccess
	case "QUOTE_REJECTED":
		return models.KindError
	case "QUOTE_PENDING":
		return models.KindWarning
	default:
		return models.KindInfo
	}
}

// toModel converts a wire entry, substituting the local clock for an
// unparseable createdAt rather than rejecting the item.
func (n Notification) toModel(now time.Time) models.Notification {
	createdAt := now
	if ts, err := time.Parse(time.RFC3339, n.CreatedAt); err == nil {
		createdAt = ts
	}

	return models.Notification{
		ID:          n.ID,
		Kind:        MapKind(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		CreatedAt:   createdAt,
		Priority:    models.PriorityMedium,
		AutoDismiss: true,
		Duration:    5 * time.Second,
	}
}
