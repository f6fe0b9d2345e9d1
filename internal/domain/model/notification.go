package model

import "time"

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// NotificationData carries type-specific payload.
type NotificationData struct {
	UserID   string         `json:"userId,omitempty"`
	URL      string         `json:"url,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Notification is a message shown to a recipient.
type Notification struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Sender    string           `json:"sender,omitempty"`
	Type      string           `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      NotificationData `json:"data"`
	Priority  string           `json:"priority"`
	ActionURL string           `json:"actionUrl,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
}

// NotificationJob asks the notification pipeline to create one notification
// from a template.
type NotificationJob struct {
	JobID     string
	Template  string
	Recipient string
	Variables map[string]string
	Data      NotificationData
	ActionURL string
	Priority  string
	// DedupeKey identifies repeats of the same notice; empty disables dedupe.
	DedupeKey string
}
