package domain

import "time"

// NotificationCategory is the severity shown to the reader.
type NotificationCategory string

const (
	NotificationInfo    NotificationCategory = "info"
	NotificationSuccess NotificationCategory = "success"
	NotificationWarning NotificationCategory = "warning"
)

// TopicAdmins is consumed by every contributor holding the admin role.
const TopicAdmins = "admins"

// Notification is addressed either to a single recipient or to a topic.
type Notification struct {
	ID          string
	RecipientID string
	Topic       string
	Message     string
	Category    NotificationCategory
	Read        bool
	CreatedAt   time.Time
}
