package models

import (
	"time"
)

type NotificationType string

type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"user_id" validate:"required"`
	Title     string           `bson:"title" json:"title" validate:"required,max=100"`
	Message   string           `bson:"message" json:"message" validate:"required,max=500"`
	Type      NotificationType `bson:"type" json:"type" validate:"required,oneof=info success warning error"`
	Read      bool             `bson:"read" json:"read"`
	ReadAt    *time.Time       `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

// Типи сповіщень
const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}
