// Package store описує сховище порталу: користувачі, заявки на довідки та
// сповіщення. Є дві реалізації: MemoryStore і MongoStore.
package store

import (
	"context"
	"time"

	"egov-portal/internal/models"
)

type UserStore interface {
	SaveUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// UpdateFunc змінює документ на місці; помилка скасовує оновлення
type UpdateFunc func(doc *models.Document) error

type DocumentStore interface {
	InsertDocument(ctx context.Context, doc models.Document) error
	FindDocument(ctx context.Context, id string) (models.Document, error)
	FindDocumentByCode(ctx context.Context, code string) (models.Document, error)
	// UpdateDocument атомарно застосовує fn; ErrDocumentNotFound якщо id немає
	UpdateDocument(ctx context.Context, id string, fn UpdateFunc) (models.Document, error)
	// DeleteDocument нічого не робить, якщо документа немає
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments повертає сторінку і загальну кількість
	ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	AllDocuments(ctx context.Context) ([]models.Document, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n models.Notification) error
	FindNotification(ctx context.Context, id string) (models.Notification, error)
	// SetNotificationRead ставить read=true тільки для непрочитаних
	SetNotificationRead(ctx context.Context, id string, readAt time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID string, readAt time.Time) (int, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type Store interface {
	UserStore
	DocumentStore
	NotificationStore
}

// Межі пагінації
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// NormalizePage приводить page/limit до допустимих меж
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return page, limit
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)
)
