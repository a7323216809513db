package services

import (
	"context"
	"fmt"
	"time"

	"egov-portal/internal/models"
	"egov-portal/internal/store"
	"egov-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher доставляє створене сповіщення поза сховищем (websocket, webhook).
// Publish викликається в межах запиту і не чекає на мережу.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

type NotificationService struct {
	notifications store.NotificationStore
	users         store.UserStore
	publishers    []Publisher
	now           func() time.Time
}

// NotificationInput - дані нового сповіщення
type NotificationInput struct {
	UserID  string                  `json:"user_id"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    models.NotificationType `json:"type"`
}

func NewNotificationService(notifications store.NotificationStore, users store.UserStore, publishers ...Publisher) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		publishers:    publishers,
		now:           time.Now,
	}
}

// AddPublisher підключає ще один канал доставки
func (ns *NotificationService) AddPublisher(p Publisher) {
	ns.publishers = append(ns.publishers, p)
}

// Create зберігає сповіщення і розсилає його підписникам
func (ns *NotificationService) Create(ctx context.Context, input NotificationInput) (models.Notification, error) {
	if input.Type == "" {
		input.Type = models.NotificationInfo
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Read:      false,
		CreatedAt: ns.now().UTC(),
	}

	if err := validator.Validate(notification); err != nil {
		return models.Notification{}, err
	}

	if err := ns.notifications.InsertNotification(ctx, notification); err != nil {
		return models.Notification{}, fmt.Errorf("failed to save notification: %w", err)
	}

	ns.publish(ctx, notification)
	return notification, nil
}

// Помилка доставки не скасовує створення: сповіщення вже збережене
func (ns *NotificationService) publish(ctx context.Context, n models.Notification) {
	for _, p := range ns.publishers {
		if err := p.Publish(ctx, n); err != nil {
			logrus.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"user_id":         n.UserID,
			}).WithError(err).Warn("Не вдалося доставити сповіщення")
		}
	}
}

// SendToUser перевіряє, що адресат існує, і створює сповіщення
func (ns *NotificationService) SendToUser(ctx context.Context, input NotificationInput) (models.Notification, error) {
	if _, err := ns.users.FindUserByID(ctx, input.UserID); err != nil {
		return models.Notification{}, err
	}
	return ns.Create(ctx, input)
}

// SendToRole надсилає однакове сповіщення всім користувачам ролі.
// Порожня роль означає всіх користувачів. Повертає кількість надісланих.
func (ns *NotificationService) SendToRole(ctx context.Context, role models.UserRole, title, message string, notificationType models.NotificationType) (int, error) {
	users, err := ns.users.ListUsers(ctx, role)
	if err != nil {
		return 0, fmt.Errorf("failed to get users: %w", err)
	}

	sent := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("sent %d of %d: %w", sent, len(users), err)
		}
		_, err := ns.Create(ctx, NotificationInput{
			UserID:  user.ID,
			Title:   title,
			Message: message,
			Type:    notificationType,
		})
		if err != nil {
			// Продовжуємо навіть якщо одне сповіщення не вдалося зберегти
			logrus.WithField("user_id", user.ID).WithError(err).Warn("Не вдалося створити сповіщення")
			continue
		}
		sent++
	}
	return sent, nil
}

// MarkRead позначає сповіщення прочитаним. Повторний виклик нічого не змінює.
// Чуже сповіщення вважається відсутнім.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := ns.notifications.FindNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return models.ErrNotificationNotFound
	}
	if n.Read {
		return nil
	}

	return ns.notifications.SetNotificationRead(ctx, id, ns.now().UTC())
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return ns.notifications.MarkAllNotificationsRead(ctx, userID, ns.now().UTC())
}

func (ns *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return ns.notifications.ListNotifications(ctx, userID, unreadOnly)
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return ns.notifications.CountUnread(ctx, userID)
}
