package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"egov-portal/internal/i18n"
	"egov-portal/internal/models"
	"egov-portal/internal/store"
	"egov-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Формат коду перевірки: "QR" + 9 цифр
const (
	VerificationCodePrefix = "QR"
	verificationCodeDigits = 9
	maxCodeAttempts        = 10
)

var ErrCodeGeneration = errors.New("failed to generate unique verification code")

type DocumentService struct {
	store         store.Store
	notifications *NotificationService
	lang          i18n.Language
	now           func() time.Time
	newCode       func() (string, error)
}

// CreateDocumentInput - нова заявка громадянина
type CreateDocumentInput struct {
	UserID      string
	Type        models.DocumentType
	Title       string
	Description string
	Priority    models.Priority
	Files       []models.FileUpload
}

// lang - мова текстів сповіщень, що зберігаються
func NewDocumentService(st store.Store, notifications *NotificationService, lang i18n.Language) *DocumentService {
	return &DocumentService{
		store:         st,
		notifications: notifications,
		lang:          lang,
		now:           time.Now,
		newCode:       GenerateVerificationCode,
	}
}

// GenerateVerificationCode повертає випадковий код "QR" + 9 цифр
func GenerateVerificationCode() (string, error) {
	limit := big.NewInt(1_000_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", VerificationCodePrefix, verificationCodeDigits, n.Int64()), nil
}

// Create зберігає нову заявку зі статусом pending
func (s *DocumentService) Create(ctx context.Context, input CreateDocumentInput) (models.Document, error) {
	if _, err := s.store.FindUserByID(ctx, input.UserID); err != nil {
		return models.Document{}, fmt.Errorf("owner %s: %w", input.UserID, err)
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	title := strings.TrimSpace(input.Title)
	if title == "" && input.Type.IsValid() {
		title = i18n.T(s.lang, "cert."+string(input.Type)+".name")
	}

	doc := models.Document{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Type:        input.Type,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Status:      models.StatusPending,
		SubmittedAt: s.now().UTC(),
		Documents:   input.Files,
	}
	if doc.Documents == nil {
		doc.Documents = []models.FileUpload{}
	}

	if err := validator.Validate(doc); err != nil {
		return models.Document{}, err
	}

	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"type":        doc.Type,
	}).Info("Нова заявка на довідку")

	s.notify(ctx, doc.UserID, models.NotificationInfo, "notif.submitted", doc.Title)
	return doc, nil
}

// Update застосовує часткові зміни. Зміна статусу йде лише вперед;
// перехід у verified проставляє час, рецензента і код перевірки.
func (s *DocumentService) Update(ctx context.Context, actor models.User, id string, update models.DocumentUpdate) (models.Document, error) {
	if err := validator.Validate(update); err != nil {
		return models.Document{}, err
	}

	canReview := actor.Role.HasPermission(models.PermissionReviewDocuments)
	if !canReview && (update.Status != nil || update.VerifiedBy != nil || update.Comments != nil) {
		return models.Document{}, models.ErrForbidden
	}

	// Код генерується заздалегідь: всередині UpdateDocument сховище заблоковане
	var code string
	if update.Status != nil && *update.Status == models.StatusVerified {
		var err error
		if code, err = s.uniqueCode(ctx); err != nil {
			return models.Document{}, err
		}
	}

	var previous models.DocumentStatus
	updated, err := s.store.UpdateDocument(ctx, id, func(doc *models.Document) error {
		if !canReview && !doc.IsOwnedBy(actor.ID) {
			return models.ErrDocumentNotFound
		}
		previous = doc.Status

		// Після рішення рецензента зміст заморожено: його підтверджує код перевірки
		if doc.Status.IsFinal() && update.ChangesContent() {
			return fmt.Errorf("%s document %s: %w", doc.Status, doc.ID, models.ErrDocumentFinal)
		}

		if update.Title != nil {
			doc.Title = strings.TrimSpace(*update.Title)
		}
		if update.Description != nil {
			doc.Description = strings.TrimSpace(*update.Description)
		}
		if update.Priority != nil {
			doc.Priority = *update.Priority
		}
		if update.Comments != nil {
			doc.Comments = append([]string(nil), update.Comments...)
		}
		if update.VerifiedBy != nil {
			doc.VerifiedBy = *update.VerifiedBy
		}

		if update.Status != nil && *update.Status != doc.Status {
			if !doc.Status.CanTransitionTo(*update.Status) {
				return fmt.Errorf("%s -> %s: %w", doc.Status, *update.Status, models.ErrInvalidTransition)
			}
			doc.Status = *update.Status

			if doc.Status == models.StatusVerified {
				verifiedAt := s.now().UTC()
				doc.VerifiedAt = &verifiedAt
				if doc.VerifiedBy == "" {
					doc.VerifiedBy = actor.Name
				}
				doc.QRCode = code
			}
		}

		return validator.Validate(*doc)
	})
	if err != nil {
		return models.Document{}, err
	}

	if updated.Status != previous {
		logrus.WithFields(logrus.Fields{
			"document_id": updated.ID,
			"from":        previous,
			"to":          updated.Status,
			"actor_id":    actor.ID,
		}).Info("Статус заявки змінено")
		s.notifyStatusChange(ctx, updated)
	}

	return updated, nil
}

// UpdateStatus - скорочення для рецензента
func (s *DocumentService) UpdateStatus(ctx context.Context, reviewer models.User, id string, status models.DocumentStatus) (models.Document, error) {
	return s.Update(ctx, reviewer, id, models.DocumentUpdate{Status: &status})
}

// AddComment додає коментар рецензента до заявки
func (s *DocumentService) AddComment(ctx context.Context, reviewer models.User, id, comment string) (models.Document, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.Document{}, fmt.Errorf("%w: empty comment", models.ErrValidation)
	}
	if !reviewer.Role.HasPermission(models.PermissionReviewDocuments) {
		return models.Document{}, models.ErrForbidden
	}

	return s.store.UpdateDocument(ctx, id, func(doc *models.Document) error {
		doc.Comments = append(doc.Comments, fmt.Sprintf("%s: %s", reviewer.Name, comment))
		return nil
	})
}

// Delete видаляє заявку. Відсутній документ - не помилка.
func (s *DocumentService) Delete(ctx context.Context, actor models.User, id string) error {
	doc, err := s.store.FindDocument(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return nil
		}
		return err
	}

	if actor.Role != models.RoleAdmin && !doc.IsOwnedBy(actor.ID) {
		return models.ErrForbidden
	}

	return s.store.DeleteDocument(ctx, id)
}

// Get повертає документ; громадянин бачить лише власні
func (s *DocumentService) Get(ctx context.Context, viewer models.User, id string) (models.Document, error) {
	doc, err := s.store.FindDocument(ctx, id)
	if err != nil {
		return models.Document{}, err
	}

	if !viewer.Role.HasPermission(models.PermissionViewAllDocuments) && !doc.IsOwnedBy(viewer.ID) {
		return models.Document{}, models.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	return s.store.ListDocuments(ctx, filter)
}

// ListPending - черга рецензента: pending і under_review
func (s *DocumentService) ListPending(ctx context.Context, page, limit int) ([]models.Document, int, error) {
	return s.store.ListDocuments(ctx, models.DocumentFilter{
		Statuses: []models.DocumentStatus{models.StatusPending, models.StatusUnderReview},
		Page:     page,
		Limit:    limit,
	})
}

// ListVerifiedBy - документи, підтверджені рецензентом
func (s *DocumentService) ListVerifiedBy(ctx context.Context, reviewerName string, page, limit int) ([]models.Document, int, error) {
	return s.store.ListDocuments(ctx, models.DocumentFilter{
		Statuses:   []models.DocumentStatus{models.StatusVerified},
		VerifiedBy: reviewerName,
		Page:       page,
		Limit:      limit,
	})
}

// Stats рахує заявки користувача за статусами
func (s *DocumentService) Stats(ctx context.Context, userID string) (models.StatusCounts, error) {
	docs, err := s.store.AllDocuments(ctx)
	if err != nil {
		return models.StatusCounts{}, err
	}
	return AggregateStatus(docs, userID), nil
}

func (s *DocumentService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCodeGeneration, err)
		}

		_, err = s.store.FindDocumentByCode(ctx, code)
		if errors.Is(err, models.ErrDocumentNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrCodeGeneration
}

func (s *DocumentService) notifyStatusChange(ctx context.Context, doc models.Document) {
	switch doc.Status {
	case models.StatusUnderReview:
		s.notify(ctx, doc.UserID, models.NotificationInfo, "notif.under_review", doc.Title)
	case models.StatusVerified:
		s.notify(ctx, doc.UserID, models.NotificationSuccess, "notif.verified", doc.Title, doc.QRCode)
	case models.StatusRejected:
		s.notify(ctx, doc.UserID, models.NotificationError, "notif.rejected", doc.Title)
	}
}

func (s *DocumentService) notify(ctx context.Context, userID string, notificationType models.NotificationType, key string, args ...interface{}) {
	if s.notifications == nil {
		return
	}

	_, err := s.notifications.Create(ctx, NotificationInput{
		UserID:  userID,
		Title:   i18n.T(s.lang, key+".title"),
		Message: i18n.T(s.lang, key+".message", args...),
		Type:    notificationType,
	})
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Не вдалося створити сповіщення")
	}
}
