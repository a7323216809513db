package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"egov-portal/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// DemoPassword - спільний пароль демо-акаунтів
const DemoPassword = "password"

// DemoUsers повертає демо-акаунти без хешів паролів
func DemoUsers() []models.User {
	return []models.User{
		{
			ID:            "1",
			Name:          "Rahul Sharma",
			Email:         "citizen@demo.com",
			Phone:         "+919876543210",
			Role:          models.RoleCitizen,
			AadhaarNumber: "1234-5678-9012",
		},
		{
			ID:         "2",
			Name:       "Officer Smith",
			Email:      "officer@demo.com",
			Phone:      "+919876543211",
			Role:       models.RoleOfficer,
			Department: "Revenue",
		},
		{
			ID:         "3",
			Name:       "Admin User",
			Email:      "admin@demo.com",
			Phone:      "+919876543212",
			Role:       models.RoleAdmin,
			Department: "IT",
		},
	}
}

func demoDocuments() []models.Document {
	verifiedAt := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	return []models.Document{
		{
			ID:          "1",
			UserID:      "1",
			Type:        models.DocumentTypeIncome,
			Title:       "Income Certificate Application",
			Description: "Application for annual income certificate",
			Priority:    models.PriorityMedium,
			Status:      models.StatusVerified,
			SubmittedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			VerifiedAt:  &verifiedAt,
			VerifiedBy:  "Officer Smith",
			QRCode:      "QR123456789",
			Documents:   []models.FileUpload{},
		},
		{
			ID:          "2",
			UserID:      "1",
			Type:        models.DocumentTypeCaste,
			Title:       "Caste Certificate Application",
			Description: "Application for caste certificate",
			Priority:    models.PriorityHigh,
			Status:      models.StatusUnderReview,
			SubmittedAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			Documents:   []models.FileUpload{},
		},
	}
}

func demoNotifications() []models.Notification {
	return []models.Notification{
		{
			ID:        "1",
			UserID:    "1",
			Title:     "Document Verified",
			Message:   "Your income certificate has been verified and is now available for download.",
			Type:      models.NotificationSuccess,
			Read:      false,
			CreatedAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

// SeedDemo завантажує демо-акаунти, заявки і сповіщення.
// Повторний запуск не створює дублікатів.
func SeedDemo(ctx context.Context, st Store) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	for _, user := range DemoUsers() {
		user.PasswordHash = string(hash)
		if err := st.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
		}
	}

	for _, doc := range demoDocuments() {
		if err := st.InsertDocument(ctx, doc); err != nil && !errors.Is(err, models.ErrDuplicateEntry) {
			return fmt.Errorf("failed to seed document %s: %w", doc.ID, err)
		}
	}

	for _, n := range demoNotifications() {
		if err := st.InsertNotification(ctx, n); err != nil && !errors.Is(err, models.ErrDuplicateEntry) {
			return fmt.Errorf("failed to seed notification %s: %w", n.ID, err)
		}
	}

	return nil
}
