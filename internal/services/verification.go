package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"egov-portal/internal/models"
	"egov-portal/internal/store"

	qrcode "github.com/skip2/go-qrcode"
)

// Причини невдалої перевірки
const (
	ReasonNotYetVerified = "not_yet_verified"
	ReasonInvalidCode    = "invalid_code"
)

// QRImageSize - розмір PNG в пікселях
const QRImageSize = 256

// VerificationResult - відповідь на перевірку коду довідки
type VerificationResult struct {
	Valid      bool                `json:"valid"`
	Reason     string              `json:"reason,omitempty"`
	Error      string              `json:"error,omitempty"`
	DocumentID string              `json:"document_id,omitempty"`
	Type       models.DocumentType `json:"type,omitempty"`
	Title      string              `json:"title,omitempty"`
	VerifiedBy string              `json:"verified_by,omitempty"`
	VerifiedAt *time.Time          `json:"verified_at,omitempty"`
}

type VerificationService struct {
	documents store.DocumentStore
}

func NewVerificationService(documents store.DocumentStore) *VerificationService {
	return &VerificationService{documents: documents}
}

// Lookup шукає документ з точно таким кодом. Лише читання.
func (s *VerificationService) Lookup(ctx context.Context, code string) (VerificationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return VerificationResult{}, models.ErrEmptyCode
	}

	doc, err := s.documents.FindDocumentByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return VerificationResult{Valid: false, Reason: ReasonInvalidCode}, nil
		}
		return VerificationResult{}, fmt.Errorf("failed to look up verification code: %w", err)
	}

	if !doc.IsVerified() {
		return VerificationResult{Valid: false, Reason: ReasonNotYetVerified}, nil
	}

	return VerificationResult{
		Valid:      true,
		DocumentID: doc.ID,
		Type:       doc.Type,
		Title:      doc.Title,
		VerifiedBy: doc.VerifiedBy,
		VerifiedAt: doc.VerifiedAt,
	}, nil
}

// QRCode рендерить PNG з кодом перевірки. Тільки для підтверджених документів.
func (s *VerificationService) QRCode(ctx context.Context, code string) ([]byte, error) {
	result, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, models.ErrDocumentNotFound
	}

	png, err := qrcode.Encode(strings.TrimSpace(code), qrcode.Medium, QRImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}
