package services

import (
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"egov-portal/internal/i18n"
	"egov-portal/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxUploadBytes - 5 MiB
const DefaultMaxUploadBytes int64 = 5 * 1024 * 1024

// Коди відхилення файлу, вони ж ключі каталогу без префікса "upload."
const (
	RejectInvalidFileType = "invalid_file_type"
	RejectFileTooLarge    = "file_too_large"
)

var acceptedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// UploadFile - файл з multipart-форми. Content читається лише для
// визначення типу і ніде не зберігається.
type UploadFile struct {
	Name         string
	Size         int64
	DeclaredType string
	Content      io.Reader
}

// UploadRejection - причина відхилення окремого файлу
type UploadRejection struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UploadValidator struct {
	maxBytes int64
	now      func() time.Time
}

func NewUploadValidator(maxMB int) *UploadValidator {
	maxBytes := DefaultMaxUploadBytes
	if maxMB > 0 {
		maxBytes = int64(maxMB) * 1024 * 1024
	}
	return &UploadValidator{
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// MaxBytes повертає ліміт розміру файлу
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// NormalizeUploadType прибирає параметри і зводить image/jpg до image/jpeg
func NormalizeUploadType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if mediaType == "image/jpg" {
		return "image/jpeg"
	}
	return mediaType
}

// Validate перевіряє кожен файл окремо: невалідні відхиляються,
// решта отримують FileUpload з тимчасовим посиланням blob:<uuid>.
func (v *UploadValidator) Validate(files []UploadFile, lang i18n.Language) ([]models.FileUpload, []UploadRejection) {
	accepted := make([]models.FileUpload, 0, len(files))
	var rejected []UploadRejection

	for _, file := range files {
		fileType, code := v.check(file)
		if code != "" {
			rejected = append(rejected, v.reject(file.Name, code, lang))
			continue
		}

		accepted = append(accepted, models.FileUpload{
			ID:         uuid.NewString(),
			Name:       file.Name,
			Size:       file.Size,
			Type:       fileType,
			URL:        "blob:" + uuid.NewString(),
			UploadedAt: v.now().UTC(),
		})
	}

	return accepted, rejected
}

func (v *UploadValidator) check(file UploadFile) (string, string) {
	declared := NormalizeUploadType(file.DeclaredType)
	if declared != "" && !acceptedUploadTypes[declared] {
		return "", RejectInvalidFileType
	}
	if file.Size > v.maxBytes {
		return "", RejectFileTooLarge
	}

	if file.Content == nil {
		if declared == "" {
			return "", RejectInvalidFileType
		}
		return declared, ""
	}

	detected, err := mimetype.DetectReader(file.Content)
	if err != nil {
		return "", RejectInvalidFileType
	}

	sniffed := NormalizeUploadType(detected.String())
	if !acceptedUploadTypes[sniffed] {
		return "", RejectInvalidFileType
	}
	// Заявлений тип має збігатися з вмістом
	if declared != "" && !detected.Is(declared) {
		return "", RejectInvalidFileType
	}
	return sniffed, ""
}

func (v *UploadValidator) reject(name, code string, lang i18n.Language) UploadRejection {
	var message string
	switch code {
	case RejectFileTooLarge:
		message = i18n.T(lang, "upload."+code, name, v.maxBytes/(1024*1024))
	default:
		message = i18n.T(lang, "upload."+code, name)
	}

	return UploadRejection{
		Name:    name,
		Code:    code,
		Message: message,
	}
}

// String для логів
func (r UploadRejection) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Code)
}
