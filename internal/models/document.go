// internal/models/document.go
package models

import (
	"time"
)

type DocumentType string

type DocumentStatus string

type Priority string

type Document struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id" validate:"required"`

	// Основна інформація
	Type        DocumentType `bson:"type" json:"type" validate:"required,oneof=income caste education domicile birth death"`
	Title       string       `bson:"title" json:"title" validate:"required,max=200"`
	Description string       `bson:"description" json:"description" validate:"max=2000"`
	Priority    Priority     `bson:"priority" json:"priority" validate:"required,oneof=low medium high"`

	// Статус і перевірка
	Status      DocumentStatus `bson:"status" json:"status"`
	SubmittedAt time.Time      `bson:"submitted_at" json:"submitted_at"`
	VerifiedAt  *time.Time     `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	VerifiedBy  string         `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	QRCode      string         `bson:"qr_code,omitempty" json:"qr_code,omitempty"`

	Documents []FileUpload `bson:"documents" json:"documents"`
	Comments  []string     `bson:"comments,omitempty" json:"comments,omitempty"`

	// Лічильник змін для оптимістичного блокування
	Version int64 `bson:"version" json:"-"`
}

type FileUpload struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Size       int64     `bson:"size" json:"size"`
	Type       string    `bson:"type" json:"type"`
	URL        string    `bson:"url" json:"url"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// Типи довідок
const (
	DocumentTypeIncome    DocumentType = "income"
	DocumentTypeCaste     DocumentType = "caste"
	DocumentTypeEducation DocumentType = "education"
	DocumentTypeDomicile  DocumentType = "domicile"
	DocumentTypeBirth     DocumentType = "birth"
	DocumentTypeDeath     DocumentType = "death"
)

// Статуси заявок
const (
	StatusPending     DocumentStatus = "pending"
	StatusUnderReview DocumentStatus = "under_review"
	StatusVerified    DocumentStatus = "verified"
	StatusRejected    DocumentStatus = "rejected"
)

// Пріоритети
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AllDocumentTypes повертає типи довідок у порядку відображення
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeIncome,
		DocumentTypeCaste,
		DocumentTypeEducation,
		DocumentTypeDomicile,
		DocumentTypeBirth,
		DocumentTypeDeath,
	}
}

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeIncome, DocumentTypeCaste, DocumentTypeEducation,
		DocumentTypeDomicile, DocumentTypeBirth, DocumentTypeDeath:
		return true
	}
	return false
}

// Department повертає відділ, що обробляє тип довідки
func (t DocumentType) Department() string {
	switch t {
	case DocumentTypeIncome, DocumentTypeDomicile:
		return "Revenue"
	case DocumentTypeCaste:
		return "Social Welfare"
	case DocumentTypeEducation:
		return "Education"
	case DocumentTypeBirth, DocumentTypeDeath:
		return "Municipal"
	}
	return "Other"
}

// AllStatuses повертає статуси в порядку життєвого циклу
func AllStatuses() []DocumentStatus {
	return []DocumentStatus{
		StatusPending,
		StatusUnderReview,
		StatusVerified,
		StatusRejected,
	}
}

func (s DocumentStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// verified і rejected - кінцеві статуси одного рангу
var statusRank = map[DocumentStatus]int{
	StatusPending:     0,
	StatusUnderReview: 1,
	StatusVerified:    2,
	StatusRejected:    2,
}

// IsFinal перевіряє чи статус кінцевий
func (s DocumentStatus) IsFinal() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo дозволяє лише рух вперед по життєвому циклу
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[target]
	if !ok1 || !ok2 {
		return false
	}
	return to > from
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IsVerified перевіряє чи документ підтверджено
func (d *Document) IsVerified() bool {
	return d.Status == StatusVerified
}

// IsOwnedBy перевіряє власника документа
func (d *Document) IsOwnedBy(userID string) bool {
	return d.UserID == userID
}

// Clone повертає глибоку копію, щоб сховище не ділило зрізи з викликачем
func (d Document) Clone() Document {
	out := d
	if d.VerifiedAt != nil {
		t := *d.VerifiedAt
		out.VerifiedAt = &t
	}
	if d.Documents != nil {
		out.Documents = make([]FileUpload, len(d.Documents))
		copy(out.Documents, d.Documents)
	}
	if d.Comments != nil {
		out.Comments = make([]string, len(d.Comments))
		copy(out.Comments, d.Comments)
	}
	return out
}

// DocumentUpdate - часткове оновлення документа; nil поля не змінюються
type DocumentUpdate struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Priority    *Priority       `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *DocumentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending under_review verified rejected"`
	VerifiedBy  *string         `json:"verified_by,omitempty" validate:"omitempty,max=100"`
	Comments    []string        `json:"comments,omitempty"`
}

// IsEmpty - чи немає жодного поля для оновлення
func (u DocumentUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Status == nil && u.VerifiedBy == nil && u.Comments == nil
}

// ChangesContent - чи зачіпає оновлення зміст, який підтверджує рецензент
func (u DocumentUpdate) ChangesContent() bool {
	return u.Title != nil || u.Description != nil || u.Priority != nil || u.VerifiedBy != nil
}

// DocumentFilter - фільтр для списків документів
type DocumentFilter struct {
	UserID     string
	Statuses   []DocumentStatus
	VerifiedBy string
	Type       DocumentType
	Page       int
	Limit      int
}

// StatusCounts - кількість документів користувача за статусами
type StatusCounts struct {
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Verified    int `json:"verified"`
	Rejected    int `json:"rejected"`
	Total       int `json:"total"`
}
