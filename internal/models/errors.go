package models

import "errors"

// Помилки домену; обробники зіставляють їх через errors.Is
var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDocumentFinal        = errors.New("document is finalized")
	ErrEmptyCode            = errors.New("verification code is empty")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEntry       = errors.New("duplicate entry")
)
