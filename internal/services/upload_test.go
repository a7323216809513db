package services

import (
	"bytes"
	"strings"
	"testing"

	"egov-portal/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpgContent = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	exeContent = []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")
)

func TestUploadValidator_PerFileRejection(t *testing.T) {
	v := NewUploadValidator(5)

	files := []UploadFile{
		{Name: "salary.pdf", Size: int64(len(pdfContent)), DeclaredType: "application/pdf", Content: bytes.NewReader(pdfContent)},
		{Name: "setup.exe", Size: int64(len(exeContent)), DeclaredType: "application/x-msdownload", Content: bytes.NewReader(exeContent)},
		{Name: "big.pdf", Size: 6 * 1024 * 1024, DeclaredType: "application/pdf", Content: bytes.NewReader(pdfContent)},
		{Name: "photo.png", Size: int64(len(pngContent)), DeclaredType: "image/png", Content: bytes.NewReader(pngContent)},
	}

	accepted, rejected := v.Validate(files, i18n.English)

	require.Len(t, accepted, 2)
	assert.Equal(t, "salary.pdf", accepted[0].Name)
	assert.Equal(t, "application/pdf", accepted[0].Type)
	assert.True(t, strings.HasPrefix(accepted[0].URL, "blob:"))
	assert.NotEqual(t, accepted[0].URL, accepted[1].URL)
	assert.Equal(t, "image/png", accepted[1].Type)

	require.Len(t, rejected, 2)
	assert.Equal(t, RejectInvalidFileType, rejected[0].Code)
	assert.Equal(t, "setup.exe: Invalid file type", rejected[0].Message)
	assert.Equal(t, RejectFileTooLarge, rejected[1].Code)
	assert.Equal(t, "big.pdf: File too large (max 5MB)", rejected[1].Message)
}

func TestUploadValidator_SizeBoundary(t *testing.T) {
	v := NewUploadValidator(0)
	assert.Equal(t, DefaultMaxUploadBytes, v.MaxBytes())

	accepted, rejected := v.Validate([]UploadFile{
		{Name: "exact.pdf", Size: DefaultMaxUploadBytes, DeclaredType: "application/pdf"},
		{Name: "over.pdf", Size: DefaultMaxUploadBytes + 1, DeclaredType: "application/pdf"},
	}, i18n.English)

	require.Len(t, accepted, 1)
	assert.Equal(t, "exact.pdf", accepted[0].Name)
	require.Len(t, rejected, 1)
	assert.Equal(t, "over.pdf", rejected[0].Name)
}

func TestUploadValidator_JPGAlias(t *testing.T) {
	v := NewUploadValidator(5)

	accepted, rejected := v.Validate([]UploadFile{
		{Name: "scan.jpg", Size: int64(len(jpgContent)), DeclaredType: "image/jpg", Content: bytes.NewReader(jpgContent)},
	}, i18n.English)

	assert.Empty(t, rejected)
	require.Len(t, accepted, 1)
	assert.Equal(t, "image/jpeg", accepted[0].Type)
}

func TestUploadValidator_ContentMismatch(t *testing.T) {
	v := NewUploadValidator(5)

	// Виконуваний файл, перейменований у .pdf
	_, rejected := v.Validate([]UploadFile{
		{Name: "fake.pdf", Size: int64(len(exeContent)), DeclaredType: "application/pdf", Content: bytes.NewReader(exeContent)},
	}, i18n.English)

	require.Len(t, rejected, 1)
	assert.Equal(t, RejectInvalidFileType, rejected[0].Code)
}

func TestUploadValidator_HindiMessages(t *testing.T) {
	v := NewUploadValidator(5)

	_, rejected := v.Validate([]UploadFile{
		{Name: "notes.txt", Size: 10, DeclaredType: "text/plain"},
	}, i18n.Hindi)

	require.Len(t, rejected, 1)
	assert.Equal(t, "notes.txt: अमान्य फ़ाइल प्रकार", rejected[0].Message)
}

func TestNormalizeUploadType(t *testing.T) {
	assert.Equal(t, "image/jpeg", NormalizeUploadType("image/jpg"))
	assert.Equal(t, "application/pdf", NormalizeUploadType("application/pdf; charset=binary"))
	assert.Equal(t, "image/png", NormalizeUploadType("IMAGE/PNG"))
	assert.Equal(t, "", NormalizeUploadType(""))
}
