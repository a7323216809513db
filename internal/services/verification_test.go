package services

import (
	"bytes"
	"context"
	"testing"

	"egov-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationLookup(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	require.NoError(t, st.InsertDocument(ctx, models.Document{
		ID:       "pending-with-code",
		UserID:   "1",
		Type:     models.DocumentTypeBirth,
		Title:    "Birth Certificate",
		Priority: models.PriorityLow,
		Status:   models.StatusUnderReview,
		QRCode:   "QR555555555",
	}))
	svc := NewVerificationService(st)

	t.Run("verified document", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "QR123456789")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Reason)
		assert.Equal(t, "1", result.DocumentID)
		assert.Equal(t, models.DocumentTypeIncome, result.Type)
		assert.Equal(t, "Officer Smith", result.VerifiedBy)
		require.NotNil(t, result.VerifiedAt)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "  QR123456789\n")
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("not yet verified", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "QR555555555")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, ReasonNotYetVerified, result.Reason)
		assert.Empty(t, result.DocumentID)
	})

	t.Run("unknown code", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "QR000000000")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, ReasonInvalidCode, result.Reason)
	})

	t.Run("case sensitive", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "qr123456789")
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "   ")
		assert.ErrorIs(t, err, models.ErrEmptyCode)
	})
}

func TestVerificationQRCode(t *testing.T) {
	ctx := context.Background()
	svc := NewVerificationService(seededStore(t))

	png, err := svc.QRCode(ctx, "QR123456789")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.QRCode(ctx, "QR000000000")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)

	_, err = svc.QRCode(ctx, "")
	assert.ErrorIs(t, err, models.ErrEmptyCode)
}
