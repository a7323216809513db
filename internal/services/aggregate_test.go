package services

import (
	"testing"

	"egov-portal/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatus(t *testing.T) {
	docs := []models.Document{
		{ID: "1", UserID: "u1", Status: models.StatusPending},
		{ID: "2", UserID: "u1", Status: models.StatusPending},
		{ID: "3", UserID: "u1", Status: models.StatusUnderReview},
		{ID: "4", UserID: "u1", Status: models.StatusVerified},
		{ID: "5", UserID: "u1", Status: models.StatusRejected},
		{ID: "6", UserID: "u2", Status: models.StatusVerified},
	}

	tests := []struct {
		name   string
		docs   []models.Document
		userID string
		want   models.StatusCounts
	}{
		{
			name:   "mixed statuses",
			docs:   docs,
			userID: "u1",
			want:   models.StatusCounts{Pending: 2, UnderReview: 1, Verified: 1, Rejected: 1, Total: 5},
		},
		{
			name:   "other user",
			docs:   docs,
			userID: "u2",
			want:   models.StatusCounts{Verified: 1, Total: 1},
		},
		{
			name:   "no documents",
			docs:   nil,
			userID: "u1",
			want:   models.StatusCounts{},
		},
		{
			name:   "unknown user",
			docs:   docs,
			userID: "nobody",
			want:   models.StatusCounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateStatus(tt.docs, tt.userID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Pending+got.UnderReview+got.Verified+got.Rejected)
		})
	}
}
