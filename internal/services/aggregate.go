package services

import "egov-portal/internal/models"

// AggregateStatus рахує документи користувача за статусами
func AggregateStatus(docs []models.Document, userID string) models.StatusCounts {
	var counts models.StatusCounts
	for _, doc := range docs {
		if doc.UserID != userID {
			continue
		}
		switch doc.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusUnderReview:
			counts.UnderReview++
		case models.StatusVerified:
			counts.Verified++
		case models.StatusRejected:
			counts.Rejected++
		default:
			continue
		}
		counts.Total++
	}
	return counts
}
