package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"egov-portal/internal/models"
	"egov-portal/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Кількість місяців у monthly_stats
const analyticsMonths = 6

// AnalyticsService тримає знімок статистики і оновлює його за розкладом
type AnalyticsService struct {
	documents store.DocumentStore
	now       func() time.Time

	mu       sync.RWMutex
	snapshot *models.AnalyticsData

	cron *cron.Cron
}

func NewAnalyticsService(documents store.DocumentStore) *AnalyticsService {
	return &AnalyticsService{
		documents: documents,
		now:       time.Now,
	}
}

// Start запускає періодичне оновлення. schedule - cron-вираз або "@every 5m".
func (s *AnalyticsService) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.Refresh(ctx); err != nil {
			logrus.WithError(err).Error("❌ Не вдалося оновити аналітику")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid analytics schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	logrus.WithField("schedule", schedule).Info("Планувальник аналітики запущено")
	return nil
}

// Stop зупиняє планувальник і чекає завершення поточного оновлення
func (s *AnalyticsService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Snapshot повертає кешований знімок, при першому виклику рахує його
func (s *AnalyticsService) Snapshot(ctx context.Context) (models.AnalyticsData, error) {
	s.mu.RLock()
	cached := s.snapshot
	s.mu.RUnlock()

	if cached != nil {
		return *cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh перераховує знімок зі сховища
func (s *AnalyticsService) Refresh(ctx context.Context) (models.AnalyticsData, error) {
	docs, err := s.documents.AllDocuments(ctx)
	if err != nil {
		return models.AnalyticsData{}, fmt.Errorf("failed to load documents for analytics: %w", err)
	}

	data := ComputeAnalytics(docs, s.now())

	s.mu.Lock()
	s.snapshot = &data
	s.mu.Unlock()

	return data, nil
}

// ComputeAnalytics будує знімок: підсумки за статусами, останні 6 місяців
// (включно з поточним) і кількість заявок по відділах
func ComputeAnalytics(docs []models.Document, now time.Time) models.AnalyticsData {
	now = now.UTC()
	data := models.AnalyticsData{
		MonthlyStats:    make([]models.MonthlyStat, 0, analyticsMonths),
		DepartmentStats: []models.DepartmentStat{},
		GeneratedAt:     now,
	}

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstMonth := currentMonth.AddDate(0, -(analyticsMonths - 1), 0)
	monthIndex := make(map[string]int, analyticsMonths)
	for i := 0; i < analyticsMonths; i++ {
		month := firstMonth.AddDate(0, i, 0)
		monthIndex[month.Format("2006-01")] = i
		data.MonthlyStats = append(data.MonthlyStats, models.MonthlyStat{Month: month.Format("Jan")})
	}

	departments := make(map[string]int)

	for _, doc := range docs {
		data.TotalApplications++
		switch doc.Status {
		case models.StatusVerified:
			data.VerifiedDocuments++
		case models.StatusRejected:
			data.RejectedApplications++
		case models.StatusPending, models.StatusUnderReview:
			data.PendingApplications++
		}

		if i, ok := monthIndex[doc.SubmittedAt.UTC().Format("2006-01")]; ok {
			data.MonthlyStats[i].Applications++
		}
		if doc.VerifiedAt != nil {
			if i, ok := monthIndex[doc.VerifiedAt.UTC().Format("2006-01")]; ok {
				data.MonthlyStats[i].Verified++
			}
		}

		departments[doc.Type.Department()]++
	}

	for name, count := range departments {
		data.DepartmentStats = append(data.DepartmentStats, models.DepartmentStat{
			Department: name,
			Count:      count,
		})
	}
	sort.Slice(data.DepartmentStats, func(i, j int) bool {
		if data.DepartmentStats[i].Count == data.DepartmentStats[j].Count {
			return data.DepartmentStats[i].Department < data.DepartmentStats[j].Department
		}
		return data.DepartmentStats[i].Count > data.DepartmentStats[j].Count
	})

	return data
}
