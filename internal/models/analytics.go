package models

import "time"

// AnalyticsData - знімок агрегованої статистики, тільки для читання
type AnalyticsData struct {
	TotalApplications    int              `json:"total_applications"`
	VerifiedDocuments    int              `json:"verified_documents"`
	PendingApplications  int              `json:"pending_applications"`
	RejectedApplications int              `json:"rejected_applications"`
	MonthlyStats         []MonthlyStat    `json:"monthly_stats"`
	DepartmentStats      []DepartmentStat `json:"department_stats"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

type MonthlyStat struct {
	Month        string `json:"month"`
	Applications int    `json:"applications"`
	Verified     int    `json:"verified"`
}

type DepartmentStat struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}
