package service

import (
	"GoDrop/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// ShareAccessStat aggregates access counts for one share.
type ShareAccessStat struct {
	ShareID   string `json:"share_id"`
	ShareCode string `json:"share_code"`
	Downloads int64  `json:"downloads"`
	Replays   int64  `json:"replays"`
}

// AnalyticsService reads the access log written by the event worker.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// ListShareAccessLogs returns recent access logs, optionally for one share.
func (s *AnalyticsService) ListShareAccessLogs(ctx context.Context, shareID string, limit int) ([]model.ShareAccessLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.WithContext(ctx).Model(&model.ShareAccessLog{})
	if shareID != "" {
		query = query.Where("share_id = ?", shareID)
	}
	var logs []model.ShareAccessLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GetShareAccessStats groups download and replay counts per share over the
// trailing window.
func (s *AnalyticsService) GetShareAccessStats(ctx context.Context, days int) ([]ShareAccessStat, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats []ShareAccessStat
	err := s.db.WithContext(ctx).Model(&model.ShareAccessLog{}).
		Select(
			"share_id, share_code, "+
				"SUM(CASE WHEN event = ? THEN 1 ELSE 0 END) AS downloads, "+
				"SUM(CASE WHEN event = ? THEN 1 ELSE 0 END) AS replays",
			model.AccessEventDownload, model.AccessEventReplay).
		Where("created_at >= ?", since).
		Group("share_id, share_code").
		Order("downloads DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
