// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
)

type AdminService struct {
	db    *gorm.DB
	store store.LedgerStore
}

type DashboardStats struct {
	Totals     *store.PlatformStats `json:"totals"`
	TopSongs   []models.Song        `json:"top_songs"`
	RecentLogs []models.StreamLog   `json:"recent_streams"`
}

func NewAdminService(db *gorm.DB, ledger store.LedgerStore) *AdminService {
	return &AdminService{db: db, store: ledger}
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	totals, err := s.store.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	var topSongs []models.Song
	if err := s.db.WithContext(ctx).
		Order("stream_count DESC").
		Limit(10).
		Find(&topSongs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top songs: %w", err)
	}

	var recentLogs []models.StreamLog
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(20).
		Find(&recentLogs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent streams: %w", err)
	}

	return &DashboardStats{
		Totals:     totals,
		TopSongs:   topSongs,
		RecentLogs: recentLogs,
	}, nil
}
