// internal/store/pg.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skytunes/skytunes-backend/internal/models"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore wraps a GORM connection as a LedgerStore.
func NewPGStore(db *gorm.DB) LedgerStore {
	return &pgStore{db: db}
}

func (s *pgStore) FindSongByRecipient(ctx context.Context, address string) (*models.Song, error) {
	var song models.Song
	err := s.db.WithContext(ctx).
		Where("artist = ? OR curator = ?", address, address).
		Order("created_at ASC").
		First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up song by recipient: %w", err)
	}
	return &song, nil
}

func (s *pgStore) FindSongByMint(ctx context.Context, mint string) (*models.Song, error) {
	var song models.Song
	err := s.db.WithContext(ctx).Where("mint = ?", mint).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up song by mint: %w", err)
	}
	return &song, nil
}

func (s *pgStore) CreateSong(ctx context.Context, song *models.Song) error {
	// Insert-or-ignore on the mint unique index. A zero ID afterwards
	// means the insert was skipped because the mint already exists.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mint"}},
			DoNothing: true,
		}).
		Create(song).Error
	if err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	if song.ID == uuid.Nil {
		return ErrAlreadyExists
	}
	return nil
}

func (s *pgStore) UpsertStreamLog(ctx context.Context, log *models.StreamLog) (bool, error) {
	// The tx_hash unique index is the dedup authority. A NULL hash
	// (client-confirmed stream without a signature) never conflicts and
	// always inserts.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(log).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert stream log: %w", err)
	}
	return log.ID != uuid.Nil, nil
}

func (s *pgStore) IncrementStreamCount(ctx context.Context, mint string, delta int64) error {
	err := s.db.WithContext(ctx).
		Model(&models.Song{}).
		Where("mint = ?", mint).
		UpdateColumn("stream_count", gorm.Expr("stream_count + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to increment stream count: %w", err)
	}
	return nil
}

func (s *pgStore) BumpLastStreamSlot(ctx context.Context, mint string, slot int64) error {
	err := s.db.WithContext(ctx).
		Model(&models.Song{}).
		Where("mint = ?", mint).
		UpdateColumn("last_stream_slot", gorm.Expr("GREATEST(last_stream_slot, ?)", slot)).Error
	if err != nil {
		return fmt.Errorf("failed to bump last stream slot: %w", err)
	}
	return nil
}

func (s *pgStore) UpsertPurchase(ctx context.Context, purchase *models.Purchase) (bool, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(purchase).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert purchase: %w", err)
	}
	return purchase.ID != uuid.Nil, nil
}

func (s *pgStore) HasPurchase(ctx context.Context, mint, userAddress string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("song_mint = ? AND user_address = ?", mint, userAddress).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

func (s *pgStore) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	db := s.db.WithContext(ctx)
	stats := &PlatformStats{}

	if err := db.Model(&models.Song{}).Count(&stats.Songs).Error; err != nil {
		return nil, fmt.Errorf("failed to count songs: %w", err)
	}
	if err := db.Model(&models.StreamLog{}).Count(&stats.Streams).Error; err != nil {
		return nil, fmt.Errorf("failed to count streams: %w", err)
	}
	if err := db.Model(&models.Purchase{}).Count(&stats.Purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}
	if err := db.Model(&models.StreamLog{}).
		Select("COALESCE(SUM(amount_lamports), 0)").Scan(&stats.StreamLamports).Error; err != nil {
		return nil, fmt.Errorf("failed to sum stream volume: %w", err)
	}
	if err := db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(amount_lamports), 0)").Scan(&stats.PurchaseLamports).Error; err != nil {
		return nil, fmt.Errorf("failed to sum purchase volume: %w", err)
	}

	return stats, nil
}
