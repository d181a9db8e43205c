// internal/services/stream_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

// StreamService backs the client-confirmed record-stream endpoint. It
// writes through the same LedgerStore upserts as the webhook engine, so
// a stream confirmed by the client and later redelivered by the indexer
// (or vice versa) still counts once.
type StreamService struct {
	db    *gorm.DB
	store store.LedgerStore
}

type RecordStreamRequest struct {
	Mint           string `json:"mint" validate:"required,solana_address"`
	TxHash         string `json:"tx_hash,omitempty" validate:"omitempty,tx_signature"`
	Payer          string `json:"payer" validate:"required,solana_address"`
	AmountLamports int64  `json:"amount_lamports" validate:"min=0"`
	Slot           int64  `json:"slot" validate:"min=0"`
}

func NewStreamService(db *gorm.DB, ledger store.LedgerStore) *StreamService {
	return &StreamService{db: db, store: ledger}
}

// RecordStream records one client-confirmed stream. Returns
// store.ErrAlreadyExists when the transaction hash was recorded before;
// the handler maps that to a conflict instead of silently succeeding
// twice.
func (s *StreamService) RecordStream(ctx context.Context, req *RecordStreamRequest) (*models.StreamLog, error) {
	song, err := s.store.FindSongByMint(ctx, req.Mint)
	if err != nil {
		return nil, err
	}

	log := &models.StreamLog{
		SongMint:       song.Mint,
		Payer:          req.Payer,
		Destination:    song.Artist,
		AmountLamports: req.AmountLamports,
		Slot:           req.Slot,
		Timestamp:      time.Now().UTC(),
		Source:         models.StreamSourceClient,
	}
	if req.TxHash != "" {
		log.TxHash = &req.TxHash
	}

	inserted, err := s.store.UpsertStreamLog(ctx, log)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, store.ErrAlreadyExists
	}

	if err := s.store.IncrementStreamCount(ctx, song.Mint, 1); err != nil {
		return nil, err
	}
	if req.Slot > 0 {
		if err := s.store.BumpLastStreamSlot(ctx, song.Mint, req.Slot); err != nil {
			return nil, err
		}
	}

	return log, nil
}

func (s *StreamService) ListStreams(mint string, params utils.PaginationParams) ([]models.StreamLog, int64, error) {
	query := s.db.Model(&models.StreamLog{})
	if mint != "" {
		query = query.Where("song_mint = ?", mint)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count streams: %w", err)
	}

	allowedSortFields := []string{"created_at", "timestamp", "amount_lamports", "slot"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.StreamLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch streams: %w", err)
	}

	return logs, total, nil
}
