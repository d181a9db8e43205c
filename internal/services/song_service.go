// internal/services/song_service.go
package services

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

type SongService struct {
	db      *gorm.DB
	store   store.LedgerStore
	indexer *IndexerService
}

type RegisterSongRequest struct {
	Mint            string   `json:"mint" validate:"required,solana_address"`
	Title           string   `json:"title" validate:"max=255"`
	Artist          string   `json:"artist" validate:"required,solana_address"`
	Curator         string   `json:"curator" validate:"required,solana_address"`
	CuratorShareBps *int     `json:"curator_share_bps,omitempty" validate:"omitempty,min=0,max=10000"`
	StreamLamports  int64    `json:"stream_lamports" validate:"min=0"`
	BuyLamports     int64    `json:"buy_lamports" validate:"min=0"`
	IPFSAudioCID    string   `json:"ipfs_audio_cid,omitempty"`
	MetadataURI     string   `json:"metadata_uri,omitempty" validate:"omitempty,url"`
	CoverURL        string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	Tags            []string `json:"tags,omitempty"`
}

func NewSongService(db *gorm.DB, ledger store.LedgerStore, indexer *IndexerService) *SongService {
	return &SongService{
		db:      db,
		store:   ledger,
		indexer: indexer,
	}
}

func (s *SongService) RegisterSong(ctx context.Context, req *RegisterSongRequest) (*models.Song, error) {
	shareBps := 2000
	if req.CuratorShareBps != nil {
		shareBps = *req.CuratorShareBps
	}

	song := &models.Song{
		Mint:            req.Mint,
		Title:           req.Title,
		Artist:          req.Artist,
		Curator:         req.Curator,
		CuratorShareBps: shareBps,
		StreamLamports:  req.StreamLamports,
		BuyLamports:     req.BuyLamports,
		IPFSAudioCID:    req.IPFSAudioCID,
		MetadataURI:     req.MetadataURI,
		CoverURL:        req.CoverURL,
		Tags:            pq.StringArray(req.Tags),
		Status:          models.SongStatusActive,
	}

	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, err
	}

	// Keep the indexer watching the new recipient wallets. Attribution
	// still works if this fails (the subscription can be repaired by
	// re-registering), so a sync error only logs.
	if err := s.indexer.RegisterAddresses(ctx, req.Artist, req.Curator); err != nil {
		logrus.WithError(err).WithField("mint", req.Mint).
			Warn("Failed to sync recipient addresses with indexer")
	}

	logrus.WithFields(logrus.Fields{
		"mint":    song.Mint,
		"artist":  song.Artist,
		"curator": song.Curator,
	}).Info("Song registered")

	return song, nil
}

func (s *SongService) GetSong(ctx context.Context, mint string) (*models.Song, error) {
	return s.store.FindSongByMint(ctx, mint)
}

func (s *SongService) ListSongs(params utils.PaginationParams) ([]models.Song, int64, error) {
	query := s.db.Model(&models.Song{}).Where("status = ?", models.SongStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count songs: %w", err)
	}

	allowedSortFields := []string{"created_at", "stream_count", "title"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var songs []models.Song
	if err := query.Find(&songs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch songs: %w", err)
	}

	return songs, total, nil
}
