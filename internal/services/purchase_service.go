// internal/services/purchase_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

// PurchaseService backs the client-confirmed record-purchase endpoint
// and the permanent-access check.
type PurchaseService struct {
	db    *gorm.DB
	store store.LedgerStore
}

type RecordPurchaseRequest struct {
	Mint           string `json:"mint" validate:"required,solana_address"`
	TxHash         string `json:"tx_hash" validate:"required,tx_signature"`
	UserAddress    string `json:"user_address" validate:"required,solana_address"`
	AmountLamports int64  `json:"amount_lamports" validate:"required,min=1"`
}

func NewPurchaseService(db *gorm.DB, ledger store.LedgerStore) *PurchaseService {
	return &PurchaseService{db: db, store: ledger}
}

// RecordPurchase grants access for a client-confirmed buy. Returns
// store.ErrAlreadyExists when this transaction hash was already granted.
func (s *PurchaseService) RecordPurchase(ctx context.Context, req *RecordPurchaseRequest) (*models.Purchase, error) {
	song, err := s.store.FindSongByMint(ctx, req.Mint)
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		SongMint:       song.Mint,
		UserAddress:    req.UserAddress,
		TxHash:         req.TxHash,
		AmountLamports: req.AmountLamports,
	}

	inserted, err := s.store.UpsertPurchase(ctx, purchase)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, store.ErrAlreadyExists
	}

	return purchase, nil
}

// HasAccess reports whether the wallet owns the song. Purchase row
// existence is the only signal.
func (s *PurchaseService) HasAccess(ctx context.Context, mint, userAddress string) (bool, error) {
	return s.store.HasPurchase(ctx, mint, userAddress)
}

func (s *PurchaseService) ListPurchases(userAddress string, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	query := s.db.Model(&models.Purchase{})
	if userAddress != "" {
		query = query.Where("user_address = ?", userAddress)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount_lamports"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}
