// internal/services/webhook_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/webhook"
)

// WebhookService turns indexer webhook deliveries into attributed stream
// logs and purchase grants. Each call is a single stateless pass over the
// payload; everything durable, including deduplication of redelivered
// events, lives behind the LedgerStore.
type WebhookService struct {
	store store.LedgerStore
}

// ProcessResult summarizes one webhook pass for logging and the response
// body.
type ProcessResult struct {
	Transfers int `json:"transfers"`
	Streams   int `json:"streams"`
	Purchases int `json:"purchases"`
	Skipped   int `json:"skipped"`
}

func NewWebhookService(ledger store.LedgerStore) *WebhookService {
	return &WebhookService{store: ledger}
}

// Process normalizes the payload and applies the two recording policies
// to every attributed transfer. Item-level problems (unmatched
// destinations, malformed sub-items, already-recorded transactions) never
// abort the pass; store failures are collected and returned after every
// transfer has been attempted, so the indexer retries the whole delivery
// and the unique constraints absorb the overlap.
func (s *WebhookService) Process(ctx context.Context, payload []byte) (*ProcessResult, error) {
	result := &ProcessResult{}
	var errs []error

	transfers := webhook.Extract(payload)
	result.Transfers = len(transfers)

	for _, t := range transfers {
		if t.Destination == "" {
			result.Skipped++
			continue
		}

		song, err := s.store.FindSongByRecipient(ctx, t.Destination)
		if errors.Is(err, store.ErrNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := s.recordStream(ctx, song, t, &result.Streams); err != nil {
			errs = append(errs, err)
		}
		if err := s.recordPurchase(ctx, song, t, &result.Purchases); err != nil {
			errs = append(errs, err)
		}
	}

	return result, errors.Join(errs...)
}

// recordStream applies the stream-log policy: every transfer to an
// artist or curator wallet is a stream. The counter moves only when the
// log row actually inserted, so N deliveries of one transaction still
// count a single stream.
func (s *WebhookService) recordStream(ctx context.Context, song *models.Song, t webhook.Transfer, streams *int) error {
	log := &models.StreamLog{
		SongMint:       song.Mint,
		TxHash:         nullableHash(t.TxHash),
		Payer:          t.Source,
		Destination:    t.Destination,
		AmountLamports: t.Lamports,
		Slot:           t.Slot,
		Timestamp:      time.Now().UTC(),
		Source:         models.StreamSourceWebhook,
		Raw:            t.RawMap(),
	}

	inserted, err := s.store.UpsertStreamLog(ctx, log)
	if err != nil {
		return fmt.Errorf("stream log for %s: %w", song.Mint, err)
	}
	if !inserted {
		logrus.WithFields(logrus.Fields{
			"mint":    song.Mint,
			"tx_hash": t.TxHash,
		}).Debug("Stream already recorded, skipping")
		return nil
	}

	*streams++

	if err := s.store.IncrementStreamCount(ctx, song.Mint, 1); err != nil {
		return fmt.Errorf("stream count for %s: %w", song.Mint, err)
	}
	if t.Slot > 0 {
		if err := s.store.BumpLastStreamSlot(ctx, song.Mint, t.Slot); err != nil {
			return fmt.Errorf("stream slot for %s: %w", song.Mint, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"mint":     song.Mint,
		"payer":    t.Source,
		"lamports": t.Lamports,
		"slot":     t.Slot,
	}).Info("Stream recorded")
	return nil
}

// recordPurchase applies the purchase policy: a transfer straight to the
// artist wallet, with a known payer, for exactly the song's per-stream
// price. Transfers without a transaction hash are not granted, there is
// nothing to key the grant's idempotence on.
func (s *WebhookService) recordPurchase(ctx context.Context, song *models.Song, t webhook.Transfer, purchases *int) error {
	if t.Destination != song.Artist || t.Source == "" {
		return nil
	}
	if song.StreamLamports == 0 || t.Lamports != song.StreamLamports {
		return nil
	}
	if t.TxHash == "" {
		logrus.WithField("mint", song.Mint).Warn("Purchase-priced transfer without tx hash, not granting")
		return nil
	}

	purchase := &models.Purchase{
		SongMint:       song.Mint,
		UserAddress:    t.Source,
		TxHash:         t.TxHash,
		AmountLamports: t.Lamports,
	}

	inserted, err := s.store.UpsertPurchase(ctx, purchase)
	if err != nil {
		return fmt.Errorf("purchase for %s: %w", song.Mint, err)
	}
	if inserted {
		*purchases++
		logrus.WithFields(logrus.Fields{
			"mint": song.Mint,
			"user": t.Source,
		}).Info("Purchase recorded")
	}
	return nil
}

func nullableHash(hash string) *string {
	if hash == "" {
		return nil
	}
	return &hash
}
