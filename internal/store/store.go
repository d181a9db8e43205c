// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/skytunes/skytunes-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// LedgerStore is the persistence surface the attribution engine and the
// client-confirmed endpoints write through. All deduplication guarantees
// live here, behind database unique constraints: the upsert methods are
// atomic insert-or-ignore operations, never check-then-insert, so they
// stay correct when the same transaction arrives on concurrent requests.
type LedgerStore interface {
	// FindSongByRecipient resolves a transfer destination to the song
	// whose artist or curator wallet it is. Recipient wallets are
	// expected to be unique across songs; if they are not, the oldest
	// registered song wins. Returns ErrNotFound when nothing matches.
	FindSongByRecipient(ctx context.Context, address string) (*models.Song, error)

	FindSongByMint(ctx context.Context, mint string) (*models.Song, error)

	// CreateSong registers a song. Returns ErrAlreadyExists when the
	// mint is already registered.
	CreateSong(ctx context.Context, song *models.Song) error

	// UpsertStreamLog inserts a stream log unless its transaction hash
	// was already recorded. Reports whether a row was inserted; a
	// duplicate is a successful no-op, not an error.
	UpsertStreamLog(ctx context.Context, log *models.StreamLog) (inserted bool, err error)

	// IncrementStreamCount adds delta to the song's stream counter as a
	// single relative UPDATE.
	IncrementStreamCount(ctx context.Context, mint string, delta int64) error

	// BumpLastStreamSlot advances the song's last seen ledger slot to
	// max(current, slot). An older slot never regresses the value.
	BumpLastStreamSlot(ctx context.Context, mint string, slot int64) error

	// UpsertPurchase inserts a purchase grant unless its transaction
	// hash was already recorded. Same duplicate semantics as
	// UpsertStreamLog.
	UpsertPurchase(ctx context.Context, purchase *models.Purchase) (inserted bool, err error)

	// HasPurchase reports whether the wallet holds a purchase grant for
	// the song.
	HasPurchase(ctx context.Context, mint, userAddress string) (bool, error)

	PlatformStats(ctx context.Context) (*PlatformStats, error)
}

// PlatformStats aggregates platform totals for the operator dashboard.
type PlatformStats struct {
	Songs            int64 `json:"songs"`
	Streams          int64 `json:"streams"`
	Purchases        int64 `json:"purchases"`
	StreamLamports   int64 `json:"stream_lamports"`
	PurchaseLamports int64 `json:"purchase_lamports"`
}
