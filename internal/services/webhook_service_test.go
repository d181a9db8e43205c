// internal/services/webhook_service_test.go
package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
)

// fakeLedgerStore is an in-memory LedgerStore with the same dedup
// semantics the Postgres unique constraints provide. Safe for concurrent
// use so the duplicate-delivery race can be exercised.
type fakeLedgerStore struct {
	mu        sync.Mutex
	songs     []*models.Song
	streams   []*models.StreamLog
	purchases []*models.Purchase

	streamHashes   map[string]bool
	purchaseHashes map[string]bool
}

func newFakeLedgerStore(songs ...*models.Song) *fakeLedgerStore {
	return &fakeLedgerStore{
		songs:          songs,
		streamHashes:   make(map[string]bool),
		purchaseHashes: make(map[string]bool),
	}
}

func (f *fakeLedgerStore) FindSongByRecipient(ctx context.Context, address string) (*models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.songs {
		if s.Artist == address || s.Curator == address {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeLedgerStore) FindSongByMint(ctx context.Context, mint string) (*models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.songs {
		if s.Mint == mint {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeLedgerStore) CreateSong(ctx context.Context, song *models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.songs {
		if s.Mint == song.Mint {
			return store.ErrAlreadyExists
		}
	}
	f.songs = append(f.songs, song)
	return nil
}

func (f *fakeLedgerStore) UpsertStreamLog(ctx context.Context, log *models.StreamLog) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if log.TxHash != nil {
		if f.streamHashes[*log.TxHash] {
			return false, nil
		}
		f.streamHashes[*log.TxHash] = true
	}
	f.streams = append(f.streams, log)
	return true, nil
}

func (f *fakeLedgerStore) IncrementStreamCount(ctx context.Context, mint string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.songs {
		if s.Mint == mint {
			s.StreamCount += delta
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeLedgerStore) BumpLastStreamSlot(ctx context.Context, mint string, slot int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.songs {
		if s.Mint == mint {
			if slot > s.LastStreamSlot {
				s.LastStreamSlot = slot
			}
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeLedgerStore) UpsertPurchase(ctx context.Context, purchase *models.Purchase) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purchaseHashes[purchase.TxHash] {
		return false, nil
	}
	f.purchaseHashes[purchase.TxHash] = true
	f.purchases = append(f.purchases, purchase)
	return true, nil
}

func (f *fakeLedgerStore) HasPurchase(ctx context.Context, mint, userAddress string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.SongMint == mint && p.UserAddress == userAddress {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedgerStore) PlatformStats(ctx context.Context) (*store.PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &store.PlatformStats{
		Songs:     int64(len(f.songs)),
		Streams:   int64(len(f.streams)),
		Purchases: int64(len(f.purchases)),
	}, nil
}

func testSong() *models.Song {
	return &models.Song{
		Mint:            "mint1",
		Artist:          "artistWallet",
		Curator:         "curatorWallet",
		CuratorShareBps: 2000,
		StreamLamports:  5000,
		BuyLamports:     1000000,
	}
}

func transferPayload(txHash, source, destination string, lamports, slot int64) []byte {
	return []byte(fmt.Sprintf(
		`{"signature": %q, "slot": %d, "transfers": [{"from": %q, "to": %q, "lamports": %d}]}`,
		txHash, slot, source, destination, lamports,
	))
}

func TestProcessRecordsStreamForCuratorTransfer(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	result, err := svc.Process(context.Background(), transferPayload("tx1", "listener1", "curatorWallet", 5000, 100))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Transfers)
	assert.Equal(t, 1, result.Streams)
	assert.Equal(t, 0, result.Purchases, "curator transfers never grant purchases")
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, ledger.streams, 1)
	assert.Equal(t, "mint1", ledger.streams[0].SongMint)
	assert.Equal(t, "listener1", ledger.streams[0].Payer)
	assert.Equal(t, models.StreamSourceWebhook, ledger.streams[0].Source)
	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
	assert.Equal(t, int64(100), ledger.songs[0].LastStreamSlot)
}

func TestProcessRecordsStreamAndPurchaseForArtistTransferAtPrice(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	result, err := svc.Process(context.Background(), transferPayload("tx2", "listener1", "artistWallet", 5000, 200))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streams)
	assert.Equal(t, 1, result.Purchases)

	require.Len(t, ledger.purchases, 1)
	assert.Equal(t, "mint1", ledger.purchases[0].SongMint)
	assert.Equal(t, "listener1", ledger.purchases[0].UserAddress)
	assert.Equal(t, int64(5000), ledger.purchases[0].AmountLamports)
}

func TestProcessSkipsPurchaseWhenAmountOffPrice(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	result, err := svc.Process(context.Background(), transferPayload("tx3", "listener1", "artistWallet", 4999, 200))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streams, "off-price artist transfers still count as streams")
	assert.Equal(t, 0, result.Purchases)
	assert.Empty(t, ledger.purchases)
}

func TestProcessSkipsPurchaseWhenPriceUnset(t *testing.T) {
	song := testSong()
	song.StreamLamports = 0
	ledger := newFakeLedgerStore(song)
	svc := NewWebhookService(ledger)

	result, err := svc.Process(context.Background(), transferPayload("tx4", "listener1", "artistWallet", 0, 200))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streams)
	assert.Equal(t, 0, result.Purchases, "a zero price must not match zero-lamport transfers")
}

func TestProcessSkipsPurchaseWithoutSource(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	payload := []byte(`{"signature": "tx5", "transfers": [{"to": "artistWallet", "lamports": 5000}]}`)
	result, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streams)
	assert.Equal(t, 0, result.Purchases, "a purchase needs a payer to grant access to")
}

func TestProcessSkipsPurchaseWithoutTxHash(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	payload := []byte(`{"transfers": [{"from": "listener1", "to": "artistWallet", "lamports": 5000}]}`)
	result, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streams, "hashless transfers still log a stream")
	assert.Equal(t, 0, result.Purchases)
}

func TestProcessSkipsUnmatchedDestinations(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	payload := []byte(`[
		{"signature": "tx6", "transfers": [{"from": "x", "to": "unknownWallet", "lamports": 5000}]},
		{"signature": "tx7", "transfers": [{"from": "x", "to": "curatorWallet", "lamports": 5000}]}
	]`)
	result, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Transfers)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Streams)
}

func TestProcessTransferLevelHashRecordsStreamAndPurchase(t *testing.T) {
	song := testSong()
	song.Artist = "ARTIST1"
	song.StreamLamports = 1000
	ledger := newFakeLedgerStore(song)
	svc := NewWebhookService(ledger)

	// Some indexer generations put the hash on the transfer element, not
	// the event. Two deliveries must still collapse to one of everything.
	payload := []byte(`{"transfers": [{"from": "A", "to": "ARTIST1", "lamports": 1000, "txHash": "tx1"}]}`)

	for i := 0; i < 2; i++ {
		result, err := svc.Process(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transfers)
	}

	require.Len(t, ledger.streams, 1)
	require.NotNil(t, ledger.streams[0].TxHash)
	assert.Equal(t, "tx1", *ledger.streams[0].TxHash)

	require.Len(t, ledger.purchases, 1)
	assert.Equal(t, "tx1", ledger.purchases[0].TxHash)
	assert.Equal(t, "A", ledger.purchases[0].UserAddress)

	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
}

func TestProcessIsIdempotentAcrossRedeliveries(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	payload := transferPayload("tx8", "listener1", "artistWallet", 5000, 300)
	for i := 0; i < 5; i++ {
		_, err := svc.Process(context.Background(), payload)
		require.NoError(t, err)
	}

	assert.Len(t, ledger.streams, 1, "five deliveries, one stream log")
	assert.Len(t, ledger.purchases, 1, "five deliveries, one purchase")
	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
}

func TestProcessIsIdempotentUnderConcurrentDeliveries(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	payload := transferPayload("tx9", "listener1", "artistWallet", 5000, 400)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Process(context.Background(), payload)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, ledger.streams, 1)
	assert.Len(t, ledger.purchases, 1)
	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
}

func TestProcessSlotOnlyMovesForward(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	for i, slot := range []int64{5, 3, 8} {
		payload := transferPayload(fmt.Sprintf("slotTx%d", i), "listener1", "curatorWallet", 5000, slot)
		_, err := svc.Process(context.Background(), payload)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(8), ledger.songs[0].LastStreamSlot)
	assert.Equal(t, int64(3), ledger.songs[0].StreamCount)
}

func TestProcessZeroSlotDoesNotTouchLastStreamSlot(t *testing.T) {
	song := testSong()
	song.LastStreamSlot = 50
	ledger := newFakeLedgerStore(song)
	svc := NewWebhookService(ledger)

	_, err := svc.Process(context.Background(), transferPayload("tx10", "listener1", "curatorWallet", 5000, 0))
	require.NoError(t, err)

	assert.Equal(t, int64(50), ledger.songs[0].LastStreamSlot)
}

func TestProcessMixedBatchAttributesEachTransfer(t *testing.T) {
	songA := testSong()
	songB := &models.Song{
		Mint:           "mint2",
		Artist:         "artist2",
		Curator:        "curator2",
		StreamLamports: 7777,
	}
	ledger := newFakeLedgerStore(songA, songB)
	svc := NewWebhookService(ledger)

	payload := []byte(`[
		{"signature": "b1", "slot": 10, "transfers": [{"from": "u1", "to": "curatorWallet", "lamports": 5000}]},
		{"signature": "b2", "slot": 11, "transfers": [{"from": "u2", "to": "artist2", "lamports": 7777}]},
		{"signature": "b3", "slot": 12, "transfers": [{"from": "u3", "to": "nobody", "lamports": 100}]}
	]`)
	result, err := svc.Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Transfers)
	assert.Equal(t, 2, result.Streams)
	assert.Equal(t, 1, result.Purchases)
	assert.Equal(t, 1, result.Skipped)

	assert.Equal(t, int64(1), songA.StreamCount)
	assert.Equal(t, int64(1), songB.StreamCount)
	assert.Equal(t, int64(11), songB.LastStreamSlot)

	has, err := ledger.HasPurchase(context.Background(), "mint2", "u2")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestProcessEmptyPayloadYieldsEmptyResult(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewWebhookService(ledger)

	for _, payload := range []string{"", "null", "[]", "{}"} {
		result, err := svc.Process(context.Background(), []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, &ProcessResult{}, result)
	}
}
