// internal/services/stream_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytunes/skytunes-backend/internal/models"
	"github.com/skytunes/skytunes-backend/internal/store"
)

func TestRecordStreamClientConfirmed(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewStreamService(nil, ledger)

	req := &RecordStreamRequest{
		Mint:           "mint1",
		TxHash:         "clientTx1",
		Payer:          "listener1",
		AmountLamports: 5000,
		Slot:           10,
	}

	log, err := svc.RecordStream(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "mint1", log.SongMint)
	assert.Equal(t, models.StreamSourceClient, log.Source)
	require.NotNil(t, log.TxHash)
	assert.Equal(t, "clientTx1", *log.TxHash)
	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
	assert.Equal(t, int64(10), ledger.songs[0].LastStreamSlot)
}

func TestRecordStreamDuplicateHashConflicts(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewStreamService(nil, ledger)

	req := &RecordStreamRequest{Mint: "mint1", TxHash: "clientTx2", Payer: "listener1"}

	_, err := svc.RecordStream(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.RecordStream(context.Background(), req)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, int64(1), ledger.songs[0].StreamCount)
}

func TestRecordStreamWithoutHashAlwaysInserts(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewStreamService(nil, ledger)

	req := &RecordStreamRequest{Mint: "mint1", Payer: "listener1"}

	for i := 0; i < 3; i++ {
		_, err := svc.RecordStream(context.Background(), req)
		require.NoError(t, err, "hashless streams have nothing to dedup on")
	}
	assert.Equal(t, int64(3), ledger.songs[0].StreamCount)
}

func TestRecordStreamUnknownSong(t *testing.T) {
	svc := NewStreamService(nil, newFakeLedgerStore())

	_, err := svc.RecordStream(context.Background(), &RecordStreamRequest{Mint: "ghost", Payer: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordPurchaseClientConfirmed(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewPurchaseService(nil, ledger)

	req := &RecordPurchaseRequest{
		Mint:           "mint1",
		TxHash:         "buyTx1",
		UserAddress:    "buyer1",
		AmountLamports: 1000000,
	}

	purchase, err := svc.RecordPurchase(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "buyer1", purchase.UserAddress)

	has, err := svc.HasAccess(context.Background(), "mint1", "buyer1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasAccess(context.Background(), "mint1", "stranger")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRecordPurchaseDuplicateHashConflicts(t *testing.T) {
	ledger := newFakeLedgerStore(testSong())
	svc := NewPurchaseService(nil, ledger)

	req := &RecordPurchaseRequest{Mint: "mint1", TxHash: "buyTx2", UserAddress: "buyer1", AmountLamports: 1}

	_, err := svc.RecordPurchase(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.RecordPurchase(context.Background(), req)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Len(t, ledger.purchases, 1)
}
