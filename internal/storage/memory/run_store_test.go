package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/storage"
)

func sampleRun(id string) *domain.CampaignRun {
	return &domain.CampaignRun{
		ID: id,
		Config: domain.CampaignConfig{
			TokenMint:       "mint-1",
			TradeCount:      20,
			DurationMinutes: 60,
			TradeSizeSOL:    0.05,
			SlippagePct:     1.0,
			Mode:            domain.ModeBump,
		},
		Status:                    domain.StatusRunning,
		EstimatedRemainingMinutes: 60,
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := sampleRun("run-1")
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, domain.StatusRunning, got.Status)
}

func TestRunStore_InsertDuplicate(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleRun("run-1")))
	err := store.Insert(ctx, sampleRun("run-1"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRunStore_InsertInvalid(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.CampaignRun{}), storage.ErrInvalidInput)
}

func TestRunStore_GetMissing(t *testing.T) {
	store := NewRunStore()

	_, err := store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunStore_UpdateSnapshotUpserts(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	// Unknown ID inserts.
	run := sampleRun("run-1")
	require.NoError(t, store.UpdateSnapshot(ctx, run))

	// Known ID replaces.
	run.Status = domain.StatusCompleted
	run.CompletedCount = 20
	require.NoError(t, store.UpdateSnapshot(ctx, run))

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 20, got.CompletedCount)
}

func TestRunStore_DeleteIsIdempotent(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleRun("run-1")))
	require.NoError(t, store.Delete(ctx, "run-1"))

	_, err := store.GetByID(ctx, "run-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Unknown ID is a no-op.
	assert.NoError(t, store.Delete(ctx, "run-1"))
}

func TestRunStore_List(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleRun("run-1")))
	require.NoError(t, store.Insert(ctx, sampleRun("run-2")))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunStore_IsolatesStoredState(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := sampleRun("run-1")
	run.TradeLog = []domain.TradeLogEntry{{ID: "leg-1", Direction: domain.DirectionBuy}}
	require.NoError(t, store.Insert(ctx, run))

	// Mutating the inserted value must not reach the store.
	run.Status = domain.StatusError
	run.TradeLog[0].ID = "mutated"

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	assert.Equal(t, "leg-1", got.TradeLog[0].ID)

	// Mutating a retrieved value must not reach the store either.
	got.TradeLog[0].ID = "mutated-again"
	again, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "leg-1", again.TradeLog[0].ID)
}
