package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawer-service/internal/model"
)

func newOp(opType model.OperationType, status model.OperationStatus, createdAt time.Time) *model.DrawerOperation {
	return &model.DrawerOperation{
		ID:            uuid.New(),
		OperationType: opType,
		Status:        status,
		DurationMs:    10,
		CreatedAt:     createdAt,
	}
}

func TestMemoryRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(10)
	base := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusSuccess, base.Add(time.Duration(i)*time.Second))))
	}

	ops, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.True(t, ops[0].CreatedAt.After(ops[1].CreatedAt))
	assert.True(t, ops[1].CreatedAt.After(ops[2].CreatedAt))
}

func TestMemoryRepositoryRingOverwritesOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(3)
	base := time.Now()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		op := newOp(model.OperationTypeConnect, model.OperationStatusSuccess, base.Add(time.Duration(i)*time.Second))
		ids = append(ids, op.ID)
		require.NoError(t, repo.Create(ctx, op))
	}

	ops, err := repo.List(ctx, &OperationFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []uuid.UUID{ids[4], ids[3], ids[2]}, []uuid.UUID{ops[0].ID, ops[1].ID, ops[2].ID})
}

func TestMemoryRepositoryFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(0)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeConnect, model.OperationStatusSuccess, now)))
	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusFailed, now)))
	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusSuccess, now)))
	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusSuccess, now)))

	opType := model.OperationTypeOpenDrawer
	ops, err := repo.List(ctx, &OperationFilter{OperationType: &opType})
	require.NoError(t, err)
	assert.Len(t, ops, 3)

	failed := model.OperationStatusFailed
	ops, err = repo.List(ctx, &OperationFilter{Status: &failed})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, model.OperationTypeOpenDrawer, ops[0].OperationType)

	ops, err = repo.List(ctx, &OperationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestMemoryRepositoryStoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(5)

	op := newOp(model.OperationTypeConnect, model.OperationStatusSuccess, time.Now())
	require.NoError(t, repo.Create(ctx, op))
	op.Port = "mutated"

	ops, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ops[0].Port)
}

func TestMemoryRepositoryStats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(10)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeConnect, model.OperationStatusSuccess, now.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusSuccess, now)))
	require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeOpenDrawer, model.OperationStatusFailed, now)))

	stats, err := repo.GetOperationStats(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOperations)
	assert.Equal(t, 1, stats.SuccessfulOps)
	assert.Equal(t, 1, stats.FailedOps)
	assert.Equal(t, 2, stats.ByType[model.OperationTypeOpenDrawer])
	assert.Equal(t, 10.0, stats.AvgDurationMs)
	require.NotNil(t, stats.LastOperation)
}

func TestMemoryRepositoryDeleteOld(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOperationRepository(4)
	now := time.Now()

	old := newOp(model.OperationTypeConnect, model.OperationStatusSuccess, now.Add(-48*time.Hour))
	recent := newOp(model.OperationTypeOpenDrawer, model.OperationStatusSuccess, now)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	deleted, err := repo.DeleteOldOperations(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	ops, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, recent.ID, ops[0].ID)

	// Ring keeps working after compaction
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Create(ctx, newOp(model.OperationTypeTestDrawer, model.OperationStatusSuccess, now.Add(time.Duration(i+1)*time.Second))))
	}
	ops, err = repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, ops, 4)
	assert.Equal(t, model.OperationTypeTestDrawer, ops[0].OperationType)
}
