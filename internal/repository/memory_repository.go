// internal/repository/memory_repository.go
package repository

import (
	"context"
	"sync"
	"time"

	"drawer-service/internal/model"
)

// memoryRepository keeps the latest operations in a fixed-size ring
type memoryRepository struct {
	mu       sync.RWMutex
	ring     []*model.DrawerOperation
	next     int
	size     int
	capacity int
}

// NewMemoryOperationRepository creates an in-process audit log holding at
// most capacity entries
func NewMemoryOperationRepository(capacity int) OperationRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &memoryRepository{
		ring:     make([]*model.DrawerOperation, capacity),
		capacity: capacity,
	}
}

func (r *memoryRepository) Create(ctx context.Context, operation *model.DrawerOperation) error {
	cp := *operation

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring[r.next] = &cp
	r.next = (r.next + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
	return nil
}

// each walks entries newest first until fn returns false
func (r *memoryRepository) each(fn func(op *model.DrawerOperation) bool) {
	for i := 0; i < r.size; i++ {
		idx := (r.next - 1 - i + r.capacity) % r.capacity
		if !fn(r.ring[idx]) {
			return
		}
	}
}

func (r *memoryRepository) List(ctx context.Context, filter *OperationFilter) ([]*model.DrawerOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.limit()
	operations := []*model.DrawerOperation{}
	r.each(func(op *model.DrawerOperation) bool {
		if filter.matches(op) {
			cp := *op
			operations = append(operations, &cp)
		}
		return len(operations) < limit
	})
	return operations, nil
}

func (r *memoryRepository) GetOperationStats(ctx context.Context, since time.Time) (*OperationStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &OperationStats{ByType: make(map[model.OperationType]int)}
	var totalMs int
	r.each(func(op *model.DrawerOperation) bool {
		if op.CreatedAt.Before(since) {
			return true
		}
		stats.TotalOperations++
		if op.Succeeded() {
			stats.SuccessfulOps++
		} else {
			stats.FailedOps++
		}
		stats.ByType[op.OperationType]++
		totalMs += op.DurationMs
		if stats.LastOperation == nil || op.CreatedAt.After(*stats.LastOperation) {
			t := op.CreatedAt
			stats.LastOperation = &t
		}
		return true
	})
	if stats.TotalOperations > 0 {
		stats.AvgDurationMs = float64(totalMs) / float64(stats.TotalOperations)
	}
	return stats, nil
}

func (r *memoryRepository) DeleteOldOperations(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]*model.DrawerOperation, 0, r.size)
	// oldest first so the ring order is preserved
	for i := r.size - 1; i >= 0; i-- {
		op := r.ring[(r.next-1-i+r.capacity)%r.capacity]
		if !op.CreatedAt.Before(olderThan) {
			kept = append(kept, op)
		}
	}

	deleted := int64(r.size - len(kept))
	r.ring = make([]*model.DrawerOperation, r.capacity)
	copy(r.ring, kept)
	r.size = len(kept)
	r.next = len(kept) % r.capacity
	return deleted, nil
}
