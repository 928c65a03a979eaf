// internal/repository/interfaces.go
package repository

import (
	"context"
	"time"

	"drawer-service/internal/model"
)

// OperationRepository defines drawer operation audit access
type OperationRepository interface {
	Create(ctx context.Context, operation *model.DrawerOperation) error

	// List returns the most recent operations first
	List(ctx context.Context, filter *OperationFilter) ([]*model.DrawerOperation, error)

	GetOperationStats(ctx context.Context, since time.Time) (*OperationStats, error)

	// Cleanup
	DeleteOldOperations(ctx context.Context, olderThan time.Time) (int64, error)
}

// OperationFilter represents operation listing filters
type OperationFilter struct {
	OperationType *model.OperationType   `json:"operation_type,omitempty"`
	Status        *model.OperationStatus `json:"status,omitempty"`
	Limit         int                    `json:"limit"`
}

// DefaultListLimit applies when a filter has no positive limit
const DefaultListLimit = 50

// MaxListLimit caps a single listing
const MaxListLimit = 500

func (f *OperationFilter) limit() int {
	if f == nil || f.Limit <= 0 {
		return DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		return MaxListLimit
	}
	return f.Limit
}

func (f *OperationFilter) matches(op *model.DrawerOperation) bool {
	if f == nil {
		return true
	}
	if f.OperationType != nil && op.OperationType != *f.OperationType {
		return false
	}
	if f.Status != nil && op.Status != *f.Status {
		return false
	}
	return true
}

// OperationStats represents operation statistics
type OperationStats struct {
	TotalOperations int                         `json:"total_operations"`
	SuccessfulOps   int                         `json:"successful_operations"`
	FailedOps       int                         `json:"failed_operations"`
	AvgDurationMs   float64                     `json:"average_duration_ms"`
	ByType          map[model.OperationType]int `json:"by_type"`
	LastOperation   *time.Time                  `json:"last_operation,omitempty"`
}
