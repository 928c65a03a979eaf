// internal/repository/operation_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"drawer-service/internal/model"
)

const operationColumns = `id, operation_type, port, baud_rate, command, status,
	error_code, error_message, duration_ms, request_id, metadata, created_at`

// operationRepository implements OperationRepository on postgres
type operationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOperationRepository creates a postgres backed operation repository
func NewOperationRepository(db *sql.DB, logger *zap.Logger) OperationRepository {
	return &operationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new operation
func (r *operationRepository) Create(ctx context.Context, operation *model.DrawerOperation) error {
	query := `
		INSERT INTO drawer_operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		operation.ID, operation.OperationType, operation.Port, operation.BaudRate,
		operation.Command, operation.Status, operation.ErrorCode, operation.ErrorMessage,
		operation.DurationMs, operation.RequestID, operation.Metadata, operation.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create operation", zap.Error(err))
		return fmt.Errorf("failed to create operation: %w", err)
	}

	return nil
}

// List retrieves operations with filtering, newest first
func (r *operationRepository) List(ctx context.Context, filter *OperationFilter) ([]*model.DrawerOperation, error) {
	whereConditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter != nil && filter.OperationType != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("operation_type = $%d", argIndex))
		args = append(args, *filter.OperationType)
		argIndex++
	}

	if filter != nil && filter.Status != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM drawer_operations %s
		ORDER BY created_at DESC
		LIMIT $%d
	`, operationColumns, whereClause, argIndex)
	args = append(args, filter.limit())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	operations := []*model.DrawerOperation{}
	for rows.Next() {
		operation := &model.DrawerOperation{}
		err := rows.Scan(
			&operation.ID, &operation.OperationType, &operation.Port, &operation.BaudRate,
			&operation.Command, &operation.Status, &operation.ErrorCode, &operation.ErrorMessage,
			&operation.DurationMs, &operation.RequestID, &operation.Metadata, &operation.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan operation row", zap.Error(err))
			continue
		}
		operations = append(operations, operation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}

	return operations, nil
}

// GetOperationStats aggregates operations created since the given time
func (r *operationRepository) GetOperationStats(ctx context.Context, since time.Time) (*OperationStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_operations,
			COUNT(CASE WHEN status = 'SUCCESS' THEN 1 END) AS successful_ops,
			COUNT(CASE WHEN status = 'FAILED' THEN 1 END) AS failed_ops,
			AVG(duration_ms) AS avg_duration_ms,
			MAX(created_at) AS last_operation
		FROM drawer_operations
		WHERE created_at >= $1
	`

	stats := &OperationStats{ByType: make(map[model.OperationType]int)}

	var avgDurationMs sql.NullFloat64
	var lastOp sql.NullTime
	err := r.db.QueryRowContext(ctx, query, since).Scan(
		&stats.TotalOperations,
		&stats.SuccessfulOps,
		&stats.FailedOps,
		&avgDurationMs,
		&lastOp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get operation stats: %w", err)
	}

	if avgDurationMs.Valid {
		stats.AvgDurationMs = avgDurationMs.Float64
	}
	if lastOp.Valid {
		stats.LastOperation = &lastOp.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT operation_type, COUNT(*)
		FROM drawer_operations
		WHERE created_at >= $1
		GROUP BY operation_type
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group operation stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opType model.OperationType
		var count int
		if err := rows.Scan(&opType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan operation stats: %w", err)
		}
		stats.ByType[opType] = count
	}

	return stats, rows.Err()
}

// DeleteOldOperations removes old operation records
func (r *operationRepository) DeleteOldOperations(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM drawer_operations WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old operations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("Deleted old operations",
		zap.Int64("rows_deleted", rowsAffected),
		zap.Time("older_than", olderThan),
	)

	return rowsAffected, nil
}
