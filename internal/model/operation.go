// internal/model/operation.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OperationType represents the type of drawer operation
type OperationType string

const (
	OperationTypeConnect     OperationType = "CONNECT"
	OperationTypeDisconnect  OperationType = "DISCONNECT"
	OperationTypeReconnect   OperationType = "RECONNECT"
	OperationTypeAutoConnect OperationType = "AUTO_CONNECT"
	OperationTypeOpenDrawer  OperationType = "OPEN_DRAWER"
	OperationTypeTestDrawer  OperationType = "TEST_DRAWER"
)

// ParseOperationType validates an operation type filter value
func ParseOperationType(s string) (OperationType, bool) {
	switch t := OperationType(s); t {
	case OperationTypeConnect, OperationTypeDisconnect, OperationTypeReconnect,
		OperationTypeAutoConnect, OperationTypeOpenDrawer, OperationTypeTestDrawer:
		return t, true
	}
	return "", false
}

// OperationStatus represents the outcome of an operation
type OperationStatus string

const (
	OperationStatusSuccess OperationStatus = "SUCCESS"
	OperationStatusFailed  OperationStatus = "FAILED"
)

// DrawerOperation is one audited drawer operation
type DrawerOperation struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OperationType OperationType   `json:"operation_type" db:"operation_type"`
	Port          string          `json:"port,omitempty" db:"port"`
	BaudRate      int             `json:"baud_rate,omitempty" db:"baud_rate"`
	Command       string          `json:"command,omitempty" db:"command"`
	Status        OperationStatus `json:"status" db:"status"`
	ErrorCode     *string         `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage  *string         `json:"error_message,omitempty" db:"error_message"`
	DurationMs    int             `json:"duration_ms" db:"duration_ms"`
	RequestID     string          `json:"request_id,omitempty" db:"request_id"`
	Metadata      JSONObject      `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Succeeded reports whether the operation completed without error
func (op *DrawerOperation) Succeeded() bool {
	return op.Status == OperationStatusSuccess
}

// JSONObject type for PostgreSQL JSONB objects
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for JSONObject")
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}
