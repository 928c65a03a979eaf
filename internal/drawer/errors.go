// internal/drawer/errors.go
package drawer

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrConnection        = errors.New("connection error")
	ErrNotConnected      = errors.New("drawer not connected")
	ErrTransmit          = errors.New("transmit error")
	ErrNoPortsAvailable  = errors.New("no serial ports available")
	ErrNoPriorConnection = errors.New("no prior connection")
	ErrUnknownCommand    = errors.New("unknown drawer command")
)

var errorCodes = map[error]string{
	ErrConnection:        "CONNECTION_ERROR",
	ErrNotConnected:      "NOT_CONNECTED",
	ErrTransmit:          "TRANSMIT_ERROR",
	ErrNoPortsAvailable:  "NO_PORTS_AVAILABLE",
	ErrNoPriorConnection: "NO_PRIOR_CONNECTION",
	ErrUnknownCommand:    "UNKNOWN_COMMAND",
}

// Error is returned by every failing drawer operation
type Error struct {
	Kind error
	Op   string
	Port string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Port != "" {
		msg = fmt.Sprintf("%s (port %s)", msg, e.Port)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable machine-readable code for the error kind
func (e *Error) Code() string {
	return errorCodes[e.Kind]
}

// Message returns a human readable description without the operation prefix
func (e *Error) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

// ErrorCode returns the code of a drawer error, or an empty string for other errors
func ErrorCode(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code()
	}
	return ""
}
