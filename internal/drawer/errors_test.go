package drawer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Kind: ErrConnection,
		Op:   "connect",
		Port: "COM3",
		Err:  errors.New("access denied"),
	}

	assert.Equal(t, "connect: connection error (port COM3): access denied", err.Error())
	assert.Equal(t, "access denied", err.Message())
	assert.Equal(t, "CONNECTION_ERROR", err.Code())
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("drain failed")
	err := fmt.Errorf("open drawer: %w", &Error{Kind: ErrTransmit, Op: "send", Err: cause})

	assert.ErrorIs(t, err, ErrTransmit)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConnection)
	assert.Equal(t, "TRANSMIT_ERROR", ErrorCode(err))
}

func TestErrorCodeForForeignErrors(t *testing.T) {
	assert.Equal(t, "", ErrorCode(errors.New("boom")))
	assert.Equal(t, "", ErrorCode(nil))
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := &Error{Kind: ErrNotConnected, Op: "send"}
	assert.Equal(t, "drawer not connected", err.Message())
	assert.Equal(t, "send: drawer not connected", err.Error())
}
