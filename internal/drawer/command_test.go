package drawer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"":            CommandStandard,
		"standard":    CommandStandard,
		"alternative": CommandAlternative,
		"epson":       CommandVendorA,
		"vendor_a":    CommandVendorA,
		"star":        CommandVendorB,
		"VENDOR_B":    CommandVendorB,
		" Standard ":  CommandStandard,
	}

	for name, want := range cases {
		got, err := ParseCommand(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestParseCommandUnknown(t *testing.T) {
	_, err := ParseCommand("citizen")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, "UNKNOWN_COMMAND", ErrorCode(err))
	assert.Contains(t, err.Error(), "citizen")
}

func TestCommandBytesAreCopies(t *testing.T) {
	b := CommandStandard.Bytes()
	b[0] = 0x00

	assert.Equal(t, []byte{0x1B, 0x70, 0x00, 0x19, 0x19}, CommandStandard.Bytes())
}

func TestCommandHex(t *testing.T) {
	assert.Equal(t, "1B 70 00 19 19", CommandStandard.Hex())
	assert.Equal(t, "1B 70 01 19 19", CommandAlternative.Hex())
	assert.Equal(t, "1B 70 00 32 FA", CommandVendorA.Hex())
	assert.Equal(t, "1B 07", CommandVendorB.Hex())
}

func TestInvalidCommand(t *testing.T) {
	c := Command(-1)
	assert.Nil(t, c.Bytes())
	assert.Equal(t, "command(-1)", c.String())
	assert.Equal(t, "", c.Hex())
}

func TestCommandsRoundTripThroughNames(t *testing.T) {
	all := Commands()
	require.Len(t, all, 4)

	for _, c := range all {
		got, err := ParseCommand(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.GreaterOrEqual(t, len(c.Bytes()), 2)
		assert.LessOrEqual(t, len(c.Bytes()), 5)
	}
}
