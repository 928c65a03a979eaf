// internal/drawer/command.go
package drawer

import (
	"fmt"
	"strings"
)

// Command identifies one of the supported drawer-kick variants
type Command int

const (
	// CommandStandard pulses pin 2 (ESC p 0 25 25)
	CommandStandard Command = iota
	// CommandAlternative pulses pin 5 (ESC p 1 25 25)
	CommandAlternative
	// CommandVendorA is the Epson-style long pulse (ESC p 0 50 250)
	CommandVendorA
	// CommandVendorB is the Star-style BEL kick
	CommandVendorB
)

// kickCommands holds the drawer-kick byte sequences. These values are a hardware
// compatibility contract and must not change, including the pulse timings.
var kickCommands = [...][]byte{
	CommandStandard:    {0x1B, 0x70, 0x00, 0x19, 0x19}, // ESC p 0 25 25
	CommandAlternative: {0x1B, 0x70, 0x01, 0x19, 0x19}, // ESC p 1 25 25
	CommandVendorA:     {0x1B, 0x70, 0x00, 0x32, 0xFA}, // ESC p 0 50 250
	CommandVendorB:     {0x1B, 0x07},                   // ESC BEL
}

var commandNames = [...]string{
	CommandStandard:    "standard",
	CommandAlternative: "alternative",
	CommandVendorA:     "epson",
	CommandVendorB:     "star",
}

var commandAliases = map[string]Command{
	"":         CommandStandard,
	"vendor_a": CommandVendorA,
	"vendor_b": CommandVendorB,
}

// Bytes returns a copy of the byte sequence for the command
func (c Command) Bytes() []byte {
	if !c.valid() {
		return nil
	}
	out := make([]byte, len(kickCommands[c]))
	copy(out, kickCommands[c])
	return out
}

// String returns the API name of the command
func (c Command) String() string {
	if !c.valid() {
		return fmt.Sprintf("command(%d)", int(c))
	}
	return commandNames[c]
}

// Hex renders the command bytes as space separated upper-case hex
func (c Command) Hex() string {
	b := c.Bytes()
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

func (c Command) valid() bool {
	return c >= CommandStandard && int(c) < len(kickCommands)
}

// ParseCommand maps an API name to a Command. The empty name selects the
// standard kick.
func ParseCommand(name string) (Command, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := commandAliases[key]; ok {
		return c, nil
	}
	for i, n := range commandNames {
		if n == key {
			return Command(i), nil
		}
	}
	return CommandStandard, &Error{Kind: ErrUnknownCommand, Op: "parse", Err: fmt.Errorf("unknown drawer command %q", name)}
}

// Commands lists all variants in declaration order
func Commands() []Command {
	out := make([]Command, len(kickCommands))
	for i := range kickCommands {
		out[i] = Command(i)
	}
	return out
}
