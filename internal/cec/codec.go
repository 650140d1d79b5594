package cec

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is a CEC message opcode.
type Opcode uint8

// Opcodes issued by the controller.
const (
	OpActiveSource        Opcode = 0x82
	OpStandby             Opcode = 0x36
	OpUserControlPressed  Opcode = 0x44
	OpUserControlReleased Opcode = 0x45
)

// String returns the opcode as two lowercase hex digits.
func (o Opcode) String() string {
	return fmt.Sprintf("%02x", uint8(o))
}

// Frame is the textual rendering of a CEC message understood by the transport,
// e.g. "14:44:41": a header token of source and destination nibbles followed
// by colon-separated hex tokens.
type Frame string

const frameSeparator = ":"

// String implements fmt.Stringer.
func (f Frame) String() string {
	return string(f)
}

// Encode renders a frame from a source, destination, opcode, and operand bytes.
//
// The header is one lowercase hex digit for each address; opcode and operands
// are two lowercase hex digits each.
func Encode(src, dst LogicalAddress, op Opcode, operands ...byte) Frame {
	var b strings.Builder
	fmt.Fprintf(&b, "%x%x:%02x", uint8(src)&0xF, uint8(dst)&0xF, uint8(op))
	for _, operand := range operands {
		fmt.Fprintf(&b, ":%02x", operand)
	}
	return Frame(b.String())
}

// EncodeTokens renders a frame whose operand part is pre-formatted text.
// The tokens are appended verbatim, separated by colons.
func EncodeTokens(src, dst LogicalAddress, op Opcode, tokens ...string) Frame {
	f := string(Encode(src, dst, op))
	for _, tok := range tokens {
		f += frameSeparator + tok
	}
	return Frame(f)
}

// PhysicalAddressTokens renders the operand pair used for <Active Source>.
// It takes the first and third digits of the four-digit hex form, so 0x1000
// becomes "1:0" and 0x2100 becomes "2:0".
func PhysicalAddressTokens(pa PhysicalAddress) string {
	hex := pa.Hex()
	return hex[0:1] + frameSeparator + hex[2:3]
}

// FrameParts is a decoded frame.
type FrameParts struct {
	Source      LogicalAddress
	Destination LogicalAddress
	HasOpcode   bool
	Opcode      Opcode
	Operands    []byte
}

// ParseFrame decodes a frame string. Operand tokens of one or two hex
// digits are accepted. A header-only frame is a polling message.
func ParseFrame(f Frame) (FrameParts, error) {
	text := strings.TrimSpace(string(f))
	if text == "" {
		return FrameParts{}, fmt.Errorf("%w: empty frame", ErrInvalidFrame)
	}

	tokens := strings.Split(text, frameSeparator)
	header := tokens[0]
	if len(header) != 2 {
		return FrameParts{}, fmt.Errorf("%w: header %q must be two hex digits", ErrInvalidFrame, header)
	}
	h, err := strconv.ParseUint(header, 16, 8)
	if err != nil {
		return FrameParts{}, fmt.Errorf("%w: header %q: %v", ErrInvalidFrame, header, err)
	}

	parts := FrameParts{
		Source:      LogicalAddress(h >> 4),
		Destination: LogicalAddress(h & 0xF),
	}

	for i, tok := range tokens[1:] {
		if len(tok) == 0 || len(tok) > 2 {
			return FrameParts{}, fmt.Errorf("%w: token %d %q", ErrInvalidFrame, i+1, tok)
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return FrameParts{}, fmt.Errorf("%w: token %d %q: %v", ErrInvalidFrame, i+1, tok, err)
		}
		if i == 0 {
			parts.HasOpcode = true
			parts.Opcode = Opcode(v)
			continue
		}
		parts.Operands = append(parts.Operands, byte(v))
	}

	return parts, nil
}
