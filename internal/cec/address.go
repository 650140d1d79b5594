package cec

import (
	"fmt"
	"strconv"
	"strings"
)

// LogicalAddress identifies a participant on the CEC bus.
//
// Values 0-14 are assignable to devices; 15 is the broadcast address.
// It always renders as a single lowercase hex digit.
type LogicalAddress uint8

// Well-known logical addresses.
const (
	AddressTV          LogicalAddress = 0x0
	AddressRecording1  LogicalAddress = 0x1
	AddressRecording2  LogicalAddress = 0x2
	AddressTuner1      LogicalAddress = 0x3
	AddressPlayback1   LogicalAddress = 0x4
	AddressAudioSystem LogicalAddress = 0x5
	AddressPlayback2   LogicalAddress = 0x8
	AddressFreeUse     LogicalAddress = 0xE
	AddressBroadcast   LogicalAddress = 0xF
)

const (
	maxLogicalAddress      = 0xF
	deviceAddressCount     = 15
	physicalAddressBits    = 16
	physicalAddressNibbles = 4
)

// String returns the address as one lowercase hex digit.
func (a LogicalAddress) String() string {
	return strconv.FormatUint(uint64(a), 16)
}

// IsValid reports whether the address fits in four bits.
func (a LogicalAddress) IsValid() bool {
	return a <= maxLogicalAddress
}

// IsDevice reports whether the address is assignable to a device (0-14).
func (a LogicalAddress) IsDevice() bool {
	return a < deviceAddressCount
}

// ParseLogicalAddress parses a decimal address ("4", "14") or a single hex
// digit ("e", "F").
func ParseLogicalAddress(s string) (LogicalAddress, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 10, 8); err == nil {
		if v > maxLogicalAddress {
			return 0, fmt.Errorf("%w: logical address %q out of range 0-15", ErrInvalidArgument, s)
		}
		return LogicalAddress(v), nil
	}
	if len(s) == 1 {
		if v, err := strconv.ParseUint(s, 16, 8); err == nil {
			return LogicalAddress(v), nil
		}
	}
	return 0, fmt.Errorf("%w: logical address %q", ErrInvalidArgument, s)
}

// AddressSet is the 15-bit presence set reported by the bus.
type AddressSet uint16

// NewAddressSet builds a set from the given device addresses.
func NewAddressSet(addrs ...LogicalAddress) AddressSet {
	var s AddressSet
	for _, a := range addrs {
		s = s.With(a)
	}
	return s
}

// With returns a copy of the set with addr marked present.
func (s AddressSet) With(addr LogicalAddress) AddressSet {
	if !addr.IsDevice() {
		return s
	}
	return s | 1<<addr
}

// IsSet reports whether addr is present.
func (s AddressSet) IsSet(addr LogicalAddress) bool {
	return addr.IsDevice() && s&(1<<addr) != 0
}

// Addresses lists the present addresses in ascending order.
func (s AddressSet) Addresses() []LogicalAddress {
	var out []LogicalAddress
	for a := LogicalAddress(0); a < deviceAddressCount; a++ {
		if s.IsSet(a) {
			out = append(out, a)
		}
	}
	return out
}

// PhysicalAddress is the 16-bit topology address of a device (e.g. 0x1000 = 1.0.0.0).
type PhysicalAddress uint16

// Hex renders the address as four lowercase hex digits ("1000").
func (p PhysicalAddress) Hex() string {
	return fmt.Sprintf("%04x", uint16(p))
}

// String renders the address in dotted form ("1.0.0.0").
func (p PhysicalAddress) String() string {
	return fmt.Sprintf("%x.%x.%x.%x", p>>12&0xF, p>>8&0xF, p>>4&0xF, p&0xF)
}

// ParsePhysicalAddress accepts the four-hex-digit form ("1000") or the
// dotted form ("1.0.0.0").
func ParsePhysicalAddress(s string) (PhysicalAddress, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		if len(parts) != physicalAddressNibbles {
			return 0, fmt.Errorf("%w: physical address %q", ErrInvalidArgument, s)
		}
		var v uint16
		for _, part := range parts {
			n, err := strconv.ParseUint(part, 16, 4)
			if err != nil {
				return 0, fmt.Errorf("%w: physical address %q", ErrInvalidArgument, s)
			}
			v = v<<4 | uint16(n)
		}
		return PhysicalAddress(v), nil
	}

	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, physicalAddressBits)
	if err != nil {
		return 0, fmt.Errorf("%w: physical address %q", ErrInvalidArgument, s)
	}
	return PhysicalAddress(v), nil
}
