package cec

import (
	"encoding/json"
	"fmt"
)

// PowerStatus is the binary power state of a device.
//
// Only an explicit "on" report maps to PowerOn; transitional and unknown
// reports collapse to PowerStandby.
type PowerStatus bool

// Power states.
const (
	PowerStandby PowerStatus = false
	PowerOn      PowerStatus = true
)

// Raw power codes reported by the bus.
const (
	PowerCodeOn                  = 0x00
	PowerCodeStandby             = 0x01
	PowerCodeInTransitionOn      = 0x02
	PowerCodeInTransitionStandby = 0x03
	PowerCodeUnknown             = 0x99
)

// PowerStatusFromCode maps a raw power code to a PowerStatus.
func PowerStatusFromCode(code int) PowerStatus {
	return PowerStatus(code == PowerCodeOn)
}

// IsOn reports whether the device is powered on.
func (p PowerStatus) IsOn() bool {
	return bool(p)
}

// String returns "on" or "standby".
func (p PowerStatus) String() string {
	if p {
		return "on"
	}
	return "standby"
}

// MarshalJSON renders the status as its string form.
func (p PowerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts "on" or "standby".
func (p *PowerStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("power status: %w", err)
	}
	switch s {
	case "on":
		*p = PowerOn
	case "standby":
		*p = PowerStandby
	default:
		return fmt.Errorf("%w: power status %q", ErrInvalidArgument, s)
	}
	return nil
}
