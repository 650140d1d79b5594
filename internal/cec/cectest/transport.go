// Package cectest provides an in-memory cec.BusTransport for tests.
package cectest

import (
	"context"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// Transport is a scripted bus. The zero value has no adapters; use New for
// a bus with one adapter, a TV at 0, and a player at 4.
type Transport struct {
	mu sync.Mutex

	Adapters []cec.Adapter
	OpenOK   bool
	Own      cec.LogicalAddress
	Devices  map[cec.LogicalAddress]cec.DeviceRecord
	Power    map[cec.LogicalAddress]int

	// Nacked frames are reported as not acknowledged.
	Nacked map[cec.Frame]bool

	// Err, when set, fails every query and transmit.
	Err error

	sent []cec.Frame
}

// New returns a transport with a typical living-room bus.
func New() *Transport {
	return &Transport{
		Adapters: []cec.Adapter{{Port: "/dev/ttyACM0"}},
		OpenOK:   true,
		Own:      cec.AddressRecording1,
		Devices: map[cec.LogicalAddress]cec.DeviceRecord{
			cec.AddressTV: {
				LogicalAddress:  cec.AddressTV,
				PhysicalAddress: 0x0000,
				VendorID:        0x0000F0,
				CECVersion:      "1.4",
				PowerStatus:     cec.PowerOn,
				OSDName:         "TV",
			},
			cec.AddressPlayback1: {
				LogicalAddress:  cec.AddressPlayback1,
				PhysicalAddress: 0x1000,
				VendorID:        0x001582,
				Active:          true,
				CECVersion:      "1.4",
				PowerStatus:     cec.PowerOn,
				OSDName:         "Player",
			},
		},
		Power:  map[cec.LogicalAddress]int{},
		Nacked: map[cec.Frame]bool{},
	}
}

// Sent returns every transmitted frame in order.
func (t *Transport) Sent() []cec.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sent)
}

// SetErr sets or clears the failure for all queries.
func (t *Transport) SetErr(err error) {
	t.mu.Lock()
	t.Err = err
	t.mu.Unlock()
}

// SetDevices replaces the bus population.
func (t *Transport) SetDevices(devices map[cec.LogicalAddress]cec.DeviceRecord) {
	t.mu.Lock()
	t.Devices = devices
	t.mu.Unlock()
}

func (t *Transport) DetectAdapters(context.Context) ([]cec.Adapter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.Adapters), nil
}

func (t *Transport) Open(context.Context, string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.OpenOK, nil
}

func (t *Transport) OwnLogicalAddress(context.Context) (cec.LogicalAddress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Own, t.Err
}

func (t *Transport) ActiveDevices(context.Context) (cec.AddressSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return 0, t.Err
	}
	var set cec.AddressSet
	for addr := range t.Devices {
		set = set.With(addr)
	}
	return set, nil
}

func (t *Transport) record(addr cec.LogicalAddress) (cec.DeviceRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return cec.DeviceRecord{}, t.Err
	}
	return t.Devices[addr], nil
}

func (t *Transport) VendorID(_ context.Context, addr cec.LogicalAddress) (uint32, error) {
	rec, err := t.record(addr)
	return rec.VendorID, err
}

func (t *Transport) PhysicalAddress(_ context.Context, addr cec.LogicalAddress) (cec.PhysicalAddress, error) {
	rec, err := t.record(addr)
	return rec.PhysicalAddress, err
}

func (t *Transport) IsActiveSource(_ context.Context, addr cec.LogicalAddress) (bool, error) {
	rec, err := t.record(addr)
	return rec.Active, err
}

func (t *Transport) CECVersion(_ context.Context, addr cec.LogicalAddress) (string, error) {
	rec, err := t.record(addr)
	return rec.CECVersion, err
}

// PowerCode returns Power[addr] when set, otherwise the record's status.
func (t *Transport) PowerCode(_ context.Context, addr cec.LogicalAddress) (int, error) {
	rec, err := t.record(addr)
	if err != nil {
		return cec.PowerCodeUnknown, err
	}
	t.mu.Lock()
	code, ok := t.Power[addr]
	t.mu.Unlock()
	if ok {
		return code, nil
	}
	if rec.PowerStatus.IsOn() {
		return cec.PowerCodeOn, nil
	}
	return cec.PowerCodeStandby, nil
}

func (t *Transport) OSDName(_ context.Context, addr cec.LogicalAddress) (string, error) {
	rec, err := t.record(addr)
	return rec.OSDName, err
}

func (t *Transport) Transmit(_ context.Context, frame cec.Frame) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return false, t.Err
	}
	t.sent = append(t.sent, frame)
	return !t.Nacked[frame], nil
}
