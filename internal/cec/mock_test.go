package cec

import (
	"context"
	"errors"
	"sync"
)

// ─── Mock Dependencies ──────────────────────────────────────────────

var errBusDown = errors.New("bus down")

// mockTransport is an in-memory BusTransport that records calls.
type mockTransport struct {
	mu sync.Mutex

	adapters  []Adapter
	detectErr error
	openOK    bool
	openErr   error

	ownAddr    LogicalAddress
	ownAddrErr error

	devices    map[LogicalAddress]DeviceRecord
	powerCodes map[LogicalAddress]int
	activeErr  error
	powerErr   error

	transmitResults []bool // consumed in order; true once exhausted
	transmitErr     error
	sent            []Frame

	calls map[string]int
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		adapters:   []Adapter{{Port: "/dev/ttyACM0"}},
		openOK:     true,
		ownAddr:    AddressRecording1,
		devices:    make(map[LogicalAddress]DeviceRecord),
		powerCodes: make(map[LogicalAddress]int),
		calls:      make(map[string]int),
	}
}

func (m *mockTransport) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockTransport) record(name string) {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()
}

func (m *mockTransport) setDevices(recs ...DeviceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = make(map[LogicalAddress]DeviceRecord, len(recs))
	for _, r := range recs {
		m.devices[r.LogicalAddress] = r
	}
}

func (m *mockTransport) sentFrames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.sent...)
}

func (m *mockTransport) DetectAdapters(context.Context) ([]Adapter, error) {
	m.record("DetectAdapters")
	return m.adapters, m.detectErr
}

func (m *mockTransport) Open(context.Context, string) (bool, error) {
	m.record("Open")
	return m.openOK, m.openErr
}

func (m *mockTransport) OwnLogicalAddress(context.Context) (LogicalAddress, error) {
	m.record("OwnLogicalAddress")
	return m.ownAddr, m.ownAddrErr
}

func (m *mockTransport) ActiveDevices(context.Context) (AddressSet, error) {
	m.record("ActiveDevices")
	if m.activeErr != nil {
		return 0, m.activeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var set AddressSet
	for addr := range m.devices {
		set = set.With(addr)
	}
	return set, nil
}

func (m *mockTransport) device(addr LogicalAddress) DeviceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices[addr]
}

func (m *mockTransport) VendorID(_ context.Context, addr LogicalAddress) (uint32, error) {
	m.record("VendorID")
	return m.device(addr).VendorID, nil
}

func (m *mockTransport) PhysicalAddress(_ context.Context, addr LogicalAddress) (PhysicalAddress, error) {
	m.record("PhysicalAddress")
	return m.device(addr).PhysicalAddress, nil
}

func (m *mockTransport) IsActiveSource(_ context.Context, addr LogicalAddress) (bool, error) {
	m.record("IsActiveSource")
	return m.device(addr).Active, nil
}

func (m *mockTransport) CECVersion(_ context.Context, addr LogicalAddress) (string, error) {
	m.record("CECVersion")
	return m.device(addr).CECVersion, nil
}

func (m *mockTransport) PowerCode(_ context.Context, addr LogicalAddress) (int, error) {
	m.record("PowerCode")
	if m.powerErr != nil {
		return 0, m.powerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if code, ok := m.powerCodes[addr]; ok {
		return code, nil
	}
	return PowerCodeStandby, nil
}

func (m *mockTransport) OSDName(_ context.Context, addr LogicalAddress) (string, error) {
	m.record("OSDName")
	return m.device(addr).OSDName, nil
}

func (m *mockTransport) Transmit(_ context.Context, frame Frame) (bool, error) {
	m.record("Transmit")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, frame)
	if m.transmitErr != nil {
		return false, m.transmitErr
	}
	if len(m.transmitResults) == 0 {
		return true, nil
	}
	ok := m.transmitResults[0]
	m.transmitResults = m.transmitResults[1:]
	return ok, nil
}

// mockRecorder captures recorded commands.
type mockRecorder struct {
	mu     sync.Mutex
	frames []Frame
	oks    []bool
}

func (r *mockRecorder) RecordCommand(_ context.Context, frame Frame, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	r.oks = append(r.oks, ok)
}

func addrPtr(a LogicalAddress) *LogicalAddress { return &a }

func paPtr(p PhysicalAddress) *PhysicalAddress { return &p }
