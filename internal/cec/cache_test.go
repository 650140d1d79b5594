package cec

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func tvRecord() DeviceRecord {
	return DeviceRecord{
		VendorID:        0x0000F0,
		PhysicalAddress: 0x0000,
		LogicalAddress:  AddressTV,
		Active:          false,
		CECVersion:      "1.4",
		OSDName:         "TV",
	}
}

func playerRecord() DeviceRecord {
	return DeviceRecord{
		VendorID:        0x080046,
		PhysicalAddress: 0x1000,
		LogicalAddress:  AddressPlayback1,
		Active:          true,
		CECVersion:      "1.4",
		OSDName:         "PlayStation",
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	scans []map[LogicalAddress]DeviceRecord
}

func (o *recordingObserver) ObserveScan(_ context.Context, devices map[LogicalAddress]DeviceRecord, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scans = append(o.scans, devices)
}

func TestDeviceStateCache_ScanOnce(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord(), playerRecord())
	tr.powerCodes[AddressTV] = PowerCodeOn
	cache := NewDeviceStateCache(tr)

	first, err := cache.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	second, err := cache.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}

	if n := tr.count("ActiveDevices"); n != 1 {
		t.Errorf("ActiveDevices called %d times, want 1", n)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Devices() sizes = %d, %d, want 2", len(first), len(second))
	}

	tv := first[AddressTV]
	if !tv.PowerStatus.IsOn() {
		t.Error("TV power status should be on")
	}
	if first[AddressPlayback1].PhysicalAddress != 0x1000 {
		t.Errorf("player physical address = %04x", uint16(first[AddressPlayback1].PhysicalAddress))
	}
	if first[AddressPlayback1].PowerStatus.IsOn() {
		t.Error("player reported standby, should not be on")
	}
}

func TestDeviceStateCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord())
	cache := NewDeviceStateCache(tr)

	devices, err := cache.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	delete(devices, AddressTV)
	devices[AddressPlayback1] = playerRecord()

	again, err := cache.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	if _, ok := again[AddressTV]; !ok {
		t.Error("caller mutation removed TV from the snapshot")
	}
	if _, ok := again[AddressPlayback1]; ok {
		t.Error("caller mutation added a device to the snapshot")
	}
}

func TestDeviceStateCache_RescanReplaces(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord(), playerRecord())
	cache := NewDeviceStateCache(tr)

	if _, err := cache.Scan(ctx); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	tr.setDevices(tvRecord())
	devices, err := cache.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if _, ok := devices[AddressPlayback1]; ok {
		t.Error("device that left the bus is still present after rescan")
	}

	cached, _ := cache.Devices(ctx)
	if len(cached) != 1 {
		t.Errorf("Devices() after rescan has %d entries, want 1", len(cached))
	}
}

func TestDeviceStateCache_FailedScanKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord(), playerRecord())
	cache := NewDeviceStateCache(tr)

	if _, err := cache.Scan(ctx); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	tr.activeErr = errBusDown
	if _, err := cache.Scan(ctx); !errors.Is(err, errBusDown) {
		t.Fatalf("Scan() error = %v, want errBusDown", err)
	}

	devices, err := cache.Devices(ctx)
	if err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("snapshot has %d devices after failed scan, want 2", len(devices))
	}
}

func TestDeviceStateCache_Get(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord())
	cache := NewDeviceStateCache(tr)

	rec, err := cache.Get(ctx, AddressTV)
	if err != nil {
		t.Fatalf("Get(0) error: %v", err)
	}
	if rec.OSDName != "TV" {
		t.Errorf("Get(0).OSDName = %q", rec.OSDName)
	}

	if _, err := cache.Get(ctx, AddressPlayback1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(4) error = %v, want ErrNotFound", err)
	}
}

func TestDeviceStateCache_PowerStatusAlwaysQueries(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord())
	cache := NewDeviceStateCache(tr)

	if _, err := cache.Devices(ctx); err != nil {
		t.Fatalf("Devices() error: %v", err)
	}
	base := tr.count("PowerCode")

	tr.powerCodes[AddressTV] = PowerCodeOn
	on, err := cache.PowerStatus(ctx, AddressTV)
	if err != nil {
		t.Fatalf("PowerStatus() error: %v", err)
	}
	tr.powerCodes[AddressTV] = PowerCodeInTransitionOn
	transitioning, err := cache.PowerStatus(ctx, AddressTV)
	if err != nil {
		t.Fatalf("PowerStatus() error: %v", err)
	}

	if got := tr.count("PowerCode") - base; got != 2 {
		t.Errorf("PowerCode called %d times, want 2", got)
	}
	if !on.IsOn() {
		t.Error("first status should be on")
	}
	if transitioning.IsOn() {
		t.Error("transitional status should collapse to standby")
	}

	tr.powerErr = errBusDown
	if _, err := cache.PowerStatus(ctx, AddressTV); !errors.Is(err, errBusDown) {
		t.Errorf("PowerStatus() error = %v, want errBusDown", err)
	}
}

func TestDeviceStateCache_Observer(t *testing.T) {
	ctx := context.Background()
	tr := newMockTransport()
	tr.setDevices(tvRecord())
	cache := NewDeviceStateCache(tr)
	obs := &recordingObserver{}
	cache.AddScanObserver(obs)

	if _, err := cache.Scan(ctx); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(obs.scans) != 1 || len(obs.scans[0]) != 1 {
		t.Fatalf("observer saw %v", obs.scans)
	}
	if cache.ScannedAt().IsZero() {
		t.Error("ScannedAt() should be set after a scan")
	}
}
