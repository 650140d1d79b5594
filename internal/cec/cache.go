package cec

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// ScanObserver receives every completed scan.
type ScanObserver interface {
	ObserveScan(ctx context.Context, devices map[LogicalAddress]DeviceRecord, took time.Duration)
}

// DeviceStateCache holds the most recent bus scan.
//
// The snapshot is absent until the first scan. Devices populates it lazily;
// Scan replaces it wholesale, so devices that left the bus disappear.
// A failed scan keeps the previous snapshot. Power status reads always go to
// the bus.
//
// All public methods are thread-safe.
type DeviceStateCache struct {
	transport BusTransport
	mu        sync.RWMutex
	snapshot  map[LogicalAddress]DeviceRecord // nil until first scan
	scannedAt time.Time
	observers []ScanObserver
	logger    Logger
}

// NewDeviceStateCache creates an empty cache over the given transport.
func NewDeviceStateCache(transport BusTransport) *DeviceStateCache {
	return &DeviceStateCache{
		transport: transport,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the cache.
func (c *DeviceStateCache) SetLogger(logger Logger) {
	c.logger = logger
}

// AddScanObserver registers an observer for completed scans. Observers
// must be added before the first scan.
func (c *DeviceStateCache) AddScanObserver(observer ScanObserver) {
	c.observers = append(c.observers, observer)
}

// Scan queries the bus for every present device and replaces the snapshot.
//
// Returns:
//   - map[LogicalAddress]DeviceRecord: a copy of the new snapshot
//   - error: if any transport query fails; the previous snapshot is kept
func (c *DeviceStateCache) Scan(ctx context.Context) (map[LogicalAddress]DeviceRecord, error) {
	start := time.Now()

	present, err := c.transport.ActiveDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active devices: %w", err)
	}

	devices := make(map[LogicalAddress]DeviceRecord)
	for _, addr := range present.Addresses() {
		rec, err := c.probe(ctx, addr)
		if err != nil {
			return nil, err
		}
		devices[addr] = rec
	}

	took := time.Since(start)

	c.mu.Lock()
	c.snapshot = devices
	c.scannedAt = start
	c.mu.Unlock()

	c.logger.Info("bus scan complete", "devices", len(devices), "duration", took)
	for _, o := range c.observers {
		o.ObserveScan(ctx, maps.Clone(devices), took)
	}

	return maps.Clone(devices), nil
}

// probe gathers every attribute of one device.
func (c *DeviceStateCache) probe(ctx context.Context, addr LogicalAddress) (DeviceRecord, error) {
	rec := DeviceRecord{LogicalAddress: addr}
	var err error

	if rec.VendorID, err = c.transport.VendorID(ctx, addr); err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s vendor id: %w", addr, err)
	}
	if rec.PhysicalAddress, err = c.transport.PhysicalAddress(ctx, addr); err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s physical address: %w", addr, err)
	}
	if rec.Active, err = c.transport.IsActiveSource(ctx, addr); err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s active source: %w", addr, err)
	}
	if rec.CECVersion, err = c.transport.CECVersion(ctx, addr); err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s cec version: %w", addr, err)
	}
	code, err := c.transport.PowerCode(ctx, addr)
	if err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s power status: %w", addr, err)
	}
	rec.PowerStatus = PowerStatusFromCode(code)
	if rec.OSDName, err = c.transport.OSDName(ctx, addr); err != nil {
		return DeviceRecord{}, fmt.Errorf("device %s osd name: %w", addr, err)
	}

	return rec, nil
}

// Devices returns the snapshot, scanning first if none exists yet.
// The returned map is a copy; callers can safely modify it.
func (c *DeviceStateCache) Devices(ctx context.Context) (map[LogicalAddress]DeviceRecord, error) {
	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()

	if snapshot != nil {
		return maps.Clone(snapshot), nil
	}
	return c.Scan(ctx)
}

// Get returns one device from the snapshot, scanning first if none exists.
// Returns ErrNotFound if the address was absent at the last scan.
func (c *DeviceStateCache) Get(ctx context.Context, addr LogicalAddress) (DeviceRecord, error) {
	devices, err := c.Devices(ctx)
	if err != nil {
		return DeviceRecord{}, err
	}
	rec, ok := devices[addr]
	if !ok {
		return DeviceRecord{}, fmt.Errorf("%w: logical address %s", ErrNotFound, addr)
	}
	return rec, nil
}

// PowerStatus queries the bus directly; it never reads the snapshot.
func (c *DeviceStateCache) PowerStatus(ctx context.Context, addr LogicalAddress) (PowerStatus, error) {
	code, err := c.transport.PowerCode(ctx, addr)
	if err != nil {
		return PowerStandby, fmt.Errorf("device %s power status: %w", addr, err)
	}
	return PowerStatusFromCode(code), nil
}

// ScannedAt returns when the current snapshot was taken (zero if none).
func (c *DeviceStateCache) ScannedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scannedAt
}
