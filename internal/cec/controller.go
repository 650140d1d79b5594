package cec

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CommandRecorder receives every frame the controller transmits.
type CommandRecorder interface {
	RecordCommand(ctx context.Context, frame Frame, ok bool)
}

// Controller is the high-level CEC client: it owns the transport, the
// device cache, and the memoized own logical address.
//
// Bus commands report success as a boolean. Errors are reserved for
// caller mistakes (unknown buttons, missing addresses) and for queries
// that could not reach the bus.
type Controller struct {
	transport BusTransport
	cache     *DeviceStateCache
	logger    Logger
	recorders []CommandRecorder

	mu        sync.Mutex // protects connected, port, ownAddr
	connected bool
	port      string
	ownAddr   *LogicalAddress
}

// NewController creates a controller. Init must be called before use.
func NewController(transport BusTransport) *Controller {
	return &Controller{
		transport: transport,
		cache:     NewDeviceStateCache(transport),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the controller and its cache.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
	c.cache.SetLogger(logger)
}

// AddCommandRecorder registers a recorder for transmitted frames.
// Recorders must be added before the controller is shared.
func (c *Controller) AddCommandRecorder(recorder CommandRecorder) {
	c.recorders = append(c.recorders, recorder)
}

// AddScanObserver registers an observer for completed scans.
func (c *Controller) AddScanObserver(observer ScanObserver) {
	c.cache.AddScanObserver(observer)
}

// Cache returns the device state cache.
func (c *Controller) Cache() *DeviceStateCache {
	return c.cache
}

// Init detects adapters and opens the first one.
//
// It forgets any memoized own address. A failed open is not an error;
// it is reflected by Connected.
//
// Returns:
//   - error: ErrAdapterNotFound if no adapter is attached, or a detection error
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	c.ownAddr = nil
	c.mu.Unlock()

	adapters, err := c.transport.DetectAdapters(ctx)
	if err != nil {
		return fmt.Errorf("detecting adapters: %w", err)
	}
	if len(adapters) == 0 {
		return ErrAdapterNotFound
	}

	port := adapters[0].Port
	ok, err := c.transport.Open(ctx, port)
	if err != nil {
		c.logger.Warn("opening adapter failed", "port", port, "error", err)
		ok = false
	}

	c.mu.Lock()
	c.connected = ok
	c.port = port
	c.mu.Unlock()

	c.logger.Info("cec adapter opened", "port", port, "connected", ok)
	return nil
}

// Connected reports whether the last Init opened an adapter.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Port returns the port opened by the last Init.
func (c *Controller) Port() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port
}

// LogicalAddress returns this controller's primary logical address.
// The first successful query is memoized until the next Init.
func (c *Controller) LogicalAddress(ctx context.Context) (LogicalAddress, error) {
	c.mu.Lock()
	if c.ownAddr != nil {
		addr := *c.ownAddr
		c.mu.Unlock()
		return addr, nil
	}
	c.mu.Unlock()

	addr, err := c.transport.OwnLogicalAddress(ctx)
	if err != nil {
		return 0, fmt.Errorf("querying own logical address: %w", err)
	}

	c.mu.Lock()
	c.ownAddr = &addr
	c.mu.Unlock()
	return addr, nil
}

// source returns src if given, otherwise the controller's own address.
func (c *Controller) source(ctx context.Context, src *LogicalAddress) (LogicalAddress, error) {
	if src != nil {
		if !src.IsValid() {
			return 0, fmt.Errorf("%w: source address %d", ErrInvalidArgument, *src)
		}
		return *src, nil
	}
	return c.LogicalAddress(ctx)
}

// RawCommand transmits a frame verbatim and reports bus acknowledgement.
func (c *Controller) RawCommand(ctx context.Context, frame Frame) bool {
	c.logger.Debug("sending command", "frame", frame)

	ok, err := c.transport.Transmit(ctx, frame)
	if err != nil {
		c.logger.Warn("transmit failed", "frame", frame, "error", err)
		ok = false
	}

	for _, r := range c.recorders {
		r.RecordCommand(ctx, frame, ok)
	}
	return ok
}

// ButtonPress sends <User Control Pressed> for a button and, when release
// is set, a matching <User Control Released>.
//
// Parameters:
//   - button: sanitized button name or hex code (see ResolveButton)
//   - dst: destination device
//   - release: send the release frame immediately after the press
//   - src: source address; nil means this controller's own address
//
// Returns:
//   - bool: true if every transmitted frame was acknowledged
//   - error: ErrInvalidArgument for an unknown button or bad address
func (c *Controller) ButtonPress(ctx context.Context, button string, dst LogicalAddress, release bool, src *LogicalAddress) (bool, error) {
	code, err := ResolveButton(button)
	if err != nil {
		return false, err
	}
	if !dst.IsValid() {
		return false, fmt.Errorf("%w: destination address %d", ErrInvalidArgument, dst)
	}
	from, err := c.source(ctx, src)
	if err != nil {
		return false, err
	}

	ok := c.RawCommand(ctx, Encode(from, dst, OpUserControlPressed, byte(code)))
	if !release {
		return ok, nil
	}
	released := c.RawCommand(ctx, Encode(from, dst, OpUserControlReleased))
	return ok && released, nil
}

// ButtonRelease sends <User Control Released> to dst.
func (c *Controller) ButtonRelease(ctx context.Context, dst LogicalAddress, src *LogicalAddress) (bool, error) {
	if !dst.IsValid() {
		return false, fmt.Errorf("%w: destination address %d", ErrInvalidArgument, dst)
	}
	from, err := c.source(ctx, src)
	if err != nil {
		return false, err
	}
	return c.RawCommand(ctx, Encode(from, dst, OpUserControlReleased)), nil
}

// ButtonMenu presses and releases Root Menu on dst.
func (c *Controller) ButtonMenu(ctx context.Context, dst LogicalAddress) (bool, error) {
	return c.ButtonPress(ctx, ButtonRootMenu.Hex(), dst, true, nil)
}

// ButtonSelect presses and releases Select on dst.
func (c *Controller) ButtonSelect(ctx context.Context, dst LogicalAddress) (bool, error) {
	return c.ButtonPress(ctx, ButtonSelect.Hex(), dst, true, nil)
}

// Standby sends <Standby>. A nil src means this controller's own address;
// a nil dst means the TV (address 0).
func (c *Controller) Standby(ctx context.Context, src, dst *LogicalAddress) (bool, error) {
	to := AddressTV
	if dst != nil {
		if !dst.IsValid() {
			return false, fmt.Errorf("%w: destination address %d", ErrInvalidArgument, *dst)
		}
		to = *dst
	}
	from, err := c.source(ctx, src)
	if err != nil {
		return false, err
	}
	return c.RawCommand(ctx, Encode(from, to, OpStandby)), nil
}

// ActiveSource broadcasts <Active Source> for a physical address.
//
// When pa is nil the physical address of device la is taken from the
// device cache (scanning if needed).
//
// Returns:
//   - bool: true if the bus acknowledged the frame
//   - error: ErrInvalidArgument if both la and pa are nil, ErrNotFound if
//     la was absent from the last scan
func (c *Controller) ActiveSource(ctx context.Context, la *LogicalAddress, pa *PhysicalAddress) (bool, error) {
	var target PhysicalAddress
	switch {
	case pa != nil:
		target = *pa
	case la != nil:
		rec, err := c.cache.Get(ctx, *la)
		if err != nil {
			return false, err
		}
		target = rec.PhysicalAddress
	default:
		return false, fmt.Errorf("%w: active source needs a logical or physical address", ErrInvalidArgument)
	}

	from, err := c.LogicalAddress(ctx)
	if err != nil {
		return false, err
	}
	return c.RawCommand(ctx, EncodeTokens(from, AddressBroadcast, OpActiveSource, PhysicalAddressTokens(target))), nil
}

// Scan rescans the bus, replacing the device snapshot.
func (c *Controller) Scan(ctx context.Context) (map[LogicalAddress]DeviceRecord, error) {
	return c.cache.Scan(ctx)
}

// Devices returns the device snapshot, scanning on first use.
func (c *Controller) Devices(ctx context.Context) (map[LogicalAddress]DeviceRecord, error) {
	return c.cache.Devices(ctx)
}

// Device returns one device from the snapshot.
func (c *Controller) Device(ctx context.Context, addr LogicalAddress) (DeviceRecord, error) {
	return c.cache.Get(ctx, addr)
}

// PowerStatus queries the live power status of a device.
func (c *Controller) PowerStatus(ctx context.Context, addr LogicalAddress) (PowerStatus, error) {
	return c.cache.PowerStatus(ctx, addr)
}

// Status is a point-in-time summary of the controller.
type Status struct {
	Connected bool      `json:"connected"`
	Port      string    `json:"port"`
	Devices   int       `json:"devices"`
	ScannedAt time.Time `json:"scanned_at,omitzero"`
}

// Status reports connection state and snapshot size without touching the bus.
func (c *Controller) Status() Status {
	c.cache.mu.RLock()
	n := len(c.cache.snapshot)
	c.cache.mu.RUnlock()

	return Status{
		Connected: c.Connected(),
		Port:      c.Port(),
		Devices:   n,
		ScannedAt: c.cache.ScannedAt(),
	}
}
