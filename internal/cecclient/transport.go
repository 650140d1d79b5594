package cecclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/config"
)

// scanTTL is how long one "scan" reply answers physical address and
// active source queries. A device cache scan asks for both for every
// device, and cec-client scans take seconds.
const scanTTL = 5 * time.Second

var deviceTypeFlags = map[string]string{
	"recording": "r",
	"playback":  "p",
	"tuner":     "t",
	"audio":     "a",
}

// Logger defines the logging interface used by the transport.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Transport implements cec.BusTransport by running cec-client in
// single-command mode ("-s") once per request.
//
// Thread Safety:
//   - Safe for concurrent use; each request is a separate process.
type Transport struct {
	runner     Runner
	pinnedPort string
	osdName    string
	typeFlag   string
	logger     Logger
	now        func() time.Time

	mu       sync.Mutex
	port     string
	scan     map[cec.LogicalAddress]scanEntry
	scanTime time.Time
}

// New creates a transport from the bus config using the given runner.
func New(cfg config.BusConfig, runner Runner) *Transport {
	flag, ok := deviceTypeFlags[cfg.DeviceType]
	if !ok {
		flag = deviceTypeFlags["recording"]
	}
	return &Transport{
		runner:     runner,
		pinnedPort: cfg.Port,
		osdName:    cfg.OSDName,
		typeFlag:   flag,
		logger:     noopLogger{},
		now:        time.Now,
	}
}

// NewExec creates a transport that runs the configured cec-client binary.
func NewExec(cfg *config.Config) *Transport {
	return New(cfg.Bus, ExecRunner{Binary: cfg.Bus.Binary, Timeout: cfg.GetCommandTimeout()})
}

// SetLogger sets the logger for the transport.
func (t *Transport) SetLogger(logger Logger) {
	t.logger = logger
}

func (t *Transport) currentPort() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}

func (t *Transport) baseArgs(port string) []string {
	args := []string{"-s", "-d", "1", "-t", t.typeFlag}
	if t.osdName != "" {
		args = append(args, "-o", t.osdName)
	}
	if port != "" {
		args = append(args, port)
	}
	return args
}

// command runs one interactive command against the open adapter.
func (t *Transport) command(ctx context.Context, line string) (string, error) {
	port := t.currentPort()
	if port == "" {
		return "", ErrNotOpen
	}
	t.logger.Debug("cec-client command", "port", port, "command", line)
	return t.runner.Run(ctx, t.baseArgs(port), line+"\n")
}

// DetectAdapters lists adapters via "cec-client -l". A configured port
// is returned as the only adapter without probing.
func (t *Transport) DetectAdapters(ctx context.Context) ([]cec.Adapter, error) {
	if t.pinnedPort != "" {
		return []cec.Adapter{{Port: t.pinnedPort}}, nil
	}
	out, err := t.runner.Run(ctx, []string{"-l"}, "")
	if err != nil {
		return nil, fmt.Errorf("listing adapters: %w", err)
	}
	return parseAdapters(out), nil
}

// Open checks that cec-client can reach the adapter on port.
func (t *Transport) Open(ctx context.Context, port string) (bool, error) {
	t.mu.Lock()
	t.port = ""
	t.scan = nil
	t.mu.Unlock()

	out, err := t.runner.Run(ctx, t.baseArgs(port), "self\n")
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", port, err)
	}
	if hasError(out) || strings.Contains(out, markerNoAdapter) {
		t.logger.Warn("cec-client could not open adapter", "port", port)
		return false, nil
	}

	t.mu.Lock()
	t.port = port
	t.mu.Unlock()
	return true, nil
}

// OwnLogicalAddress implements cec.BusTransport.
func (t *Transport) OwnLogicalAddress(ctx context.Context) (cec.LogicalAddress, error) {
	out, err := t.command(ctx, "self")
	if err != nil {
		return 0, err
	}
	return parseControlled(out)
}

// ActiveDevices implements cec.BusTransport.
func (t *Transport) ActiveDevices(ctx context.Context) (cec.AddressSet, error) {
	out, err := t.command(ctx, "lad")
	if err != nil {
		return 0, err
	}
	t.invalidateScan()
	return parseLogicalAddresses(out), nil
}

// VendorID implements cec.BusTransport.
func (t *Transport) VendorID(ctx context.Context, addr cec.LogicalAddress) (uint32, error) {
	out, err := t.command(ctx, "ven "+addr.String())
	if err != nil {
		return 0, err
	}
	return parseVendorID(out)
}

// PhysicalAddress implements cec.BusTransport.
func (t *Transport) PhysicalAddress(ctx context.Context, addr cec.LogicalAddress) (cec.PhysicalAddress, error) {
	entry, err := t.scanEntry(ctx, addr)
	if err != nil {
		return 0, err
	}
	return entry.physical, nil
}

// IsActiveSource implements cec.BusTransport.
func (t *Transport) IsActiveSource(ctx context.Context, addr cec.LogicalAddress) (bool, error) {
	entry, err := t.scanEntry(ctx, addr)
	if err != nil {
		return false, err
	}
	return entry.active, nil
}

// CECVersion implements cec.BusTransport.
func (t *Transport) CECVersion(ctx context.Context, addr cec.LogicalAddress) (string, error) {
	out, err := t.command(ctx, "ver "+addr.String())
	if err != nil {
		return "", err
	}
	return parseCECVersion(out)
}

// PowerCode implements cec.BusTransport.
func (t *Transport) PowerCode(ctx context.Context, addr cec.LogicalAddress) (int, error) {
	out, err := t.command(ctx, "pow "+addr.String())
	if err != nil {
		return cec.PowerCodeUnknown, err
	}
	return parsePowerCode(out)
}

// OSDName implements cec.BusTransport.
func (t *Transport) OSDName(ctx context.Context, addr cec.LogicalAddress) (string, error) {
	out, err := t.command(ctx, "name "+addr.String())
	if err != nil {
		return "", err
	}
	return parseOSDName(out)
}

// Transmit sends a frame with "tx". Only well-formed frames are passed
// to cec-client so a frame can never smuggle a second command.
func (t *Transport) Transmit(ctx context.Context, frame cec.Frame) (bool, error) {
	if _, err := cec.ParseFrame(frame); err != nil {
		return false, err
	}
	out, err := t.command(ctx, "tx "+frame.String())
	if err != nil {
		return false, err
	}
	return !hasError(out), nil
}

func (t *Transport) invalidateScan() {
	t.mu.Lock()
	t.scan = nil
	t.mu.Unlock()
}

func (t *Transport) scanEntry(ctx context.Context, addr cec.LogicalAddress) (scanEntry, error) {
	t.mu.Lock()
	scan, at := t.scan, t.scanTime
	t.mu.Unlock()

	if scan == nil || t.now().Sub(at) > scanTTL {
		out, err := t.command(ctx, "scan")
		if err != nil {
			return scanEntry{}, err
		}
		scan = parseScan(out)

		t.mu.Lock()
		t.scan, t.scanTime = scan, t.now()
		t.mu.Unlock()
	}

	entry, ok := scan[addr]
	if !ok {
		// Listed by lad but absent from scan: the two replies disagree.
		return scanEntry{}, fmt.Errorf("%w: device %s missing from scan reply", ErrUnexpectedOutput, addr)
	}
	return entry, nil
}
