package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/audit"
	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
)

const (
	// commandTimeout bounds single bus commands and scans.
	commandTimeout = 30 * time.Second

	// sequenceTimeout bounds a whole sequence run, sleeps included.
	sequenceTimeout = 10 * time.Minute

	ackQoS = 1
)

// MQTTClient is the subset of *mqtt.Client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// Logger defines the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options holds the bridge dependencies.
type Options struct {
	MQTT        MQTTClient
	Topics      mqtt.Topics
	Guard       *cec.Guard
	Interpreter *sequence.Interpreter
	Version     string

	// HealthInterval defaults to 30s.
	HealthInterval time.Duration
	Logger         Logger
}

// Bridge translates MQTT commands into bus actions and publishes
// acknowledgements, retained device state, and health.
//
// Thread Safety: All methods are safe for concurrent use. Bus access goes
// through the shared cec.Guard.
type Bridge struct {
	mqtt   MQTTClient
	topics mqtt.Topics
	guard  *cec.Guard
	interp *sequence.Interpreter
	health *HealthReporter
	logger Logger

	stats struct {
		received atomic.Uint64
		failed   atomic.Uint64
		scans    atomic.Uint64
	}

	// published tracks addresses with a retained state message.
	published   map[cec.LogicalAddress]bool
	publishedMu sync.Mutex

	ctx       context.Context
	ctxCancel context.CancelFunc
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a bridge. Call Start to subscribe.
func New(opts Options) (*Bridge, error) {
	if opts.MQTT == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Guard == nil {
		return nil, fmt.Errorf("controller guard is required")
	}
	if opts.Interpreter == nil {
		return nil, fmt.Errorf("sequence interpreter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		mqtt:      opts.MQTT,
		topics:    opts.Topics,
		guard:     opts.Guard,
		interp:    opts.Interpreter,
		logger:    logger,
		published: make(map[cec.LogicalAddress]bool),
		ctx:       ctx,
		ctxCancel: cancel,
	}
	b.health = NewHealthReporter(HealthReporterConfig{
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTT,
		Topic:     opts.Topics.Health(),
		Snapshot:  b.snapshot,
		Logger:    logger,
	})
	return b, nil
}

// Start subscribes to the command topics and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logger.Warn("publishing starting status failed", "error", err)
	}

	topic := b.topics.AllCommands()
	if err := b.mqtt.Subscribe(topic, ackQoS, b.handleMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logger.Info("subscribed to commands", "topic", topic)

	b.health.Start(ctx)
	return nil
}

// Stop cancels in-flight commands, waits for handlers, and publishes a
// final stopping status. Safe to call more than once.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.wg.Wait()
		b.health.Stop()
		b.logger.Info("bridge stopped")
	})
}

// Reconnected republishes health after a broker reconnect. The mqtt client
// restores the command subscription itself.
func (b *Bridge) Reconnected() {
	if err := b.health.PublishNow(); err != nil {
		b.logger.Warn("publishing health failed", "error", err)
	}
}

func (b *Bridge) handleMessage(topic string, payload []byte) error {
	if b.ctx.Err() != nil {
		return nil
	}
	b.wg.Add(1)
	defer b.wg.Done()

	address := mqtt.AddressFromTopic(topic)

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.stats.received.Add(1)
		b.stats.failed.Add(1)
		b.publishAck(NewAckError(CommandMessage{}, address, ErrCodeInvalidCommand, "malformed JSON: "+err.Error()))
		return fmt.Errorf("parsing command: %w", err)
	}
	b.handleCommand(address, cmd)
	return nil
}

// handleCommand executes cmd for address and publishes its acknowledgement.
func (b *Bridge) handleCommand(address string, cmd CommandMessage) {
	b.stats.received.Add(1)
	b.logger.Info("received command", "command_id", cmd.ID, "address", address, "command", cmd.Command)

	source := cmd.Source
	if source == "" {
		source = audit.SourceMQTT
	}
	ctx := audit.WithSource(b.ctx, source)

	result, err := b.execute(ctx, address, cmd)
	if err != nil {
		b.stats.failed.Add(1)
		b.logger.Warn("command failed", "command_id", cmd.ID, "command", cmd.Command, "error", err)
		ack := NewAckError(cmd, address, errorCode(err), err.Error())
		ack.Result = result
		b.publishAck(ack)
		return
	}
	b.publishAck(NewAckMessage(cmd, address, AckAccepted, result))
}

func (b *Bridge) execute(ctx context.Context, address string, cmd CommandMessage) (any, error) {
	switch cmd.Command {
	case CommandPress:
		return b.executePress(ctx, address, cmd.Parameters)
	case CommandRelease:
		dst, err := deviceAddress(address)
		if err != nil {
			return nil, err
		}
		src, err := logicalParam(cmd.Parameters, "source")
		if err != nil {
			return nil, err
		}
		return b.busCommand(ctx, func(ctx context.Context, c *cec.Controller) (bool, error) {
			return c.ButtonRelease(ctx, dst, src)
		})
	case CommandStandby:
		dst := new(cec.LogicalAddress)
		if address == BusAddress {
			*dst = cec.AddressBroadcast
		} else {
			addr, err := deviceAddress(address)
			if err != nil {
				return nil, err
			}
			*dst = addr
		}
		src, err := logicalParam(cmd.Parameters, "source")
		if err != nil {
			return nil, err
		}
		return b.busCommand(ctx, func(ctx context.Context, c *cec.Controller) (bool, error) {
			return c.Standby(ctx, src, dst)
		})
	case CommandActivate:
		return b.executeActivate(ctx, address, cmd.Parameters)
	case CommandRaw:
		frame, err := stringParam(cmd.Parameters, "frame")
		if err != nil {
			return nil, err
		}
		return b.busCommand(ctx, func(ctx context.Context, c *cec.Controller) (bool, error) {
			return c.RawCommand(ctx, cec.Frame(frame)), nil
		})
	case CommandSequence:
		return b.executeSequence(ctx, cmd.Parameters)
	case CommandScan:
		scanCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		devices, err := cec.Exclusive(b.guard, func(c *cec.Controller) (map[cec.LogicalAddress]cec.DeviceRecord, error) {
			return c.Scan(scanCtx)
		})
		if err != nil {
			return nil, err
		}
		return map[string]int{"devices": len(devices)}, nil
	case CommandPower:
		addr, err := deviceAddress(address)
		if err != nil {
			return nil, err
		}
		powerCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		return cec.Exclusive(b.guard, func(c *cec.Controller) (cec.PowerStatus, error) {
			return c.PowerStatus(powerCtx, addr)
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, cmd.Command)
	}
}

func (b *Bridge) executePress(ctx context.Context, address string, params map[string]any) (any, error) {
	dst, err := deviceAddress(address)
	if err != nil {
		return nil, err
	}
	button, err := stringParam(params, "button")
	if err != nil {
		return nil, err
	}
	release, err := boolParam(params, "release", true)
	if err != nil {
		return nil, err
	}
	src, err := logicalParam(params, "source")
	if err != nil {
		return nil, err
	}
	return b.busCommand(ctx, func(ctx context.Context, c *cec.Controller) (bool, error) {
		return c.ButtonPress(ctx, button, dst, release, src)
	})
}

func (b *Bridge) executeActivate(ctx context.Context, address string, params map[string]any) (any, error) {
	var la *cec.LogicalAddress
	if address != BusAddress {
		addr, err := deviceAddress(address)
		if err != nil {
			return nil, err
		}
		la = &addr
	}
	var pa *cec.PhysicalAddress
	if text, ok := params["physical_address"].(string); ok && text != "" {
		parsed, err := cec.ParsePhysicalAddress(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		pa = &parsed
	}
	return b.busCommand(ctx, func(ctx context.Context, c *cec.Controller) (bool, error) {
		return c.ActiveSource(ctx, la, pa)
	})
}

func (b *Bridge) executeSequence(ctx context.Context, params map[string]any) (any, error) {
	text, err := stringParam(params, "sequence")
	if err != nil {
		return nil, err
	}
	seqCtx, cancel := context.WithTimeout(ctx, sequenceTimeout)
	defer cancel()

	var results []any
	err = b.guard.Do(func(*cec.Controller) error {
		var runErr error
		results, runErr = b.interp.Run(seqCtx, text)
		return runErr
	})
	if err != nil {
		// Steps already run stay in the audit log; the ack reports only the failure.
		return nil, err
	}
	return results, nil
}

// busCommand runs a single acknowledged bus command under the guard.
func (b *Bridge) busCommand(ctx context.Context, fn func(context.Context, *cec.Controller) (bool, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	ok, err := cec.Exclusive(b.guard, func(c *cec.Controller) (bool, error) {
		return fn(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, ErrNotAcknowledged
	}
	return true, nil
}

func (b *Bridge) publishAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logger.Error("marshalling ack failed", "error", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Ack(ack.Address), payload, ackQoS, false); err != nil {
		b.logger.Warn("publishing ack failed", "error", err)
	}
}

// ObserveScan publishes a retained state message per present device and
// clears the retained state of devices that are no longer present.
// It implements cec.ScanObserver.
func (b *Bridge) ObserveScan(_ context.Context, devices map[cec.LogicalAddress]cec.DeviceRecord, _ time.Duration) {
	b.stats.scans.Add(1)
	now := time.Now().UTC()

	b.publishedMu.Lock()
	defer b.publishedMu.Unlock()

	for addr, rec := range devices {
		payload, err := json.Marshal(StateMessage{Address: addr.String(), Timestamp: now, Device: rec})
		if err != nil {
			b.logger.Error("marshalling state failed", "address", addr, "error", err)
			continue
		}
		if err := b.mqtt.Publish(b.topics.State(addr.String()), payload, ackQoS, true); err != nil {
			b.logger.Warn("publishing state failed", "address", addr, "error", err)
			continue
		}
		b.published[addr] = true
	}

	for addr := range b.published {
		if _, ok := devices[addr]; ok {
			continue
		}
		// An empty retained message deletes the broker's copy.
		if err := b.mqtt.Publish(b.topics.State(addr.String()), nil, ackQoS, true); err != nil {
			b.logger.Warn("clearing state failed", "address", addr, "error", err)
			continue
		}
		delete(b.published, addr)
	}
}

// snapshot feeds the health reporter.
func (b *Bridge) snapshot() (cec.Status, BridgeStatistics) {
	return b.guard.Controller().Status(), b.Statistics()
}

// Statistics returns command counters since start.
func (b *Bridge) Statistics() BridgeStatistics {
	return BridgeStatistics{
		CommandsReceived: b.stats.received.Load(),
		CommandsFailed:   b.stats.failed.Load(),
		Scans:            b.stats.scans.Load(),
	}
}

// errorCode maps an execution error to an AckError code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, sequence.ErrUnknownAction):
		return ErrCodeUnknownAction
	case errors.Is(err, ErrInvalidCommand):
		return ErrCodeInvalidCommand
	case errors.Is(err, ErrInvalidParameters), errors.Is(err, cec.ErrInvalidArgument):
		return ErrCodeInvalidParameters
	case errors.Is(err, cec.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrNotAcknowledged):
		return ErrCodeNotAcknowledged
	default:
		return ErrCodeBusError
	}
}
