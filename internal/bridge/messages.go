package bridge

import (
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// Command names accepted on {prefix}/command/{address}.
const (
	CommandPress    = "press"
	CommandRelease  = "release"
	CommandStandby  = "standby"
	CommandActivate = "activate"
	CommandRaw      = "raw"
	CommandSequence = "sequence"
	CommandScan     = "scan"
	CommandPower    = "power"
)

// BusAddress is the topic address for commands without a single target
// device (raw, sequence, scan).
const BusAddress = "bus"

// CommandMessage is a command received over MQTT.
//
// Topic: {prefix}/command/{address}, where address is a logical address
// (0-14) or "bus".
type CommandMessage struct {
	// ID correlates the command with its acknowledgement.
	ID string `json:"id"`

	Timestamp time.Time `json:"timestamp,omitzero"`

	// Command is one of the Command* names.
	Command string `json:"command"`

	// Parameters hold command-specific values:
	//   press:    {"button": "volume_up", "release": true, "source": "1"}
	//   release:  {"source": "1"}
	//   standby:  {"source": "1"}
	//   activate: {"physical_address": "1.0.0.0"}
	//   raw:      {"frame": "10:36"}
	//   sequence: {"sequence": "standby()|sleep(2)|activate(4)"}
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source names the caller for the audit log. Defaults to "mqtt".
	Source string `json:"source,omitempty"`
}

// AckStatus is the outcome reported for a command.
type AckStatus string

const (
	// AckAccepted means the command ran and the bus acknowledged it.
	AckAccepted AckStatus = "accepted"

	// AckFailed means the command was rejected or the bus did not acknowledge it.
	AckFailed AckStatus = "failed"
)

// Error codes carried in AckError.
const (
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeUnknownAction     = "UNKNOWN_ACTION"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeNotAcknowledged   = "NOT_ACKNOWLEDGED"
	ErrCodeBusError          = "BUS_ERROR"
)

// AckMessage reports the outcome of a command.
//
// Topic: {prefix}/ack/{address}
type AckMessage struct {
	CommandID string    `json:"command_id"`
	Timestamp time.Time `json:"timestamp"`
	Address   string    `json:"address"`
	Command   string    `json:"command"`
	Status    AckStatus `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     *AckError `json:"error,omitempty"`
}

// AckError describes a failed command.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAckMessage builds an acknowledgement for cmd.
func NewAckMessage(cmd CommandMessage, address string, status AckStatus, result any) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Address:   address,
		Command:   cmd.Command,
		Status:    status,
		Result:    result,
	}
}

// NewAckError builds a failed acknowledgement for cmd.
func NewAckError(cmd CommandMessage, address, code, message string) AckMessage {
	ack := NewAckMessage(cmd, address, AckFailed, nil)
	ack.Error = &AckError{Code: code, Message: message}
	return ack
}

// StateMessage is the retained state of one device after a scan.
//
// Topic: {prefix}/state/{address}
type StateMessage struct {
	Address   string           `json:"address"`
	Timestamp time.Time        `json:"timestamp"`
	Device    cec.DeviceRecord `json:"device"`
}

// HealthStatus is the operational state of the bridge.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStarting HealthStatus = "starting"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is published periodically and on state changes.
//
// Topic: {prefix}/health (retained)
type HealthMessage struct {
	Bridge        string           `json:"bridge"`
	Timestamp     time.Time        `json:"timestamp"`
	Status        HealthStatus     `json:"status"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Adapter       AdapterStatus    `json:"adapter"`
	Statistics    BridgeStatistics `json:"statistics"`
	Devices       int              `json:"devices"`
	Reason        string           `json:"reason,omitempty"`
}

// AdapterStatus describes the CEC adapter connection.
type AdapterStatus struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port,omitempty"`
}

// BridgeStatistics counts commands handled since start.
type BridgeStatistics struct {
	CommandsReceived uint64 `json:"commands_received"`
	CommandsFailed   uint64 `json:"commands_failed"`
	Scans            uint64 `json:"scans"`
}
