package influxdb

import "errors"

// Sentinel errors for the telemetry writer. Match with errors.Is.
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	// Callers treat it as "run without telemetry", not as a failure.
	ErrDisabled = errors.New("influxdb: telemetry disabled")

	// ErrConnectionFailed wraps the ping failure from Connect.
	ErrConnectionFailed = errors.New("influxdb: server unreachable")

	// ErrNotConnected is returned by HealthCheck on a closed or unconnected client.
	ErrNotConnected = errors.New("influxdb: no active connection")

	// ErrWriteFailed wraps asynchronous batch errors passed to the
	// SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: batch write rejected")
)
