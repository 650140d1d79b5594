// Package influxdb records CEC bus telemetry in InfluxDB v2.
//
// The client is registered as a scan observer, command recorder, and
// sequence execution recorder. Points are written through the non-blocking
// WriteAPI and batched; write failures surface through SetOnError.
//
// Measurements:
//
//	cec_device    per device per scan: power_on, active, physical_address
//	              tags logical_address, osd_name, vendor
//	cec_scan      per scan: devices, duration_ms
//	cec_command   per transmitted frame: success; tags destination, opcode
//	cec_sequence  per run: steps, executed, duration_ms; tag status
package influxdb
