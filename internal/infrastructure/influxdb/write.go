package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
)

// Measurement names.
const (
	MeasurementDevice   = "cec_device"
	MeasurementScan     = "cec_scan"
	MeasurementCommand  = "cec_command"
	MeasurementSequence = "cec_sequence"
)

// ObserveScan writes one cec_device point per present device and a
// cec_scan summary point. It implements cec.ScanObserver.
func (c *Client) ObserveScan(_ context.Context, devices map[cec.LogicalAddress]cec.DeviceRecord, took time.Duration) {
	if !c.IsConnected() {
		return
	}
	ts := c.now()

	for addr, rec := range devices {
		c.writeAPI.WritePoint(write.NewPoint(
			MeasurementDevice,
			map[string]string{
				"logical_address": addr.String(),
				"osd_name":        rec.OSDName,
				"vendor":          rec.VendorName(),
			},
			map[string]interface{}{
				"power_on":         rec.PowerStatus.IsOn(),
				"active":           rec.Active,
				"physical_address": rec.PhysicalAddress.String(),
			},
			ts,
		))
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementScan,
		nil,
		map[string]interface{}{
			"devices":     len(devices),
			"duration_ms": took.Milliseconds(),
		},
		ts,
	))
}

// RecordCommand writes a cec_command point tagged with the frame's
// destination and opcode. It implements cec.CommandRecorder.
func (c *Client) RecordCommand(_ context.Context, frame cec.Frame, ok bool) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{}
	if parts, err := cec.ParseFrame(frame); err == nil {
		tags["destination"] = parts.Destination.String()
		if parts.HasOpcode {
			tags["opcode"] = parts.Opcode.String()
		}
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementCommand,
		tags,
		map[string]interface{}{"success": ok},
		c.now(),
	))
}

// RecordExecution writes a cec_sequence point per finished run. It
// implements sequence.ExecutionRecorder.
func (c *Client) RecordExecution(_ context.Context, exec sequence.Execution) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementSequence,
		map[string]string{"status": exec.Status},
		map[string]interface{}{
			"steps":       exec.Steps,
			"executed":    exec.Executed,
			"duration_ms": exec.Duration.Milliseconds(),
		},
		exec.StartedAt,
	))
}
