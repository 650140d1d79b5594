// Package bridge connects the CEC controller to MQTT.
//
// Commands arrive as JSON on {prefix}/command/{address} where address is a
// logical address or "bus":
//
//	{"id": "c1", "command": "press", "parameters": {"button": "volume_up"}}
//
// Every command is answered on {prefix}/ack/{address} with status
// "accepted" or "failed" and an error code. After every bus scan, from any
// surface, each present device's record is published retained on
// {prefix}/state/{address}; devices that disappear have their retained
// state cleared. Health is published retained on {prefix}/health every 30s.
//
// Bus access is serialized with the HTTP API through a shared cec.Guard.
// Commands are tagged with source "mqtt" in the audit log unless the
// message names another source.
package bridge
