// Package cec implements the HDMI-CEC control plane for Gray Logic.
//
// It turns high-level requests (press a button, put a device into standby,
// switch the active source) into textual CEC frames, sends them through a
// BusTransport, and keeps a snapshot of the devices seen on the bus.
//
// # Architecture
//
//	┌─────────────────┐          ┌─────────────────┐           ┌──────────┐
//	│  HTTP / MQTT /  │  calls   │   Controller    │ frames    │  Bus     │
//	│  sequences      │─────────►│ (this package)  │──────────►│ Transport│──► CEC bus
//	└─────────────────┘          └─────────────────┘           └──────────┘
//
// # Frames
//
// A frame is written as "SD:OP:AA:..." where S and D are the source and
// destination logical addresses (one hex digit each), OP is the opcode and
// AA the operands:
//
//	f := cec.Encode(1, 4, cec.OpUserControlPressed, 0x41)
//	fmt.Println(f) // "14:44:41"
//
// # Buttons
//
// Buttons are addressed by sanitized name ("volume_up", "f1_blue") or by
// hex code ("41"). See ResolveButton.
//
// # Thread Safety
//
// DeviceStateCache is safe for concurrent use. Controller is safe for
// concurrent use in the memory sense, but the bus expects one command at a
// time; callers that share a controller should go through a Guard.
package cec
