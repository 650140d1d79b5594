// Package api provides the HTTP front end for cecctl.
//
// It exposes the CEC controller to scripts and home-automation hubs: button
// presses, batch presses, sequences, raw frames, standby and active-source
// switching, plus read access to the device snapshot and the audit log.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Every bus operation runs under the shared cec.Guard, so requests from the
// API and the MQTT bridge never interleave frames on the bus.
//
// Status codes: 400 for malformed addresses, buttons or frames; 404 for
// devices missing from the snapshot; 422 for sequences naming an unknown
// action; 503 when no adapter is available.
package api
