// Package audit records what cecctl did to the bus.
//
// Every transmitted frame and every sequence run is written to the
// audit_log table, tagged with the surface that caused it (api, mqtt).
// Completed scans update device_sightings, which remembers when each
// logical address was first and last seen.
package audit
