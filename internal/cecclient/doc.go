// Package cecclient implements the CEC bus transport on top of libCEC's
// cec-client tool.
//
// Every request starts "cec-client -s" (single command mode) against the
// opened adapter and writes one command to its stdin:
//
//	self        own logical address
//	lad         active devices
//	ven/ver/pow/name N
//	scan        physical address and active source
//	tx FRAME    transmit
//
// The subprocess runs in its own process group and is killed as a group
// when the request context ends.
package cecclient
