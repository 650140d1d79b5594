package cecclient

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// Output markers printed by cec-client.
const (
	markerConnectFailed = "could not open a connection"
	markerNoAdapter     = "autodetect FAILED"
	markerError         = "ERROR:"
	markerControlled    = "controlled by libCEC:"
	markerLogicalAddr   = "logical address"
	markerPowerStatus   = "power status:"
	markerVendorID      = "vendor id:"
	markerCECVersion    = "CEC version"
	markerOSDName       = "OSD name of device"
	markerDevice        = "device #"
	markerComPort       = "com port:"
	markerProductID     = "product id:"
	markerPath          = "path:"
)

func lines(out string) []string {
	var result []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}

// valueAfter returns the trimmed text after marker on the first line
// that contains it.
func valueAfter(out, marker string) (string, bool) {
	for _, line := range lines(out) {
		if _, after, ok := strings.Cut(line, marker); ok {
			return strings.TrimSpace(after), true
		}
	}
	return "", false
}

func hasError(out string) bool {
	return strings.Contains(out, markerError) || strings.Contains(out, markerConnectFailed)
}

// parseAdapters reads the "cec-client -l" listing:
//
//	device:              1
//	com port:            /dev/ttyACM0
//	vendor id:           2548
//	product id:          1002
func parseAdapters(out string) []cec.Adapter {
	var adapters []cec.Adapter
	var cur *cec.Adapter
	for _, line := range lines(out) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) + ":" {
		case "device:":
			adapters = append(adapters, cec.Adapter{})
			cur = &adapters[len(adapters)-1]
		case markerComPort:
			if cur != nil {
				cur.Port = value
			}
		case markerPath:
			if cur != nil {
				cur.Path = value
			}
		case markerVendorID:
			if cur != nil {
				cur.VendorID = parseHex16(value)
			}
		case markerProductID:
			if cur != nil {
				cur.ProductID = parseHex16(value)
			}
		}
	}

	// Drop entries without a port.
	found := adapters[:0]
	for _, a := range adapters {
		if a.Port != "" {
			found = append(found, a)
		}
	}
	return found
}

func parseHex16(s string) uint16 {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

// parseLogicalAddresses collects every "logical address X" line.
func parseLogicalAddresses(out string) cec.AddressSet {
	var set cec.AddressSet
	for _, line := range lines(out) {
		_, after, ok := strings.Cut(line, markerLogicalAddr)
		if !ok {
			continue
		}
		fields := strings.Fields(after)
		if len(fields) == 0 {
			continue
		}
		if addr, err := cec.ParseLogicalAddress(fields[0]); err == nil && addr.IsDevice() {
			set = set.With(addr)
		}
	}
	return set
}

// parseControlled reads the first address from the "self" reply, e.g.
// "Addresses controlled by libCEC: 1, 4".
func parseControlled(out string) (cec.LogicalAddress, error) {
	value, ok := valueAfter(out, markerControlled)
	if !ok {
		return 0, fmt.Errorf("%w: no controlled address in %q", ErrUnexpectedOutput, out)
	}
	for _, tok := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
		tok = strings.Trim(tok, "()")
		if addr, err := cec.ParseLogicalAddress(tok); err == nil && addr.IsDevice() {
			return addr, nil
		}
	}
	return 0, fmt.Errorf("%w: controlled address %q", ErrUnexpectedOutput, value)
}

var powerCodes = map[string]int{
	"on":                               cec.PowerCodeOn,
	"standby":                          cec.PowerCodeStandby,
	"in transition from standby to on": cec.PowerCodeInTransitionOn,
	"in transition from on to standby": cec.PowerCodeInTransitionStandby,
	"unknown":                          cec.PowerCodeUnknown,
}

func parsePowerCode(out string) (int, error) {
	value, ok := valueAfter(out, markerPowerStatus)
	if !ok {
		return cec.PowerCodeUnknown, fmt.Errorf("%w: no power status in %q", ErrUnexpectedOutput, out)
	}
	if code, ok := powerCodes[strings.ToLower(value)]; ok {
		return code, nil
	}
	return cec.PowerCodeUnknown, nil
}

// parseVendorID accepts a registered vendor name or a hex OUI.
func parseVendorID(out string) (uint32, error) {
	value, ok := valueAfter(out, markerVendorID)
	if !ok {
		return 0, fmt.Errorf("%w: no vendor id in %q", ErrUnexpectedOutput, out)
	}
	return vendorFromText(value), nil
}

func vendorFromText(value string) uint32 {
	if id, ok := cec.VendorIDForName(value); ok {
		return id
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(value), "0x"), 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func parseCECVersion(out string) (string, error) {
	value, ok := valueAfter(out, markerCECVersion)
	if !ok {
		return "", fmt.Errorf("%w: no CEC version in %q", ErrUnexpectedOutput, out)
	}
	return strings.TrimSpace(strings.TrimPrefix(value, ":")), nil
}

// parseOSDName reads "OSD name of device 0 is 'TV'".
func parseOSDName(out string) (string, error) {
	value, ok := valueAfter(out, markerOSDName)
	if !ok {
		return "", fmt.Errorf("%w: no OSD name in %q", ErrUnexpectedOutput, out)
	}
	_, quoted, ok := strings.Cut(value, "'")
	if !ok {
		return "", fmt.Errorf("%w: OSD name %q", ErrUnexpectedOutput, value)
	}
	return strings.TrimSuffix(quoted, "'"), nil
}

// scanEntry is one device block of the "scan" reply.
type scanEntry struct {
	physical cec.PhysicalAddress
	active   bool
}

// parseScan reads the "scan" reply, keyed by logical address:
//
//	device #4: Playback 1
//	address:       1.0.0.0
//	active source: yes
func parseScan(out string) map[cec.LogicalAddress]scanEntry {
	entries := make(map[cec.LogicalAddress]scanEntry)
	var cur cec.LogicalAddress
	inDevice := false

	for _, line := range lines(out) {
		if rest, ok := strings.CutPrefix(line, markerDevice); ok {
			num, _, _ := strings.Cut(rest, ":")
			addr, err := cec.ParseLogicalAddress(strings.TrimSpace(num))
			inDevice = err == nil
			cur = addr
			if inDevice {
				entries[cur] = scanEntry{}
			}
			continue
		}
		if !inDevice {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		e := entries[cur]
		switch strings.TrimSpace(key) {
		case "address":
			if pa, err := cec.ParsePhysicalAddress(value); err == nil {
				e.physical = pa
			}
		case "active source":
			e.active = value == "yes"
		}
		entries[cur] = e
	}
	return entries
}
