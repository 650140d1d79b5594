package cec

import "fmt"

// DeviceRecord is a snapshot of one device taken during a scan.
type DeviceRecord struct {
	VendorID        uint32          `json:"vendor_id"`
	PhysicalAddress PhysicalAddress `json:"physical_address"`
	LogicalAddress  LogicalAddress  `json:"logical_address"`
	Active          bool            `json:"active"`
	CECVersion      string          `json:"cec_version"`
	PowerStatus     PowerStatus     `json:"power_status"`
	OSDName         string          `json:"osd_name"`
}

// VendorName returns the registered vendor name, or the hex ID when unknown.
func (d DeviceRecord) VendorName() string {
	if name, ok := vendorNames[d.VendorID]; ok {
		return name
	}
	return fmt.Sprintf("0x%06X", d.VendorID)
}

// Attribute returns a single field by its JSON name.
//
// Parameters:
//   - name: one of the DeviceRecord JSON keys (e.g. "osd_name")
//
// Returns:
//   - any: the field value
//   - bool: false if the name is not a known attribute
func (d DeviceRecord) Attribute(name string) (any, bool) {
	switch name {
	case "vendor_id":
		return d.VendorID, true
	case "physical_address":
		return d.PhysicalAddress, true
	case "logical_address":
		return d.LogicalAddress, true
	case "active":
		return d.Active, true
	case "cec_version":
		return d.CECVersion, true
	case "power_status":
		return d.PowerStatus, true
	case "osd_name":
		return d.OSDName, true
	default:
		return nil, false
	}
}

// Vendor IDs are IEEE OUIs.
var vendorNames = map[uint32]string{
	0x000039: "Toshiba",
	0x0000F0: "Samsung",
	0x0005CD: "Denon",
	0x000678: "Marantz",
	0x000982: "Loewe",
	0x0009B0: "Onkyo",
	0x000CB8: "Medion",
	0x000CE7: "Toshiba",
	0x0010FA: "Apple",
	0x001582: "Pulse Eight",
	0x001A11: "Google",
	0x0020C7: "Akai",
	0x002467: "AOC",
	0x008045: "Panasonic",
	0x00903E: "Philips",
	0x009053: "Daewoo",
	0x00A0DE: "Yamaha",
	0x00D0D5: "Grundig",
	0x00E036: "Pioneer",
	0x00E091: "LG",
	0x08001F: "Sharp",
	0x080046: "Sony",
	0x18C086: "Broadcom",
	0x232425: "Teufel",
	0x6B746D: "Vizio",
	0x8065E9: "Benq",
	0x9C645E: "Harman Kardon",
}

// VendorIDForName returns the vendor ID for a registered vendor name.
func VendorIDForName(name string) (uint32, bool) {
	for id, n := range vendorNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}
