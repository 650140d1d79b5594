package cec

import "context"

// Adapter describes a CEC adapter reported by the transport.
type Adapter struct {
	Port      string `json:"port"`
	Path      string `json:"path,omitempty"`
	VendorID  uint16 `json:"vendor_id,omitempty"`
	ProductID uint16 `json:"product_id,omitempty"`
}

// BusTransport is the low-level link to a CEC adapter.
//
// Queries that cannot reach the bus return an error. Transmit reports
// delivery as a boolean; a false result is a bus-level failure, not an error.
type BusTransport interface {
	// DetectAdapters lists the adapters attached to this host.
	DetectAdapters(ctx context.Context) ([]Adapter, error)

	// Open connects to the adapter on the given port.
	Open(ctx context.Context, port string) (bool, error)

	// OwnLogicalAddress returns the primary address claimed by this controller.
	OwnLogicalAddress(ctx context.Context) (LogicalAddress, error)

	// ActiveDevices returns the presence set of logical addresses.
	ActiveDevices(ctx context.Context) (AddressSet, error)

	VendorID(ctx context.Context, addr LogicalAddress) (uint32, error)
	PhysicalAddress(ctx context.Context, addr LogicalAddress) (PhysicalAddress, error)
	IsActiveSource(ctx context.Context, addr LogicalAddress) (bool, error)
	CECVersion(ctx context.Context, addr LogicalAddress) (string, error)

	// PowerCode returns the raw power code (see PowerCodeOn).
	PowerCode(ctx context.Context, addr LogicalAddress) (int, error)
	OSDName(ctx context.Context, addr LogicalAddress) (string, error)

	// Transmit sends a frame and reports whether the bus acknowledged it.
	Transmit(ctx context.Context, frame Frame) (bool, error)
}
