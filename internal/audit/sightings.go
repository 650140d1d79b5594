package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// Sighting records when a logical address was first and last seen.
type Sighting struct {
	LogicalAddress  cec.LogicalAddress  `json:"logical_address"`
	PhysicalAddress cec.PhysicalAddress `json:"physical_address"`
	VendorID        uint32              `json:"vendor_id"`
	OSDName         string              `json:"osd_name"`
	CECVersion      string              `json:"cec_version"`
	FirstSeen       time.Time           `json:"first_seen"`
	LastSeen        time.Time           `json:"last_seen"`
}

// SightingStore keeps device_sightings current from completed scans.
// It implements cec.ScanObserver.
type SightingStore struct {
	db     *sql.DB
	logger Logger
	now    func() time.Time
}

var _ cec.ScanObserver = (*SightingStore)(nil)

// NewSightingStore creates a store over an open database.
func NewSightingStore(db *sql.DB) *SightingStore {
	return &SightingStore{db: db, logger: noopLogger{}, now: time.Now}
}

// SetLogger sets the logger for write failures.
func (s *SightingStore) SetLogger(logger Logger) {
	s.logger = logger
}

// ObserveScan upserts every device from a scan.
func (s *SightingStore) ObserveScan(ctx context.Context, devices map[cec.LogicalAddress]cec.DeviceRecord, _ time.Duration) {
	if err := s.Record(context.WithoutCancel(ctx), devices); err != nil {
		s.logger.Warn("recording sightings failed", "devices", len(devices), "error", err)
	}
}

// Record upserts the given devices in one transaction.
func (s *SightingStore) Record(ctx context.Context, devices map[cec.LogicalAddress]cec.DeviceRecord) error {
	seen := s.now().UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	for _, d := range devices {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO device_sightings
				(logical_address, physical_address, vendor_id, osd_name, cec_version, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(logical_address) DO UPDATE SET
				physical_address = excluded.physical_address,
				vendor_id = excluded.vendor_id,
				osd_name = excluded.osd_name,
				cec_version = excluded.cec_version,
				last_seen = excluded.last_seen`,
			int(d.LogicalAddress), int(d.PhysicalAddress), int64(d.VendorID),
			d.OSDName, d.CECVersion, seen, seen,
		)
		if err != nil {
			return fmt.Errorf("upserting sighting %s: %w", d.LogicalAddress, err)
		}
	}
	return tx.Commit()
}

// List returns every sighting ordered by logical address.
func (s *SightingStore) List(ctx context.Context) ([]Sighting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT logical_address, physical_address, vendor_id, osd_name, cec_version, first_seen, last_seen
		FROM device_sightings ORDER BY logical_address`)
	if err != nil {
		return nil, fmt.Errorf("querying sightings: %w", err)
	}
	defer rows.Close()

	out := []Sighting{}
	for rows.Next() {
		var sg Sighting
		var la, pa int
		var vendor int64
		var first, last string
		if err := rows.Scan(&la, &pa, &vendor, &sg.OSDName, &sg.CECVersion, &first, &last); err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		sg.LogicalAddress = cec.LogicalAddress(la)
		sg.PhysicalAddress = cec.PhysicalAddress(pa)
		sg.VendorID = uint32(vendor)
		if sg.FirstSeen, err = time.Parse(timeLayout, first); err != nil {
			return nil, fmt.Errorf("parsing first_seen %q: %w", first, err)
		}
		if sg.LastSeen, err = time.Parse(timeLayout, last); err != nil {
			return nil, fmt.Errorf("parsing last_seen %q: %w", last, err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sightings: %w", err)
	}
	return out, nil
}
