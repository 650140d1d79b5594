package api

import (
	"context"
	"net/http"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/discovery"
)

// handleListDevices returns the device snapshot, scanning on first use.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := cec.Exclusive(s.guard, func(c *cec.Controller) (map[cec.LogicalAddress]cec.DeviceRecord, error) {
		return c.Devices(r.Context())
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleScan rescans the bus and returns the new snapshot.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	devices, err := cec.Exclusive(s.guard, func(c *cec.Controller) (map[cec.LogicalAddress]cec.DeviceRecord, error) {
		return c.Scan(r.Context())
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleListButtons returns the code to name table.
func (s *Server) handleListButtons(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cec.Buttons())
}

// handleGetDevice returns one device from the snapshot.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.device(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetAttribute returns a single field of a device record.
func (s *Server) handleGetAttribute(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.device(w, r)
	if !ok {
		return
	}
	name := pathParam(r, "name")
	value, known := rec.Attribute(name)
	if !known {
		writeNotFound(w, "unknown attribute: "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{name: value})
}

// handlePower queries the live power status and answers "1" (on) or "0".
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	addr, err := deviceParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	status, err := cec.Exclusive(s.guard, func(c *cec.Controller) (cec.PowerStatus, error) {
		return c.PowerStatus(r.Context(), addr)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}

	body := "0"
	if status.IsOn() {
		body = "1"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body)) //nolint:errcheck // Best-effort write
}

// device resolves {device} against the snapshot, writing the error
// response itself when it fails.
func (s *Server) device(w http.ResponseWriter, r *http.Request) (cec.DeviceRecord, bool) {
	addr, err := deviceParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return cec.DeviceRecord{}, false
	}
	rec, err := s.lookup(r.Context(), addr)
	if err != nil {
		s.writeBusError(w, r, err)
		return cec.DeviceRecord{}, false
	}
	return rec, true
}

func (s *Server) lookup(ctx context.Context, addr cec.LogicalAddress) (cec.DeviceRecord, error) {
	return cec.Exclusive(s.guard, func(c *cec.Controller) (cec.DeviceRecord, error) {
		return c.Device(ctx, addr)
	})
}

// handleListPeers lists other cecctl instances answering mDNS queries.
func (s *Server) handleListPeers(w http.ResponseWriter, r *http.Request) {
	if s.peers == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "discovery not configured")
		return
	}

	peers, err := s.peers.Browse(r.Context())
	if err != nil {
		s.logger.Error("mdns browse failed", "error", err)
		writeInternalError(w, "failed to browse for peers")
		return
	}
	if peers == nil {
		peers = []discovery.Instance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"peers": peers})
}
