package api

import (
	"net/http"
	"strings"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// batchSeparator splits the {buttons} segment of a batch press.
const batchSeparator = ","

// StatusResponse reports bus acknowledgement: a bool for one command, a
// list of bools for a batch.
type StatusResponse struct {
	Status any `json:"status"`
}

// ResultsResponse carries the per-step results of a sequence.
type ResultsResponse struct {
	Results []any `json:"results"`
}

// handlePress presses and releases one button on a device.
func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	dst, err := deviceParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	button := pathParam(r, "name")

	ok, err := cec.Exclusive(s.guard, func(c *cec.Controller) (bool, error) {
		return c.ButtonPress(r.Context(), button, dst, true, nil)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: ok})
}

// handleBatchPress presses several comma-separated buttons in order with
// the configured pause between presses.
func (s *Server) handleBatchPress(w http.ResponseWriter, r *http.Request) {
	device := pathParam(r, "device")
	if _, err := cec.ParseLogicalAddress(device); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var args []string
	for b := range strings.SplitSeq(pathParam(r, "buttons"), batchSeparator) {
		if b = strings.TrimSpace(b); b != "" {
			args = append(args, b)
		}
	}
	if len(args) == 0 {
		writeBadRequest(w, "no buttons given")
		return
	}
	args = append(args, device)

	action, _ := s.interp.Surface().Lookup(batchAction)
	results, err := cec.Exclusive(s.guard, func(*cec.Controller) (any, error) {
		return action.Run(r.Context(), args)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: results})
}

// handleSequence runs a pipe-separated sequence such as
// "press(power,0)|sleep(2)|activate(4)".
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	text := pathParam(r, "sequence")

	results, err := cec.Exclusive(s.guard, func(*cec.Controller) ([]any, error) {
		return s.interp.Run(r.Context(), text)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	if results == nil {
		results = []any{}
	}
	writeJSON(w, http.StatusOK, ResultsResponse{Results: results})
}

// handleRaw transmits a colon-delimited frame verbatim.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	frame := cec.Frame(pathParam(r, "command"))
	if _, err := cec.ParseFrame(frame); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ok, _ := cec.Exclusive(s.guard, func(c *cec.Controller) (bool, error) { //nolint:errcheck // RawCommand has no error path
		return c.RawCommand(r.Context(), frame), nil
	})
	writeJSON(w, http.StatusOK, StatusResponse{Status: ok})
}

// handleStandby puts a device into standby.
//
// Query parameters:
//   - dst: target logical address (default 0, the TV; "15" broadcasts)
//   - src: source logical address (default: the adapter's own)
func (s *Server) handleStandby(w http.ResponseWriter, r *http.Request) {
	dst, err := optionalLogical(r, "dst")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	src, err := optionalLogical(r, "src")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ok, err := cec.Exclusive(s.guard, func(c *cec.Controller) (bool, error) {
		return c.Standby(r.Context(), src, dst)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: ok})
}

// handleActivate makes a device the active source. An optional "pa" query
// parameter overrides the physical address from the snapshot.
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	la, err := deviceParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var pa *cec.PhysicalAddress
	if v := r.URL.Query().Get("pa"); v != "" {
		p, err := cec.ParsePhysicalAddress(v)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		pa = &p
	}

	ok, err := cec.Exclusive(s.guard, func(c *cec.Controller) (bool, error) {
		return c.ActiveSource(r.Context(), &la, pa)
	})
	if err != nil {
		s.writeBusError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: ok})
}
