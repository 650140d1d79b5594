package bridge

import (
	"fmt"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// deviceAddress parses a topic address that must name one device.
func deviceAddress(address string) (cec.LogicalAddress, error) {
	if address == BusAddress {
		return 0, fmt.Errorf("%w: command needs a device address, not %q", ErrInvalidParameters, BusAddress)
	}
	addr, err := cec.ParseLogicalAddress(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return addr, nil
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidParameters, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidParameters, key)
	}
	return s, nil
}

func boolParam(params map[string]any, key string, def bool) (bool, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a boolean", ErrInvalidParameters, key)
	}
	return b, nil
}

// logicalParam reads an optional logical address given as a string
// ("4", "e") or a JSON number.
func logicalParam(params map[string]any, key string) (*cec.LogicalAddress, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, nil
	}

	var text string
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, nil
		}
		text = x
	case float64:
		text = fmt.Sprintf("%.0f", x)
		if float64(int(x)) != x {
			return nil, fmt.Errorf("%w: %q must be a whole number", ErrInvalidParameters, key)
		}
	default:
		return nil, fmt.Errorf("%w: %q must be a logical address", ErrInvalidParameters, key)
	}

	addr, err := cec.ParseLogicalAddress(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return &addr, nil
}
