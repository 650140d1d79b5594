package sequence

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// DefaultBatchDelay is the pause between presses in press_batch.
const DefaultBatchDelay = 300 * time.Millisecond

// Controller is the subset of *cec.Controller exposed to sequences.
type Controller interface {
	ButtonPress(ctx context.Context, button string, dst cec.LogicalAddress, release bool, src *cec.LogicalAddress) (bool, error)
	Standby(ctx context.Context, src, dst *cec.LogicalAddress) (bool, error)
	ActiveSource(ctx context.Context, la *cec.LogicalAddress, pa *cec.PhysicalAddress) (bool, error)
	RawCommand(ctx context.Context, frame cec.Frame) bool
}

// SurfaceOptions tunes the controller surface.
type SurfaceOptions struct {
	// BatchDelay is the pause between presses in press_batch.
	// Zero means DefaultBatchDelay.
	BatchDelay time.Duration

	// Sleep pauses between batch presses. Nil means SleepContext.
	Sleep Sleeper
}

// NewControllerSurface exposes the controller operations to sequences:
//
//	press(button, dst)             press and release one button
//	press_batch(button..., dst)    press several buttons with a pause between
//	standby([src[, dst]])          put a device into standby
//	activate([la[, pa]])           broadcast Active Source
//	raw(frame)                     transmit a frame verbatim
//
// Addresses accept decimal or a single hex digit. An empty argument means
// "not given", so activate(,1000) selects by physical address.
func NewControllerSurface(ctrl Controller, opts SurfaceOptions) *Surface {
	delay := opts.BatchDelay
	if delay <= 0 {
		delay = DefaultBatchDelay
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	s := NewSurface()
	mustRegister(s, "press", Action{
		MinArgs: 2,
		MaxArgs: 2,
		Run: func(ctx context.Context, args []string) (any, error) {
			dst, err := cec.ParseLogicalAddress(args[1])
			if err != nil {
				return nil, err
			}
			return ctrl.ButtonPress(ctx, args[0], dst, true, nil)
		},
	})
	mustRegister(s, "press_batch", Action{
		MinArgs: 2,
		MaxArgs: Variadic,
		Run: func(ctx context.Context, args []string) (any, error) {
			dst, err := cec.ParseLogicalAddress(args[len(args)-1])
			if err != nil {
				return nil, err
			}
			buttons := args[:len(args)-1]
			results := make([]bool, 0, len(buttons))
			for i, button := range buttons {
				if i > 0 {
					if err := sleep(ctx, delay); err != nil {
						return results, err
					}
				}
				ok, err := ctrl.ButtonPress(ctx, button, dst, true, nil)
				if err != nil {
					return results, err
				}
				results = append(results, ok)
			}
			return results, nil
		},
	})
	mustRegister(s, "standby", Action{
		MinArgs: 0,
		MaxArgs: 2,
		Run: func(ctx context.Context, args []string) (any, error) {
			src, err := optionalLogical(args, 0)
			if err != nil {
				return nil, err
			}
			dst, err := optionalLogical(args, 1)
			if err != nil {
				return nil, err
			}
			return ctrl.Standby(ctx, src, dst)
		},
	})
	mustRegister(s, "activate", Action{
		MinArgs: 0,
		MaxArgs: 2,
		Run: func(ctx context.Context, args []string) (any, error) {
			la, err := optionalLogical(args, 0)
			if err != nil {
				return nil, err
			}
			pa, err := optionalPhysical(args, 1)
			if err != nil {
				return nil, err
			}
			return ctrl.ActiveSource(ctx, la, pa)
		},
	})
	mustRegister(s, "raw", Action{
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(ctx context.Context, args []string) (any, error) {
			return ctrl.RawCommand(ctx, cec.Frame(args[0])), nil
		},
	})
	return s
}

// mustRegister panics on registration failure; names here are static.
func mustRegister(s *Surface, name string, a Action) {
	if err := s.Register(name, a); err != nil {
		panic(err)
	}
}

func optionalLogical(args []string, i int) (*cec.LogicalAddress, error) {
	if i >= len(args) || args[i] == "" {
		return nil, nil
	}
	addr, err := cec.ParseLogicalAddress(args[i])
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func optionalPhysical(args []string, i int) (*cec.PhysicalAddress, error) {
	if i >= len(args) || args[i] == "" {
		return nil, nil
	}
	pa, err := cec.ParsePhysicalAddress(args[i])
	if err != nil {
		return nil, err
	}
	return &pa, nil
}
