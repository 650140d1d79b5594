package cectest

import (
	"context"
	"testing"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

func TestTransportDrivesController(t *testing.T) {
	tr := New()
	ctrl := cec.NewController(tr)
	ctx := context.Background()

	if err := ctrl.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	devices, err := ctrl.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 || devices[cec.AddressPlayback1].OSDName != "Player" {
		t.Errorf("devices = %+v", devices)
	}

	tr.Nacked["10:36"] = true
	ok, err := ctrl.Standby(ctx, nil, nil)
	if err != nil || ok {
		t.Errorf("Standby() = %v, %v; want nacked", ok, err)
	}
	if sent := tr.Sent(); len(sent) != 1 || sent[0] != "10:36" {
		t.Errorf("sent = %v", sent)
	}
}
