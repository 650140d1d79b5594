package cec

import (
	"errors"
	"testing"
)

func TestParseLogicalAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    LogicalAddress
		wantErr bool
	}{
		{"0", 0, false},
		{"4", 4, false},
		{" 14 ", 14, false},
		{"15", 15, false},
		{"e", 14, false},
		{"F", 15, false},
		{"16", 0, true},
		{"", 0, true},
		{"tv", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogicalAddress(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("ParseLogicalAddress(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLogicalAddress(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogicalAddress(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePhysicalAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    PhysicalAddress
		wantErr bool
	}{
		{"1000", 0x1000, false},
		{"0x2100", 0x2100, false},
		{"1.0.0.0", 0x1000, false},
		{"3.2.0.0", 0x3200, false},
		{"1.0.0", 0, true},
		{"1.0.0.g", 0, true},
		{"12345", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePhysicalAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePhysicalAddress(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePhysicalAddress(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePhysicalAddress(%q) = %04x, want %04x", tt.input, uint16(got), uint16(tt.want))
			}
		})
	}
}

func TestPhysicalAddressFormatting(t *testing.T) {
	pa := PhysicalAddress(0x1200)
	if pa.Hex() != "1200" {
		t.Errorf("Hex() = %q", pa.Hex())
	}
	if pa.String() != "1.2.0.0" {
		t.Errorf("String() = %q", pa.String())
	}
}

func TestAddressSet(t *testing.T) {
	set := NewAddressSet(0, 4, 14, AddressBroadcast)

	if !set.IsSet(0) || !set.IsSet(4) || !set.IsSet(14) {
		t.Errorf("expected 0, 4, 14 present in %015b", set)
	}
	if set.IsSet(AddressBroadcast) {
		t.Error("broadcast address must never be present")
	}
	if set.IsSet(5) {
		t.Error("address 5 should be absent")
	}

	got := set.Addresses()
	want := []LogicalAddress{0, 4, 14}
	if len(got) != len(want) {
		t.Fatalf("Addresses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Addresses()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
