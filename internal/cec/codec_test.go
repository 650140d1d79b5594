package cec

import (
	"errors"
	"regexp"
	"testing"
)

var frameShape = regexp.MustCompile(`^[0-9a-f]{2}(:[0-9a-f]{2})*$`)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		src, dst LogicalAddress
		op       Opcode
		operands []byte
		want     Frame
	}{
		{"button press", 1, 4, OpUserControlPressed, []byte{0x41}, "14:44:41"},
		{"button release", 1, 4, OpUserControlReleased, nil, "14:45"},
		{"standby to tv", 4, 0, OpStandby, nil, "40:36"},
		{"broadcast", 0xE, AddressBroadcast, OpActiveSource, []byte{0x10, 0x00}, "ef:82:10:00"},
		{"select code pads", 1, 0, OpUserControlPressed, []byte{0x00}, "10:44:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.src, tt.dst, tt.op, tt.operands...)
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
			if !frameShape.MatchString(string(got)) {
				t.Errorf("Encode() = %q does not match frame shape", got)
			}
		})
	}
}

func TestEncodeTokenStructure(t *testing.T) {
	for src := LogicalAddress(0); src <= AddressBroadcast; src++ {
		for dst := LogicalAddress(0); dst <= AddressBroadcast; dst++ {
			f := Encode(src, dst, OpUserControlPressed, 0x7F)
			if !frameShape.MatchString(string(f)) {
				t.Fatalf("Encode(%s, %s) = %q does not match frame shape", src, dst, f)
			}
		}
	}
}

func TestPhysicalAddressTokens(t *testing.T) {
	tests := []struct {
		pa   PhysicalAddress
		want string
	}{
		{0x1000, "1:0"},
		{0x2100, "2:0"},
		{0x3020, "3:2"},
		{0x0000, "0:0"},
	}

	for _, tt := range tests {
		if got := PhysicalAddressTokens(tt.pa); got != tt.want {
			t.Errorf("PhysicalAddressTokens(%04x) = %q, want %q", uint16(tt.pa), got, tt.want)
		}
	}
}

func TestEncodeTokens(t *testing.T) {
	got := EncodeTokens(1, AddressBroadcast, OpActiveSource, PhysicalAddressTokens(0x1000))
	if got != "1f:82:1:0" {
		t.Errorf("EncodeTokens() = %q, want %q", got, "1f:82:1:0")
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		want    FrameParts
		wantErr bool
	}{
		{
			name:  "press",
			frame: "14:44:41",
			want:  FrameParts{Source: 1, Destination: 4, HasOpcode: true, Opcode: OpUserControlPressed, Operands: []byte{0x41}},
		},
		{
			name:  "polling message",
			frame: "10",
			want:  FrameParts{Source: 1, Destination: 0},
		},
		{
			name:  "short operand tokens",
			frame: "1f:82:1:0",
			want:  FrameParts{Source: 1, Destination: 0xF, HasOpcode: true, Opcode: OpActiveSource, Operands: []byte{0x01, 0x00}},
		},
		{name: "empty", frame: "", wantErr: true},
		{name: "short header", frame: "1:44", wantErr: true},
		{name: "bad hex", frame: "1g:44", wantErr: true},
		{name: "long token", frame: "14:444", wantErr: true},
		{name: "empty token", frame: "14::41", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame(tt.frame)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrame) {
					t.Fatalf("ParseFrame(%q) error = %v, want ErrInvalidFrame", tt.frame, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrame(%q) unexpected error: %v", tt.frame, err)
			}
			if got.Source != tt.want.Source || got.Destination != tt.want.Destination ||
				got.HasOpcode != tt.want.HasOpcode || got.Opcode != tt.want.Opcode {
				t.Errorf("ParseFrame(%q) = %+v, want %+v", tt.frame, got, tt.want)
			}
			if string(got.Operands) != string(tt.want.Operands) {
				t.Errorf("ParseFrame(%q) operands = %v, want %v", tt.frame, got.Operands, tt.want.Operands)
			}
		})
	}
}
