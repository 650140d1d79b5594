package cec

import (
	"errors"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces", "Volume Up", "volume_up"},
		{"slash", "Select A/V Input Function", "select_a_v_input_function"},
		{"parentheses", "F1 (Blue)", "f1_blue"},
		{"hyphen kept", "Right-Up", "right-up"},
		{"digit", "5", "5"},
		{"already sanitized", "volume_up", "volume_up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	for code := range buttonCount {
		label := ButtonCode(code).Label()
		once := SanitizeName(label)
		if twice := SanitizeName(once); twice != once {
			t.Errorf("SanitizeName not idempotent for %q: %q then %q", label, once, twice)
		}
	}
}

func TestCodeForNameRoundTrip(t *testing.T) {
	for code := range buttonCount {
		b := ButtonCode(code)
		if got := CodeForName(SanitizeName(b.Label())); got != b.Hex() {
			t.Errorf("CodeForName(SanitizeName(%q)) = %q, want %q", b.Label(), got, b.Hex())
		}
	}
}

func TestCodeForName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"select", "00"},
		{"volume_up", "41"},
		{"5", "25"},
		{"f1_blue", "71"},
		{"data", "76"},
		{"reserved_0x7f", "7f"},
		{"not_a_button", "not_a_button"},
		{"41", "41"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CodeForName(tt.input); got != tt.want {
				t.Errorf("CodeForName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNameForCode(t *testing.T) {
	if got, ok := NameForCode("41"); !ok || got != "Volume Up" {
		t.Errorf("NameForCode(41) = %q, %v", got, ok)
	}
	if got, ok := NameForCode("0x09"); !ok || got != "Root Menu" {
		t.Errorf("NameForCode(0x09) = %q, %v", got, ok)
	}
	if _, ok := NameForCode("80"); ok {
		t.Error("NameForCode(80) should fail")
	}
	if _, ok := NameForCode("zz"); ok {
		t.Error("NameForCode(zz) should fail")
	}
}

func TestResolveButton(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ButtonCode
		wantErr bool
	}{
		{"sanitized name", "volume_up", ButtonVolumeUp, false},
		{"raw label", "Volume Up", ButtonVolumeUp, false},
		{"digit name wins over hex", "5", 0x25, false},
		{"two digit hex", "41", 0x41, false},
		{"prefixed hex", "0x44", ButtonPlay, false},
		{"single hex letter", "d", ButtonExit, false},
		{"out of range", "ff", 0, true},
		{"garbage", "launch_rockets", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveButton(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("ResolveButton(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveButton(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveButton(%q) = 0x%02x, want 0x%02x", tt.input, got, tt.want)
			}
		})
	}
}

func TestButtons(t *testing.T) {
	table := Buttons()
	if len(table) != buttonCount {
		t.Fatalf("Buttons() has %d entries, want %d", len(table), buttonCount)
	}
	for code, want := range map[string]string{"41": "Volume Up", "43": "Mute", "71": "F1 (Blue)", "7f": "Reserved 0x7F"} {
		if table[code] != want {
			t.Errorf("Buttons()[%s] = %q, want %q", code, table[code], want)
		}
	}
	if _, ok := table["volume_up"]; ok {
		t.Error("Buttons() keyed by name, want keyed by code")
	}

	list := ButtonList()
	if len(list) != buttonCount {
		t.Fatalf("ButtonList() has %d entries, want %d", len(list), buttonCount)
	}
	for i, entry := range list {
		if int(entry.Code) != i {
			t.Fatalf("ButtonList()[%d].Code = 0x%02x, want ordered", i, entry.Code)
		}
		if entry.Name != SanitizeName(entry.Label) || CodeForName(entry.Name) != entry.Hex {
			t.Errorf("ButtonList()[%d] = %+v, name does not resolve back to code", i, entry)
		}
	}
}
