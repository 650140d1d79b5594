package cec

import (
	"fmt"
	"strconv"
	"strings"
)

// ButtonCode is a CEC user-control code (operand of <User Control Pressed>).
type ButtonCode uint8

// Commonly used button codes.
const (
	ButtonSelect     ButtonCode = 0x00
	ButtonUp         ButtonCode = 0x01
	ButtonDown       ButtonCode = 0x02
	ButtonLeft       ButtonCode = 0x03
	ButtonRight      ButtonCode = 0x04
	ButtonRootMenu   ButtonCode = 0x09
	ButtonExit       ButtonCode = 0x0D
	ButtonPower      ButtonCode = 0x40
	ButtonVolumeUp   ButtonCode = 0x41
	ButtonVolumeDown ButtonCode = 0x42
	ButtonMute       ButtonCode = 0x43
	ButtonPlay       ButtonCode = 0x44
	ButtonStop       ButtonCode = 0x45
	ButtonPause      ButtonCode = 0x46
)

// buttonCount covers the whole 7-bit user-control code space.
const buttonCount = 0x80

// buttonLabels holds the human-readable label for every code 0x00-0x76.
// Codes past the end of this list are labelled "Reserved 0xNN".
var buttonLabels = []string{
	"Select", "Up", "Down", "Left", "Right", "Right-Up", "Right-Down", "Left-Up",
	"Left-Down", "Root Menu", "Setup Menu", "Contents Menu", "Favorite Menu", "Exit",
	"Reserved 0x0E", "Reserved 0x0F", "Reserved 0x10", "Reserved 0x11", "Reserved 0x12",
	"Reserved 0x13", "Reserved 0x14", "Reserved 0x15", "Reserved 0x16", "Reserved 0x17",
	"Reserved 0x18", "Reserved 0x19", "Reserved 0x1A", "Reserved 0x1B", "Reserved 0x1C",
	"Reserved 0x1D", "Reserved 0x1E", "Reserved 0x1F",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"Dot", "Enter", "Clear", "Reserved 0x2D", "Reserved 0x2E", "Next Favorite",
	"Channel Up", "Channel Down", "Previous Channel", "Sound Select", "Input Select",
	"Display Information", "Help", "Page Up", "Page Down",
	"Reserved 0x39", "Reserved 0x3A", "Reserved 0x3B", "Reserved 0x3C", "Reserved 0x3D",
	"Reserved 0x3E", "Reserved 0x3F",
	"Power", "Volume Up", "Volume Down", "Mute", "Play", "Stop", "Pause", "Record",
	"Rewind", "Fast Forward", "Eject", "Forward", "Backward", "Stop-Record", "Pause-Record",
	"Reserved 0x4F", "Angle", "Sub Picture", "Video On Demand", "Electronic program Guide",
	"Timer programming", "Initial Configuration",
	"Reserved 0x56", "Reserved 0x57", "Reserved 0x58", "Reserved 0x59", "Reserved 0x5A",
	"Reserved 0x5B", "Reserved 0x5C", "Reserved 0x5D", "Reserved 0x5E", "Reserved 0x5F",
	"Play Function", "Pause-Play Function", "Record Function", "Pause-Record Function",
	"Stop Function", "Mute Function", "Restore Volume Function", "Tune Function",
	"Select media Function", "Select A/V Input Function", "Select Audio input Function",
	"Power Toggle Function", "Power Off Function", "Power On Function",
	"Reserved 0x6E", "Reserved 0x6F", "Reserved 0x70",
	"F1 (Blue)", "F2 (Red)", "F3 (Green)", "F4 (Yellow)", "F5", "Data",
}

// Lookup tables built once at package init and read-only afterwards.
var (
	labelsByCode [buttonCount]string
	codesByName  map[string]ButtonCode
)

func init() {
	codesByName = make(map[string]ButtonCode, buttonCount)
	for i := range buttonCount {
		label := fmt.Sprintf("Reserved 0x%02X", i)
		if i < len(buttonLabels) {
			label = buttonLabels[i]
		}
		labelsByCode[i] = label

		key := SanitizeName(label)
		if prev, dup := codesByName[key]; dup {
			panic(fmt.Sprintf("cec: button name %q maps to both 0x%02x and 0x%02x", key, prev, i))
		}
		codesByName[key] = ButtonCode(i)
	}
}

// Hex renders the code as two lowercase hex digits, the form used in frames.
func (b ButtonCode) Hex() string {
	return fmt.Sprintf("%02x", uint8(b))
}

// Label returns the human-readable label for the code.
func (b ButtonCode) Label() string {
	if int(b) >= buttonCount {
		return fmt.Sprintf("Unknown 0x%02X", uint8(b))
	}
	return labelsByCode[b]
}

// String implements fmt.Stringer.
func (b ButtonCode) String() string {
	return b.Label()
}

// SanitizeName turns a button label into its lookup key: spaces and slashes
// become underscores, parentheses are removed, and the result is lowercased.
// SanitizeName is idempotent.
func SanitizeName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "(", "", ")", "")
	return strings.ToLower(r.Replace(name))
}

// CodeForName returns the two-hex-digit code for a sanitized button name.
// Input that is not a known name is returned unchanged.
func CodeForName(name string) string {
	if code, ok := codesByName[name]; ok {
		return code.Hex()
	}
	return name
}

// NameForCode returns the label for a hex code such as "41" or "0x41".
func NameForCode(code string) (string, bool) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(code), "0x"), 16, 8)
	if err != nil || v >= buttonCount {
		return "", false
	}
	return labelsByCode[v], true
}

// ResolveButton turns a button name or hex code into a ButtonCode.
//
// Sanitized names are tried first, so "5" resolves to the digit key 0x25
// rather than to the code 0x05. Anything else must be one or two hex
// digits (optionally prefixed with 0x) within the 7-bit code space.
func ResolveButton(button string) (ButtonCode, error) {
	key := SanitizeName(strings.TrimSpace(button))
	if code, ok := codesByName[key]; ok {
		return code, nil
	}

	digits := strings.TrimPrefix(key, "0x")
	if len(digits) == 0 || len(digits) > 2 {
		return 0, fmt.Errorf("%w: unknown button %q", ErrInvalidArgument, button)
	}
	v, err := strconv.ParseUint(digits, 16, 8)
	if err != nil || v >= buttonCount {
		return 0, fmt.Errorf("%w: unknown button %q", ErrInvalidArgument, button)
	}
	return ButtonCode(v), nil
}

// ButtonEntry is one row of the button table.
type ButtonEntry struct {
	Code  ButtonCode `json:"-"`
	Hex   string     `json:"code"`
	Label string     `json:"label"`
	Name  string     `json:"name"`
}

// ButtonList returns every button ordered by code.
func ButtonList() []ButtonEntry {
	out := make([]ButtonEntry, 0, buttonCount)
	for i, label := range labelsByCode {
		code := ButtonCode(i)
		out = append(out, ButtonEntry{Code: code, Hex: code.Hex(), Label: label, Name: SanitizeName(label)})
	}
	return out
}

// Buttons returns the code to label table, e.g. "41": "Volume Up".
func Buttons() map[string]string {
	list := ButtonList()
	out := make(map[string]string, len(list))
	for _, b := range list {
		out[b.Hex] = b.Label
	}
	return out
}
