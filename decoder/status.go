package decoder

import "strings"

// StatusFlags is the 8-bit status field broadcast by the BR sensors.
// The flags are informational only; no decoding logic depends on them.
type StatusFlags uint8

const (
	FlagAlarm                    StatusFlags = 1 << 7
	FlagRotating                 StatusFlags = 1 << 6
	FlagStill                    StatusFlags = 1 << 5
	FlagBeginRotate              StatusFlags = 1 << 4
	FlagDecreasingBelowThreshold StatusFlags = 1 << 3
	FlagRising                   StatusFlags = 1 << 2
	FlagDecreasingAboveThreshold StatusFlags = 1 << 1
	// bit 0 is reserved
)

// StatusLowBattery is broadcast in place of a flag set when the sensor
// battery is critically low.
const StatusLowBattery StatusFlags = 0xFF

var statusLabels = []struct {
	mask  StatusFlags
	label string
}{
	{FlagAlarm, "ALARM"},
	{FlagRotating, "ROTAT"},
	{FlagStill, "STILL"},
	{FlagBeginRotate, "BGROT"},
	{FlagDecreasingBelowThreshold, "DECR2"},
	{FlagRising, "RISIN"},
	{FlagDecreasingAboveThreshold, "DECR1"},
}

// Labels returns space-separated display labels for the set flags,
// "LBATT" for the low-battery sentinel and "OK" when no flag is set.
func (s StatusFlags) Labels() string {
	if s == StatusLowBattery {
		return "LBATT"
	}
	var set []string
	for _, f := range statusLabels {
		if s&f.mask != 0 {
			set = append(set, f.label)
		}
	}
	if len(set) == 0 {
		return "OK"
	}
	return strings.Join(set, " ")
}
