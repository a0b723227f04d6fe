// Package decoder identifies and decodes proprietary BLE TPMS
// advertisement payloads. Each supported wire format is handled by one
// Decoder; the Registry resolves an advertisement to the first decoder
// whose identification rule matches, falling back to a heuristic
// decoder so resolution never fails.
package decoder

import (
	"fmt"
	"sort"
	"strings"
)

// companyIDTPMS16 is the manufacturer-data company ID used by the
// 16-byte generic sensors.
const companyIDTPMS16 = 0x0100

// Advertisement carries the fields of one BLE broadcast relevant to
// sensor identification, as delivered by the scanning layer.
type Advertisement struct {
	MAC              string            // uppercase colon-separated hex
	LocalName        string            // advertised device name, may be empty
	ServiceUUIDs     []string          // advertised service UUIDs as hex strings
	ManufacturerData map[uint16][]byte // keyed by BLE company ID
}

// PrimaryPayload returns the manufacturer data payload to decode: the
// company 0x0100 payload when present, otherwise the payload of the
// lowest company ID so repeated advertisements pick deterministically.
func (a Advertisement) PrimaryPayload() []byte {
	if data, ok := a.ManufacturerData[companyIDTPMS16]; ok {
		return data
	}
	ids := make([]int, 0, len(a.ManufacturerData))
	for id := range a.ManufacturerData {
		ids = append(ids, int(id))
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Ints(ids)
	return a.ManufacturerData[uint16(ids[0])]
}

// hasServiceUUID reports whether uuid appears in the advertised service
// UUID list. Comparison is case-insensitive and also matches 16-bit
// short forms embedded in full 128-bit UUID strings.
func (a Advertisement) hasServiceUUID(uuid string) bool {
	uuid = strings.ToLower(uuid)
	for _, u := range a.ServiceUUIDs {
		if strings.Contains(strings.ToLower(u), uuid) {
			return true
		}
	}
	return false
}

// BatteryKind says which battery convention a Reading carries. Each
// protocol reports exactly one; BatteryNone appears only when the
// heuristic fallback could not determine a battery field.
type BatteryKind uint8

const (
	BatteryNone BatteryKind = iota
	BatteryVolts
	BatteryPercent
)

// NoStatus marks readings from formats that carry no status byte.
const NoStatus = -1

// Reading is one normalized measurement decoded from a single
// advertisement. Pressure is always gauge (0 = atmospheric), in both
// bar and PSI, derived from the same raw field. A Reading is never
// mutated after construction.
type Reading struct {
	Status             int     // raw status byte; NoStatus when the format has none
	Battery            float64 // volts or percent, per BatteryKind
	BatteryKind        BatteryKind
	TemperatureCelsius float64
	PressureBar        float64
	PressurePSI        float64
	HexPacket          string // raw payload, lowercase hex
	Decoder            string // name of the producing decoder
	Valid              bool   // false only when a trusted checksum failed
}

// BatteryString formats the battery field for display.
func (r Reading) BatteryString() string {
	switch r.BatteryKind {
	case BatteryVolts:
		return fmt.Sprintf("%.1fV", r.Battery)
	case BatteryPercent:
		return fmt.Sprintf("%.0f%%", r.Battery)
	default:
		return "--"
	}
}

// StatusString formats the status field for display, decoding flag
// labels for formats that carry them.
func (r Reading) StatusString() string {
	if r.Status == NoStatus {
		return "--"
	}
	return StatusFlags(r.Status).Labels()
}

// Decoder identifies and decodes exactly one sensor wire format.
// Implementations are stateless values registered once at startup;
// adding a sensor family means adding one implementation and one
// registry list entry.
type Decoder interface {
	// Name returns the unique decoder identifier, e.g. "BR-7byte".
	Name() string
	// Manufacturer returns the vendor display string.
	Manufacturer() string
	// Matches reports whether this decoder recognizes the advertisement.
	Matches(adv Advertisement) bool
	// Decode extracts a Reading from a manufacturer data payload. The
	// second return is false when the payload is too short for the
	// format; Decode never panics on short input.
	Decode(data []byte) (Reading, bool)
}
