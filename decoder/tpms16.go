package decoder

import "regexp"

// TPMS16 decodes the 16-byte generic BLE TPMS format sold under many
// brand names. Sensors advertise a name like "TPMS1_A1B2C3" (one per
// wheel position) and key their manufacturer data with company ID
// 0x0100.
//
// Payload layout (16 bytes):
//
//	0-5:   sensor address echo
//	6-9:   pressure, uint32 little-endian, pascals, gauge
//	10-11: temperature, uint16 little-endian, 1/100 degC
//	12-13: reserved
//	14:    battery percentage (0-100)
//	15:    alarm byte, not decoded
//
// The format carries no checksum, so readings are always valid.
type TPMS16 struct{}

var tpms16NamePattern = regexp.MustCompile(`^TPMS\d_`)

func (TPMS16) Name() string { return "TPMS3-16byte" }

func (TPMS16) Manufacturer() string { return "Generic BLE TPMS" }

func (TPMS16) Matches(adv Advertisement) bool {
	if tpms16NamePattern.MatchString(adv.LocalName) {
		return true
	}
	_, ok := adv.ManufacturerData[companyIDTPMS16]
	return ok
}

func (d TPMS16) Decode(data []byte) (Reading, bool) {
	if len(data) < 16 {
		return Reading{}, false
	}
	bar, psi := gaugeFromPascals(u32le(data[6:10]))
	return Reading{
		Status:             NoStatus,
		Battery:            float64(data[14]),
		BatteryKind:        BatteryPercent,
		TemperatureCelsius: scaledInt(int(u16le(data[10:12])), 100),
		PressureBar:        bar,
		PressurePSI:        psi,
		HexPacket:          hexOf(data),
		Decoder:            d.Name(),
		Valid:              true,
	}, true
}
