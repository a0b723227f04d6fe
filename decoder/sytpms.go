package decoder

import "strings"

// SYTPMS decodes the 6-byte SYTPMS sensors. They advertise a name
// containing "TPMS" ("TPMS", "SY-TPMS") and service UUID 0xfbb0.
//
// Payload layout: TT PP PP BB SS CC
//
//	TT:   temperature, degC with +40 offset
//	PPPP: pressure, kPa gauge, big-endian
//	BB:   battery, 1/10 V
//	SS:   status flags
//	CC:   XOR checksum of the preceding five bytes
//
// The XOR checksum is trusted: a mismatch still produces a Reading,
// flagged Valid=false, since marginal RF legitimately corrupts the
// occasional packet and an approximately-correct reading beats none.
type SYTPMS struct{}

func (SYTPMS) Name() string { return "SYTPMS-6byte" }

func (SYTPMS) Manufacturer() string { return "SYTPMS" }

func (SYTPMS) Matches(adv Advertisement) bool {
	if strings.Contains(strings.ToUpper(adv.LocalName), "TPMS") && len(adv.PrimaryPayload()) == 6 {
		return true
	}
	return adv.hasServiceUUID("fbb0")
}

func (d SYTPMS) Decode(data []byte) (Reading, bool) {
	if len(data) < 6 {
		return Reading{}, false
	}
	valid := data[0]^data[1]^data[2]^data[3]^data[4] == data[5]
	bar, psi := gaugeFromKilopascals(float64(u16be(data[1:3])))
	return Reading{
		Status:             int(data[4]),
		Battery:            scaledInt(int(data[3]), 10),
		BatteryKind:        BatteryVolts,
		TemperatureCelsius: float64(int(data[0]) - 40),
		PressureBar:        bar,
		PressurePSI:        psi,
		HexPacket:          hexOf(data),
		Decoder:            d.Name(),
		Valid:              valid,
	}, true
}
