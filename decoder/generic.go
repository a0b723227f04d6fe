package decoder

// Generic is the always-matching fallback for sensors whose byte layout
// has not been reverse-engineered. Field extraction is heuristic and
// values may be wrong; the decoder name marks such readings so the
// display can distinguish them.
type Generic struct{}

func (Generic) Name() string { return "Generic" }

func (Generic) Manufacturer() string { return "Unknown" }

// Matches always succeeds. The registry keeps Generic last so it only
// sees advertisements no specific decoder claimed.
func (Generic) Matches(Advertisement) bool { return true }

// firstWindow returns the earliest big-endian 16-bit window whose value
// falls within [lo, hi].
func firstWindow(data []byte, lo, hi int) (int, bool) {
	for i := 0; i+1 < len(data); i++ {
		if v := int(u16be(data[i : i+2])); v >= lo && v <= hi {
			return v, true
		}
	}
	return 0, false
}

func (d Generic) Decode(data []byte) (Reading, bool) {
	if len(data) < 4 {
		return Reading{}, false
	}

	// Scan consecutive big-endian 16-bit windows for a pressure-like
	// value and guess the unit by magnitude: 250-800 reads like
	// absolute tenths-of-PSI (25-80 psi), 100-250 like gauge kPa.
	// Tenths-of-PSI takes priority over kPa regardless of window
	// position, so the ranges are tried in two passes.
	var bar, psi float64
	if v, ok := firstWindow(data, 251, 799); ok {
		bar, psi = gaugeFromAbsolutePSI(scaledInt(v, 10))
	} else if v, ok := firstWindow(data, 101, 250); ok {
		bar, psi = gaugeFromKilopascals(float64(v))
	}

	// Best-effort single-byte fields.
	var temperature float64
	if data[0] < 100 {
		temperature = float64(data[0])
	}
	battery, kind := 0.0, BatteryNone
	if data[1] > 0 && data[1] < 50 {
		battery, kind = scaledInt(int(data[1]), 10), BatteryVolts
	}

	return Reading{
		Status:             int(data[0]),
		Battery:            battery,
		BatteryKind:        kind,
		TemperatureCelsius: temperature,
		PressureBar:        bar,
		PressurePSI:        psi,
		HexPacket:          hexOf(data),
		Decoder:            d.Name(),
		Valid:              true,
	}, true
}
