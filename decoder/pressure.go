package decoder

// Pressure conversion constants.
const (
	atmospherePSI = 14.5        // atmospheric baseline in PSI
	barPerPSI     = 0.0689476   // 1 PSI in bar
	psiPerBar     = 14.5038     // 1 bar in PSI
	psiPerPascal  = 0.000145038 // 1 Pa in PSI
	barPerPascal  = 0.00001     // 1 Pa in bar
)

// Every decoder reports pressure through one of the conversions below,
// so both PressureBar and PressurePSI always derive from the same raw
// measurement and display code never needs per-decoder unit knowledge.
// All outputs are gauge (0 = atmospheric).

// gaugeFromPascals converts a raw pascal field to gauge bar and PSI.
// The 16-byte sensors were observed to report gauge pressure directly
// (an unpressurized sensor reads 0), so no atmosphere is subtracted
// here. An earlier protocol writeup claimed absolute; if that turns out
// to be right for some hardware revision, this function is the only
// place to change.
func gaugeFromPascals(pa uint32) (bar, psi float64) {
	return float64(pa) * barPerPascal, float64(pa) * psiPerPascal
}

// gaugeFromAbsolutePSI converts an absolute PSI reading to gauge bar
// and PSI by subtracting the atmospheric baseline.
func gaugeFromAbsolutePSI(abs float64) (bar, psi float64) {
	psi = abs - atmospherePSI
	return psi * barPerPSI, psi
}

// gaugeFromKilopascals converts a gauge kPa reading to bar and PSI.
func gaugeFromKilopascals(kpa float64) (bar, psi float64) {
	bar = kpa / 100.0
	return bar, bar * psiPerBar
}
