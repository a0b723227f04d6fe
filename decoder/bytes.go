package decoder

import (
	"encoding/binary"
	"encoding/hex"
)

// Byte field helpers shared by all decoders. Callers must supply at
// least the required number of bytes; length checks belong to Decode.

func u16le(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

func u32le(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func u16be(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// signedByte converts an unsigned byte (0-255) to signed (-128 to 127).
func signedByte(b byte) int {
	if b > 127 {
		return int(b) - 256
	}
	return int(b)
}

// scaledInt converts a raw integer field to its physical value, e.g.
// tenths-of-volt, tenths-of-psi or hundredths-of-degree fields.
func scaledInt(raw int, divisor float64) float64 {
	return float64(raw) / divisor
}

// hexOf renders a payload as lowercase hex, two digits per byte.
func hexOf(data []byte) string {
	return hex.EncodeToString(data)
}
