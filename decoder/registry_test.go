package decoder

import "testing"

func advTPMS16() Advertisement {
	return Advertisement{
		MAC:       "80:EA:CA:10:8E:36",
		LocalName: "TPMS1_108E36",
		ManufacturerData: map[uint16][]byte{
			0x0100: make([]byte, 16),
		},
	}
}

func advBR() Advertisement {
	return Advertisement{
		MAC:          "C0:00:00:00:00:01",
		LocalName:    "BR",
		ServiceUUIDs: []string{"27a5"},
		ManufacturerData: map[uint16][]byte{
			0x0001: {0x28, 0x1D, 0x13, 0x01, 0x05, 0xA3, 0x76},
		},
	}
}

func advSYTPMS() Advertisement {
	return Advertisement{
		MAC:       "C0:00:00:00:00:02",
		LocalName: "SY-TPMS",
		ManufacturerData: map[uint16][]byte{
			0x00AC: {0x41, 0x00, 0xC8, 0x1E, 0x00, 0x97},
		},
	}
}

func advUnknown() Advertisement {
	return Advertisement{
		MAC:       "C0:00:00:00:00:03",
		LocalName: "Unknown",
		ManufacturerData: map[uint16][]byte{
			0xFFFF: {0x19, 0x1D, 0x01, 0x20},
		},
	}
}

func TestResolve_EachDecoderMatchesItsOwnAdvertisement(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		adv  Advertisement
		want string
	}{
		{advTPMS16(), "TPMS3-16byte"},
		{advBR(), "BR-7byte"},
		{advSYTPMS(), "SYTPMS-6byte"},
		{advUnknown(), "Generic"},
	}
	for _, tt := range tests {
		if got := registry.Resolve(tt.adv).Name(); got != tt.want {
			t.Errorf("Resolve(%s): expected %s, got %s", tt.adv.LocalName, tt.want, got)
		}
	}
}

func TestResolve_BRByServiceUUIDOnly(t *testing.T) {
	adv := advBR()
	adv.LocalName = ""

	registry := NewRegistry()
	if got := registry.Resolve(adv).Name(); got != "BR-7byte" {
		t.Errorf("Expected BR-7byte via UUID 27a5, got %s", got)
	}
}

func TestResolve_TPMS16ByCompanyIDOnly(t *testing.T) {
	adv := advTPMS16()
	adv.LocalName = ""

	registry := NewRegistry()
	if got := registry.Resolve(adv).Name(); got != "TPMS3-16byte" {
		t.Errorf("Expected TPMS3-16byte via company ID 0x0100, got %s", got)
	}
}

func TestResolve_FallbackOnlyWhenNothingSpecificMatches(t *testing.T) {
	registry := NewRegistry()

	// No name, no UUIDs, no known company ID, payload length matching
	// no specific decoder: only the fallback may claim it.
	adv := Advertisement{
		MAC:              "C0:00:00:00:00:04",
		ManufacturerData: map[uint16][]byte{0x1234: make([]byte, 9)},
	}
	if got := registry.Resolve(adv).Name(); got != "Generic" {
		t.Errorf("Expected Generic fallback, got %s", got)
	}

	// A BR advertisement must never fall through to the fallback.
	if got := registry.Resolve(advBR()).Name(); got == "Generic" {
		t.Error("Expected a specific decoder for a BR advertisement")
	}
}

func TestRegistryDecode(t *testing.T) {
	registry := NewRegistry()

	r, ok := registry.Decode(advBR())
	if !ok {
		t.Fatal("Expected a reading, got none")
	}
	if r.Decoder != "BR-7byte" {
		t.Errorf("Expected decoder BR-7byte, got %s", r.Decoder)
	}

	// Payload too short even for the fallback: no reading, no panic.
	short := Advertisement{
		MAC:              "C0:00:00:00:00:05",
		ManufacturerData: map[uint16][]byte{0x1234: {0x01, 0x02}},
	}
	if _, ok := registry.Decode(short); ok {
		t.Error("Expected no reading for a 2-byte payload")
	}
}

func TestRegistryDecode_PrefersCompanyIDPayload(t *testing.T) {
	// When the 0x0100 payload is present it must be decoded even if
	// other company IDs carry data.
	adv := advTPMS16()
	adv.ManufacturerData[0x0001] = []byte{0x01, 0x02, 0x03, 0x04}
	adv.ManufacturerData[0x0100] = []byte{
		0x80, 0xEA, 0xCA, 0x10, 0x8E, 0x36,
		0xD4, 0x1E, 0x03, 0x00,
		0xC4, 0x09,
		0x00, 0x00,
		0x62,
		0x00,
	}

	r, ok := NewRegistry().Decode(adv)
	if !ok {
		t.Fatal("Expected a reading, got none")
	}
	if r.TemperatureCelsius != 25.0 {
		t.Errorf("Expected the 0x0100 payload to be decoded, got temperature %v", r.TemperatureCelsius)
	}
}

func TestList_StableOrder(t *testing.T) {
	registry := NewRegistry()

	first := registry.List()
	second := registry.List()

	if len(first) != 4 {
		t.Fatalf("Expected 4 decoders, got %d", len(first))
	}
	if first[len(first)-1].Name != "Generic" {
		t.Errorf("Expected Generic to be last, got %s", first[len(first)-1].Name)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("List order changed between calls at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

// stubDecoder exercises Register: a one-off format with a fixed name.
type stubDecoder struct{ name string }

func (s stubDecoder) Name() string                 { return s.name }
func (stubDecoder) Manufacturer() string           { return "Test" }
func (stubDecoder) Matches(adv Advertisement) bool { return adv.LocalName == "STUB" }
func (stubDecoder) Decode([]byte) (Reading, bool)  { return Reading{}, false }

func TestRegister_InsertsBeforeFallback(t *testing.T) {
	registry := NewRegistry()
	registry.Register(stubDecoder{name: "Stub-1byte"})

	list := registry.List()
	if list[len(list)-1].Name != "Generic" {
		t.Errorf("Expected Generic to stay last, got %s", list[len(list)-1].Name)
	}
	if list[len(list)-2].Name != "Stub-1byte" {
		t.Errorf("Expected Stub-1byte before the fallback, got %s", list[len(list)-2].Name)
	}

	adv := Advertisement{LocalName: "STUB"}
	if got := registry.Resolve(adv).Name(); got != "Stub-1byte" {
		t.Errorf("Expected registered decoder to resolve, got %s", got)
	}
}

func TestPrimaryPayload_Deterministic(t *testing.T) {
	adv := Advertisement{
		ManufacturerData: map[uint16][]byte{
			0x00AC: {0xAC},
			0x0050: {0x50},
			0x0300: {0x03},
		},
	}
	for i := 0; i < 10; i++ {
		payload := adv.PrimaryPayload()
		if len(payload) != 1 || payload[0] != 0x50 {
			t.Fatalf("Expected lowest company ID payload 0x50, got %x", payload)
		}
	}
}
