package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/scanner"
	"github.com/julianjc84/TPMS/store"
)

func TestRenderTable_Empty(t *testing.T) {
	out := RenderTable(nil, time.Now())
	if !strings.Contains(out, "Waiting for sensor data") {
		t.Errorf("Expected waiting message, got:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 10, 0, time.UTC)
	entries := []store.Entry{
		{
			MAC:  "C0:00:00:00:00:02",
			Name: "Front Left",
			LastReading: &decoder.Reading{
				Status:             0x28,
				Battery:            2.9,
				BatteryKind:        decoder.BatteryVolts,
				TemperatureCelsius: 19,
				PressureBar:        0.80,
				PressurePSI:        11.6,
				HexPacket:          "281d130105a376",
				Decoder:            "BR-7byte",
				Valid:              true,
			},
			LastSeen: now.Add(-3 * time.Second),
		},
		{
			MAC: "C0:00:00:00:00:01", // unnamed, pre-seeded, no data
		},
	}

	out := RenderTable(entries, now)

	if !strings.Contains(out, "Front Left") {
		t.Error("Expected friendly name in table")
	}
	if !strings.Contains(out, "0.80 bar (11.6 psi)") {
		t.Errorf("Expected formatted pressure, got:\n%s", out)
	}
	if !strings.Contains(out, "2.9V") {
		t.Error("Expected battery volts in table")
	}
	if !strings.Contains(out, "STILL DECR2") {
		t.Error("Expected decoded status flags in table")
	}
	if !strings.Contains(out, "281d130105a376") {
		t.Error("Expected hex packet in table")
	}
	if !strings.Contains(out, "3s") {
		t.Error("Expected age column in table")
	}
	if !strings.Contains(out, "no data yet") {
		t.Error("Expected placeholder row for sensor without data")
	}
}

func TestRenderTable_FlagsInvalidReading(t *testing.T) {
	now := time.Now()
	entries := []store.Entry{
		{
			MAC: "C0:00:00:00:00:01",
			LastReading: &decoder.Reading{
				Status:      0x00,
				PressureBar: 2.0,
				PressurePSI: 29.0,
				Decoder:     "SYTPMS-6byte",
				Valid:       false,
			},
			LastSeen: now,
		},
	}

	out := RenderTable(entries, now)
	if !strings.Contains(out, "OK !") {
		t.Errorf("Expected invalid reading to be flagged, got:\n%s", out)
	}
}

func TestRenderDevices(t *testing.T) {
	devices := []scanner.Device{
		{MAC: "C0:00:00:00:00:01", Name: "BR", RSSI: -60, Decoder: "BR-7byte"},
		{MAC: "C0:00:00:00:00:02", Name: "Unknown", RSSI: -80, Decoder: "Generic"},
	}

	out := RenderDevices(devices)
	if !strings.Contains(out, "Yes (BR-7byte)") {
		t.Errorf("Expected TPMS indicator, got:\n%s", out)
	}
	if !strings.Contains(out, "? (Generic)") {
		t.Errorf("Expected generic indicator, got:\n%s", out)
	}
}

func TestRenderDecoders(t *testing.T) {
	out := RenderDecoders(decoder.NewRegistry().List())
	for _, name := range []string{"TPMS3-16byte", "BR-7byte", "SYTPMS-6byte", "Generic"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected %s in listing, got:\n%s", name, out)
		}
	}
}
