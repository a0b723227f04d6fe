package csvlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/store"
)

func testEntry(mac string) store.Entry {
	return store.Entry{
		MAC:  mac,
		Name: "Front Left",
		LastReading: &decoder.Reading{
			Status:             0x28,
			Battery:            2.9,
			BatteryKind:        decoder.BatteryVolts,
			TemperatureCelsius: 19,
			PressureBar:        0.7998,
			PressurePSI:        11.6,
			HexPacket:          "281d130105a376",
			Decoder:            "BR-7byte",
			Valid:              true,
		},
		LastSeen: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse csv: %v", err)
	}
	return rows
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	logger := zap.NewNop()

	l, err := Open(path, logger)
	if err != nil {
		t.Fatalf("Expected open to succeed, got: %v", err)
	}

	if err := l.Append(testEntry("C0:00:00:00:00:01")); err != nil {
		t.Fatalf("Expected append to succeed, got: %v", err)
	}
	// Entries without a reading are skipped silently.
	if err := l.Append(store.Entry{MAC: "C0:00:00:00:00:02"}); err != nil {
		t.Fatalf("Expected nil-reading append to be a no-op, got: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Expected close to succeed, got: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one row, got %d rows", len(rows))
	}
	if rows[0][0] != "time" || rows[0][len(rows[0])-1] != "hex" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	row := rows[1]
	want := []string{
		"2026-08-26T12:00:00Z", "C0:00:00:00:00:01", "Front Left", "BR-7byte",
		"0.800", "11.60", "19.00", "2.9V", "0x28", "true", "281d130105a376",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("Column %d: expected %q, got %q", i, want[i], row[i])
		}
	}
}

func TestAppend_ReopenDoesNotDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	logger := zap.NewNop()

	l, err := Open(path, logger)
	if err != nil {
		t.Fatalf("Expected open to succeed, got: %v", err)
	}
	l.Append(testEntry("C0:00:00:00:00:01"))
	l.Close()

	l, err = Open(path, logger)
	if err != nil {
		t.Fatalf("Expected reopen to succeed, got: %v", err)
	}
	l.Append(testEntry("C0:00:00:00:00:01"))
	l.Close()

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("Expected header plus two rows, got %d rows", len(rows))
	}
	if rows[2][0] == "time" {
		t.Error("Expected no duplicate header after reopen")
	}
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	logger := zap.NewNop()

	l, err := Open(path, logger)
	if err != nil {
		t.Fatalf("Expected open to succeed, got: %v", err)
	}

	entries := []store.Entry{
		testEntry("C0:00:00:00:00:01"),
		{MAC: "C0:00:00:00:00:02"}, // pre-seeded, no data yet
		testEntry("C0:00:00:00:00:03"),
	}
	if err := l.Snapshot(entries); err != nil {
		t.Fatalf("Expected snapshot to succeed, got: %v", err)
	}
	l.Close()

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("Expected header plus two rows (one entry had no data), got %d", len(rows))
	}
}

func TestStartSnapshots_InvalidSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	logger := zap.NewNop()

	l, err := Open(path, logger)
	if err != nil {
		t.Fatalf("Expected open to succeed, got: %v", err)
	}
	defer l.Close()

	if _, err := StartSnapshots("not a cron spec", store.New(), l, logger); err == nil {
		t.Error("Expected error for invalid cron spec")
	}

	c, err := StartSnapshots("@every 1h", store.New(), l, logger)
	if err != nil {
		t.Fatalf("Expected valid spec to start, got: %v", err)
	}
	c.Stop()
}
