// Package csvlog appends decoded readings to a CSV file and can take
// cron-scheduled snapshots of the whole sensor table.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/julianjc84/TPMS/store"
)

var header = []string{
	"time", "mac", "name", "decoder",
	"pressure_bar", "pressure_psi", "temperature_c",
	"battery", "status", "valid", "hex",
}

// Logger appends sensor readings to a CSV file. Safe for concurrent
// use from the scan callback and the snapshot scheduler.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	w   *csv.Writer
	log *zap.Logger
}

// Open opens (or creates) the CSV file in append mode, writing the
// header row for a new file.
func Open(path string, logger *zap.Logger) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open csv log %s", path)
	}

	l := &Logger{f: f, w: csv.NewWriter(f), log: logger}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat csv log")
	}
	if info.Size() == 0 {
		if err := l.w.Write(header); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "failed to write csv header")
		}
		l.w.Flush()
	}

	return l, nil
}

// Append writes one row for the entry's latest reading. Entries without
// a reading yet are skipped.
func (l *Logger) Append(e store.Entry) error {
	if e.LastReading == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Write(row(e)); err != nil {
		return errors.Wrap(err, "failed to write csv row")
	}
	l.w.Flush()
	return errors.Wrap(l.w.Error(), "failed to flush csv log")
}

// Snapshot writes one row per entry that has a reading.
func (l *Logger) Snapshot(entries []store.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		if e.LastReading == nil {
			continue
		}
		if err := l.w.Write(row(e)); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	l.w.Flush()
	return errors.Wrap(l.w.Error(), "failed to flush csv log")
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.f.Close()
}

func row(e store.Entry) []string {
	r := e.LastReading
	status := ""
	if r.Status >= 0 {
		status = fmt.Sprintf("0x%02x", r.Status)
	}
	return []string{
		e.LastSeen.UTC().Format(time.RFC3339),
		e.MAC,
		e.Name,
		r.Decoder,
		fmt.Sprintf("%.3f", r.PressureBar),
		fmt.Sprintf("%.2f", r.PressurePSI),
		fmt.Sprintf("%.2f", r.TemperatureCelsius),
		r.BatteryString(),
		status,
		fmt.Sprintf("%t", r.Valid),
		r.HexPacket,
	}
}

// StartSnapshots schedules periodic full-table snapshot rows. The spec
// uses cron syntax, e.g. "@every 1m". The returned cron is already
// started; callers stop it on shutdown.
func StartSnapshots(spec string, st *store.Store, l *Logger, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := l.Snapshot(st.All()); err != nil {
			logger.Warn("csv snapshot failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid snapshot schedule %q", spec)
	}
	c.Start()
	logger.Info("csv snapshot scheduler started", zap.String("spec", spec))
	return c, nil
}
