// Package scanner supplies raw BLE advertisements to the decoding core
// using the host Bluetooth adapter.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/julianjc84/TPMS/csvlog"
	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/store"
)

// knownServiceUUIDs are the 16-bit service UUIDs the decoders identify
// sensors by. The advertisement payload only answers membership
// queries, so conversion probes this fixed list.
var knownServiceUUIDs = []uint16{
	0x27A5, // BR sensors
	0xFBB0, // SYTPMS sensors
}

// Scanner wraps the BLE adapter for the two modes the monitor needs:
// device discovery and continuous monitoring of selected sensors.
type Scanner struct {
	adapter  *bluetooth.Adapter
	registry *decoder.Registry
	store    *store.Store
	csv      *csvlog.Logger // nil when CSV logging is disabled
	dedup    time.Duration
	logger   *zap.Logger

	enableOnce sync.Once
	enableErr  error

	mu         sync.Mutex
	lastUpdate map[string]time.Time
}

// New creates a scanner on the default adapter.
func New(registry *decoder.Registry, st *store.Store, csv *csvlog.Logger, dedup time.Duration, logger *zap.Logger) *Scanner {
	return &Scanner{
		adapter:    bluetooth.DefaultAdapter,
		registry:   registry,
		store:      st,
		csv:        csv,
		dedup:      dedup,
		logger:     logger,
		lastUpdate: make(map[string]time.Time),
	}
}

// enable turns the BLE stack on once; the adapter rejects repeated
// Enable calls on some platforms.
func (s *Scanner) enable() error {
	s.enableOnce.Do(func() {
		s.logger.Info("initializing BLE adapter")
		s.enableErr = s.adapter.Enable()
	})
	if s.enableErr != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w", s.enableErr)
	}
	return nil
}

// advertisementFrom converts a scan result into the decoder's view of
// the broadcast. Payload bytes are copied: the adapter may reuse its
// buffers after the callback returns.
func advertisementFrom(result bluetooth.ScanResult) decoder.Advertisement {
	var mfdata map[uint16][]byte
	for _, el := range result.ManufacturerData() {
		if mfdata == nil {
			mfdata = make(map[uint16][]byte)
		}
		data := make([]byte, len(el.Data))
		copy(data, el.Data)
		mfdata[el.CompanyID] = data
	}

	var uuids []string
	for _, id := range knownServiceUUIDs {
		if result.HasServiceUUID(bluetooth.New16BitUUID(id)) {
			uuids = append(uuids, fmt.Sprintf("%04x", id))
		}
	}

	return decoder.Advertisement{
		MAC:              strings.ToUpper(result.Address.String()),
		LocalName:        result.LocalName(),
		ServiceUUIDs:     uuids,
		ManufacturerData: mfdata,
	}
}

// Device is one discovery result.
type Device struct {
	MAC     string
	Name    string
	RSSI    int16
	Decoder string // resolved decoder name, "Unknown" without manufacturer data
}

// IsTPMS reports whether a specific sensor decoder claimed the device.
func (d Device) IsTPMS() bool {
	return d.Decoder != "Unknown" && d.Decoder != "Generic"
}

// Discover scans for the given duration and returns every device seen,
// keeping the strongest signal per MAC, sorted by MAC.
func (s *Scanner) Discover(ctx context.Context, duration time.Duration) ([]Device, error) {
	if err := s.enable(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	devices := make(map[string]Device)

	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()
	go func() {
		<-scanCtx.Done()
		s.adapter.StopScan()
	}()

	err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		adv := advertisementFrom(result)

		name := adv.LocalName
		if name == "" {
			name = "Unknown"
		}
		decoderName := "Unknown"
		if len(adv.ManufacturerData) > 0 {
			decoderName = s.registry.Resolve(adv).Name()
		}

		mu.Lock()
		if d, seen := devices[adv.MAC]; !seen || result.RSSI > d.RSSI {
			devices[adv.MAC] = Device{
				MAC:     adv.MAC,
				Name:    name,
				RSSI:    result.RSSI,
				Decoder: decoderName,
			}
		}
		mu.Unlock()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start BLE scan: %w", err)
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })

	s.logger.Info("discovery finished", zap.Int("device_count", len(out)))
	return out, nil
}

// Monitor scans until the context is cancelled, decoding advertisements
// from the monitored MACs and upserting the latest reading per sensor.
// An empty MAC set monitors everything.
func (s *Scanner) Monitor(ctx context.Context, macs map[string]bool) error {
	if err := s.enable(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.adapter.StopScan()
	}()

	s.logger.Info("starting BLE scan", zap.Int("sensor_count", len(macs)))

	err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		mac := strings.ToUpper(result.Address.String())
		if len(macs) > 0 && !macs[mac] {
			return
		}

		adv := advertisementFrom(result)
		if len(adv.ManufacturerData) == 0 {
			return
		}
		now := time.Now()
		if !s.passDedup(mac, now) {
			return
		}

		reading, ok := s.registry.Decode(adv)
		if !ok {
			s.logger.Debug("payload too short to decode",
				zap.String("mac", mac),
				zap.Int("payload_len", len(adv.PrimaryPayload())),
			)
			return
		}

		s.markUpdate(mac, now)
		s.store.Upsert(mac, reading, now)

		if !reading.Valid {
			s.logger.Warn("checksum mismatch",
				zap.String("mac", mac),
				zap.String("hex", reading.HexPacket),
				zap.String("decoder", reading.Decoder),
			)
		}
		s.logger.Debug("sensor_reading",
			zap.String("mac", mac),
			zap.String("decoder", reading.Decoder),
			zap.Float64("pressure_bar", reading.PressureBar),
			zap.Float64("pressure_psi", reading.PressurePSI),
			zap.Float64("temperature_celsius", reading.TemperatureCelsius),
			zap.String("battery", reading.BatteryString()),
			zap.Bool("valid", reading.Valid),
		)

		if s.csv != nil {
			if entry, found := s.store.Get(mac); found {
				if err := s.csv.Append(entry); err != nil {
					s.logger.Warn("csv append failed", zap.String("mac", mac), zap.Error(err))
				}
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start BLE scan: %w", err)
	}

	s.logger.Info("BLE scan stopped")
	return nil
}

// passDedup rate-limits store updates to one per MAC per dedup
// interval; BLE sensors repeat the same advertisement many times per
// second. It only checks the window; markUpdate records it after a
// successful decode, so an undecodable payload does not consume the
// MAC's window.
func (s *Scanner) passDedup(mac string, now time.Time) bool {
	if s.dedup <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastUpdate[mac]
	return !ok || now.Sub(last) >= s.dedup
}

// markUpdate records that mac's reading was stored at now.
func (s *Scanner) markUpdate(mac string, now time.Time) {
	if s.dedup <= 0 {
		return
	}
	s.mu.Lock()
	s.lastUpdate[mac] = now
	s.mu.Unlock()
}
