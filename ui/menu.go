package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/julianjc84/TPMS/config"
	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/scanner"
	"github.com/julianjc84/TPMS/store"
)

// clearScreen is the ANSI clear + home sequence used between renders.
const clearScreen = "\033[2J\033[H"

// BLEScanner is the subset of the scanner the menu drives.
type BLEScanner interface {
	Discover(ctx context.Context, duration time.Duration) ([]scanner.Device, error)
	Monitor(ctx context.Context, macs map[string]bool) error
}

// Menu drives the interactive terminal session: discovery, sensor
// selection, live monitoring and sensor management.
type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	cfg      *config.Config
	cfgPath  string
	registry *decoder.Registry
	store    *store.Store
	scan     BLEScanner
	logger   *zap.Logger
}

// New creates the menu. in and out are split out for tests.
func New(in io.Reader, out io.Writer, cfg *config.Config, cfgPath string,
	registry *decoder.Registry, st *store.Store, scan BLEScanner, logger *zap.Logger) *Menu {
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		cfg:      cfg,
		cfgPath:  cfgPath,
		registry: registry,
		store:    st,
		scan:     scan,
		logger:   logger,
	}
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// readLine returns the next trimmed input line, or false on EOF.
func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) prompt(msg string) (string, bool) {
	m.printf("%s", warnStyle.Render(msg))
	return m.readLine()
}

// Run loops the main menu until the user quits or the context ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m.printf("%s", clearScreen)
		m.printf("%s\n\n", titleStyle.Render("BLE TPMS Monitor"))

		m.printConfiguredSensors()

		m.printf("\n%s\n", headerStyle.Render("Options:"))
		m.printf("  1 - Discover and select sensors\n")
		m.printf("  2 - Start monitoring\n")
		m.printf("  3 - Remove a sensor\n")
		m.printf("  4 - Clear all sensors\n")
		m.printf("  5 - List available decoders\n")
		m.printf("  q - Quit\n")

		choice, ok := m.prompt("\nSelect option: ")
		if !ok {
			return nil
		}

		switch strings.ToLower(choice) {
		case "1":
			m.discoverAndSelect(ctx)
		case "2":
			m.monitor(ctx)
		case "3":
			m.removeSensor()
		case "4":
			m.clearSensors()
		case "5":
			m.printf("\n%s", RenderDecoders(m.registry.List()))
			m.pause()
		case "q":
			m.printf("\nGoodbye!\n")
			return nil
		}
	}
}

func (m *Menu) pause() {
	m.printf("%s", dimStyle.Render("\nPress Enter to continue..."))
	m.readLine()
}

func (m *Menu) printConfiguredSensors() {
	m.printf("%s\n", headerStyle.Render("Configured Sensors:"))
	if len(m.cfg.Sensors) == 0 {
		m.printf("  %s\n", warnStyle.Render("None - use option 1 to discover"))
		return
	}
	for _, s := range m.cfg.Sensors {
		m.printf("  %s %-20s (%s)\n", okStyle.Render("*"), s.Name, s.MACAddress)
	}
}

func (m *Menu) saveConfig() {
	if err := m.cfg.Save(m.cfgPath); err != nil {
		m.logger.Error("failed to save configuration", zap.Error(err))
		m.printf("%s\n", alarmStyle.Render(fmt.Sprintf("Could not save config: %v", err)))
		return
	}
	m.printf("%s\n", okStyle.Render(fmt.Sprintf("Configuration saved to %s", m.cfgPath)))
}

// discoverAndSelect runs one discovery scan and lets the user pick
// sensors to monitor, assigning friendly names.
func (m *Menu) discoverAndSelect(ctx context.Context) {
	duration := time.Duration(m.cfg.Scan.DiscoverSeconds) * time.Second
	m.printf("\n%s\n", warnStyle.Render(fmt.Sprintf("Scanning for BLE devices (%ds)...", m.cfg.Scan.DiscoverSeconds)))

	devices, err := m.scan.Discover(ctx, duration)
	if err != nil {
		m.logger.Error("BLE scan failed", zap.Error(err))
		m.printf("%s\n", alarmStyle.Render(fmt.Sprintf("BLE scan failed: %v", err)))
		m.printf("%s\n", dimStyle.Render("Check that Bluetooth is enabled."))
		m.pause()
		return
	}
	if len(devices) == 0 {
		m.printf("%s\n", alarmStyle.Render("No devices found. Make sure Bluetooth is enabled."))
		m.pause()
		return
	}

	m.printf("%s\n\n", okStyle.Render(fmt.Sprintf("Found %d device(s)", len(devices))))
	m.printf("%s\n", RenderDevices(devices))

	m.printf("\n%s\n", headerStyle.Render("Select sensors to monitor:"))
	m.printf("  Enter numbers separated by spaces (e.g., '1 2 3')\n")
	m.printf("  Enter 'a' to auto-select all detected TPMS devices\n")
	m.printf("  Enter 'q' to skip\n")

	choice, ok := m.prompt("\nYour selection: ")
	if !ok || choice == "" || strings.EqualFold(choice, "q") {
		return
	}

	var indices []int
	if strings.EqualFold(choice, "a") {
		for i, d := range devices {
			if d.IsTPMS() {
				indices = append(indices, i+1)
			}
		}
		if len(indices) == 0 {
			m.printf("%s\n", warnStyle.Render("No TPMS sensors detected."))
			m.pause()
			return
		}
	} else {
		for _, field := range strings.Fields(choice) {
			idx, err := strconv.Atoi(field)
			if err != nil {
				m.printf("%s\n", alarmStyle.Render("Invalid input."))
				m.pause()
				return
			}
			indices = append(indices, idx)
		}
	}

	added := false
	for _, idx := range indices {
		if idx < 1 || idx > len(devices) {
			m.printf("%s\n", alarmStyle.Render(fmt.Sprintf("#%d out of range, skipping.", idx)))
			continue
		}
		d := devices[idx-1]
		defaultName := fmt.Sprintf("Sensor %d", len(m.cfg.Sensors)+1)
		name, ok := m.prompt(fmt.Sprintf("Name for %s [%s]: ", d.MAC, defaultName))
		if !ok {
			break
		}
		if name == "" {
			name = defaultName
		}
		m.cfg.AddSensor(d.MAC, name)
		m.store.SetName(d.MAC, name)
		added = true
		m.printf("%s\n", okStyle.Render(fmt.Sprintf("Added: %s (%s)", name, d.MAC)))
	}

	if added {
		m.saveConfig()
	}
	m.pause()
}

// monitor renders the live table until the user presses Enter.
func (m *Menu) monitor(ctx context.Context) {
	if len(m.cfg.Sensors) == 0 {
		m.printf("\n%s\n", alarmStyle.Render("No sensors configured. Use option 1 first."))
		m.pause()
		return
	}

	macs := make(map[string]bool, len(m.cfg.Sensors))
	for _, s := range m.cfg.Sensors {
		macs[strings.ToUpper(s.MACAddress)] = true
	}

	monCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanErr := make(chan error, 1)
	go func() {
		scanErr <- m.scan.Monitor(monCtx, macs)
	}()

	// Enter stops monitoring. bufio.Scanner is not safe for concurrent
	// use, so this goroutine owns stdin for the whole monitor session:
	// every exit path below waits on enter instead of reading again.
	enter := make(chan struct{})
	go func() {
		m.readLine()
		close(enter)
	}()

	render := func() {
		m.printf("%s", clearScreen)
		m.printf("%s", RenderTable(m.store.All(), time.Now()))
		m.printf("\n%s\n", dimStyle.Render("Press Enter to stop"))
	}
	render()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			render()
		case <-enter:
			cancel()
			<-scanErr
			m.printf("\n%s\n", warnStyle.Render("Monitoring stopped."))
			return
		case err := <-scanErr:
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				m.logger.Error("BLE scan failed", zap.Error(err))
				m.printf("\n%s\n", alarmStyle.Render(fmt.Sprintf("BLE scan failed: %v", err)))
			} else {
				m.printf("\n%s\n", warnStyle.Render("Monitoring stopped."))
			}
			m.printf("%s", dimStyle.Render("\nPress Enter to continue..."))
			<-enter
			return
		case <-ctx.Done():
			// Program shutdown: Run exits on its next iteration, so
			// the listener never races the menu prompt.
			<-scanErr
			return
		}
	}
}

func (m *Menu) removeSensor() {
	if len(m.cfg.Sensors) == 0 {
		m.printf("\n%s\n", warnStyle.Render("No sensors to remove."))
		m.pause()
		return
	}

	sensors := make([]config.SensorConfig, len(m.cfg.Sensors))
	copy(sensors, m.cfg.Sensors)
	sort.Slice(sensors, func(i, j int) bool { return sensors[i].MACAddress < sensors[j].MACAddress })

	m.printf("\n%s\n", headerStyle.Render("Select sensor to remove:"))
	for i, s := range sensors {
		m.printf("  %d. %s (%s)\n", i+1, s.Name, s.MACAddress)
	}

	raw, ok := m.prompt("\nEnter number (0 to cancel): ")
	if !ok {
		return
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx > len(sensors) {
		if raw != "0" {
			m.printf("%s\n", alarmStyle.Render("Invalid selection."))
		}
		m.pause()
		return
	}
	if idx == 0 {
		return
	}

	s := sensors[idx-1]
	m.cfg.RemoveSensor(s.MACAddress)
	m.store.Remove(strings.ToUpper(s.MACAddress))
	m.saveConfig()
	m.printf("%s\n", okStyle.Render(fmt.Sprintf("Removed: %s", s.Name)))
	m.pause()
}

func (m *Menu) clearSensors() {
	if len(m.cfg.Sensors) == 0 {
		m.printf("\n%s\n", warnStyle.Render("No sensors to clear."))
		m.pause()
		return
	}

	m.printf("\n%s", alarmStyle.Render("Clear all sensors? (yes/no): "))
	confirm, ok := m.readLine()
	if !ok || !strings.EqualFold(confirm, "yes") {
		return
	}

	m.cfg.Sensors = nil
	m.store.Clear()
	m.saveConfig()
	m.printf("%s\n", okStyle.Render("All sensors cleared."))
	m.pause()
}
