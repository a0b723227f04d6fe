// Package ui renders the live sensor table and drives the interactive
// terminal menu.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/scanner"
	"github.com/julianjc84/TPMS/store"
)

// lowBatteryVolts marks a sensor coin cell as nearly dead.
const lowBatteryVolts = 2.5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	alarmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hexStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	defaultStyle = lipgloss.NewStyle()
)

// rowStyle picks the color for a sensor row: red for alarm or low
// battery, green for rotation, plain otherwise.
func rowStyle(r *decoder.Reading) lipgloss.Style {
	if r.Status != decoder.NoStatus {
		s := decoder.StatusFlags(r.Status)
		if s == decoder.StatusLowBattery || s&decoder.FlagAlarm != 0 {
			return alarmStyle
		}
		if s&decoder.FlagRotating != 0 {
			return okStyle
		}
	}
	if r.BatteryKind == decoder.BatteryVolts && r.Battery < lowBatteryVolts {
		return alarmStyle
	}
	return defaultStyle
}

// displayName returns the friendly name, or the tail of the MAC for
// unnamed sensors.
func displayName(e store.Entry) string {
	if e.Name != "" {
		return e.Name
	}
	if len(e.MAC) > 8 {
		return e.MAC[len(e.MAC)-8:]
	}
	return e.MAC
}

// RenderTable formats the live sensor table. now is passed in so tests
// can pin the age column.
func RenderTable(entries []store.Entry, now time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TPMS BLE Monitor - Live View"))
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(warnStyle.Render("Waiting for sensor data..."))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("(Make sure sensors are pressurized and nearby)"))
		b.WriteString("\n")
		return b.String()
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].MAC < entries[j].MAC })

	header := fmt.Sprintf("%-15s %-13s %-22s %-7s %-7s %-15s %-16s %s",
		"Sensor", "Decoder", "Pressure", "Temp", "Batt", "Status", "HEX", "Age")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(header)))
	b.WriteString("\n")

	for _, e := range entries {
		if e.LastReading == nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%-15s no data yet", displayName(e))))
			b.WriteString("\n")
			continue
		}

		r := e.LastReading
		style := rowStyle(r)

		status := r.StatusString()
		if !r.Valid {
			status += " !"
		}
		decoderStyle := defaultStyle
		if r.Decoder == "Generic" {
			decoderStyle = warnStyle
		}

		pressure := fmt.Sprintf("%4.2f bar (%4.1f psi)", r.PressureBar, r.PressurePSI)
		age := int(now.Sub(e.LastSeen).Seconds())

		b.WriteString(style.Render(fmt.Sprintf("%-15s ", displayName(e))))
		b.WriteString(decoderStyle.Render(fmt.Sprintf("%-13s ", r.Decoder)))
		b.WriteString(style.Render(fmt.Sprintf("%-22s %5.1fC  %-7s %-15s ",
			pressure, r.TemperatureCelsius, r.BatteryString(), status)))
		b.WriteString(hexStyle.Render(fmt.Sprintf("%-16s ", r.HexPacket)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("%ds", age)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderDevices formats discovery results for sensor selection.
func RenderDevices(devices []scanner.Device) string {
	var b strings.Builder

	header := fmt.Sprintf("%-4s %-20s %-20s %-6s %-15s %s",
		"#", "MAC Address", "Name", "RSSI", "Decoder", "TPMS?")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(header)))
	b.WriteString("\n")

	for i, d := range devices {
		indicator := ""
		style := defaultStyle
		switch {
		case d.IsTPMS():
			indicator = okStyle.Render(fmt.Sprintf("Yes (%s)", d.Decoder))
			style = okStyle
		case d.Decoder == "Generic":
			indicator = warnStyle.Render("? (Generic)")
		}

		name := d.Name
		if len(name) > 20 {
			name = name[:20]
		}
		b.WriteString(style.Render(fmt.Sprintf("%-4d %-20s %-20s %-6d %-15s ",
			i+1, d.MAC, name, d.RSSI, d.Decoder)))
		b.WriteString(indicator)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderDecoders formats the diagnostic decoder listing.
func RenderDecoders(descriptors []decoder.Descriptor) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Available Decoders:"))
	b.WriteString("\n")
	for _, d := range descriptors {
		b.WriteString(fmt.Sprintf("  %s %-20s (%s)\n", okStyle.Render("*"), d.Name, d.Manufacturer))
	}
	return b.String()
}
