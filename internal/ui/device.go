package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// DeviceInfo contains information about a HID device for display
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Touch        bool // reports the digitizer usage page
}

func (d DeviceInfo) id() string {
	return fmt.Sprintf("0x%04X:0x%04X", d.VendorID, d.ProductID)
}

// name is the product name, prefixed by the manufacturer when known.
func (d DeviceInfo) name() string {
	name := d.Product
	if name == "" {
		name = "Unknown Device"
	}
	if d.Manufacturer != "" {
		name = d.Manufacturer + " " + name
	}
	return name
}

// deviceSelectModel wraps huh form in Bubble Tea for proper escape handling
type deviceSelectModel struct {
	form    *huh.Form
	aborted bool
}

func (m deviceSelectModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m deviceSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}
	return m, cmd
}

func (m deviceSelectModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

// firstTouch is the index of the first touch device, or 0.
func firstTouch(devices []DeviceInfo) int {
	for i, d := range devices {
		if d.Touch {
			return i
		}
	}
	return 0
}

// SelectDevice lets the user pick a device, starting on the first touch
// device. It returns nil when the user cancels.
func SelectDevice(devices []DeviceInfo) (*DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no devices to select from")
	}

	options := make([]huh.Option[int], len(devices))
	for i, d := range devices {
		label := DeviceIDStyle.Render(d.id()) + "  " + d.name()
		if d.Touch {
			label += " " + TouchBadgeStyle.Render("touch")
		}
		options[i] = huh.NewOption(label, i)
	}

	selected := firstTouch(devices)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select HID Device").
				Description("Choose the touch overlay to configure (esc to cancel)").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(customTheme()).WithShowHelp(false)

	final, err := tea.NewProgram(deviceSelectModel{form: form}).Run()
	if err != nil {
		return nil, err
	}
	if final.(deviceSelectModel).aborted {
		return nil, nil
	}
	return &devices[selected], nil
}

// PrintDeviceList displays a styled list of HID devices
func PrintDeviceList(devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Println(Warning("No HID devices found"))
		return
	}

	touch := 0
	for _, d := range devices {
		if d.Touch {
			touch++
		}
	}

	fmt.Println()
	fmt.Println(Title("HID Devices"))
	fmt.Println(Muted(fmt.Sprintf("Found %d device(s), %d touch", len(devices), touch)))
	fmt.Println()

	for _, d := range devices {
		fmt.Println(deviceLine(d))
	}
	fmt.Println()
}

func deviceLine(d DeviceInfo) string {
	name := d.Product
	if name == "" {
		name = "Unknown Device"
	}

	details := []string{DeviceNameStyle.Render(name)}
	if d.Manufacturer != "" {
		details = append(details, DeviceManufacturerStyle.Render("by "+d.Manufacturer))
	}
	if d.Touch {
		details = append(details, TouchBadgeStyle.Render("[touch]"))
	}
	return fmt.Sprintf("%s  %s", DeviceIDStyle.Render("  "+d.id()), strings.Join(details, " "))
}

// PrintDeviceUpdated shows a success message after updating device config
func PrintDeviceUpdated(configPath string, vendorID, productID uint16) {
	printDeviceSaved("Device configuration updated", configPath, vendorID, productID)
}

// PrintDeviceCreated shows a success message after creating device config
func PrintDeviceCreated(configPath string, vendorID, productID uint16) {
	printDeviceSaved("Device configuration created", configPath, vendorID, productID)
}

func printDeviceSaved(title, configPath string, vendorID, productID uint16) {
	d := DeviceInfo{VendorID: vendorID, ProductID: productID}
	fmt.Println()
	fmt.Println(Success(title))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config:"), configPath)
	fmt.Printf("  %s %s\n", Muted("Device:"), DeviceIDStyle.Render(d.id()))
	fmt.Println()
}

// customTheme returns a huh theme matching the style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(ColorLight)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)

	return t
}
