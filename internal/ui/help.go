package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/tapboard/internal/utils"
)

type command struct {
	name    string
	args    string
	summary string
	detail  string
	hasHelp bool
}

var commands = []command{
	{name: "sim", args: "[flags]", summary: "Try the keyboard in the terminal",
		detail: "Run the configured layout in the terminal, driven by the mouse"},
	{name: "render", args: "[flags]", summary: "Draw a layout to a PNG file",
		detail: "Draw a layout as the device display would show it", hasHelp: true},
	{name: "check-layout", args: "[file...]", summary: "Validate a layout and list its keys",
		detail: "Load layout files, or the configured ones, and print their keys"},
	{name: "list-devices", summary: "List available HID devices",
		detail: "List available HID devices, touch devices first"},
	{name: "set-device", args: "[args]", summary: "Configure the HID device",
		detail: "Set the HID device in the config file", hasHelp: true},
	{name: "help", summary: "Show this help message"},
}

type example struct {
	cmd  string
	desc string
}

func banner(version string, versionColor lipgloss.Color) string {
	name := TitleStyle.Render(utils.ExecutableName())
	tag := lipgloss.NewStyle().Foreground(versionColor).Render("v" + version)
	return name + " " + tag
}

// PrintUsage displays the styled help/usage text
func PrintUsage(version string) {
	exe := utils.ExecutableName()

	fmt.Println(banner(version, ColorMuted))
	fmt.Println(Muted("Touch keyboard middleware for TUI applications"))
	fmt.Println()

	usage := []string{fmt.Sprintf("%-34s Run the middleware", exe+" [flags]")}
	for _, c := range commands {
		usage = append(usage, fmt.Sprintf("%-34s %s", strings.TrimSpace(exe+" "+c.name+" "+c.args), c.summary))
	}
	printSection("Usage", usage)

	printSection("Flags", []string{
		"-config string    Path to configuration file (default \"config.yaml\")",
		"-verbose          Enable debug logging",
		"-version          Print version and exit",
	})

	fmt.Println(Bold("Commands"))
	for _, c := range commands {
		if c.detail == "" {
			continue
		}
		fmt.Printf("  %s\n", CommandStyle.Render(c.name))
		fmt.Printf("      %s\n", c.detail)
		if c.hasHelp {
			fmt.Printf("      Run %s for more information\n", Code(exe+" "+c.name+" --help"))
		}
		fmt.Println()
	}

	printExamples([]example{
		{exe, "Run with default config.yaml"},
		{exe + " -config my.yaml", "Run with custom config file"},
		{exe + " sim", "Type with the mouse in the terminal"},
		{exe + " render -out kb.png -shift", "Preview the shifted layout"},
		{exe + " check-layout layouts/qwerty.yaml", "Validate a layout file"},
		{exe + " list-devices", "List connected HID devices"},
		{exe + " set-device 0x1234 0x5678", "Set device by vendor/product ID"},
	})
}

func printSection(title string, items []string) {
	fmt.Println(Bold(title))
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
	fmt.Println()
}

func printExamples(examples []example) {
	fmt.Println(Bold("Examples"))

	width := 0
	for _, ex := range examples {
		width = max(width, len(ex.cmd))
	}
	style := lipgloss.NewStyle().Foreground(ColorSecondary)
	for _, ex := range examples {
		padding := strings.Repeat(" ", width-len(ex.cmd)+2)
		fmt.Printf("  %s%s%s\n", style.Render(ex.cmd), padding, Muted(ex.desc))
	}
	fmt.Println()
}

func printOptions(options [][2]string) {
	fmt.Println(Bold("Options"))
	width := 0
	for _, o := range options {
		width = max(width, len(o[0]))
	}
	for _, o := range options {
		padding := strings.Repeat(" ", width-len(o[0])+4)
		fmt.Printf("  %s%s%s\n", SubtitleStyle.Render(o[0]), padding, o[1])
	}
	fmt.Println()
}

// PrintSetDeviceUsage displays the styled help text for set-device subcommand
func PrintSetDeviceUsage() {
	exe := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), exe+" set-device [options] [vendor_id product_id]")
	fmt.Println()
	fmt.Println("Set the HID device in the configuration file.")
	fmt.Println()
	fmt.Println(Muted("If vendor_id and product_id are provided, updates the config directly."))
	fmt.Println(Muted("Otherwise, displays a list of connected devices to choose from."))
	fmt.Println()

	fmt.Println(Bold("Arguments"))
	fmt.Printf("  %s    Device vendor ID (hex with 0x prefix or decimal)\n", SubtitleStyle.Render("vendor_id"))
	fmt.Printf("  %s   Device product ID (hex with 0x prefix or decimal)\n", SubtitleStyle.Render("product_id"))
	fmt.Println()

	printOptions([][2]string{
		{"-config string", "Path to configuration file (default \"config.yaml\")"},
	})

	printExamples([]example{
		{exe + " set-device", "Interactive selection"},
		{exe + " set-device 0x1234 0x5678", "Set the IDs directly"},
		{exe + " set-device -config my.yaml", "Use different config"},
	})
}

// PrintRenderUsage displays the styled help text for the render subcommand
func PrintRenderUsage() {
	exe := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), exe+" render [options]")
	fmt.Println()
	fmt.Println("Draw a layout to a PNG file as the device display would show it.")
	fmt.Println(Muted("Key indices for -press are listed by check-layout."))
	fmt.Println()

	printOptions([][2]string{
		{"-config string", "Path to configuration file (default \"config.yaml\")"},
		{"-layout string", "Layout file to draw instead of the configured one"},
		{"-out string", "Output file (default \"layout.png\")"},
		{"-shift", "Draw the shifted labels"},
		{"-press int", "Draw the key at this index pressed, with its preview"},
	})

	printExamples([]example{
		{exe + " render", "Draw the configured layout to layout.png"},
		{exe + " render -press 0 -out q.png", "Show the preview of the first key"},
	})
}

// PrintVersion displays the styled version information
func PrintVersion(version string) {
	fmt.Println(banner(version, ColorSuccess))
}

// PrintError displays a styled error message
func PrintError(message string) {
	fmt.Println(Error(message))
}

// PrintFatalError displays a styled fatal error message with context
func PrintFatalError(context, message string) {
	fmt.Println()
	fmt.Println(Error(context))
	fmt.Printf("  %s\n", Muted(message))
	fmt.Println()
}
