package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/layout"
)

type Config struct {
	Device  DeviceConfig    `yaml:"device"`
	Timing  TimingConfig    `yaml:"timing"`
	Surface SurfaceConfig   `yaml:"surface"`
	Display DisplayConfig   `yaml:"display"`
	TUI     TUIConfig       `yaml:"tui"`
	Actions []ActionBinding `yaml:"actions"`
	Log     LogConfig       `yaml:"log"`
}

type DeviceConfig struct {
	VendorID       uint16 `yaml:"vendor_id"`
	ProductID      uint16 `yaml:"product_id"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	// Raw touch resolution of the panel. Zero means reports are already in
	// layout pixels.
	TouchWidth  int `yaml:"touch_width,omitempty"`
	TouchHeight int `yaml:"touch_height,omitempty"`
}

type TimingConfig struct {
	LongPressMs      int `yaml:"long_press_ms"`
	RepeatStartMs    int `yaml:"repeat_start_ms"`
	RepeatIntervalMs int `yaml:"repeat_interval_ms"`
	DebounceMs       int `yaml:"debounce_ms"`
	MultiTapMs       int `yaml:"multi_tap_ms"`
	PreviewShowMs    int `yaml:"preview_show_ms"`
	PreviewHideMs    int `yaml:"preview_hide_ms"`
}

type SurfaceConfig struct {
	Layout               string `yaml:"layout"`
	SymbolsLayout        string `yaml:"symbols_layout,omitempty"` // shown by the mode change key
	VerticalCorrection   int    `yaml:"vertical_correction"`
	CursorMoveThreshold  int    `yaml:"cursor_move_threshold"`
	PopupMaxMoveDistance int    `yaml:"popup_max_move_distance"`
	MaxKeysPerPanelRow   int    `yaml:"max_keys_per_panel_row"`
	PreviewHeight        int    `yaml:"preview_height,omitempty"`
}

// DisplayConfig describes the screen under the touch overlay. The keyboard
// is drawn on it when enabled.
type DisplayConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	UpdateIntervalMs int    `yaml:"update_interval_ms"`
	StatusPattern    string `yaml:"status_pattern,omitempty"`
}

// DefaultStatusPattern matches TUI output lines like "STATUS: text".
const DefaultStatusPattern = `(?m)^STATUS:\s*(.+)$`

type TUIConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
	KeyDelayMs int      `yaml:"key_delay_ms,omitempty"`
}

// ActionBinding maps a key code to the key sequence sent for it.
type ActionBinding struct {
	Code int      `yaml:"code"`
	Name string   `yaml:"name,omitempty"`
	Keys []string `yaml:"keys"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file,omitempty"`
	// Rotation settings for File.
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Device.VendorID == 0 {
		return fmt.Errorf("device.vendor_id is required")
	}
	if c.Device.ProductID == 0 {
		return fmt.Errorf("device.product_id is required")
	}
	if c.TUI.Command == "" {
		return fmt.Errorf("tui.command is required")
	}
	if c.Surface.Layout == "" {
		return fmt.Errorf("surface.layout is required")
	}
	if (c.Device.TouchWidth == 0) != (c.Device.TouchHeight == 0) {
		return fmt.Errorf("device.touch_width and device.touch_height must be set together")
	}

	// Validate action codes are unique
	seen := make(map[int]bool)
	for i, a := range c.Actions {
		if seen[a.Code] {
			return fmt.Errorf("duplicate action code: %d", a.Code)
		}
		seen[a.Code] = true
		if len(a.Keys) == 0 {
			return fmt.Errorf("action %d has no keys", i)
		}
	}

	if c.Display.Enabled && (c.Display.Width <= 0 || c.Display.Height <= 0) {
		return fmt.Errorf("display.width and display.height are required when display is enabled")
	}
	if c.Display.StatusPattern != "" {
		if _, err := regexp.Compile(c.Display.StatusPattern); err != nil {
			return fmt.Errorf("invalid display.status_pattern: %w", err)
		}
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log.format: %s", c.Log.Format)
	}

	return nil
}

func (c *Config) applyDefaults() {
	def := gesture.DefaultTiming()

	if c.Device.PollIntervalMs == 0 {
		c.Device.PollIntervalMs = 10
	}
	setMs(&c.Timing.LongPressMs, def.LongPress)
	setMs(&c.Timing.RepeatStartMs, def.RepeatStart)
	setMs(&c.Timing.RepeatIntervalMs, def.RepeatInterval)
	setMs(&c.Timing.DebounceMs, def.Debounce)
	setMs(&c.Timing.MultiTapMs, def.MultiTap)
	setMs(&c.Timing.PreviewHideMs, def.PreviewHide)
	if c.Surface.CursorMoveThreshold == 0 {
		c.Surface.CursorMoveThreshold = gesture.DefaultCursorMoveThreshold
	}
	if c.Surface.PopupMaxMoveDistance == 0 {
		c.Surface.PopupMaxMoveDistance = gesture.DefaultPopupMaxMoveDistance
	}
	if c.Surface.MaxKeysPerPanelRow == 0 {
		c.Surface.MaxKeysPerPanelRow = layout.DefaultMaxKeysPerPanelRow
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 50
	}
	if c.Display.StatusPattern == "" {
		c.Display.StatusPattern = DefaultStatusPattern
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

func setMs(ms *int, d time.Duration) {
	if *ms == 0 {
		*ms = int(d / time.Millisecond)
	}
}

// Durations converts the timing section into scheduler delays.
func (t TimingConfig) Durations() gesture.Timing {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return gesture.Timing{
		LongPress:      ms(t.LongPressMs),
		RepeatStart:    ms(t.RepeatStartMs),
		RepeatInterval: ms(t.RepeatIntervalMs),
		Debounce:       ms(t.DebounceMs),
		MultiTap:       ms(t.MultiTapMs),
		PreviewShow:    ms(t.PreviewShowMs),
		PreviewHide:    ms(t.PreviewHideMs),
	}
}

// Options returns the surface options for this configuration.
func (c *Config) Options() []gesture.Option {
	return []gesture.Option{
		gesture.WithTiming(c.Timing.Durations()),
		gesture.WithVerticalCorrection(c.Surface.VerticalCorrection),
		gesture.WithCursorMoveThreshold(c.Surface.CursorMoveThreshold),
		gesture.WithPopupMaxMoveDistance(c.Surface.PopupMaxMoveDistance),
		gesture.WithMaxKeysPerPanelRow(c.Surface.MaxKeysPerPanelRow),
		gesture.WithPreviewHeight(c.Surface.PreviewHeight),
	}
}

// UpdateDeviceIDs updates the vendor_id and product_id in a config file
// while preserving the rest of the file structure and comments
func UpdateDeviceIDs(path string, vendorID, productID uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	// Update vendor_id (YAML format: vendor_id: 0x1234 or vendor_id: 1234)
	vendorRegex := regexp.MustCompile(`(?m)^(\s*vendor_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = vendorRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", vendorID))

	productRegex := regexp.MustCompile(`(?m)^(\s*product_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = productRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", productID))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig creates a new config file with default values and the specified device
func CreateDefaultConfig(path string, vendorID, productID uint16) error {
	content := fmt.Sprintf(`# tapboard configuration

device:
  vendor_id: 0x%04X
  product_id: 0x%04X
  poll_interval_ms: 10

timing:
  long_press_ms: 500
  repeat_start_ms: 400
  repeat_interval_ms: 50
  debounce_ms: 70
  multi_tap_ms: 800
  preview_show_ms: 0
  preview_hide_ms: 70

surface:
  layout: layouts/qwerty.yaml
  vertical_correction: 0
  cursor_move_threshold: 20
  popup_max_move_distance: 120
  max_keys_per_panel_row: 9

display:
  enabled: false
  width: 480
  height: 200
  update_interval_ms: 50

tui:
  command: "your-tui-app"
  args: []

# Extra key sequences for custom key codes
actions:
  - code: -6
    name: emoji
    keys: ["ctrl+e"]

log:
  level: info
  format: console
`, vendorID, productID)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
