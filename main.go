package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pleimann/tapboard/internal/action"
	"github.com/pleimann/tapboard/internal/config"
	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/hid"
	"github.com/pleimann/tapboard/internal/host"
	"github.com/pleimann/tapboard/internal/layout"
	"github.com/pleimann/tapboard/internal/logging"
	"github.com/pleimann/tapboard/internal/render"
	"github.com/pleimann/tapboard/internal/ui"
)

const Version = "0.1.0"

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list-devices":
			runListDevices()
			return
		case "set-device", "select-device":
			runSetDevice(os.Args[2:])
			return
		case "sim":
			runSim(os.Args[2:])
			return
		case "render":
			runRender(os.Args[2:])
			return
		case "check-layout":
			runCheckLayout(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	// Main command flags
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	version := flag.Bool("version", false, "print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log, zapcore.Lock(os.Stderr))
	if err != nil {
		ui.PrintFatalError("Failed to set up logging", err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("loaded configuration",
		zap.String("path", *configPath),
		zap.String("device", fmt.Sprintf("0x%04X:0x%04X", cfg.Device.VendorID, cfg.Device.ProductID)),
		zap.String("tui", cfg.TUI.Command),
		zap.Strings("args", cfg.TUI.Args))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(*configPath, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("application error", zap.Error(err))
	}

	logger.Debug("shutdown complete")
}

func printUsage() {
	ui.PrintUsage(Version)
}

// resolvePath makes p relative to the directory of the config file.
func resolvePath(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

// loadLayouts loads the main layout and, when configured, the symbols layout.
func loadLayouts(configPath string, cfg *config.Config) (base, symbols *layout.Layout, err error) {
	base, err = layout.LoadFile(resolvePath(configPath, cfg.Surface.Layout))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Surface.SymbolsLayout != "" {
		symbols, err = layout.LoadFile(resolvePath(configPath, cfg.Surface.SymbolsLayout))
		if err != nil {
			return nil, nil, err
		}
	}
	return base, symbols, nil
}

// runListDevices handles the list-devices subcommand
func runListDevices() {
	devices, err := hid.ListDevices()
	if err != nil {
		ui.PrintFatalError("Failed to list devices", err.Error())
		os.Exit(1)
	}
	ui.PrintDeviceList(toUIDevices(devices))
}

func toUIDevices(devices []hid.DeviceInfo) []ui.DeviceInfo {
	out := make([]ui.DeviceInfo, len(devices))
	for i, d := range devices {
		out[i] = ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Touch:        d.IsDigitizer(),
		}
	}
	return out
}

// runSetDevice handles the set-device subcommand
func runSetDevice(args []string) {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Usage = func() {
		ui.PrintSetDeviceUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	remaining := fs.Args()

	var vendorID, productID uint16

	if len(remaining) >= 2 {
		vid, err := parseID(remaining[0])
		if err != nil {
			ui.PrintFatalError("Invalid vendor_id", fmt.Sprintf("%q: %v", remaining[0], err))
			os.Exit(1)
		}
		pid, err := parseID(remaining[1])
		if err != nil {
			ui.PrintFatalError("Invalid product_id", fmt.Sprintf("%q: %v", remaining[1], err))
			os.Exit(1)
		}
		vendorID = vid
		productID = pid
	} else if len(remaining) == 1 {
		ui.PrintFatalError("Invalid arguments", "Both vendor_id and product_id must be provided, or neither")
		os.Exit(1)
	} else {
		device, err := selectDevice()
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		if device == nil {
			fmt.Println(ui.Muted("No device selected"))
			os.Exit(0)
		}
		vendorID = device.VendorID
		productID = device.ProductID
	}

	if config.Exists(*configPath) {
		if err := config.UpdateDeviceIDs(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to update config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceUpdated(*configPath, vendorID, productID)
	} else {
		if err := config.CreateDefaultConfig(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to create config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceCreated(*configPath, vendorID, productID)
	}
}

// runSim handles the sim subcommand
func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	layoutPath := fs.String("layout", "", "layout file to use instead of the configured one")
	logFile := fs.String("log", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}
	if *layoutPath != "" {
		cfg.Surface.Layout, _ = filepath.Abs(*layoutPath)
		cfg.Surface.SymbolsLayout = ""
	}

	// The terminal belongs to the simulator, so logs only go to a file.
	logger := zap.NewNop()
	if *logFile != "" {
		cfg.Log.File = *logFile
		logger, err = logging.New(cfg.Log, zapcore.AddSync(io.Discard))
		if err != nil {
			ui.PrintFatalError("Failed to set up logging", err.Error())
			os.Exit(1)
		}
		defer logger.Sync()
	}

	base, symbols, err := loadLayouts(*configPath, cfg)
	if err != nil {
		ui.PrintFatalError("Failed to load layout", err.Error())
		os.Exit(1)
	}

	clock := gesture.NewRealClock()
	queue := host.NewQueue()
	state := host.NewState()
	editor := ui.NewEditor()
	surface := gesture.NewSurface(queue, append(cfg.Options(),
		gesture.WithClock(clock),
		gesture.WithPresenter(queue),
		gesture.WithLogger(logger))...)
	defer surface.Close()

	dispatcher := host.NewDispatcher(surface, action.NewMapper(cfg), editor, logger)
	dispatcher.SetLayouts(base, symbols)

	cw, ch := ui.FitCells(base.MinWidth(), base.Height())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = ui.RunSimulator(ctx, ui.SimConfig{
		Surface:    surface,
		Clock:      clock,
		Queue:      queue,
		State:      state,
		Dispatcher: dispatcher,
		Editor:     editor,
		CellWidth:  cw,
		CellHeight: ch,
	})
	queue.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		ui.PrintFatalError("Simulator failed", err.Error())
		os.Exit(1)
	}
	if text := editor.Text(); text != "" {
		fmt.Println(text)
	}
}

// runRender handles the render subcommand
func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	layoutPath := fs.String("layout", "", "layout file to draw instead of the configured one")
	out := fs.String("out", "layout.png", "output file")
	shift := fs.Bool("shift", false, "draw the shifted labels")
	press := fs.Int("press", layout.NotAKey, "index of a key to draw pressed")
	fs.Usage = ui.PrintRenderUsage
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.PrintFatalError("Failed to load config", err.Error())
		os.Exit(1)
	}

	var l *layout.Layout
	if *layoutPath != "" {
		l, err = layout.LoadFile(*layoutPath)
	} else {
		l, _, err = loadLayouts(*configPath, cfg)
	}
	if err != nil {
		ui.PrintFatalError("Failed to load layout", err.Error())
		os.Exit(1)
	}

	if err := renderLayout(cfg, l, *shift, *press, *out); err != nil {
		ui.PrintFatalError("Failed to render layout", err.Error())
		os.Exit(1)
	}
	fmt.Println(ui.Success("Wrote " + *out))
}

// renderLayout draws l the way the device display would while the key at
// press is held. The press runs through a surface on a manual clock so the
// preview is placed exactly as it would be at runtime.
func renderLayout(cfg *config.Config, l *layout.Layout, shift bool, press int, out string) error {
	clock := gesture.NewManualClock()
	queue := host.NewQueue()
	state := host.NewState()
	surface := gesture.NewSurface(queue, append(cfg.Options(),
		gesture.WithClock(clock),
		gesture.WithPresenter(queue))...)
	defer surface.Close()

	surface.SetLayout(l)
	if shift {
		surface.SetShifted(layout.ShiftOn)
	}
	if press != layout.NotAKey {
		key, ok := l.Key(press)
		if !ok {
			return fmt.Errorf("no key at index %d", press)
		}
		surface.HandlePointer(gesture.PointerEvent{
			Phase: gesture.PhaseDown,
			X:     key.X + key.Width/2,
			Y:     key.Y + key.Height/2,
			At:    clock.Now(),
		})
		clock.Advance(cfg.Timing.Durations().PreviewShow)
	}

	queue.Close()
	if err := queue.Run(context.Background(), func(ev host.Event) { state.Apply(ev) }); err != nil {
		return err
	}

	var sc render.Scene
	surface.View(func(l *layout.Layout, origin gesture.Point) {
		sc = render.NewScene(l, origin)
		state.Decorate(&sc)
	})

	width, height := sc.Width, sc.Height
	if cfg.Display.Enabled {
		width, height = max(width, cfg.Display.Width), max(height, cfg.Display.Height)
	}
	r := render.NewRenderer(width, height)
	r.Draw(sc)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runCheckLayout handles the check-layout subcommand
func runCheckLayout(args []string) {
	fs := flag.NewFlagSet("check-layout", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		cfg, err := config.Load(*configPath)
		if err != nil {
			ui.PrintFatalError("Failed to load config", err.Error())
			os.Exit(1)
		}
		paths = append(paths, resolvePath(*configPath, cfg.Surface.Layout))
		if cfg.Surface.SymbolsLayout != "" {
			paths = append(paths, resolvePath(*configPath, cfg.Surface.SymbolsLayout))
		}
	}

	failed := false
	for _, p := range paths {
		l, err := layout.LoadFile(p)
		if err != nil {
			ui.PrintError(err.Error())
			failed = true
			continue
		}
		ui.PrintLayout(p, l)
	}
	if failed {
		os.Exit(1)
	}
}

// parseID parses a vendor or product ID from string (supports hex with 0x prefix or decimal)
func parseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	var val uint64
	var err error

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		val, err = strconv.ParseUint(s, 10, 16)
	}

	if err != nil {
		return 0, err
	}

	return uint16(val), nil
}

// selectDevice displays an interactive device selection menu using huh
func selectDevice() (*ui.DeviceInfo, error) {
	devices, err := hid.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no HID devices found")
	}

	// Deduplicate devices by vendor/product ID
	seen := make(map[uint32]bool)
	var unique []hid.DeviceInfo

	for _, d := range devices {
		key := uint32(d.VendorID)<<16 | uint32(d.ProductID)
		if seen[key] {
			continue
		}
		seen[key] = true

		// Skip devices with no vendor/product ID
		if d.VendorID == 0 && d.ProductID == 0 {
			continue
		}

		unique = append(unique, d)
	}

	if len(unique) == 0 {
		return nil, fmt.Errorf("no identifiable HID devices found")
	}

	return ui.SelectDevice(toUIDevices(unique))
}
