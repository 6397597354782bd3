package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/pleimann/tapboard/internal/action"
	"github.com/pleimann/tapboard/internal/config"
	"github.com/pleimann/tapboard/internal/display"
	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/hid"
	"github.com/pleimann/tapboard/internal/host"
	"github.com/pleimann/tapboard/internal/pty"
)

type App struct {
	configPath string
	config     *config.Config
	logger     *zap.Logger

	watcher    *config.Watcher
	clock      *gesture.RealClock
	hidDevice  *hid.Device
	queue      *host.Queue
	state      *host.State
	surface    *gesture.Surface
	mapper     *action.Mapper
	dispatcher *host.Dispatcher
	layouts    layoutSource // what the dispatcher's layouts were loaded from
	ptyManager *pty.Manager
	display    *display.Manager // nil when the display is disabled
}

func newApp(configPath string, logger *zap.Logger) (*App, error) {
	watcher, err := config.NewWatcher(configPath, logger.Named("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to watch config: %w", err)
	}
	cfg := watcher.Get()

	app := &App{
		configPath: configPath,
		config:     cfg,
		logger:     logger,
		watcher:    watcher,
		clock:      gesture.NewRealClock(),
		queue:      host.NewQueue(),
		state:      host.NewState(),
		mapper:     action.NewMapper(cfg),
	}

	app.layouts, err = readLayoutSource(configPath, cfg)
	if err != nil {
		watcher.Stop()
		return nil, err
	}
	base, symbols, err := loadLayouts(configPath, cfg)
	if err != nil {
		watcher.Stop()
		return nil, err
	}
	app.watchLayouts(cfg)

	hidDevice, err := hid.NewDevice(cfg.Device.VendorID, cfg.Device.ProductID, logger.Named("hid"))
	if err != nil {
		watcher.Stop()
		return nil, fmt.Errorf("failed to open HID device: %w", err)
	}
	app.hidDevice = hidDevice

	ptyManager, err := pty.NewManager(cfg.TUI.Command, cfg.TUI.Args, cfg.TUI.WorkingDir, logger.Named("pty"))
	if err != nil {
		hidDevice.Close()
		watcher.Stop()
		return nil, fmt.Errorf("failed to create PTY manager: %w", err)
	}
	app.ptyManager = ptyManager

	app.surface = gesture.NewSurface(app.queue, append(cfg.Options(),
		gesture.WithClock(app.clock),
		gesture.WithPresenter(app.queue),
		gesture.WithLogger(logger.Named("surface")))...)

	keyDelay := time.Duration(cfg.TUI.KeyDelayMs) * time.Millisecond
	executor := action.NewExecutor(pty.NewWriter(ptyManager, keyDelay))
	app.dispatcher = host.NewDispatcher(app.surface, app.mapper, executor, logger.Named("dispatch"))
	app.dispatcher.SetLayouts(base, symbols)

	if cfg.Display.Enabled {
		app.display, err = display.NewManager(cfg.Display, hidDevice, app.surface, app.state, ptyManager, logger.Named("display"))
		if err != nil {
			hidDevice.Close()
			watcher.Stop()
			return nil, fmt.Errorf("failed to create display manager: %w", err)
		}
	}

	watcher.OnReload(app.reload)

	return app, nil
}

// Run starts the TUI and feeds touches to the surface until ctx is done, the
// TUI exits or a component fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.ptyManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}
	a.resizePTY()
	a.watcher.Start()
	defer a.shutdown()

	g, ctx := errgroup.WithContext(ctx)
	touches := make(chan hid.TouchEvent, 64)

	g.Go(func() error {
		defer close(touches)
		return a.readTouches(ctx, touches)
	})
	g.Go(func() error {
		a.feed(touches)
		return nil
	})
	g.Go(func() error {
		return a.queue.Run(ctx, a.handle)
	})
	g.Go(func() error {
		return a.ptyManager.Wait(ctx)
	})
	if a.display != nil {
		g.Go(func() error {
			return a.display.Run(ctx)
		})
	}
	g.Go(func() error {
		// Unblocks the pending device read.
		<-ctx.Done()
		a.hidDevice.Close()
		return nil
	})

	// A clean TUI exit ends the session normally.
	if err := g.Wait(); err != nil && err != pty.ErrExited {
		return err
	}
	return nil
}

// resizePTY gives the TUI the size of the terminal tapboard runs in.
func (a *App) resizePTY() {
	rows, cols := 24, 80
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			cols, rows = w, h
		}
	}
	if err := a.ptyManager.Resize(uint16(rows), uint16(cols)); err != nil {
		a.logger.Warn("failed to size PTY", zap.Error(err))
	}
}

// readTouches reads touch reports, reconnecting when the device goes away.
func (a *App) readTouches(ctx context.Context, touches chan<- hid.TouchEvent) error {
	poll := time.Duration(a.config.Device.PollIntervalMs) * time.Millisecond
	for {
		err := a.hidDevice.ReadTouches(ctx, touches)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, hid.ErrClosed) {
			return err
		}

		a.logger.Warn("touch device lost, waiting for it to return", zap.Error(err))
		if err := a.hidDevice.WaitForDevice(ctx, max(poll, 100*time.Millisecond)); err != nil {
			return nil
		}
	}
}

// feed converts touch reports to surface coordinates and times.
func (a *App) feed(touches <-chan hid.TouchEvent) {
	for t := range touches {
		ev := t.PointerEvent(a.clock.Now(), a.scale())
		a.logger.Debug("touch", zap.Stringer("event", ev))
		a.surface.HandlePointer(ev)
	}
}

func (a *App) scale() hid.Scale {
	l := a.surface.Layout()
	return hid.Scale{
		TouchWidth:   a.config.Device.TouchWidth,
		TouchHeight:  a.config.Device.TouchHeight,
		LayoutWidth:  l.MinWidth(),
		LayoutHeight: l.Height(),
	}
}

// handle runs on the queue goroutine, in the order the surface reported.
func (a *App) handle(ev host.Event) {
	a.state.Apply(ev)
	if err := a.dispatcher.Handle(ev); err != nil {
		a.logger.Warn("failed to handle key", zap.Stringer("kind", ev.Kind), zap.Error(err))
		return
	}
	if ev.IsCommit() {
		a.logger.Debug("committed",
			zap.Stringer("kind", ev.Kind),
			zap.Int("code", ev.Code),
			zap.String("text", ev.Text))
	}
}

// reload applies a changed config or layout file. Device, TUI and display
// settings take effect on restart. Layouts are replaced, which resets shift
// and the symbols mode, only when a layout file or the surface section changed.
func (a *App) reload(cfg *config.Config) {
	a.mapper.Reload(cfg)
	a.surface.SetTiming(cfg.Timing.Durations())

	src, err := readLayoutSource(a.configPath, cfg)
	if err != nil {
		a.logger.Warn("keeping current layout", zap.Error(err))
		return
	}
	if src == a.layouts {
		a.logger.Debug("layouts unchanged")
		return
	}

	base, symbols, err := loadLayouts(a.configPath, cfg)
	if err != nil {
		a.logger.Warn("keeping current layout", zap.Error(err))
		return
	}
	a.dispatcher.SetLayouts(base, symbols)
	a.layouts = src
	a.watchLayouts(cfg)
}

// layoutSource is what a pair of layouts is loaded from: the surface settings
// and the contents of the layout files.
type layoutSource struct {
	surface config.SurfaceConfig
	base    string
	symbols string
}

func readLayoutSource(configPath string, cfg *config.Config) (layoutSource, error) {
	src := layoutSource{surface: cfg.Surface}
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{cfg.Surface.Layout, &src.base},
		{cfg.Surface.SymbolsLayout, &src.symbols},
	} {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(resolvePath(configPath, f.path))
		if err != nil {
			return layoutSource{}, fmt.Errorf("failed to read layout: %w", err)
		}
		*f.dst = string(data)
	}
	return src, nil
}

func (a *App) watchLayouts(cfg *config.Config) {
	for _, p := range []string{cfg.Surface.Layout, cfg.Surface.SymbolsLayout} {
		if p == "" {
			continue
		}
		if err := a.watcher.WatchFile(resolvePath(a.configPath, p)); err != nil {
			a.logger.Warn("failed to watch layout", zap.String("path", p), zap.Error(err))
		}
	}
}

func (a *App) shutdown() {
	a.logger.Info("shutting down")
	a.watcher.Stop()
	a.surface.Close()
	a.queue.Close()
	a.ptyManager.Stop()
	a.hidDevice.Close()
}
