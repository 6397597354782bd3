package display

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/config"
	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/hid"
	"github.com/pleimann/tapboard/internal/host"
	"github.com/pleimann/tapboard/internal/layout"
	"github.com/pleimann/tapboard/internal/render"
)

// DeviceWriter is the interface for sending frames to the device
type DeviceWriter interface {
	SendFrame(frame *hid.DisplayFrame) error
}

// Viewer gives locked access to the layout being drawn. *gesture.Surface
// implements it.
type Viewer interface {
	View(fn func(l *layout.Layout, origin gesture.Point))
}

// OutputSource supplies recent TUI output to scan for status lines.
type OutputSource interface {
	GetRecentOutput() string
}

// Manager keeps the device screen in sync with the keyboard surface
type Manager struct {
	config   config.DisplayConfig
	device   DeviceWriter
	view     Viewer
	state    *host.State
	output   OutputSource
	renderer *render.Renderer
	logger   *zap.Logger

	statusPattern *regexp.Regexp
}

// NewManager creates a new display manager. output may be nil.
func NewManager(cfg config.DisplayConfig, device DeviceWriter, view Viewer, state *host.State, output OutputSource, logger *zap.Logger) (*Manager, error) {
	pattern, err := regexp.Compile(cfg.StatusPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid status pattern: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		config:        cfg,
		device:        device,
		view:          view,
		state:         state,
		output:        output,
		renderer:      render.NewRenderer(cfg.Width, cfg.Height),
		logger:        logger,
		statusPattern: pattern,
	}, nil
}

// Run redraws the screen whenever the surface state changes, until ctx is
// done. The screen is cleared on exit.
func (m *Manager) Run(ctx context.Context) error {
	interval := time.Duration(m.config.UpdateIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	defer func() {
		if err := m.device.SendFrame(hid.NewClearCommand()); err != nil {
			m.logger.Debug("failed to clear display", zap.Error(err))
		}
	}()

	m.state.MarkDirty()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.update()
		}
	}
}

// update performs a display update cycle
func (m *Manager) update() {
	if m.output != nil {
		m.parseStatus(m.output.GetRecentOutput())
	}

	if !m.state.TakeDirty() {
		return
	}

	m.renderer.Draw(m.snapshot())

	frames := hid.ChunkFrame(m.renderer.Width(), m.renderer.Height(), m.renderer.FrameBuffer())
	for _, frame := range frames {
		if err := m.device.SendFrame(frame); err != nil {
			m.logger.Warn("failed to send frame", zap.Uint16("y", frame.Y), zap.Error(err))
			// retry the whole frame next tick
			m.state.MarkDirty()
			return
		}
	}
}

func (m *Manager) snapshot() render.Scene {
	var sc render.Scene
	m.view.View(func(l *layout.Layout, origin gesture.Point) {
		sc = render.NewScene(l, origin)
		m.state.Decorate(&sc)
	})
	return sc
}

// parseStatus extracts the last status line from TUI output
func (m *Manager) parseStatus(output string) {
	all := m.statusPattern.FindAllStringSubmatch(output, -1)
	if len(all) == 0 {
		return
	}
	last := all[len(all)-1]
	if len(last) >= 2 {
		m.state.SetStatus(last[1])
	}
}
