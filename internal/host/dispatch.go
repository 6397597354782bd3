package host

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/action"
	"github.com/pleimann/tapboard/internal/layout"
)

// Controller is the part of a surface the dispatcher drives.
type Controller interface {
	SetLayout(l *layout.Layout)
	SetShifted(state layout.ShiftState) bool
}

// Output receives the terminal actions of committed keys. *action.Executor
// implements it.
type Output interface {
	Run(a action.Action) error
}

// Dispatcher turns committed keys into terminal actions and owns the
// keyboard state the surface itself does not: shift and the symbols mode.
type Dispatcher struct {
	surface Controller
	mapper  *action.Mapper
	out     Output
	logger  *zap.Logger

	mu      sync.Mutex
	main    *layout.Layout
	symbols *layout.Layout
	symMode bool
	shift   layout.ShiftState
}

// NewDispatcher creates a dispatcher. Call SetLayouts before handling events.
func NewDispatcher(surface Controller, mapper *action.Mapper, out Output, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		surface: surface,
		mapper:  mapper,
		out:     out,
		logger:  logger,
	}
}

// SetLayouts installs the main and symbols layouts and shows the main one.
// symbols may be nil, in which case mode change does nothing.
func (d *Dispatcher) SetLayouts(main, symbols *layout.Layout) {
	d.mu.Lock()
	d.main, d.symbols = main, symbols
	d.symMode = false
	d.shift = layout.ShiftOff
	d.mu.Unlock()

	d.surface.SetLayout(main)
	d.surface.SetShifted(layout.ShiftOff)
}

// Shift returns the current shift state.
func (d *Dispatcher) Shift() layout.ShiftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shift
}

// Handle applies one surface event. Events that only affect what is drawn
// are ignored.
func (d *Dispatcher) Handle(ev Event) error {
	switch ev.Kind {
	case KindKey:
		return d.key(ev.Code)
	case KindText:
		return d.run(d.mapper.Text(ev.Text))
	case KindCursorLeft:
		return d.run(d.mapper.Cursor(false))
	case KindCursorRight:
		return d.run(d.mapper.Cursor(true))
	}
	return nil
}

func (d *Dispatcher) key(code int) error {
	switch code {
	case layout.CodeShift:
		d.cycleShift()
		return nil
	case layout.CodeModeChange:
		d.toggleMode()
		return nil
	}

	d.mu.Lock()
	shift := d.shift
	d.mu.Unlock()

	a, ok := d.mapper.Map(code, shift != layout.ShiftOff)
	if !ok {
		d.logger.Debug("no action for code", zap.Int("code", code))
		return nil
	}
	if err := d.run(a); err != nil {
		return err
	}
	if shift == layout.ShiftOn && a.Text != "" {
		d.setShift(layout.ShiftOff)
	}
	return nil
}

func (d *Dispatcher) run(a action.Action) error {
	if a.Empty() {
		return nil
	}
	if err := d.out.Run(a); err != nil {
		return fmt.Errorf("failed to run action: %w", err)
	}
	return nil
}

// cycleShift steps off → on → locked → off.
func (d *Dispatcher) cycleShift() {
	d.mu.Lock()
	next := (d.shift + 1) % (layout.ShiftLocked + 1)
	d.mu.Unlock()
	d.setShift(next)
}

func (d *Dispatcher) setShift(state layout.ShiftState) {
	d.mu.Lock()
	d.shift = state
	d.mu.Unlock()

	d.surface.SetShifted(state)
	d.logger.Debug("shift changed", zap.Stringer("shift", state))
}

func (d *Dispatcher) toggleMode() {
	d.mu.Lock()
	if d.symbols == nil {
		d.mu.Unlock()
		d.logger.Debug("mode change without symbols layout")
		return
	}
	d.symMode = !d.symMode
	next := d.main
	if d.symMode {
		next = d.symbols
	}
	d.shift = layout.ShiftOff
	d.mu.Unlock()

	d.surface.SetLayout(next)
	d.surface.SetShifted(layout.ShiftOff)
	d.logger.Debug("mode changed", zap.String("layout", next.Name))
}
