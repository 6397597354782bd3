package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pleimann/tapboard/internal/gesture"
	"github.com/pleimann/tapboard/internal/host"
	"github.com/pleimann/tapboard/internal/layout"
	"github.com/pleimann/tapboard/internal/render"
)

// Rows above the keyboard: title, typed text, blank.
const simHeaderRows = 3

// Default pixels per terminal cell. Cells are about twice as tall as wide.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// SimConfig wires the simulator to a surface. The surface must report to
// Queue, and Dispatcher must write to Editor.
type SimConfig struct {
	Surface    *gesture.Surface
	Clock      gesture.Clock
	Queue      *host.Queue
	State      *host.State
	Dispatcher *host.Dispatcher
	Editor     *Editor
	CellWidth  int
	CellHeight int
}

type hostEventMsg host.Event

type simModel struct {
	cfg      SimConfig
	dragging bool
	status   string
}

// RunSimulator runs the keyboard in the terminal, driven by the mouse, until
// the user quits or ctx is done.
func RunSimulator(ctx context.Context, cfg SimConfig) error {
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = DefaultCellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = DefaultCellHeight
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(&simModel{cfg: cfg},
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cfg.Queue.Run(ctx, func(ev host.Event) { p.Send(hostEventMsg(ev)) })
	}()

	_, err := p.Run()
	cancel()
	<-done
	return err
}

// FitCells picks a cell size that fits a layout of the given pixel size in
// the current terminal.
func FitCells(layoutWidth, layoutHeight int) (cellWidth, cellHeight int) {
	cellWidth, cellHeight = DefaultCellWidth, DefaultCellHeight

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return cellWidth, cellHeight
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 1 || rows <= simHeaderRows+2 {
		return cellWidth, cellHeight
	}

	cellWidth = max(4, ceilDiv(layoutWidth, cols-1))
	cellHeight = max(2*cellWidth, ceilDiv(layoutHeight, rows-simHeaderRows-2))
	return cellWidth, cellHeight
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (m *simModel) Init() tea.Cmd {
	return nil
}

func (m *simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.MouseMsg:
		if ev, ok := m.pointerFor(msg); ok {
			m.cfg.Surface.HandlePointer(ev)
		}
	case hostEventMsg:
		ev := host.Event(msg)
		m.cfg.State.Apply(ev)
		if err := m.cfg.Dispatcher.Handle(ev); err != nil {
			m.status = err.Error()
		}
	}
	return m, nil
}

// pointerFor converts a left-button mouse event to a surface event at the
// center of the cell under the mouse.
func (m *simModel) pointerFor(msg tea.MouseMsg) (gesture.PointerEvent, bool) {
	ev := gesture.PointerEvent{
		X:  msg.X*m.cfg.CellWidth + m.cfg.CellWidth/2,
		Y:  (msg.Y-simHeaderRows)*m.cfg.CellHeight + m.cfg.CellHeight/2,
		At: m.cfg.Clock.Now(),
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ev, false
		}
		m.dragging = true
		ev.Phase = gesture.PhaseDown
	case tea.MouseActionMotion:
		if !m.dragging {
			return ev, false
		}
		ev.Phase = gesture.PhaseMove
	case tea.MouseActionRelease:
		if !m.dragging {
			return ev, false
		}
		m.dragging = false
		ev.Phase = gesture.PhaseUp
	default:
		return ev, false
	}
	return ev, true
}

func (m *simModel) View() string {
	var sc render.Scene
	m.cfg.Surface.View(func(l *layout.Layout, origin gesture.Point) {
		sc = render.NewScene(l, origin)
		m.cfg.State.Decorate(&sc)
	})

	var b strings.Builder
	b.WriteString(Title("tapboard simulator"))
	b.WriteString("  ")
	b.WriteString(Muted(fmt.Sprintf("shift: %s  esc to quit", m.cfg.Dispatcher.Shift())))
	b.WriteString("\n")
	b.WriteString(Subtitle("> ") + m.cfg.Editor.Line())
	b.WriteString("\n\n")

	for _, line := range styleGrid(cellGrid(sc, m.cfg.CellWidth, m.cfg.CellHeight)) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if sent := m.cfg.Editor.Sent(); len(sent) > 0 {
		b.WriteString(Muted("sent: " + strings.Join(sent[max(0, len(sent)-5):], " ")))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(Error(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

type cellClass int

const (
	cellEmpty cellClass = iota
	cellKey
	cellPressed
	cellPanel
	cellSelected
	cellPreview
)

// grid is a scene rasterized to terminal cells.
type grid struct {
	runes   [][]rune
	classes [][]cellClass
}

func newGrid(cols, rows int) *grid {
	g := &grid{
		runes:   make([][]rune, rows),
		classes: make([][]cellClass, rows),
	}
	for r := range g.runes {
		g.runes[r] = []rune(strings.Repeat(" ", cols))
		g.classes[r] = make([]cellClass, cols)
	}
	return g
}

// box fills the cells covered by a pixel rectangle and centers label in it.
// Boxes wider or taller than one cell leave their last column or row empty
// so neighbours stay apart.
func (g *grid) box(x, y, w, h, cw, ch int, class cellClass, label string, gap bool) {
	c0, c1 := x/cw, (x+w)/cw
	r0, r1 := y/ch, (y+h)/ch
	if gap && c1-c0 > 1 {
		c1--
	}
	if gap && r1-r0 > 1 {
		r1--
	}
	c1 = max(c1, c0+1)
	r1 = max(r1, r0+1)

	for r := max(0, r0); r < min(r1, len(g.runes)); r++ {
		for c := max(0, c0); c < min(c1, len(g.runes[r])); c++ {
			g.runes[r][c] = ' '
			g.classes[r][c] = class
		}
	}

	if label == "" {
		return
	}
	row := r0 + (r1-r0-1)/2
	if row < 0 || row >= len(g.runes) {
		return
	}
	runes := []rune(label)
	if len(runes) > c1-c0 {
		runes = runes[:c1-c0]
	}
	start := c0 + (c1-c0-len(runes))/2
	for i, r := range runes {
		if c := start + i; c >= 0 && c < len(g.runes[row]) {
			g.runes[row][c] = r
		}
	}
}

func cellGrid(sc render.Scene, cw, ch int) *grid {
	g := newGrid(ceilDiv(sc.Width, cw), ceilDiv(sc.Height, ch))

	for _, k := range sc.Keys {
		class := cellKey
		if k.Pressed || k.Focused {
			class = cellPressed
		}
		g.box(k.X, k.Y, k.Width, k.Height, cw, ch, class, k.Label, true)
	}

	if p := sc.Panel; p != nil {
		for i, k := range p.Keys {
			class := cellPanel
			if i == p.Selected {
				class = cellSelected
			}
			g.box(k.X, k.Y, k.Width, k.Height, cw, ch, class, k.Label, false)
		}
	}

	if pv := sc.Preview; pv != nil {
		text := pv.Text
		if text == "" {
			text = pv.Icon
		}
		g.box(pv.Anchor.X, pv.Anchor.Y, pv.Width, pv.Height, cw, ch, cellPreview, text, false)
	}

	return g
}

// styleGrid renders each row, styling runs of cells that share a class.
func styleGrid(g *grid) []string {
	lines := make([]string, len(g.runes))
	for r, row := range g.runes {
		var b strings.Builder
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && g.classes[r][c] == g.classes[r][start] {
				continue
			}
			b.WriteString(cellStyles[g.classes[r][start]].Render(string(row[start:c])))
			start = c
		}
		lines[r] = b.String()
	}
	return lines
}

// String returns the grid without styling.
func (g *grid) String() string {
	lines := make([]string, len(g.runes))
	for r, row := range g.runes {
		lines[r] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
