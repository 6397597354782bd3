package pty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/pleimann/tapboard/internal/action"
)

var (
	// ErrNotStarted is returned by writes before Start.
	ErrNotStarted = errors.New("PTY not started")
	// ErrExited is returned by Wait once the TUI process has ended.
	ErrExited = errors.New("TUI exited")
)

// ScrollbackSize is how much TUI output is kept for status parsing.
const ScrollbackSize = 4096

const defaultTerm = "xterm-256color"

// Manager runs the TUI in a pseudo terminal. Keys typed on the touch
// keyboard are written to it; its output is kept in a scrollback.
type Manager struct {
	command    string
	args       []string
	workingDir string
	logger     *zap.Logger

	scrollback *Scrollback
	exited     chan struct{}

	mu      sync.Mutex
	ptmx    *os.File
	cmd     *exec.Cmd
	exitErr error
}

// NewManager prepares a manager for command. Nothing runs until Start.
func NewManager(command string, args []string, workingDir string, logger *zap.Logger) (*Manager, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		command:    command,
		args:       args,
		workingDir: workingDir,
		logger:     logger,
		scrollback: NewScrollback(ScrollbackSize),
		exited:     make(chan struct{}),
	}, nil
}

// environ is the TUI's environment: ours, with TERM set when it is missing.
func environ() []string {
	env := os.Environ()
	if os.Getenv("TERM") == "" {
		env = append(env, "TERM="+defaultTerm)
	}
	return env
}

// Start runs the TUI. The process is killed when ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		return fmt.Errorf("TUI already started")
	}

	cmd := exec.CommandContext(ctx, m.command, m.args...)
	cmd.Dir = m.workingDir
	cmd.Env = environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", m.command, err)
	}
	m.ptmx, m.cmd = ptmx, cmd
	m.logger.Info("started TUI", zap.String("command", m.command), zap.Int("pid", cmd.Process.Pid))

	go m.copyOutput(ptmx)
	go m.reap(cmd)
	return nil
}

func (m *Manager) copyOutput(ptmx *os.File) {
	_, err := io.Copy(m.scrollback, ptmx)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		// Linux reports EIO once the TUI side of the terminal is closed.
		m.logger.Debug("PTY output ended", zap.Error(err))
	}
}

func (m *Manager) reap(cmd *exec.Cmd) {
	err := cmd.Wait()

	m.mu.Lock()
	m.exitErr = err
	m.mu.Unlock()

	m.logger.Info("TUI exited", zap.Error(err))
	close(m.exited)
}

// Wait blocks until the TUI exits or ctx is done. It always returns an
// error; ErrExited alone means the TUI exited with status 0.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.exited:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exitErr != nil {
		return fmt.Errorf("%w: %w", ErrExited, m.exitErr)
	}
	return ErrExited
}

// Stop interrupts the TUI and closes the terminal.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			m.logger.Debug("failed to interrupt TUI", zap.Error(err))
		}
	}
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
}

func (m *Manager) write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}
	_, err := m.ptmx.Write(p)
	return err
}

// WriteKey writes the terminal bytes of key.
func (m *Manager) WriteKey(key action.KeyPress) error {
	data := key.ToBytes()
	if data == nil {
		return fmt.Errorf("key %s has no terminal encoding", key)
	}
	return m.write(data)
}

// WriteString writes s as typed text.
func (m *Manager) WriteString(s string) error {
	return m.write([]byte(s))
}

// GetRecentOutput returns the scrollback, oldest first.
func (m *Manager) GetRecentOutput() string {
	return m.scrollback.String()
}

// Resize sets the terminal size the TUI sees.
func (m *Manager) Resize(rows, cols uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}
	return pty.Setsize(m.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// IsRunning reports whether the TUI has started and not yet exited.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	started := m.cmd != nil
	m.mu.Unlock()

	if !started {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}
