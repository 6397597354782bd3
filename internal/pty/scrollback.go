package pty

import "sync"

// Scrollback keeps the most recent bytes written by the TUI. It is safe for
// concurrent use and is written to by the PTY reader.
type Scrollback struct {
	mu   sync.Mutex
	buf  []byte
	next int
	full bool
}

// NewScrollback returns a scrollback holding the last size bytes.
func NewScrollback(size int) *Scrollback {
	return &Scrollback{buf: make([]byte, size)}
}

// Write appends p, overwriting the oldest bytes once the buffer is full.
func (s *Scrollback) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p)
	if n >= len(s.buf) {
		copy(s.buf, p[n-len(s.buf):])
		s.next, s.full = 0, true
		return n, nil
	}
	c := copy(s.buf[s.next:], p)
	if c < n {
		copy(s.buf, p[c:])
		s.full = true
	}
	if s.next+n >= len(s.buf) {
		s.full = true
	}
	s.next = (s.next + n) % len(s.buf)
	return n, nil
}

// String returns the kept bytes, oldest first.
func (s *Scrollback) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.full {
		return string(s.buf[:s.next])
	}
	out := make([]byte, 0, len(s.buf))
	out = append(out, s.buf[s.next:]...)
	return string(append(out, s.buf[:s.next]...))
}

// Len returns the number of bytes kept.
func (s *Scrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return len(s.buf)
	}
	return s.next
}
