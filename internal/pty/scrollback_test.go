package pty

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollback(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		writes []string
		want   string
	}{
		{"empty", 5, nil, ""},
		{"partial", 5, []string{"abc"}, "abc"},
		{"exact", 5, []string{"12345"}, "12345"},
		{"oversized write", 5, []string{"hello world"}, "world"},
		{"wraps", 5, []string{"abc", "xyz"}, "bcxyz"},
		{"fills to the end", 5, []string{"ab", "cde"}, "abcde"},
		{"many writes", 10, []string{"hello", " ", "world"}, "ello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScrollback(tt.size)
			for _, w := range tt.writes {
				n, err := s.Write([]byte(w))
				assert.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tt.want, s.String())
			assert.Equal(t, len(tt.want), s.Len())
		})
	}
}

func TestScrollbackIsWriter(t *testing.T) {
	s := NewScrollback(8)
	_, err := io.Copy(s, strings.NewReader("STATUS: ok\n"))
	assert.NoError(t, err)
	assert.Equal(t, "TUS: ok\n", s.String())
}
