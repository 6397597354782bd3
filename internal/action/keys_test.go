package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want KeyPress
		err  error
	}{
		{in: "a", want: KeyPress{Key: "a"}},
		{in: "A", want: KeyPress{Key: "a"}},
		{in: "5", want: KeyPress{Key: "5"}},
		{in: "É", want: KeyPress{Key: "é"}},
		{in: "enter", want: KeyPress{Key: "enter"}},
		{in: "Escape", want: KeyPress{Key: "escape"}},
		{in: "f12", want: KeyPress{Key: "f12"}},
		{in: "ctrl+c", want: KeyPress{Ctrl: true, Key: "c"}},
		{in: "control + e", want: KeyPress{Ctrl: true, Key: "e"}},
		{in: "option+left", want: KeyPress{Alt: true, Key: "left"}},
		{in: "shift+tab", want: KeyPress{Shift: true, Key: "tab"}},
		{in: "cmd+q", want: KeyPress{Meta: true, Key: "q"}},
		{in: "ctrl+alt+shift+super+x", want: KeyPress{Ctrl: true, Alt: true, Shift: true, Meta: true, Key: "x"}},

		{in: "", err: ErrNoKey},
		{in: "ctrl+", err: ErrNoKey},
		{in: "hyper+a", err: ErrUnknownModifier},
		{in: "f13", err: ErrUnknownKey},
		{in: "ctrl+page_up", err: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Keys as they appear in the actions section of the config, and the bytes
// the TUI receives for them.
func TestKeyBytes(t *testing.T) {
	tests := map[string]string{
		"x":          "x",
		"shift+a":    "A",
		"é":          "é",
		"shift+é":    "É",
		"alt+x":      "\x1bx",
		"alt+ñ":      "\x1bñ",
		"ctrl+a":     "\x01",
		"ctrl+c":     "\x03",
		"ctrl+e":     "\x05",
		"ctrl+z":     "\x1a",
		"ctrl+[":     "\x1b",
		"ctrl+]":     "\x1d",
		"ctrl+?":     "\x7f",
		"ctrl+enter": "\r",
		"enter":      "\r",
		"return":     "\r",
		"tab":        "\t",
		"esc":        "\x1b",
		"space":      " ",
		"backspace":  "\x7f",
		"up":         "\x1b[A",
		"down":       "\x1b[B",
		"right":      "\x1b[C",
		"left":       "\x1b[D",
		"home":       "\x1b[H",
		"end":        "\x1b[F",
		"pgup":       "\x1b[5~",
		"pagedown":   "\x1b[6~",
		"del":        "\x1b[3~",
		"insert":     "\x1b[2~",
		"f1":         "\x1bOP",
		"f4":         "\x1bOS",
		"f5":         "\x1b[15~",
		"f12":        "\x1b[24~",
	}

	for in, want := range tests {
		kp, err := ParseKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte(want), kp.ToBytes(), in)
	}
}

func TestToBytesWithoutEncoding(t *testing.T) {
	assert.Nil(t, KeyPress{Key: "hyper"}.ToBytes())
	assert.Nil(t, KeyPress{Key: ""}.ToBytes())
}

func TestToBytesCopiesSequence(t *testing.T) {
	b := KeyPress{Key: "up"}.ToBytes()
	b[0] = 'x'
	assert.Equal(t, []byte("\x1b[A"), KeyPress{Key: "up"}.ToBytes())
}

func TestIsValidKey(t *testing.T) {
	for _, k := range []string{"a", "/", "é", "⏎", "enter", "pgdn", "f10"} {
		assert.True(t, isValidKey(k), k)
	}
	for _, k := range []string{"", "ctrl", "f13", "page_up", "ab"} {
		assert.False(t, isValidKey(k), k)
	}
}

func TestKeyPressStringRoundTrip(t *testing.T) {
	for _, in := range []string{"a", "ctrl+c", "ctrl+alt+shift+meta+f5", "enter"} {
		kp, err := ParseKey(in)
		require.NoError(t, err)
		assert.Equal(t, in, kp.String())
	}
}
