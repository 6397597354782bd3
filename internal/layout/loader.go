package layout

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoRows    = errors.New("layout has no rows")
	ErrNoCode    = errors.New("key has no code, action or label")
	ErrBadSize   = errors.New("key size must be positive")
	ErrBadAction = errors.New("unknown key action")
)

// File is the declarative form of a layout.
type File struct {
	Name          string `yaml:"name"`
	KeyWidth      int    `yaml:"key_width"`
	KeyHeight     int    `yaml:"key_height"`
	HorizontalGap int    `yaml:"horizontal_gap,omitempty"`
	VerticalGap   int    `yaml:"vertical_gap,omitempty"`
	Rows          []Row  `yaml:"rows"`
}

type Row struct {
	Height int       `yaml:"height,omitempty"`
	Keys   []KeySpec `yaml:"keys"`
}

type KeySpec struct {
	Codes      []int  `yaml:"codes,omitempty"`
	Action     string `yaml:"action,omitempty"`
	Label      string `yaml:"label,omitempty"`
	Text       string `yaml:"text,omitempty"`
	Icon       string `yaml:"icon,omitempty"`
	SmallLabel string `yaml:"small_label,omitempty"`
	Popup      string `yaml:"popup,omitempty"`
	Width      int    `yaml:"width,omitempty"`
	Repeatable bool   `yaml:"repeatable,omitempty"`
}

var actionCodes = map[string]int{
	"shift":       CodeShift,
	"mode_change": CodeModeChange,
	"enter":       CodeEnter,
	"delete":      CodeDelete,
	"emoji":       CodeEmoji,
	"space":       CodeSpace,
}

// LoadFile reads and builds a layout from a YAML file.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse builds a layout from YAML.
func Parse(data []byte) (*Layout, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return f.Build()
}

// Build positions the keys row by row and returns the layout.
func (f *File) Build() (*Layout, error) {
	if len(f.Rows) == 0 {
		return nil, ErrNoRows
	}

	var keys []*Key
	y := 0
	for r, row := range f.Rows {
		height := row.Height
		if height == 0 {
			height = f.KeyHeight
		}
		if height <= 0 {
			return nil, fmt.Errorf("row %d: %w", r, ErrBadSize)
		}

		x := 0
		for c, spec := range row.Keys {
			key, err := spec.build(f.KeyWidth, height, f.HorizontalGap)
			if err != nil {
				return nil, fmt.Errorf("row %d key %d: %w", r, c, err)
			}
			key.X = x + f.HorizontalGap/2
			key.Y = y
			x += key.Width + key.Gap
			keys = append(keys, key)
		}
		y += height + f.VerticalGap
	}

	return New(f.Name, keys), nil
}

func (s KeySpec) build(defaultWidth, height, gap int) (*Key, error) {
	width := s.Width
	if width == 0 {
		width = defaultWidth
	}
	if width <= 0 {
		return nil, ErrBadSize
	}

	codes, err := s.codes()
	if err != nil {
		return nil, err
	}

	return &Key{
		Width:      width - gap,
		Height:     height,
		Gap:        gap,
		Codes:      codes,
		Label:      s.Label,
		Text:       s.Text,
		Icon:       s.Icon,
		SmallLabel: s.SmallLabel,
		Popup:      s.Popup,
		Repeatable: s.Repeatable,
	}, nil
}

func (s KeySpec) codes() ([]int, error) {
	if len(s.Codes) > 0 {
		return s.Codes, nil
	}
	if s.Action != "" {
		code, ok := actionCodes[s.Action]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadAction, s.Action)
		}
		return []int{code}, nil
	}
	if s.Label != "" {
		r, _ := utf8.DecodeRuneInString(s.Label)
		return []int{int(r)}, nil
	}
	if s.Text != "" {
		r, _ := utf8.DecodeRuneInString(s.Text)
		return []int{int(r)}, nil
	}
	return nil, ErrNoCode
}
