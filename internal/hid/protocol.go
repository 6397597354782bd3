package hid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/pleimann/tapboard/internal/gesture"
)

// Report IDs
const (
	ReportIDDisplay byte = 0x02
	ReportIDTouch   byte = 0x03
)

// Touch phases as sent by the digitizer
const (
	TouchPhaseDown   byte = 0x01
	TouchPhaseMove   byte = 0x02
	TouchPhaseUp     byte = 0x03
	TouchPhaseCancel byte = 0x04
)

// Display commands
const (
	DisplayCmdFullFrame byte = 0x01
	DisplayCmdPartial   byte = 0x02
	DisplayCmdClear     byte = 0x03
)

// TouchReportSize is the length of a touch report including the report ID.
const TouchReportSize = 11

var (
	ErrShortReport = errors.New("report too short")
	ErrReportID    = errors.New("unexpected report ID")
	ErrPhase       = errors.New("unknown touch phase")
	ErrClosed      = errors.New("device closed")
)

// TouchEvent is one contact update from the touch overlay.
type TouchEvent struct {
	Phase     TouchPhase
	Pointer   uint8
	X         uint16
	Y         uint16
	Timestamp uint32 // ms since device boot
}

type TouchPhase byte

const (
	Down   TouchPhase = TouchPhase(TouchPhaseDown)
	Move   TouchPhase = TouchPhase(TouchPhaseMove)
	Up     TouchPhase = TouchPhase(TouchPhaseUp)
	Cancel TouchPhase = TouchPhase(TouchPhaseCancel)
)

func (p TouchPhase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ParseTouch parses a raw HID report into a TouchEvent
// Expected format:
//
//	Byte 0: Report ID (0x03)
//	Byte 1: Phase (0x01=down, 0x02=move, 0x03=up, 0x04=cancel)
//	Byte 2: Pointer ID
//	Byte 3-4: X (little-endian u16)
//	Byte 5-6: Y (little-endian u16)
//	Byte 7-10: Timestamp (ms since boot, little-endian u32)
func ParseTouch(data []byte) (*TouchEvent, error) {
	if len(data) < TouchReportSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortReport, len(data))
	}

	if data[0] != ReportIDTouch {
		return nil, fmt.Errorf("%w: 0x%02X", ErrReportID, data[0])
	}

	phase := data[1]
	if phase < TouchPhaseDown || phase > TouchPhaseCancel {
		return nil, fmt.Errorf("%w: 0x%02X", ErrPhase, phase)
	}

	return &TouchEvent{
		Phase:     TouchPhase(phase),
		Pointer:   data[2],
		X:         binary.LittleEndian.Uint16(data[3:5]),
		Y:         binary.LittleEndian.Uint16(data[5:7]),
		Timestamp: binary.LittleEndian.Uint32(data[7:11]),
	}, nil
}

// Encode serializes the event in the wire format ParseTouch reads.
func (e *TouchEvent) Encode() []byte {
	buf := make([]byte, TouchReportSize)
	buf[0] = ReportIDTouch
	buf[1] = byte(e.Phase)
	buf[2] = e.Pointer
	binary.LittleEndian.PutUint16(buf[3:5], e.X)
	binary.LittleEndian.PutUint16(buf[5:7], e.Y)
	binary.LittleEndian.PutUint32(buf[7:11], e.Timestamp)
	return buf
}

// Scale maps raw digitizer coordinates onto layout pixels. The zero value
// leaves coordinates unchanged.
type Scale struct {
	TouchWidth   int
	TouchHeight  int
	LayoutWidth  int
	LayoutHeight int
}

func (s Scale) apply(x, y int) (int, int) {
	if s.TouchWidth <= 0 || s.TouchHeight <= 0 || s.LayoutWidth <= 0 || s.LayoutHeight <= 0 {
		return x, y
	}
	return x * s.LayoutWidth / s.TouchWidth, y * s.LayoutHeight / s.TouchHeight
}

// PointerEvent converts the report into a surface event stamped at, which
// must share the surface clock's epoch.
func (e *TouchEvent) PointerEvent(at time.Duration, scale Scale) gesture.PointerEvent {
	x, y := scale.apply(int(e.X), int(e.Y))

	phase := gesture.PhaseCancel
	switch e.Phase {
	case Down:
		phase = gesture.PhaseDown
	case Move:
		phase = gesture.PhaseMove
	case Up:
		phase = gesture.PhaseUp
	}

	return gesture.PointerEvent{
		Phase:   phase,
		X:       x,
		Y:       y,
		Pointer: int(e.Pointer),
		At:      at,
	}
}

// DisplayFrame represents a frame to be sent to the device display
type DisplayFrame struct {
	Command byte
	X       uint16
	Y       uint16
	Width   uint16
	Height  uint16
	Data    []byte // 1-bit packed pixel data, row-major
}

// DisplayHeaderSize is the length of an encoded DisplayFrame without pixels.
const DisplayHeaderSize = 10

// MaxReportSize is the largest report the device accepts.
const MaxReportSize = 64

// Encode serializes the DisplayFrame for transmission
// Format:
//
//	Byte 0: Report ID (0x02)
//	Byte 1: Command (0x01=full frame, 0x02=partial, 0x03=clear)
//	Byte 2-3: X offset (for partial)
//	Byte 4-5: Y offset (for partial)
//	Byte 6-7: Width
//	Byte 8-9: Height
//	Byte 10+: Pixel data (1-bit packed, row-major)
func (f *DisplayFrame) Encode() []byte {
	buf := make([]byte, DisplayHeaderSize+len(f.Data))

	buf[0] = ReportIDDisplay
	buf[1] = f.Command
	binary.LittleEndian.PutUint16(buf[2:4], f.X)
	binary.LittleEndian.PutUint16(buf[4:6], f.Y)
	binary.LittleEndian.PutUint16(buf[6:8], f.Width)
	binary.LittleEndian.PutUint16(buf[8:10], f.Height)
	copy(buf[DisplayHeaderSize:], f.Data)

	return buf
}

// NewPartialFrame creates a partial frame display update
func NewPartialFrame(x, y, width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdPartial,
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Data:    data,
	}
}

// NewClearCommand creates a display clear command
func NewClearCommand() *DisplayFrame {
	return &DisplayFrame{Command: DisplayCmdClear}
}

// ChunkFrame splits a packed 1-bit frame of width×height pixels into partial
// frames that each fit in one report.
func ChunkFrame(width, height int, data []byte) []*DisplayFrame {
	bytesPerRow := (width + 7) / 8
	if bytesPerRow == 0 {
		return nil
	}
	rowsPerChunk := max(1, (MaxReportSize-DisplayHeaderSize)/bytesPerRow)

	var frames []*DisplayFrame
	for y := 0; y < height; y += rowsPerChunk {
		chunkHeight := min(rowsPerChunk, height-y)

		start := min(y*bytesPerRow, len(data))
		end := min((y+chunkHeight)*bytesPerRow, len(data))

		frames = append(frames, NewPartialFrame(0, uint16(y), uint16(width), uint16(chunkHeight), data[start:end]))
	}
	return frames
}
