package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// StatusBandHeight is the height of the status line drawn under the keys.
const StatusBandHeight = 16

// Renderer draws scenes to a grayscale image that can be packed into a 1-bit
// frame buffer for the device or written out as PNG.
type Renderer struct {
	width  int
	height int
	img    *image.Gray
	face   font.Face
}

var (
	on  = color.Gray{Y: 255}
	off = color.Gray{Y: 0}
)

// NewRenderer creates a new renderer
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:  width,
		height: height,
		img:    image.NewGray(image.Rect(0, 0, width, height)),
		face:   basicfont.Face7x13,
	}
}

// Clear clears the frame buffer
func (r *Renderer) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// Draw renders a full frame: keys, then the open panel, then the preview
// bubble, then the status line.
func (r *Renderer) Draw(sc Scene) {
	r.Clear()

	for _, k := range sc.Keys {
		r.drawKey(k, k.Pressed || k.Focused)
	}

	if p := sc.Panel; p != nil && len(p.Keys) > 0 {
		bounds := keyBounds(p.Keys)
		r.fill(bounds, off)
		for i, k := range p.Keys {
			r.drawKey(k, i == p.Selected)
		}
		r.outline(bounds.Inset(-1))
	}

	if pv := sc.Preview; pv != nil {
		rect := image.Rect(pv.Anchor.X, pv.Anchor.Y, pv.Anchor.X+pv.Width, pv.Anchor.Y+pv.Height)
		r.fill(rect, off)
		r.outline(rect)
		text := pv.Text
		if text == "" {
			text = pv.Icon
		}
		if pv.LargeText {
			r.drawTextScaled(rect, text, 2)
		} else {
			r.drawTextCentered(rect, text, image.White)
		}
	}

	if sc.Status != "" {
		band := image.Rect(0, r.height-StatusBandHeight, r.width, r.height)
		r.fill(band, off)
		r.DrawText(2, r.height-4, sc.Status)
	}
}

func (r *Renderer) drawKey(k KeyView, inverted bool) {
	rect := image.Rect(k.X, k.Y, k.X+k.Width, k.Y+k.Height)
	if inverted {
		r.fill(rect, on)
		r.drawTextCentered(rect, k.Label, image.Black)
		return
	}
	r.outline(rect)
	r.drawTextCentered(rect, k.Label, image.White)
}

func keyBounds(keys []KeyView) image.Rectangle {
	var b image.Rectangle
	for _, k := range keys {
		b = b.Union(image.Rect(k.X, k.Y, k.X+k.Width, k.Y+k.Height))
	}
	return b
}

// DrawText draws text with its baseline at y
func (r *Renderer) DrawText(x, y int, text string) {
	r.drawText(x, y, text, image.White)
}

func (r *Renderer) drawText(x, y int, text string, src image.Image) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  src,
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func (r *Renderer) drawTextCentered(rect image.Rectangle, text string, src image.Image) {
	if text == "" {
		return
	}
	m := r.face.Metrics()
	w := font.MeasureString(r.face, text).Ceil()
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-m.Height.Ceil())/2 + m.Ascent.Ceil()
	r.drawText(x, y, text, src)
}

// drawTextScaled draws text centered in rect, enlarged by factor.
func (r *Renderer) drawTextScaled(rect image.Rectangle, text string, factor int) {
	if text == "" {
		return
	}
	m := r.face.Metrics()
	w := font.MeasureString(r.face, text).Ceil()
	h := m.Height.Ceil()

	small := image.NewGray(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	sw, sh := w*factor, h*factor
	x := rect.Min.X + (rect.Dx()-sw)/2
	y := rect.Min.Y + (rect.Dy()-sh)/2
	dst := image.Rect(x, y, x+sw, y+sh)
	xdraw.NearestNeighbor.Scale(r.img, dst, small, small.Bounds(), xdraw.Over, nil)
}

// DrawRect draws a rectangle outline
func (r *Renderer) DrawRect(x, y, width, height int) {
	r.outline(image.Rect(x, y, x+width, y+height))
}

// FillRect draws a filled rectangle
func (r *Renderer) FillRect(x, y, width, height int) {
	r.fill(image.Rect(x, y, x+width, y+height), on)
}

func (r *Renderer) outline(rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		r.img.SetGray(x, rect.Min.Y, on)
		r.img.SetGray(x, rect.Max.Y-1, on)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		r.img.SetGray(rect.Min.X, y, on)
		r.img.SetGray(rect.Max.X-1, y, on)
	}
}

func (r *Renderer) fill(rect image.Rectangle, c color.Gray) {
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel sets a single pixel
func (r *Renderer) SetPixel(x, y int, lit bool) {
	if lit {
		r.img.SetGray(x, y, on)
	} else {
		r.img.SetGray(x, y, off)
	}
}

// FrameBuffer returns the frame as 1-bit packed data
// Format: row-major, 8 pixels per byte, MSB first
func (r *Renderer) FrameBuffer() []byte {
	bytesPerRow := (r.width + 7) / 8
	data := make([]byte, bytesPerRow*r.height)

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if r.img.GrayAt(x, y).Y > 127 {
				data[y*bytesPerRow+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	return data
}

// Image returns the backing image. It is overwritten by the next Draw.
func (r *Renderer) Image() *image.Gray {
	return r.img
}

// WritePNG encodes the current frame as PNG.
func (r *Renderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Width returns the renderer width
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the renderer height
func (r *Renderer) Height() int {
	return r.height
}
