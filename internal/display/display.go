// Package display describes what the 128x64 monochrome screen shows.
//
// Screens are built as a Frame: an ordered list of drawing elements in
// device pixels. A Display renders complete frames; the state machine never
// draws partial updates.
package display

import "strings"

// Screen geometry and the built-in font cell at size 1.
const (
	Width      = 128
	Height     = 64
	CharWidth  = 6
	CharHeight = 8
)

// Element types.
const (
	KindText     = "text"
	KindLine     = "line"
	KindRect     = "rect"
	KindFillRect = "fill"
	KindBitmap   = "bitmap"
)

// Element is one drawing primitive.
type Element struct {
	Kind   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Size   int    `json:"size,omitempty"`
	Value  string `json:"value,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	// Bitmap is 1 bit per pixel, MSB first, rows padded to whole bytes.
	Bitmap []byte `json:"bitmap,omitempty"`
}

// Frame is a complete screen.
type Frame struct {
	Elements []Element `json:"elements"`
}

// Display renders frames.
type Display interface {
	Show(f Frame) error
	Close() error
}

// Text adds s at x,y with the given font size (minimum 1).
func (f *Frame) Text(x, y, size int, s string) {
	if size < 1 {
		size = 1
	}
	f.Elements = append(f.Elements, Element{Kind: KindText, X: x, Y: y, Size: size, Value: s})
}

// Centered adds s horizontally centred on row y.
func (f *Frame) Centered(y, size int, s string) {
	f.Text(CenterX(s, size), y, size, s)
}

// Rule adds a horizontal line across the screen at y.
func (f *Frame) Rule(y int) {
	f.Elements = append(f.Elements, Element{Kind: KindLine, X: 0, Y: y, Width: Width, Height: 1})
}

// Rect adds an outlined rectangle.
func (f *Frame) Rect(x, y, w, h int) {
	f.Elements = append(f.Elements, Element{Kind: KindRect, X: x, Y: y, Width: w, Height: h})
}

// FillRect adds a solid rectangle.
func (f *Frame) FillRect(x, y, w, h int) {
	f.Elements = append(f.Elements, Element{Kind: KindFillRect, X: x, Y: y, Width: w, Height: h})
}

// Progress adds a framed bar filled to percent (0..100).
func (f *Frame) Progress(x, y, w, h, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	f.Rect(x, y, w, h)
	if fill := (w - 2) * percent / 100; fill > 0 {
		f.FillRect(x+1, y+1, fill, h-2)
	}
}

// Add appends a prepared element, e.g. a QR bitmap.
func (f *Frame) Add(e Element) {
	f.Elements = append(f.Elements, e)
}

// Lines returns the text elements in drawing order.
func (f Frame) Lines() []string {
	var lines []string
	for _, e := range f.Elements {
		if e.Kind == KindText {
			lines = append(lines, e.Value)
		}
	}
	return lines
}

// String renders the text content one element per line.
func (f Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

// CenterX returns the x position that centres s at the given font size.
// Text wider than the screen starts at 0.
func CenterX(s string, size int) int {
	if size < 1 {
		size = 1
	}
	w := len([]rune(s)) * CharWidth * size
	if w >= Width {
		return 0
	}
	return (Width - w) / 2
}
