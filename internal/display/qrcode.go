package display

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// MaxQRSize bounds the QR bitmap so it fits the screen height.
const MaxQRSize = Height

// QR encodes data as a bitmap element, scaled by a whole factor to at most
// MaxQRSize pixels square and centred on the screen. Dark modules are lit
// pixels.
func QR(data string) (Element, error) {
	if data == "" {
		return Element{}, fmt.Errorf("qr: empty data")
	}

	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return Element{}, fmt.Errorf("qr: %w", err)
	}

	modules := qr.Bitmap()
	n := len(modules)
	if n == 0 {
		return Element{}, fmt.Errorf("qr: empty bitmap")
	}

	scale := MaxQRSize / n
	if scale < 1 {
		scale = 1
	}
	size := n * scale
	if size > MaxQRSize {
		size = MaxQRSize
	}

	bytesPerRow := (size + 7) / 8
	bitmap := make([]byte, bytesPerRow*size)
	for y := 0; y < size; y++ {
		srcY := y / scale
		for x := 0; x < size; x++ {
			srcX := x / scale
			if modules[srcY][srcX] {
				bitmap[y*bytesPerRow+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	return Element{
		Kind:   KindBitmap,
		X:      (Width - size) / 2,
		Y:      (Height - size) / 2,
		Width:  size,
		Height: size,
		Bitmap: bitmap,
	}, nil
}

// Pixel reports whether the bitmap element has the pixel at x,y lit.
// Coordinates are relative to the element.
func (e Element) Pixel(x, y int) bool {
	if e.Kind != KindBitmap || x < 0 || y < 0 || x >= e.Width || y >= e.Height {
		return false
	}
	bytesPerRow := (e.Width + 7) / 8
	return e.Bitmap[y*bytesPerRow+x/8]&(1<<(7-x%8)) != 0
}
