package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 64

var (
	iconFill  = color.RGBA{R: 0, G: 122, B: 204, A: 255}
	iconFrame = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// IconImage draws the tray icon: a blue square with a white inner frame.
func IconImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	const lo, hi, width = 12, 52, 3
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			c := iconFill
			inBox := x >= lo && x <= hi && y >= lo && y <= hi
			inHole := x >= lo+width && x <= hi-width && y >= lo+width && y <= hi-width
			if inBox && !inHole {
				c = iconFrame
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// IconPNG encodes IconImage.
func IconPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, IconImage()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WrapICO puts a single PNG image into an ICO container, which the Windows
// tray requires. Other platforms accept the ICO bytes as well.
func WrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon bytes, or nil if encoding failed.
func Icon() []byte {
	data, err := IconPNG()
	if err != nil {
		return nil
	}
	return WrapICO(data, iconSize)
}
