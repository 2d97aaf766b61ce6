// Package vga implements a text-mode console over an 80x25 grid of
// character cells.
package vga

import "image/color"

const (
	Width  = 80
	Height = 25
	Cells  = Width * Height

	// TextBase is the physical address of the colour text window.
	TextBase = 0xB8000
)

// Color is one of the 16 VGA text colours.
type Color byte

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

// Attr is a cell attribute: background in the high nibble,
// foreground in the low nibble.
type Attr byte

// MakeAttr returns the attribute for fg on bg.
func MakeAttr(fg, bg Color) Attr { return Attr(bg&0xf)<<4 | Attr(fg&0xf) }

func (a Attr) Fg() Color { return Color(a & 0xf) }
func (a Attr) Bg() Color { return Color(a >> 4) }

// DefaultAttr is light gray on black, used by Clear.
var DefaultAttr = MakeAttr(LightGray, Black)

// Cell packs a character and attribute the way the hardware stores them.
func Cell(c byte, a Attr) uint16 { return uint16(a)<<8 | uint16(c) }

// SplitCell is the inverse of Cell.
func SplitCell(v uint16) (c byte, a Attr) { return byte(v), Attr(v >> 8) }

// Palette holds the standard VGA text palette.
var Palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xaa, 0xff},
	{0x00, 0xaa, 0x00, 0xff},
	{0x00, 0xaa, 0xaa, 0xff},
	{0xaa, 0x00, 0x00, 0xff},
	{0xaa, 0x00, 0xaa, 0xff},
	{0xaa, 0x55, 0x00, 0xff},
	{0xaa, 0xaa, 0xaa, 0xff},
	{0x55, 0x55, 0x55, 0xff},
	{0x55, 0x55, 0xff, 0xff},
	{0x55, 0xff, 0x55, 0xff},
	{0x55, 0xff, 0xff, 0xff},
	{0xff, 0x55, 0x55, 0xff},
	{0xff, 0x55, 0xff, 0xff},
	{0xff, 0xff, 0x55, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}
