package pc

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nf/kshell/vga"
)

var face = basicfont.Face7x13

// Size of one character cell in pixels.
var (
	GlyphWidth  = face.Advance
	GlyphHeight = face.Height
)

// FrameSize is the size in pixels of a rendered Frame.
var FrameSize = image.Point{vga.Width * GlyphWidth, vga.Height * GlyphHeight}

var palette [16]*image.Uniform

func init() {
	for i, c := range vga.Palette {
		palette[i] = image.NewUniform(c)
	}
}

// Render draws f into dst, which should be at least FrameSize.
// The cursor is drawn as an underline in the colour of its cell.
func Render(dst draw.Image, f *Frame) {
	d := font.Drawer{Dst: dst, Face: face}
	for i, v := range f.Cells {
		ch, a := vga.SplitCell(v)
		r := cellRect(i)
		draw.Draw(dst, r, palette[a.Bg()], image.Point{}, draw.Src)
		if ch <= ' ' || ch == 0x7f {
			continue
		}
		d.Src = palette[a.Fg()]
		d.Dot = fixed.P(r.Min.X, r.Min.Y+face.Ascent)
		d.DrawString(string(rune(ch)))
	}
	if f.Cursor >= 0 && f.Cursor < vga.Cells {
		_, a := vga.SplitCell(f.Cells[f.Cursor])
		r := cellRect(f.Cursor)
		r.Min.Y = r.Max.Y - 2
		draw.Draw(dst, r, palette[a.Fg()], image.Point{}, draw.Src)
	}
}

func cellRect(i int) image.Rectangle {
	x, y := i%vga.Width*GlyphWidth, i/vga.Width*GlyphHeight
	return image.Rect(x, y, x+GlyphWidth, y+GlyphHeight)
}
