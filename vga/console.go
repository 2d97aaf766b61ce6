package vga

import "strings"

// Surface is the display memory a Console draws into.
type Surface interface {
	// Put stores cell at the given linear offset.
	Put(offset int, cell uint16)
	// SetCursor moves the hardware text cursor.
	SetCursor(offset int)
	// Base returns the physical address of the first cell.
	Base() uint32
}

// Console writes characters to a Surface at a linear cursor.
// Writing past the last cell wraps to the first; there is no scrolling.
type Console struct {
	surf   Surface
	cursor int
}

func NewConsole(s Surface) *Console { return &Console{surf: s} }

func (c *Console) Surface() Surface { return c.surf }
func (c *Console) Cursor() int      { return c.cursor }

// Clear fills the grid with blanks in DefaultAttr and homes the cursor.
func (c *Console) Clear() {
	blank := Cell(' ', DefaultAttr)
	for i := 0; i < Cells; i++ {
		c.surf.Put(i, blank)
	}
	c.cursor = 0
	c.surf.SetCursor(0)
}

// WriteChar writes ch at the cursor, or moves to the next row if ch is '\n'.
func (c *Console) WriteChar(ch byte, a Attr) {
	if ch == '\n' {
		c.cursor = (c.cursor/Width + 1) * Width
	} else {
		c.surf.Put(c.cursor, Cell(ch, a))
		c.cursor++
	}
	if c.cursor >= Cells {
		c.cursor = 0
	}
	c.surf.SetCursor(c.cursor)
}

func (c *Console) WriteString(s string, a Attr) {
	for i := 0; i < len(s); i++ {
		c.WriteChar(s[i], a)
	}
}

// Buffer is an in-memory Surface.
type Buffer struct {
	Cells  [Cells]uint16
	Cursor int
	Addr   uint32
}

func (b *Buffer) Put(offset int, cell uint16) { b.Cells[offset] = cell }
func (b *Buffer) SetCursor(offset int)        { b.Cursor = offset }
func (b *Buffer) Base() uint32                { return b.Addr }

// Row returns the characters of row y with trailing blanks removed.
func (b *Buffer) Row(y int) string { return RowText(b.Cells[:], y) }

// Text returns all rows joined by newlines, trailing blank rows removed.
func (b *Buffer) Text() string { return ScreenText(b.Cells[:]) }

// RowText renders row y of cells as text. NUL characters render as blanks.
func RowText(cells []uint16, y int) string {
	var row [Width]byte
	for x := range row {
		ch, _ := SplitCell(cells[y*Width+x])
		if ch == 0 {
			ch = ' '
		}
		row[x] = ch
	}
	return strings.TrimRight(string(row[:]), " ")
}

// ScreenText renders all rows of cells.
func ScreenText(cells []uint16) string {
	rows := make([]string, Height)
	for y := range rows {
		rows[y] = RowText(cells, y)
	}
	n := len(rows)
	for n > 0 && rows[n-1] == "" {
		n--
	}
	return strings.Join(rows[:n], "\n")
}
