package shell

const (
	dumpRowLen = 16
	// dumpLastRow is the offset of the last row Dump will print; the
	// screen has no scrollback so longer dumps are cut short.
	dumpLastRow = 160
)

// Dump prints length bytes of memory starting at addr as rows of hex and
// ASCII. At most 11 rows are printed; a notice is shown if bytes remain.
func (s *Shell) Dump(addr, length uint32) {
	s.Con.WriteString("Memory at "+FormatHex(addr)+", "+FormatDec(length)+" bytes:\n", attrTitle)
	for off := uint32(0); off < length; off += dumpRowLen {
		if off > dumpLastRow {
			s.Con.WriteString("-- truncated: at most "+FormatDec(dumpLastRow+dumpRowLen)+
				" bytes shown --\n", attrNote)
			return
		}
		s.dumpRow(addr+off, length-off)
	}
}

func (s *Shell) dumpRow(addr, remain uint32) {
	n := uint32(dumpRowLen)
	if remain < n {
		n = remain
	}
	var row [dumpRowLen]byte
	for i := uint32(0); i < n; i++ {
		row[i] = s.Mem.Peek(addr + i)
	}

	s.Con.WriteString(FormatHex(addr)+": ", attrAddr)
	for i := uint32(0); i < dumpRowLen; i++ {
		if i < n {
			s.Con.WriteString(FormatByte(row[i])+" ", attrText)
		} else {
			s.Con.WriteString("   ", attrText)
		}
		if i == 7 {
			s.Con.WriteChar(' ', attrText)
		}
	}
	s.Con.WriteChar('|', attrText)
	for i := uint32(0); i < dumpRowLen; i++ {
		c := byte(' ')
		if i < n {
			c = row[i]
			if c < 32 || c > 126 {
				c = '.'
			}
		}
		s.Con.WriteChar(c, attrASCII)
	}
	s.Con.WriteString("|\n", attrText)
}
