package shell

import (
	"fmt"
	"strings"
	"testing"
)

func TestDumpRows(t *testing.T) {
	for _, c := range []struct {
		length uint32
		rows   int
		notice bool
	}{
		{0, 0, false},
		{1, 1, false},
		{16, 1, false},
		{17, 2, false},
		{128, 8, false},
		{176, 11, false},
		{177, 11, true},
		{1000, 11, true},
		{0xffffffff, 11, true},
	} {
		t.Run(fmt.Sprint(c.length), func(t *testing.T) {
			s := newTestShell()
			s.Dump(0x2000, c.length)
			rows := s.rows()
			if got, want := rows[0], fmt.Sprintf("Memory at 0x00002000, %d bytes:", c.length); got != want {
				t.Errorf("header == %q, want %q", got, want)
			}
			n := 0
			for _, r := range rows[1:] {
				if strings.HasPrefix(r, "0x") {
					n++
				}
			}
			if n != c.rows {
				t.Errorf("got %d rows, want %d:\n%s", n, c.rows, s.buf.Text())
			}
			last := rows[len(rows)-1]
			notice := last == "-- truncated: at most 176 bytes shown --"
			if notice != c.notice {
				t.Errorf("last row == %q, notice %v, want %v", last, notice, c.notice)
			}
		})
	}
}

func TestDumpRowFormat(t *testing.T) {
	s := newTestShell()
	for i, b := range []byte("Hello\x00\x7f ABCDEFGHxyz") {
		s.mem[0x1000+uint32(i)] = b
	}
	s.Dump(0x1000, 19)
	rows := s.rows()

	want := "0x00001000: 48 65 6C 6C 6F 00 7F 20  41 42 43 44 45 46 47 48 |Hello.. ABCDEFGH|"
	if rows[1] != want {
		t.Errorf("row 1 ==\n%q, want\n%q", rows[1], want)
	}
	want = "0x00001010: 78 79 7A " + strings.Repeat("   ", 5) + " " + strings.Repeat("   ", 8) +
		"|xyz" + strings.Repeat(" ", 13) + "|"
	if rows[2] != want {
		t.Errorf("row 2 ==\n%q, want\n%q", rows[2], want)
	}
	for i, r := range rows[1:3] {
		if len(r) != 79 {
			t.Errorf("row %d is %d columns, want 79", i+1, len(r))
		}
	}
}

func TestDumpWrapsAddress(t *testing.T) {
	s := newTestShell()
	s.mem[0xffffffff] = 'A'
	s.mem[0] = 'B'
	s.Dump(0xfffffff0, 32)
	rows := s.rows()
	if !strings.HasPrefix(rows[1], "0xFFFFFFF0: ") || !strings.HasSuffix(rows[1], "...............A|") {
		t.Errorf("row 1 == %q", rows[1])
	}
	if !strings.HasPrefix(rows[2], "0x00000000: 42 ") {
		t.Errorf("row 2 == %q", rows[2])
	}
}
