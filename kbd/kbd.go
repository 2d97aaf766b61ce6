// Package kbd translates PC keyboard scancodes (set 1, US layout).
package kbd

const (
	// Release is set in the scancode of a key release.
	Release = 0x80

	LeftShift = 0x2a
	Enter     = 0x1c
	Backspace = 0x0e
)

// table maps make codes to unshifted characters. Zero means none.
var table = [0x59]byte{
	0, 0, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', 0,
	0, 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n',
	0, 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`',
	0, '\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0,
	'*', 0, ' ',
	// 0x3a..0x58: caps lock, function keys, keypad, F11, F12.
}

// Decode returns the character for scancode sc. It does not distinguish
// press from release; callers should drop codes with the Release bit set.
func Decode(sc byte) (byte, bool) {
	if int(sc) >= len(table) {
		return 0, false
	}
	c := table[sc]
	return c, c != 0
}

// Encode returns the make code that produces r, and whether the
// key must be pressed with shift held.
func Encode(r rune) (sc byte, shift, ok bool) {
	switch {
	case r == '\r':
		r = '\n'
	case r >= 'A' && r <= 'Z':
		r += 'a' - 'A'
		shift = true
	}
	if r <= 0 || r > 0x7f {
		return 0, false, false
	}
	sc, ok = reverse[byte(r)]
	return sc, shift, ok
}

// Strokes returns the make/break sequence that types r.
func Strokes(r rune) []byte {
	if r == '\b' || r == 0x7f {
		return []byte{Backspace, Backspace | Release}
	}
	sc, shift, ok := Encode(r)
	if !ok {
		return nil
	}
	if shift {
		return []byte{LeftShift, sc, sc | Release, LeftShift | Release}
	}
	return []byte{sc, sc | Release}
}

var reverse = func() map[byte]byte {
	m := make(map[byte]byte)
	for sc, c := range table {
		if c != 0 {
			m[c] = byte(sc)
		}
	}
	return m
}()
