package shell

const hexDigits = "0123456789ABCDEF"

// FormatHex returns n as "0x" followed by exactly 8 uppercase hex digits.
func FormatHex(n uint32) string {
	var b [10]byte
	b[0], b[1] = '0', 'x'
	for i := 9; i >= 2; i-- {
		b[i] = hexDigits[n&0xf]
		n >>= 4
	}
	return string(b[:])
}

// FormatByte returns b as two uppercase hex digits.
func FormatByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}

// FormatDec returns n in decimal without leading zeros.
func FormatDec(n uint32) string {
	if n == 0 {
		return "0"
	}
	var b [10]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// ParseHex parses an optional 0x/0X prefixed hex number, stopping at the
// end of s, a NUL or a space. Bytes that are not hex digits count as 0.
// The result wraps at 32 bits.
func ParseHex(s string) uint32 {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0 || c == ' ' {
			break
		}
		n = n*16 + uint32(hexValue(c))
	}
	return n
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
