package pc

import "time"

// I/O ports of the devices on the bus.
const (
	PortKbdData   uint16 = 0x60
	PortKbdStatus uint16 = 0x64
	PortCMOSIndex uint16 = 0x70
	PortCMOSData  uint16 = 0x71
	PortCRTCIndex uint16 = 0x3d4
	PortCRTCData  uint16 = 0x3d5
)

// keyboard is the output side of an 8042 controller: a FIFO of scancodes
// with the output-buffer-full status bit.
type keyboard struct {
	queue []byte
	last  byte
}

func (k *keyboard) status() byte {
	if len(k.queue) > 0 {
		return 0x01
	}
	return 0
}

// read pops the next scancode. An empty controller repeats the last byte.
func (k *keyboard) read() byte {
	if len(k.queue) == 0 {
		return k.last
	}
	k.last = k.queue[0]
	k.queue = k.queue[1:]
	return k.last
}

func (k *keyboard) push(codes ...byte) { k.queue = append(k.queue, codes...) }

// cmos is the MC146818 real-time clock, read through an index/data port pair.
type cmos struct {
	index byte
}

const (
	cmosSeconds = 0x00
	cmosMinutes = 0x02
	cmosHours   = 0x04
	cmosWeekday = 0x06
	cmosDay     = 0x07
	cmosMonth   = 0x08
	cmosYear    = 0x09
	cmosStatusA = 0x0a
	cmosStatusB = 0x0b
	cmosCentury = 0x32
)

func (c *cmos) selectReg(b byte) { c.index = b & 0x7f } // bit 7 masks NMI

func (c *cmos) read(t time.Time) byte {
	switch c.index {
	case cmosSeconds:
		return toBCD(t.Second())
	case cmosMinutes:
		return toBCD(t.Minute())
	case cmosHours:
		return toBCD(t.Hour())
	case cmosWeekday:
		return toBCD(int(t.Weekday()) + 1) // Sunday is 1
	case cmosDay:
		return toBCD(t.Day())
	case cmosMonth:
		return toBCD(int(t.Month()))
	case cmosYear:
		return toBCD(t.Year() % 100)
	case cmosCentury:
		return toBCD(t.Year() / 100)
	case cmosStatusA:
		return 0x26 // 32.768kHz base, no update in progress
	case cmosStatusB:
		return 0x02 // 24 hour, BCD
	}
	return 0
}

func toBCD(n int) byte { return byte(n/10)<<4 | byte(n%10) }

// crtc holds the CRT controller registers; only the cursor location
// (0x0e high, 0x0f low) has any effect.
type crtc struct {
	index byte
	regs  [0x19]byte
}

const (
	crtcCursorHi = 0x0e
	crtcCursorLo = 0x0f
)

func (c *crtc) read() byte {
	if int(c.index) < len(c.regs) {
		return c.regs[c.index]
	}
	return 0xff
}

func (c *crtc) write(b byte) {
	if int(c.index) < len(c.regs) {
		c.regs[c.index] = b
	}
}

func (c *crtc) cursor() int { return int(c.regs[crtcCursorHi])<<8 | int(c.regs[crtcCursorLo]) }
