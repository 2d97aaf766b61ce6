package pc

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nf/kshell/vga"
)

var testTime = time.Date(2026, time.October, 19, 13, 7, 45, 0, time.UTC)

func testConfig() Config {
	return Config{Now: func() time.Time { return testTime }}
}

func screenText(m *Machine) string {
	var f Frame
	m.Snapshot(&f)
	return f.Text()
}

// waitFor polls cond until it holds or a few seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// start runs m in the background and returns a func that stops it.
func start(t *testing.T, m *Machine) (stop func() error) {
	halt := make(chan bool)
	errc := make(chan error, 1)
	go func() { errc <- m.Exec(halt) }()
	return func() error {
		close(halt)
		select {
		case err := <-errc:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("machine did not halt")
			return nil
		}
	}
}

func TestKeyboardPorts(t *testing.T) {
	m := New(testConfig())
	if got := m.In(PortKbdStatus); got != 0 {
		t.Errorf("status with empty queue == %.2x, want 00", got)
	}
	m.Press(0x1e, 0x9e)
	for _, want := range []byte{0x1e, 0x9e} {
		if got := m.In(PortKbdStatus); got&1 == 0 {
			t.Fatalf("status == %.2x, want data ready", got)
		}
		if got := m.In(PortKbdData); got != want {
			t.Errorf("data == %.2x, want %.2x", got, want)
		}
	}
	if got := m.In(PortKbdStatus); got != 0 {
		t.Errorf("status after drain == %.2x, want 00", got)
	}
	if got := m.In(PortKbdData); got != 0x9e {
		t.Errorf("data after drain == %.2x, want last byte 9e", got)
	}
}

func TestUnmappedPort(t *testing.T) {
	m := New(testConfig())
	for _, p := range []uint16{0x00, 0x61, 0x3d6, 0xffff} {
		if got := m.In(p); got != 0xff {
			t.Errorf("In(%.4x) == %.2x, want ff", p, got)
		}
	}
}

func TestRTC(t *testing.T) {
	m := New(testConfig())
	for _, c := range []struct {
		reg, want byte
	}{
		{cmosSeconds, 0x45},
		{cmosMinutes, 0x07},
		{cmosHours, 0x13},
		{cmosWeekday, 0x02},
		{cmosDay, 0x19},
		{cmosMonth, 0x10},
		{cmosYear, 0x26},
		{cmosCentury, 0x20},
		{cmosStatusB, 0x02},
		{cmosMinutes | 0x80, 0x07},
		{0x40, 0x00},
	} {
		if got := m.ReadRTC(c.reg); got != c.want {
			t.Errorf("ReadRTC(%.2x) == %.2x, want %.2x", c.reg, got, c.want)
		}
	}
}

func TestCRTCCursor(t *testing.T) {
	m := New(testConfig())
	display{m}.SetCursor(1234)
	var f Frame
	m.Snapshot(&f)
	if f.Cursor != 1234 {
		t.Errorf("Frame.Cursor == %d, want 1234", f.Cursor)
	}
	m.Out(PortCRTCIndex, crtcCursorHi)
	if got := m.In(PortCRTCData); got != 1234>>8 {
		t.Errorf("cursor high == %.2x, want %.2x", got, 1234>>8)
	}
	m.Out(PortCRTCIndex, 0x40)
	if got := m.In(PortCRTCData); got != 0xff {
		t.Errorf("register 40 == %.2x, want ff", got)
	}
}

func TestCursorMoveIsAtomic(t *testing.T) {
	m := New(testConfig())
	d := display{m}
	d.SetCursor(0x1ff)
	done := make(chan bool)
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			d.SetCursor(0x200)
			d.SetCursor(0x1ff)
		}
	}()
	var f Frame
	for {
		m.Snapshot(&f)
		if f.Cursor != 0x1ff && f.Cursor != 0x200 {
			t.Fatalf("Snapshot saw cursor %#x mid-move", f.Cursor)
		}
		select {
		case <-done:
			return
		default:
		}
	}
}

func TestDisplayLayout(t *testing.T) {
	m := New(testConfig())
	display{m}.Put(1, vga.Cell('A', vga.MakeAttr(vga.Yellow, vga.Blue)))
	if got := m.Peek(vga.TextBase + 2); got != 'A' {
		t.Errorf("character byte == %.2x, want 41", got)
	}
	if got := m.Peek(vga.TextBase + 3); got != 0x1e {
		t.Errorf("attribute byte == %.2x, want 1e", got)
	}
}

func TestPeek(t *testing.T) {
	m := New(Config{MemSize: 1})
	if got := m.Peek(minMemSize - 1); got != 0 {
		t.Errorf("last byte == %.2x, want 00", got)
	}
	for _, addr := range []uint32{minMemSize, 0xffffffff} {
		if got := m.Peek(addr); got != 0xff {
			t.Errorf("Peek(%.8x) == %.2x, want ff", addr, got)
		}
	}
	m.Poke(0x500, 0x42)
	m.Poke(0xffffffff, 0x42)
	if got := m.Peek(0x500); got != 0x42 {
		t.Errorf("Peek after Poke == %.2x, want 42", got)
	}
}

func TestKernelHeader(t *testing.T) {
	m := New(testConfig())
	base := m.cfg.Info.KernelBase
	var hdr [12]byte
	for i := range hdr {
		hdr[i] = m.Peek(base + uint32(i))
	}
	magic := binary.LittleEndian.Uint32(hdr[0:])
	flags := binary.LittleEndian.Uint32(hdr[4:])
	sum := binary.LittleEndian.Uint32(hdr[8:])
	if magic != multibootMagic {
		t.Errorf("magic == %.8x, want %.8x", magic, multibootMagic)
	}
	if magic+flags+sum != 0 {
		t.Errorf("magic+flags+checksum == %.8x, want 0", magic+flags+sum)
	}
	var name []byte
	for a := base + 12; m.Peek(a) != 0; a++ {
		name = append(name, m.Peek(a))
	}
	if got, want := string(name), "kshell v1.0"; got != want {
		t.Errorf("name == %q, want %q", got, want)
	}
}

func TestExec(t *testing.T) {
	m := New(testConfig())
	stop := start(t, m)
	m.TypeString("help\n")
	if err := m.Settle(5 * time.Second); err != nil {
		t.Fatal(err)
	}
	text := screenText(m)
	if !strings.Contains(text, "\n> help\nAvailable commands:\n") {
		t.Errorf("screen after help:\n%s", text)
	}
	if s := m.Status(); s.Line != "" || s.Queued != 0 || s.Steps == 0 {
		t.Errorf("Status() == %+v", s)
	}
	if err := stop(); err != nil {
		t.Errorf("Exec returned %v after halt, want nil", err)
	}
	if got, want := m.Status().Steps, m.Steps(); got != want {
		t.Errorf("Status().Steps == %d after halt, want %d", got, want)
	}
}

func TestExecCommands(t *testing.T) {
	for _, c := range []struct {
		cfg  Config
		line string
		want string
	}{
		{testConfig(), "clock", "Time: 13:07:45"},
		{testConfig(), "meminfo", "Physical mem: 2048 KB"},
		{Config{MemSize: 4 << 20}, "meminfo", "Physical mem: 4096 KB"},
		{testConfig(), "mem 100000", "0x00100000: 02 B0 AD 1B 03 00 00 00"},
		{testConfig(), "mem", "Memory at 0x000B8000, 128 bytes:"},
		{testConfig(), "mem FFFFFFF0", "0xFFFFFFF0: FF FF FF FF"},
	} {
		t.Run(c.line, func(t *testing.T) {
			m := New(c.cfg)
			stop := start(t, m)
			defer stop()
			m.TypeString(c.line + "\n")
			if err := m.Settle(5 * time.Second); err != nil {
				t.Fatal(err)
			}
			if text := screenText(m); !strings.Contains(text, c.want) {
				t.Errorf("screen does not contain %q:\n%s", c.want, text)
			}
		})
	}
}

func TestSettleNotRunning(t *testing.T) {
	m := New(testConfig())
	m.Type('a')
	if err := m.Settle(10 * time.Millisecond); err == nil {
		t.Error("Settle succeeded with no machine running")
	}
}

func TestExecFault(t *testing.T) {
	m := New(testConfig())
	m.sh.Mem = nil
	m.TypeString("mem\n")
	errc := make(chan error, 1)
	go func() { errc <- m.Exec(make(chan bool)) }()
	select {
	case err := <-errc:
		var h HaltError
		if !errors.As(err, &h) {
			t.Fatalf("Exec returned %v, want HaltError", err)
		}
		if h.Steps == 0 {
			t.Errorf("HaltError.Steps == 0")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Exec did not fail")
	}
}
