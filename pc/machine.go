// Package pc implements a hosted model of the small x86 machine the shell
// runs on: physical memory with the text window at 0xB8000, an I/O bus with
// the keyboard controller, CMOS clock and CRT controller, and frontends
// that draw the text window and feed keystrokes to the keyboard.
package pc

import (
	"encoding/binary"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nf/kshell/kbd"
	"github.com/nf/kshell/shell"
	"github.com/nf/kshell/vga"
)

// Config describes the machine to build.
type Config struct {
	MemSize uint32        // bytes of physical memory; default 2MiB, at least 1MiB
	Delay   time.Duration // per polling pass; zero yields instead
	Ticks   uint32        // polling passes per second of uptime
	Now     func() time.Time
	Info    shell.Info
}

const minMemSize = 1 << 20

// Kernel image header, as left in memory by the boot loader.
const (
	multibootMagic = 0x1badb002
	multibootFlags = 0x00000003 // page align modules, provide memory map
)

type Machine struct {
	cfg Config

	mu  sync.Mutex
	mem []byte
	kbd keyboard
	rtc cmos
	crt crtc
	lst Status

	sh    *shell.Shell
	steps atomic.Uint64
}

// Status is a snapshot of the shell state, published after every pass.
type Status struct {
	Steps  uint64
	Uptime uint32
	Line   string
	Cursor int
	Queued int // scancodes not yet read
}

// HaltError is returned by Exec when the machine stops abnormally.
type HaltError struct {
	Steps  uint64
	Reason any
}

func (e HaltError) Error() string {
	return fmt.Sprintf("machine halted after %d steps: %v", e.Steps, e.Reason)
}

func New(cfg Config) *Machine {
	switch {
	case cfg.MemSize == 0:
		cfg.MemSize = shell.DefaultInfo.MemSize
	case cfg.MemSize < minMemSize:
		cfg.MemSize = minMemSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Info == (shell.Info{}) {
		cfg.Info = shell.DefaultInfo
	}
	cfg.Info.MemSize = cfg.MemSize

	m := &Machine{cfg: cfg, mem: make([]byte, cfg.MemSize)}
	m.loadKernel()
	m.sh = &shell.Shell{
		Con:            vga.NewConsole(display{m}),
		Ports:          m,
		Clock:          m,
		Mem:            m,
		Delay:          m.delay,
		Info:           cfg.Info,
		TicksPerSecond: cfg.Ticks,
	}
	return m
}

// loadKernel writes the image header the boot loader would have left at the
// kernel base: the multiboot magic, flags and checksum, then the name.
func (m *Machine) loadKernel() {
	base := m.cfg.Info.KernelBase
	name := m.cfg.Info.Name + " v" + m.cfg.Info.Version + "\x00"
	if uint64(base)+12+uint64(len(name)) > uint64(len(m.mem)) {
		return
	}
	b := m.mem[base:]
	sum := uint32(multibootMagic + multibootFlags)
	binary.LittleEndian.PutUint32(b[0:], multibootMagic)
	binary.LittleEndian.PutUint32(b[4:], multibootFlags)
	binary.LittleEndian.PutUint32(b[8:], -sum)
	copy(b[12:], name)
}

// Exec boots the shell and runs its polling loop until halt is closed.
func (m *Machine) Exec(halt <-chan bool) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = HaltError{Steps: m.steps.Load(), Reason: e}
		}
	}()
	m.sh.Boot()
	m.publish()
	for {
		select {
		case <-halt:
			return nil
		default:
		}
		m.sh.Step()
		m.steps.Add(1)
		m.publish()
	}
}

func (m *Machine) publish() {
	line, up := m.sh.Line(), m.sh.Uptime()
	m.mu.Lock()
	m.lst = Status{
		Steps:  m.steps.Load(),
		Uptime: up,
		Line:   line,
		Cursor: m.crt.cursor(),
	}
	m.mu.Unlock()
}

// Status reports the state of the shell as of its last pass.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.lst
	s.Queued = len(m.kbd.queue)
	return s
}

// Steps reports the number of completed polling passes.
func (m *Machine) Steps() uint64 { return m.steps.Load() }

func (m *Machine) delay() {
	if m.cfg.Delay > 0 {
		time.Sleep(m.cfg.Delay)
	} else {
		runtime.Gosched()
	}
}

// In reads an I/O port. Ports with no device read as 0xFF.
func (m *Machine) In(port uint16) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch port {
	case PortKbdStatus:
		return m.kbd.status()
	case PortKbdData:
		return m.kbd.read()
	case PortCMOSData:
		return m.rtc.read(m.cfg.Now())
	case PortCRTCData:
		return m.crt.read()
	default:
		return 0xff
	}
}

// Out writes an I/O port. Writes to ports with no device are dropped.
func (m *Machine) Out(port uint16, b byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch port {
	case PortCMOSIndex:
		m.rtc.selectReg(b)
	case PortCRTCIndex:
		m.crt.index = b
	case PortCRTCData:
		m.crt.write(b)
	case PortKbdData, PortKbdStatus:
		// Controller commands are not modelled.
	default:
		log.Printf("pc: write %.2x to unmapped port %.4x", b, port)
	}
}

// ReadRTC selects a CMOS register and reads it.
func (m *Machine) ReadRTC(reg byte) byte {
	m.Out(PortCMOSIndex, reg)
	return m.In(PortCMOSData)
}

// Peek reads a byte of physical memory. Addresses past the end of memory
// read as 0xFF, as an empty bus would.
func (m *Machine) Peek(addr uint32) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(addr) >= uint64(len(m.mem)) {
		return 0xff
	}
	return m.mem[addr]
}

// Poke writes a byte of physical memory. Writes past the end are dropped.
func (m *Machine) Poke(addr uint32, b byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(addr) < uint64(len(m.mem)) {
		m.mem[addr] = b
	}
}

// Press queues raw scancodes at the keyboard controller.
func (m *Machine) Press(codes ...byte) {
	m.mu.Lock()
	m.kbd.push(codes...)
	m.mu.Unlock()
}

// Type queues the make and break codes that produce r. Runes with no key
// on the keyboard are dropped.
func (m *Machine) Type(r rune) {
	if codes := kbd.Strokes(r); codes != nil {
		m.Press(codes...)
	}
}

func (m *Machine) TypeString(s string) {
	for _, r := range s {
		m.Type(r)
	}
}

// Settle waits until every queued scancode has been read and the pass that
// read the last one has finished.
func (m *Machine) Settle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		n := len(m.kbd.queue)
		m.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("settle: %d scancodes still queued", n)
		}
		time.Sleep(time.Millisecond)
	}
	for target := m.steps.Load() + 2; m.steps.Load() < target; {
		if time.Now().After(deadline) {
			return fmt.Errorf("settle: machine is not running")
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Frame is a copy of the text window and the hardware cursor.
type Frame struct {
	Cells  [vga.Cells]uint16
	Cursor int
}

// Text returns the characters of the frame, one line per row.
func (f *Frame) Text() string { return vga.ScreenText(f.Cells[:]) }

// Snapshot copies the text window into f.
func (m *Machine) Snapshot(f *Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range f.Cells {
		a := vga.TextBase + 2*i
		f.Cells[i] = uint16(m.mem[a]) | uint16(m.mem[a+1])<<8
	}
	f.Cursor = m.crt.cursor()
}

// display is the console's view of the text window: cells are stored
// little-endian in memory and the cursor goes through the CRT controller.
type display struct{ m *Machine }

func (d display) Put(off int, cell uint16) {
	d.m.mu.Lock()
	a := vga.TextBase + 2*off
	d.m.mem[a] = byte(cell)
	d.m.mem[a+1] = byte(cell >> 8)
	d.m.mu.Unlock()
}

// SetCursor writes both cursor registers under one lock so a Snapshot
// never sees half of a move.
func (d display) SetCursor(off int) {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	c := &d.m.crt
	c.index = crtcCursorLo
	c.write(byte(off))
	c.index = crtcCursorHi
	c.write(byte(off >> 8))
}

func (d display) Base() uint32 { return vga.TextBase }
