// Package shell implements the command shell that runs on the text console:
// keyboard polling, line editing, command dispatch and the memory viewer.
//
// The shell never touches hardware directly. Ports, the real-time clock,
// physical memory and the per-pass delay are supplied by the caller.
package shell

import (
	"github.com/nf/kshell/kbd"
	"github.com/nf/kshell/vga"
)

// Keyboard controller ports.
const (
	KbdData   uint16 = 0x60
	KbdStatus uint16 = 0x64

	kbdDataReady = 0x01
)

// CMOS real-time clock registers. Values are BCD.
const (
	RTCSeconds byte = 0x00
	RTCMinutes byte = 0x02
	RTCHours   byte = 0x04
)

// Ports reads hardware I/O ports.
type Ports interface {
	In(port uint16) byte
}

// Clock reads the CMOS real-time clock.
type Clock interface {
	ReadRTC(reg byte) byte
}

// Memory reads physical memory. Reads are not checked by the shell.
type Memory interface {
	Peek(addr uint32) byte
}

// Info describes the system for the info and meminfo commands.
type Info struct {
	Name       string
	Version    string
	Arch       string
	KernelBase uint32
	MemSize    uint32 // bytes
}

// DefaultInfo is used when Shell.Info is left empty.
var DefaultInfo = Info{
	Name:       "kshell",
	Version:    "1.0",
	Arch:       "x86 (i386, protected mode)",
	KernelBase: 0x00100000,
	MemSize:    2 << 20,
}

// DefaultTicksPerSecond is the number of loop passes counted as one second
// of uptime when Shell.TicksPerSecond is zero.
const DefaultTicksPerSecond = 1000

const prompt = "> "

var (
	attrText   = vga.MakeAttr(vga.White, vga.Black)
	attrPrompt = vga.MakeAttr(vga.Green, vga.Black)
	attrTitle  = vga.MakeAttr(vga.Yellow, vga.Black)
	attrBanner = vga.MakeAttr(vga.LightCyan, vga.Black)
	attrRule   = vga.MakeAttr(vga.Cyan, vga.Black)
	attrError  = vga.MakeAttr(vga.Red, vga.Black)
	attrAddr   = vga.MakeAttr(vga.LightCyan, vga.Black)
	attrASCII  = vga.MakeAttr(vga.LightGreen, vga.Black)
	attrNote   = vga.MakeAttr(vga.DarkGray, vga.Black)
)

// Shell is the state of the interactive console. It is driven by a single
// goroutine and is not safe for concurrent use.
type Shell struct {
	Con   *vga.Console
	Ports Ports
	Clock Clock
	Mem   Memory
	Delay func() // called once per Step to throttle polling
	Info  Info

	// TicksPerSecond is the number of Step calls that make up one second
	// of uptime. The uptime is only as accurate as the loop cadence.
	TicksPerSecond uint32

	line   Editor
	ticks  uint32
	uptime uint32
}

// Boot clears the screen, prints the banner and the first prompt.
func (s *Shell) Boot() {
	if s.Info == (Info{}) {
		s.Info = DefaultInfo
	}
	s.Con.Clear()
	s.Con.WriteString("========================================\n", attrRule)
	s.Con.WriteString("     Welcome to "+s.Info.Name+" v"+s.Info.Version+"\n", attrBanner)
	s.Con.WriteString("========================================\n", attrRule)
	s.Con.WriteString("\n", attrText)
	s.Con.WriteString("A minimal console for poking at the machine\n", attrText)
	s.Con.WriteString("Type 'help' for available commands.\n\n", attrTitle)
	s.Con.WriteString(prompt, attrPrompt)
}

// Run boots the shell and polls forever. It never returns.
func (s *Shell) Run() {
	s.Boot()
	for {
		s.Step()
	}
}

// Step performs one pass of the polling loop: advance the uptime heuristic,
// handle at most one pending scancode, then delay.
func (s *Shell) Step() {
	s.tick()
	if s.Ports.In(KbdStatus)&kbdDataReady != 0 {
		sc := s.Ports.In(KbdData)
		if sc&kbd.Release == 0 {
			if c, ok := kbd.Decode(sc); ok {
				s.Key(c)
			}
		}
	}
	if s.Delay != nil {
		s.Delay()
	}
}

// Key feeds one decoded character to the line editor.
func (s *Shell) Key(c byte) {
	if c == '\n' {
		line := s.line.String()
		s.Con.WriteChar('\n', attrText)
		s.Exec(line)
		s.line.Reset()
		s.Con.WriteString("\n"+prompt, attrPrompt)
		return
	}
	if s.line.Append(c) {
		s.Con.WriteChar(c, attrText)
	}
}

// Uptime returns the elapsed seconds as counted by the loop heuristic.
func (s *Shell) Uptime() uint32 { return s.uptime }

// Line returns the command line typed so far.
func (s *Shell) Line() string { return s.line.String() }

func (s *Shell) tick() {
	tps := s.TicksPerSecond
	if tps == 0 {
		tps = DefaultTicksPerSecond
	}
	s.ticks++
	if s.ticks >= tps {
		s.ticks = 0
		s.uptime++
	}
}

// LineCap is the capacity of the command buffer, including the terminator.
const LineCap = 256

// Editor accumulates a command line. At most LineCap-1 characters are kept;
// further characters are dropped.
type Editor struct {
	buf [LineCap]byte
	n   int
}

// Append adds c to the line and reports whether it was kept.
func (e *Editor) Append(c byte) bool {
	if e.n >= LineCap-1 {
		return false
	}
	e.buf[e.n] = c
	e.n++
	return true
}

func (e *Editor) Len() int       { return e.n }
func (e *Editor) Reset()         { e.n = 0 }
func (e *Editor) String() string { return string(e.buf[:e.n]) }
