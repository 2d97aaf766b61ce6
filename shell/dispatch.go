package shell

import (
	"strings"

	"github.com/nf/kshell/vga"
)

// DumpLen is the number of bytes shown by the mem command.
const DumpLen = 128

type command struct {
	verb string
	help string
	run  func(s *Shell, arg string)
}

// commands is checked in order and the first prefix match wins,
// so longer verbs must come before verbs that are their prefix.
var commands []command

func init() {
	commands = []command{
		{"help", "help          - Show this help", (*Shell).help},
		{"clear", "clear         - Clear the screen", (*Shell).clear},
		{"info", "info          - System information", (*Shell).info},
		{"clock", "clock         - Show time of day and uptime", (*Shell).clock},
		{"time", "time          - Same as clock", (*Shell).clock},
		{"meminfo", "meminfo       - Show memory layout", (*Shell).meminfo},
		{"mem", "mem [addr]    - Dump 128 bytes at hex addr (default: screen)", (*Shell).mem},
	}
}

// Exec runs a completed command line. Verbs are matched by prefix,
// so trailing characters after a verb are ignored.
func (s *Shell) Exec(line string) {
	if line == "" {
		return
	}
	for _, c := range commands {
		if strings.HasPrefix(line, c.verb) {
			c.run(s, line[len(c.verb):])
			return
		}
	}
	s.Con.WriteString("Unknown command: '"+line+"'\n", attrError)
	s.Con.WriteString("Type 'help' for available commands.\n", attrError)
}

func (s *Shell) help(string) {
	s.Con.WriteString("Available commands:\n", attrTitle)
	for _, c := range commands {
		s.Con.WriteString("  "+c.help+"\n", attrText)
	}
}

func (s *Shell) clear(string) { s.Con.Clear() }

func (s *Shell) info(string) {
	s.Con.WriteString(s.Info.Name+" v"+s.Info.Version+"\n", attrBanner)
	s.Con.WriteString("Architecture: "+s.Info.Arch+"\n", attrText)
	s.Con.WriteString("Display: "+FormatDec(vga.Width)+"x"+FormatDec(vga.Height)+
		" text at "+FormatHex(s.Con.Surface().Base())+"\n", attrText)
	s.Con.WriteString("Input: polled PS/2 keyboard, no interrupts\n", attrText)
}

func (s *Shell) clock(string) {
	h := fromBCD(s.Clock.ReadRTC(RTCHours))
	m := fromBCD(s.Clock.ReadRTC(RTCMinutes))
	sec := fromBCD(s.Clock.ReadRTC(RTCSeconds))
	s.Con.WriteString("Time: ", attrTitle)
	s.Con.WriteString(twoDigits(h)+":"+twoDigits(m)+":"+twoDigits(sec)+"\n", attrText)
	s.Con.WriteString("Uptime: ", attrTitle)
	s.Con.WriteString(FormatDec(s.uptime)+" seconds\n", attrText)
}

func (s *Shell) meminfo(string) {
	base := s.Con.Surface().Base()
	size := uint32(vga.Cells * 2)
	s.Con.WriteString("Memory layout:\n", attrTitle)
	s.Con.WriteString("  Text buffer : "+FormatHex(base)+" - "+FormatHex(base+size-1)+
		" ("+FormatDec(size)+" bytes)\n", attrText)
	s.Con.WriteString("  Kernel base : "+FormatHex(s.Info.KernelBase)+"\n", attrText)
	s.Con.WriteString("  Command line: "+FormatDec(LineCap)+" bytes\n", attrText)
	s.Con.WriteString("  Physical mem: "+FormatDec(s.Info.MemSize/1024)+" KB\n", attrText)
}

func (s *Shell) mem(arg string) {
	addr := s.Con.Surface().Base()
	if a := strings.TrimLeft(arg, " "); a != "" {
		addr = ParseHex(a)
	}
	s.Dump(addr, DumpLen)
}

func fromBCD(b byte) uint32 { return uint32(b>>4)*10 + uint32(b&0xf) }

func twoDigits(n uint32) string {
	if n < 10 {
		return "0" + FormatDec(n)
	}
	return FormatDec(n)
}
