package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/kshell/pc"
	"github.com/nf/kshell/vga"
)

// debugger is a terminal UI for poking at a running machine: a log pane,
// a pane of watched memory, a status bar and a command line.
type debugger struct {
	run        *pc.Runner
	newMachine func() *pc.Machine
	syms       symbols

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	watches []watch
}

type watch struct {
	symbol
	word bool
}

var debugCommands = []string{"type", "enter", "key", "peek", "watch", "watch2", "reset", "exit"}

func newDebugger(r *pc.Runner, newMachine func() *pc.Machine, syms symbols) *debugger {
	d := &debugger{
		run:        r,
		newMachine: newMachine,
		syms:       syms,
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.state.SetTextColor(tcell.ColorBlack)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 2, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		cmd, arg, ok := strings.Cut(t, " ")
		if !ok {
			for _, c := range debugCommands {
				if strings.HasPrefix(c, t) && t != "" {
					entries = append(entries, c)
				}
			}
			return
		}
		switch cmd {
		case "peek", "w", "w2", "watch", "watch2":
			for _, s := range d.syms.withLabelPrefix(arg) {
				entries = append(entries, cmd+" "+s.label)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		if err := d.command(cmd); err != nil {
			log.Print(err)
		}
	})
	return d
}

// command executes one debugger command against the running machine.
func (d *debugger) command(line string) error {
	m := d.run.Machine()
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "type", "t":
		m.TypeString(arg)
	case "enter":
		m.Type('\n')
	case "key", "k":
		for _, f := range strings.Fields(arg) {
			sc, err := strconv.ParseUint(f, 16, 8)
			if err != nil {
				return fmt.Errorf("invalid scancode %q", f)
			}
			m.Press(byte(sc))
		}
	case "peek", "p":
		addr, n, err := d.peekArgs(arg)
		if err != nil {
			return err
		}
		log.Print(dumpLines(m, addr, n))
	case "w", "w2", "watch", "watch2":
		s, ok := d.syms.resolve(arg)
		if !ok {
			return fmt.Errorf("invalid address %q", arg)
		}
		d.mu.Lock()
		d.watches = append(d.watches, watch{symbol: s, word: strings.HasSuffix(cmd, "2")})
		d.mu.Unlock()
		log.Printf("watching %.8x", s.addr)
	case "reset":
		log.Print("reset")
		d.run.Reset(d.newMachine())
	default:
		return fmt.Errorf("unknown command %q (try: %s)", cmd, strings.Join(debugCommands, ", "))
	}
	return nil
}

func (d *debugger) peekArgs(arg string) (addr uint32, n int, err error) {
	f := strings.Fields(arg)
	if len(f) == 0 || len(f) > 2 {
		return 0, 0, fmt.Errorf("usage: peek <addr> [count]")
	}
	s, ok := d.syms.resolve(f[0])
	if !ok {
		return 0, 0, fmt.Errorf("invalid address %q", f[0])
	}
	n = 16
	if len(f) == 2 {
		if n, err = strconv.Atoi(f[1]); err != nil || n < 1 || n > 4096 {
			return 0, 0, fmt.Errorf("invalid count %q", f[1])
		}
	}
	return s.addr, n, nil
}

// dumpLines formats n bytes of memory at addr, 16 to a line.
func dumpLines(m *pc.Machine, addr uint32, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		a := addr + uint32(i)
		if i%16 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%.8x:", a)
		}
		fmt.Fprintf(&b, " %.2x", m.Peek(a))
	}
	return b.String()
}

// Run draws the debugger until exit, refreshing the panes periodically.
func (d *debugger) Run() error {
	done := make(chan bool)
	defer close(done)
	go func() {
		t := time.NewTicker(time.Second / 10)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				d.refresh()
			case <-done:
				return
			}
		}
	}()
	return d.app.Run()
}

func (d *debugger) refresh() {
	m := d.run.Machine()
	if m == nil {
		return
	}
	var (
		watch = d.watchContent(m)
		state = stateMsg(m.Status())
	)
	d.app.QueueUpdateDraw(func() {
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func stateMsg(s pc.Status) string {
	return fmt.Sprintf("steps %d  uptime %ds  cursor %d,%d  queued %d\n> %s",
		s.Steps, s.Uptime, s.Cursor%vga.Width, s.Cursor/vga.Width, s.Queued, s.Line)
}

func (d *debugger) watchContent(m *pc.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s [%.8x] ", w.label, w.addr)
		if w.word {
			fmt.Fprintf(&b, "%.2x%.2x", m.Peek(w.addr+1), m.Peek(w.addr))
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Peek(w.addr))
		}
	}
	return b.String()
}
