package pc

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/kshell/vga"
)

// Term draws the text window in a terminal. Ctrl-C quits.
type Term struct {
	// Screen is used instead of the controlling terminal if set.
	// The caller initializes it and calls Fini after Run returns.
	Screen tcell.Screen
}

func (t *Term) Run(r *Runner, exit <-chan bool) error {
	s := t.Screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return fmt.Errorf("term: %v", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("term: %v", err)
		}
		defer s.Fini()
	}

	events := make(chan tcell.Event, 100)
	quit := make(chan bool)
	defer close(quit)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second / 60)
	defer tick.Stop()
	var frame Frame
	for {
		select {
		case <-exit:
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				termKey(r.Machine(), ev)
			case *tcell.EventResize:
				s.Sync()
			}
		case <-tick.C:
			r.Machine().Snapshot(&frame)
			drawTerm(s, &frame)
		}
	}
}

func drawTerm(s tcell.Screen, f *Frame) {
	for i, v := range f.Cells {
		ch, a := vga.SplitCell(v)
		if ch == 0 {
			ch = ' '
		}
		st := tcell.StyleDefault.
			Foreground(termColor(a.Fg())).
			Background(termColor(a.Bg()))
		s.SetContent(i%vga.Width, i/vga.Width, rune(ch), nil, st)
	}
	s.ShowCursor(f.Cursor%vga.Width, f.Cursor/vga.Width)
	s.Show()
}

func termColor(c vga.Color) tcell.Color {
	p := vga.Palette[c&0xf]
	return tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B))
}

func termKey(m *Machine, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		m.Type('\n')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		m.Type('\b')
	case tcell.KeyEscape:
		m.Press(0x01, 0x81)
	case tcell.KeyTab:
		m.Press(0x0f, 0x8f)
	case tcell.KeyRune:
		m.Type(ev.Rune())
	}
}
