package pc

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// GUI draws the text window in a native window at Scale times its size.
type GUI struct {
	Title string
	Scale int
}

func (g *GUI) Run(r *Runner, exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		err = g.run(s, r, exit)
	})
	return
}

func (g *GUI) run(s screen.Screen, r *Runner, exit <-chan bool) error {
	scale := g.Scale
	if scale < 1 {
		scale = 1
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  g.Title,
		Width:  FrameSize.X * scale,
		Height: FrameSize.Y * scale,
	})
	if err != nil {
		return fmt.Errorf("gui: %v", err)
	}
	defer w.Release()
	buf, err := s.NewBuffer(FrameSize)
	if err != nil {
		return fmt.Errorf("gui: %v", err)
	}
	defer buf.Release()
	tex, err := s.NewTexture(FrameSize)
	if err != nil {
		return fmt.Errorf("gui: %v", err)
	}
	defer tex.Release()

	type update struct{}
	go func() {
		t := time.NewTicker(time.Second / 60)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Send(update{})
			case <-exit:
				return
			}
		}
	}()

	var (
		sz          size.Event
		frame, last Frame
		drawn       bool
	)
	publish := func() {
		w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
		w.Publish()
	}
	for {
		e := w.NextEvent()

		select {
		case <-exit:
			return nil
		default:
		}

		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}

		case paint.Event:
			if drawn {
				publish()
			}

		case key.Event:
			if e.Direction != key.DirRelease {
				guiKey(r.Machine(), e)
			}

		case update:
			r.Machine().Snapshot(&frame)
			if drawn && frame == last {
				break
			}
			last, drawn = frame, true
			Render(buf.RGBA(), &frame)
			tex.Upload(image.Point{}, buf, buf.Bounds())
			publish()

		case error:
			log.Print(e)
		}
	}
}

func guiKey(m *Machine, e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		m.Type('\n')
	case key.CodeDeleteBackspace:
		m.Type('\b')
	case key.CodeEscape:
		m.Press(0x01, 0x81)
	case key.CodeTab:
		m.Press(0x0f, 0x8f)
	default:
		if e.Rune > 0 {
			m.Type(e.Rune)
		}
	}
}
