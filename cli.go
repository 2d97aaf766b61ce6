package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/nf/kshell/pc"
)

const settleTimeout = 10 * time.Second

// cli is the headless frontend. It types what it reads from in, and when
// input ends prints the final screen to out.
type cli struct {
	in  io.Reader
	out io.Writer
}

func (c *cli) Run(r *pc.Runner, exit <-chan bool) error {
	if err := c.feed(r, exit); err != nil {
		return err
	}
	select {
	case <-exit:
		return nil
	default:
	}
	m := r.Machine()
	if err := m.Settle(settleTimeout); err != nil {
		return fmt.Errorf("cli: %v", err)
	}
	var f pc.Frame
	m.Snapshot(&f)
	_, err := fmt.Fprintln(c.out, f.Text())
	return err
}

// feed copies input to the keyboard until EOF, Ctrl-D or Ctrl-C.
// A terminal is put in raw mode so each key is delivered as it is typed.
func (c *cli) feed(r *pc.Runner, exit <-chan bool) error {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("cli: %v", err)
		}
		defer term.Restore(int(f.Fd()), old)
	}

	var (
		input   = make(chan byte)
		readErr = make(chan error, 1)
	)
	go readInput(c.in, input, readErr)
	for {
		select {
		case <-exit:
			return nil
		case b := <-input:
			switch b {
			case 0x03, 0x04:
				return nil
			}
			r.Machine().Type(rune(b))
		case err := <-readErr:
			if err != io.EOF {
				return fmt.Errorf("cli: reading input: %v", err)
			}
			return nil
		}
	}
}

func readInput(r io.Reader, input chan<- byte, errc chan<- error) {
	var buf [256]byte
	for {
		n, err := r.Read(buf[:])
		for _, b := range buf[:n] {
			input <- b
		}
		if err != nil {
			errc <- err
			return
		}
	}
}
