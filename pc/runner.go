package pc

import (
	"log"
	"sync/atomic"
)

// Frontend draws the text window and delivers keystrokes. Run returns when
// the user quits or exit is closed.
type Frontend interface {
	Run(r *Runner, exit <-chan bool) error
}

// Runner executes a Machine while a Frontend drives the display.
// In dev mode the machine may be replaced while running.
type Runner struct {
	dev bool
	cur atomic.Pointer[Machine]

	reset     chan *Machine
	resetDone chan bool
	stop      chan bool
}

func NewRunner(devMode bool) *Runner {
	return &Runner{
		dev:       devMode,
		reset:     make(chan *Machine),
		resetDone: make(chan bool),
		stop:      make(chan bool),
	}
}

// Machine returns the machine currently running.
func (r *Runner) Machine() *Machine { return r.cur.Load() }

// Reset halts the running machine and starts m in its place.
func (r *Runner) Reset(m *Machine) {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	r.reset <- m
	<-r.resetDone
}

// Run executes m until the frontend returns. Outside dev mode a machine
// fault also stops the frontend and is returned.
func (r *Runner) Run(m *Machine, f Frontend) error {
	r.cur.Store(m)
	var (
		exit = make(chan bool)
		done = make(chan error, 1)
	)
	go func() {
		var (
			halt    = make(chan bool)
			execErr = make(chan error)
			running = true
		)
		start := func(m *Machine, halt chan bool) { execErr <- m.Exec(halt) }
		go start(m, halt)
		for {
			select {
			case newM := <-r.reset:
				if running {
					close(halt)
					<-execErr
				}
				m = newM
				r.cur.Store(m)
				halt = make(chan bool)
				running = true
				go start(m, halt)
				r.resetDone <- true
			case err := <-execErr:
				running = false
				if r.dev {
					log.Printf("pc: %v", err)
					continue
				}
				done <- err
				close(exit)
				return
			case <-r.stop:
				var err error
				if running {
					close(halt)
					err = <-execErr
				}
				done <- err
				return
			}
		}
	}()
	err := f.Run(r, exit)
	close(r.stop)
	if e := <-done; err == nil {
		err = e
	}
	return err
}
