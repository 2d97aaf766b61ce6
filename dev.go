package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/kshell/kbd"
	"github.com/nf/kshell/pc"
)

// devMode replays a keystroke script on a fresh machine at start and
// whenever the script changes on disk.
func devMode(r *pc.Runner, newMachine func() *pc.Machine, script string) (io.Closer, error) {
	script = filepath.Clean(script)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(script)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				keys, err := readScript(script)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: replay %s (%d scancodes)", filepath.Base(script), len(keys))
				m := newMachine()
				m.Press(keys...)
				r.Reset(m)
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if ev.Name == script && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	return watcher, nil
}

func readScript(name string) ([]byte, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	keys, err := parseScript(b)
	if err != nil {
		return nil, fmt.Errorf("%s:%v", name, err)
	}
	return keys, nil
}

// parseScript converts a keystroke script to scancodes. Each line is typed
// and followed by Enter. Lines starting with '#' are comments. A line
// starting with '!' holds raw scancodes in hex, sent as is.
func parseScript(b []byte) ([]byte, error) {
	var (
		keys []byte
		sc   = bufio.NewScanner(bytes.NewReader(b))
		n    = 0
	)
	for sc.Scan() {
		n++
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "!"):
			for _, f := range strings.Fields(line[1:]) {
				v, err := strconv.ParseUint(f, 16, 8)
				if err != nil {
					return nil, fmt.Errorf("%d: invalid scancode %q", n, f)
				}
				keys = append(keys, byte(v))
			}
			continue
		}
		for _, r := range line + "\n" {
			codes := kbd.Strokes(r)
			if codes == nil {
				return nil, fmt.Errorf("%d: no key for %q", n, r)
			}
			keys = append(keys, codes...)
		}
	}
	return keys, sc.Err()
}
