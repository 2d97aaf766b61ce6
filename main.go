// Command kshell runs a minimal text-console shell on a hosted model of a
// small x86 machine.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/nf/kshell/pc"
	"github.com/nf/kshell/shell"
)

func main() {
	log.SetPrefix("kshell: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "run headless: type standard input, then print the screen")
		termFlag  = flag.Bool("term", false, "draw the console in this terminal instead of a window")
		debugFlag = flag.Bool("debug", false, "enable debugger (window only)")
		devFlag   = flag.String("dev", "", "replay keystroke `script` at start and whenever it changes")
		symFlag   = flag.String("sym", "", "read debugger address labels from `file`")

		delayFlag = flag.Duration("delay", time.Millisecond, "delay per keyboard polling pass")
		ticksFlag = flag.Uint("ticks", shell.DefaultTicksPerSecond, "polling passes per second of uptime")
		memFlag   = flag.Uint("mem", 2048, "physical memory in `KiB`")
		scaleFlag = flag.Int("scale", 2, "window scale factor")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli | -term] [-dev script] [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -debug [-sym file] [-dev script] [flags]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 0 || *cliFlag && *termFlag {
		flag.Usage()
	}
	if *debugFlag && (*cliFlag || *termFlag) {
		log.Fatal("-debug needs the window; it cannot be used with -cli or -term")
	}
	if *memFlag >= 4<<20 {
		log.Fatalf("-mem %d: must be below 4GiB", *memFlag)
	}

	cfg := pc.Config{
		MemSize: uint32(*memFlag << 10),
		Delay:   *delayFlag,
		Ticks:   uint32(*ticksFlag),
	}
	var f pc.Frontend
	switch {
	case *cliFlag:
		f = &cli{in: os.Stdin, out: os.Stdout}
	case *termFlag:
		f = &pc.Term{}
	default:
		f = &pc.GUI{Title: "kshell", Scale: *scaleFlag}
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(cfg, f, *devFlag, *debugFlag, *symFlag)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg pc.Config, f pc.Frontend, script string, debug bool, symFile string) error {
	var (
		newMachine = func() *pc.Machine { return pc.New(cfg) }
		r          = pc.NewRunner(debug || script != "")
	)

	if debug {
		info := cfg.Info
		if info == (shell.Info{}) {
			info = shell.DefaultInfo
		}
		syms := machineSymbols(info)
		if symFile != "" {
			more, err := readSymbols(symFile)
			if err != nil {
				return fmt.Errorf("reading symbols: %v", err)
			}
			syms = sortSymbols(append(syms, more...))
		}
		d := newDebugger(r, newMachine, syms)
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("kshell: ")
			os.Exit(0)
		}()
	}

	if script != "" {
		w, err := devMode(r, newMachine, script)
		if err != nil {
			return fmt.Errorf("dev: %v", err)
		}
		defer w.Close()
	}

	return r.Run(newMachine(), f)
}
