package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nf/kshell/shell"
	"github.com/nf/kshell/vga"
)

type symbols []symbol

type symbol struct {
	addr  uint32
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.8x)", s.label, s.addr) }

// machineSymbols names the fixed regions of the machine.
func machineSymbols(info shell.Info) symbols {
	return sortSymbols(symbols{
		{0x00000000, "ivt"},
		{0x00000400, "bda"},
		{vga.TextBase, "text"},
		{vga.TextBase + vga.Cells*2, "text_end"},
		{info.KernelBase, "kernel"},
		{info.KernelBase + 12, "kernel_name"},
	})
}

func (s symbols) forAddr(addr uint32) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr == addr {
			ss = append(ss, s[i])
		}
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve looks up a label, or failing that parses a hex address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	a := strings.TrimPrefix(strings.TrimPrefix(arg, "0x"), "0X")
	if a == "" || strings.Trim(a, "0123456789abcdefABCDEF") != "" || len(a) > 8 {
		return symbol{}, false
	}
	return symbol{addr: shell.ParseHex(a), label: arg}, true
}

func sortSymbols(ss symbols) symbols {
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss
}

func readSymbols(symFile string) (symbols, error) {
	f, err := os.Open(symFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseSymbols(f)
}

// parseSymbols reads lines of the form "hexaddr label". Blank lines and
// lines starting with '#' are ignored.
func parseSymbols(r io.Reader) (symbols, error) {
	var (
		ss   symbols
		none symbols
		sc   = bufio.NewScanner(r)
		n    = 0
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			return nil, fmt.Errorf("line %d: want address and label, got %q", n, line)
		}
		s, ok := none.resolve(f[0])
		if !ok {
			return nil, fmt.Errorf("line %d: invalid address %q", n, f[0])
		}
		s.label = f[1]
		ss = append(ss, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sortSymbols(ss), nil
}
