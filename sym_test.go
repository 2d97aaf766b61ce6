package main

import (
	"strings"
	"testing"

	"github.com/nf/kshell/shell"
)

func TestParseSymbols(t *testing.T) {
	in := `# names
b8000 screen

0x100000 start
2000   buffer
`
	ss, err := parseSymbols(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := symbols{{0x2000, "buffer"}, {0xb8000, "screen"}, {0x100000, "start"}}
	if len(ss) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(ss), len(want))
	}
	for i := range want {
		if ss[i] != want[i] {
			t.Errorf("symbol %d == %v, want %v", i, ss[i], want[i])
		}
	}
}

func TestParseSymbolsErrors(t *testing.T) {
	for _, in := range []string{
		"b8000\n",
		"b8000 screen extra\n",
		"xyz screen\n",
		"123456789 big\n",
	} {
		if _, err := parseSymbols(strings.NewReader(in)); err == nil {
			t.Errorf("parseSymbols(%q) succeeded, want error", in)
		}
	}
}

func TestResolve(t *testing.T) {
	ss := machineSymbols(shell.DefaultInfo)
	for _, c := range []struct {
		arg  string
		addr uint32
		ok   bool
	}{
		{"text", 0xb8000, true},
		{"kernel", 0x100000, true},
		{"0x1000", 0x1000, true},
		{"B8F9F", 0xb8f9f, true},
		{"nope", 0, false},
		{"", 0, false},
		{"0x", 0, false},
	} {
		s, ok := ss.resolve(c.arg)
		if ok != c.ok || s.addr != c.addr {
			t.Errorf("resolve(%q) == %.8x, %v, want %.8x, %v", c.arg, s.addr, ok, c.addr, c.ok)
		}
	}
}

func TestForAddr(t *testing.T) {
	ss := machineSymbols(shell.DefaultInfo)
	if got := ss.forAddr(0xb8000); len(got) != 1 || got[0].label != "text" {
		t.Errorf("forAddr(b8000) == %v", got)
	}
	if got := ss.forAddr(0xb8001); len(got) != 0 {
		t.Errorf("forAddr(b8001) == %v, want none", got)
	}
	if got := ss.withLabelPrefix("kernel"); len(got) != 2 {
		t.Errorf("withLabelPrefix(kernel) == %v, want 2 symbols", got)
	}
}
