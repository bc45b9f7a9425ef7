package prettyprinter

import (
	"testing"

	"github.com/vexlang/vex/internal/parser"
)

// TestCanonicalSourceIsFixed checks that already-canonical source survives a
// parse and print unchanged.
func TestCanonicalSourceIsFixed(t *testing.T) {
	sources := []string{
		"let x = 5",
		"let half = 10 / 4",
		`let name = "vex"`,
		"let xs = [1, 2.5, true]",
		"let y = -x + 3 * z",
		"let z = (a + b) * c",
		"let w = a - (b - c)",
		"let ok = a < b && !done || c == 1",
		"fn add(a: Int, b: Int) -> Int: a + b",
		"pub fn head(xs: [Int]) -> Int: xs[0]",
		"fn pick(n: Int) -> String: if n > 0: \"pos\" else: \"neg\"",
		"fn flat(m: [[Float]]) -> [Float]: m[0]",
		`import "geometry"`,
		"match n { 1 => \"one\", x if x > 1 => \"many\", _ => \"none\" }",
		"match xs { [a, b] => a + b, [] => 0, _ => -1 }",
		"f(1, g(2), [3])",
		"(if a: 1 else: 2) + 3",
		"if a: (if b: 1) else: 2",
		"(-a)[0]",
		"-(-a)",
		"(match v { 1 => 2, _ => 3 }) * 2",
	}
	for _, source := range sources {
		program, perr := parser.Parse(source)
		if perr != nil {
			t.Fatalf("%q: parse error: %v", source, perr)
		}
		if got := Print(program); got != source {
			t.Errorf("not canonical:\n in: %s\nout: %s", source, got)
		}
	}
}

// TestPrintParseRoundTrip checks the tooling contract: printing and
// re-parsing reaches a fixed point for arbitrary (non-canonical) input.
func TestPrintParseRoundTrip(t *testing.T) {
	sources := []string{
		"let x=((1+2))*3",
		"fn  f( a :Int )->Int :a",
		"if a:1 else:2",
		"let b = {\nlet t = 1\nt + 1\n}",
		"match   v {1=>2,_=>3}",
	}
	for _, source := range sources {
		program, perr := parser.Parse(source)
		if perr != nil {
			t.Fatalf("%q: parse error: %v", source, perr)
		}
		printed := Print(program)

		reparsed, perr := parser.Parse(printed)
		if perr != nil {
			t.Fatalf("printed source does not parse:\n%s\nerror: %v", printed, perr)
		}
		if again := Print(reparsed); again != printed {
			t.Errorf("round trip unstable:\nfirst:  %s\nsecond: %s", printed, again)
		}
	}
}

func TestPrintPreservesPrecedenceMeaning(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 * (2 + 3)", "1 * (2 + 3)"},
		{"a || b && c", "a || b && c"},
		{"(a || b) && c", "(a || b) && c"},
		// Low-precedence expression forms keep their parens in operand slots;
		// without them a reparse would pull the trailing operator inside.
		{"(if true: 1 else: 2) + 3", "(if true: 1 else: 2) + 3"},
		{"3 + (if true: 1 else: 2)", "3 + (if true: 1 else: 2)"},
		{"(match v { 1 => 2 }) * 3", "(match v { 1 => 2 }) * 3"},
		{"(-a)[0]", "(-a)[0]"},
		{"!(a == b)", "!(a == b)"},
	}
	for _, tt := range tests {
		program, perr := parser.Parse(tt.input)
		if perr != nil {
			t.Fatalf("%q: parse error: %v", tt.input, perr)
		}
		if got := Print(program); got != tt.expected {
			t.Errorf("%q printed as %q", tt.input, got)
		}
	}
}

func TestPrintFloatAlwaysMarked(t *testing.T) {
	program, perr := parser.Parse("let f = 4.0")
	if perr != nil {
		t.Fatal(perr)
	}
	if got := Print(program); got != "let f = 4.0" {
		t.Errorf("got %q", got)
	}
}
