package repl

import (
	"bytes"
	"strings"
	"testing"
)

func line(t *testing.T, s *Session, input string) string {
	t.Helper()
	printed, err := s.Line(input)
	if err != nil {
		t.Fatalf("%q: %v", input, err)
	}
	return printed
}

func TestSessionPersistsBindings(t *testing.T) {
	s := NewSession(nil)
	if got := line(t, s, "let x = 5"); got != "" {
		t.Errorf("let should print nothing, echoed %q", got)
	}
	if got := line(t, s, "x * 2"); got != "10" {
		t.Errorf("got %q", got)
	}
}

func TestSessionPersistsFunctions(t *testing.T) {
	s := NewSession(nil)
	line(t, s, "fn double(n: Int) -> Int: n * 2")
	if got := line(t, s, "double(21)"); got != "42" {
		t.Errorf("got %q", got)
	}
}

func TestSessionHasEngineCatalog(t *testing.T) {
	s := NewSession(nil)
	if got := line(t, s, "mean([1, 2, 3])"); got != "2.0" {
		t.Errorf("got %q", got)
	}
}

func TestSessionVoidPrintsNothing(t *testing.T) {
	s := NewSession(nil)
	if got := line(t, s, "if false: 1"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestSessionErrorsDoNotEndSession(t *testing.T) {
	s := NewSession(nil)
	if _, err := s.Line("10 / 0"); err == nil {
		t.Fatal("expected an error")
	}
	if got := line(t, s, "1 + 1"); got != "2" {
		t.Errorf("session unusable after error: %q", got)
	}
}

func TestSessionParseError(t *testing.T) {
	s := NewSession(nil)
	if _, err := s.Line("let x ="); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestStartPipedSession(t *testing.T) {
	in := strings.NewReader("let a = 2\na + 3\nbad /\n7\n")
	var out bytes.Buffer
	Start(in, &out, nil)

	text := out.String()
	if !strings.Contains(text, "5") || !strings.Contains(text, "7") {
		t.Errorf("output missing results:\n%s", text)
	}
}
