// Package repl implements the interactive shell. Bindings and function
// declarations persist across lines within one session; everything else
// behaves exactly like batch evaluation.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vexlang/vex/internal/engine"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/parser"
)

const prompt = ">> "

// Session holds the state that survives between lines.
type Session struct {
	eval *evaluator.Evaluator
	env  *evaluator.Environment
}

func NewSession(specialist evaluator.Specialist) *Session {
	return &Session{
		eval: evaluator.New(engine.New(), specialist),
		env:  evaluator.NewEnvironment(),
	}
}

// Line evaluates one input line and returns its printed form, or "" for
// void results.
func (s *Session) Line(input string) (string, error) {
	program, diag := parser.Parse(input)
	if diag != nil {
		return "", diag
	}

	result := s.eval.Eval(program, s.env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return "", fmt.Errorf("%s", errObj.Inspect())
	}
	if result == nil || result.Type() == evaluator.VOID_OBJ {
		return "", nil
	}
	return result.Inspect(), nil
}

// Start reads lines from in until EOF. The prompt is only shown when
// stdout is a terminal, so piped sessions stay clean.
func Start(in io.Reader, out io.Writer, specialist evaluator.Specialist) {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	session := NewSession(specialist)
	scanner := bufio.NewScanner(in)

	if interactive {
		fmt.Fprint(out, prompt)
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			printed, err := session.Line(line)
			if err != nil {
				fmt.Fprintln(out, err.Error())
			} else if printed != "" {
				fmt.Fprintln(out, printed)
			}
		}
		if interactive {
			fmt.Fprint(out, prompt)
		}
	}
	if interactive {
		fmt.Fprintln(out)
	}
}
