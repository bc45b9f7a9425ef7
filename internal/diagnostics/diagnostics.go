// Package diagnostics defines the structured, located errors produced by the
// compile stages. Lex and parse failures share one channel (CompileError in
// the language docs); the analyzer and the evaluator report through their own
// error types but reuse the same code space for CLI display.
package diagnostics

import (
	"fmt"

	"github.com/vexlang/vex/internal/token"
)

// Error codes, grouped by stage.
const (
	ErrL001 = "L001" // unterminated string
	ErrL002 = "L002" // illegal character
	ErrP001 = "P001" // unexpected token
	ErrP002 = "P002" // no prefix parse rule
	ErrP003 = "P003" // unterminated construct
	ErrT001 = "T001" // type mismatch
	ErrR001 = "R001" // runtime error
)

// DiagnosticError is a located compile-stage failure.
type DiagnosticError struct {
	Code    string
	Message string
	File    string
	Line    int
	Column  int
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		if e.File != "" {
			return fmt.Sprintf("[%s] %s:%d:%d: %s", e.Code, e.File, e.Line, e.Column, e.Message)
		}
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewError builds a diagnostic located at tok.
func NewError(code string, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}
