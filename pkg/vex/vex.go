// Package vex is the public embedding API: parse, type-check and evaluate
// source programs without touching the internal packages directly.
package vex

import (
	"fmt"

	"github.com/vexlang/vex/internal/analyzer"
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/engine"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/optimizer"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/typesystem"
)

// Value is a runtime value produced by evaluation.
type Value = evaluator.Object

// Engine is the numeric collaborator contract.
type Engine = evaluator.Engine

// Specialist is the library collaborator contract.
type Specialist = evaluator.Specialist

// RuntimeError is an evaluation failure surfaced through the error return.
type RuntimeError struct {
	Message string
	Line    int
	Column  int
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// CheckResult is a parsed program together with the inferred type of every
// expression node.
type CheckResult struct {
	Program *ast.Program
	Types   map[ast.Node]typesystem.Type
}

// Check parses and type-checks source. The returned error is a parse
// diagnostic or an *analyzer.TypeError; evaluation is never attempted.
func Check(source string) (*CheckResult, error) {
	program, diag := parser.Parse(source)
	if diag != nil {
		return nil, diag
	}
	inferred, terr := analyzer.Infer(program)
	if terr != nil {
		return nil, terr
	}
	return &CheckResult{Program: program, Types: inferred.TypeMap}, nil
}

// Eval parses and evaluates source with the built-in engine and no library
// specialist. Type checking is not implied; untyped programs execute under
// the runtime promotion rules.
func Eval(source string) (Value, error) {
	return EvalWith(source, engine.New(), nil)
}

// EvalWith evaluates source against the given collaborators.
func EvalWith(source string, eng Engine, specialist Specialist) (Value, error) {
	program, diag := parser.Parse(source)
	if diag != nil {
		return nil, diag
	}
	program = optimizer.New().Run(program)

	eval := evaluator.New(eng, specialist)
	result := eval.Eval(program, evaluator.NewEnvironment())
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, &RuntimeError{
			Message: errObj.Message,
			Line:    errObj.Line,
			Column:  errObj.Column,
		}
	}
	return result, nil
}

// Run evaluates source and panics on any error. Convenience for tooling
// and tests that treat failure as fatal.
func Run(source string) Value {
	result, err := Eval(source)
	if err != nil {
		panic(err)
	}
	return result
}
