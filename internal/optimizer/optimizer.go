// Package optimizer holds the pre-execution rewrite passes. The pass list
// is deliberately thin: constant folding is the only transforming pass, the
// lowering passes exist to reserve the pipeline slot for an IR backend and
// currently return the program unchanged.
package optimizer

import (
	"github.com/vexlang/vex/internal/ast"
)

// Pass rewrites a program into an equivalent program.
type Pass interface {
	Name() string
	Run(program *ast.Program) *ast.Program
}

// Optimizer applies its passes in order.
type Optimizer struct {
	passes []Pass
}

func New() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFolding{},
			&Lowering{},
		},
	}
}

func (o *Optimizer) Run(program *ast.Program) *ast.Program {
	for _, pass := range o.passes {
		program = pass.Run(program)
	}
	return program
}

// Lowering is the placeholder for IR lowering. It re-derives nothing today.
type Lowering struct{}

func (l *Lowering) Name() string { return "lowering" }

func (l *Lowering) Run(program *ast.Program) *ast.Program { return program }
