// Package backend provides an interface for different execution backends.
// Tree-walk is the only real backend today; the interface keeps room for a
// lowering backend without touching callers.
package backend

import (
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the program from pipeline context and returns the result
	Run(ctx *pipeline.PipelineContext) (evaluator.Object, error)

	// Name returns the backend name for display
	Name() string
}
