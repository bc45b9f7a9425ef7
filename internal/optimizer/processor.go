package optimizer

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/pipeline"
)

// OptimizerProcessor runs the pass list as a pipeline stage, between
// parsing and execution.
type OptimizerProcessor struct{}

func (p *OptimizerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	ctx.AstRoot = New().Run(program)
	return ctx
}
