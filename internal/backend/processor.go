package backend

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/pipeline"
	"github.com/vexlang/vex/internal/token"
)

// ExecutionProcessor runs a Backend as the final pipeline stage.
type ExecutionProcessor struct {
	Backend Backend
}

func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			diagnostics.ErrR001,
			token.Token{},
			"%s", err.Error(),
		))
		return ctx
	}

	if errObj, ok := result.(*evaluator.Error); ok {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			diagnostics.ErrR001,
			token.Token{Line: errObj.Line, Column: errObj.Column},
			"%s", errObj.Message,
		))
		return ctx
	}

	ctx.Result = result
	return ctx
}
