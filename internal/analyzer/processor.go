package analyzer

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/pipeline"
	"github.com/vexlang/vex/internal/token"
)

// AnalyzerProcessor runs the check pass as a pipeline stage. It is only
// wired into the pipeline when the caller asks for a static check; the
// execution path never requires it.
type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok || program == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			"T000", token.Token{}, "analyzer: no AST to check",
		))
		return ctx
	}

	inferred, err := Infer(program)
	if err != nil {
		ctx.Errors = append(ctx.Errors, &diagnostics.DiagnosticError{
			Code:    diagnostics.ErrT001,
			Message: err.Message,
			File:    ctx.FilePath,
			Line:    err.Line,
			Column:  err.Column,
		})
		return ctx
	}

	ctx.TypeMap = inferred.TypeMap
	return ctx
}
