package parser

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/pipeline"
	"github.com/vexlang/vex/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// Should not happen if the lexer ran first, but as a safeguard:
		err := diagnostics.NewError("P000", token.Token{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	program := parser.ParseProgram()
	program.File = ctx.FilePath
	ctx.AstRoot = program

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}

// Parse is the convenience entry point used by tooling and tests: source
// text in, AST or the first located diagnostic out.
func Parse(source string) (*ast.Program, *diagnostics.DiagnosticError) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	ctx := &pipeline.PipelineContext{SourceCode: source, TokenStream: tokens}
	program := New(tokens, ctx).ParseProgram()
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}
	return program, nil
}
