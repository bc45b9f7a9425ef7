package pipeline

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
)

// Processor is a single compile or execution stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// NewPipelineContext builds a context around one source string.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{SourceCode: source}
}

// PipelineContext carries the state threaded through the stages:
// source in, tokens, AST, inferred types and diagnostics out.
//
// AstRoot and TypeMap are interface{} to keep this package free of
// dependencies on ast/typesystem; stages type-assert what they need.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	TokenStream []token.Token
	AstRoot     interface{}
	TypeMap     interface{}

	// Collaborators injected by the host for the execution stage.
	Engine     interface{}
	Specialist interface{}

	// Result is the value of the program's last statement, set by the
	// execution stage on success.
	Result interface{}

	Errors []*diagnostics.DiagnosticError
}
