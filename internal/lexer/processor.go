package lexer

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/pipeline"
	"github.com/vexlang/vex/internal/token"
)

// LexerProcessor adapts the lexer to the compile pipeline.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, err := Tokenize(ctx.SourceCode)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.TokenStream = tokens
	return ctx
}

// Tokenize drains the lexer for source and returns the full token stream,
// ending with EOF. The first illegal token aborts with a located diagnostic.
func Tokenize(source string) ([]token.Token, *diagnostics.DiagnosticError) {
	l := New(source)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			if s, ok := tok.Literal.(string); ok && s == "unterminated string literal" {
				return nil, diagnostics.NewError(diagnostics.ErrL001, tok, "%s", s)
			}
			return nil, diagnostics.NewError(diagnostics.ErrL002, tok, "illegal character %q", tok.Lexeme)
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}
