package analyzer

import (
	"testing"

	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/pipeline"
)

func runCheckPipeline(source string) *pipeline.PipelineContext {
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&AnalyzerProcessor{},
	)
	return p.Run(pipeline.NewPipelineContext(source))
}

func TestCheckPipelineProducesTypes(t *testing.T) {
	ctx := runCheckPipeline("let x = 1 + 2.5\nx")
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Errors)
	}
	if ctx.TypeMap == nil {
		t.Error("type map not recorded on the context")
	}
}

func TestCheckPipelineReportsTypeError(t *testing.T) {
	ctx := runCheckPipeline("1 + true")
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(ctx.Errors))
	}
	diag := ctx.Errors[0]
	if diag.Code != diagnostics.ErrT001 {
		t.Errorf("wrong code: %s", diag.Code)
	}
	if diag.Line == 0 || diag.Column == 0 {
		t.Errorf("diagnostic missing location: %d:%d", diag.Line, diag.Column)
	}
}

func TestCheckPipelineStopsOnParseError(t *testing.T) {
	ctx := runCheckPipeline("let x =")
	if len(ctx.Errors) == 0 {
		t.Fatal("expected a parse diagnostic")
	}
	if ctx.TypeMap != nil {
		t.Error("analyzer ran despite an earlier failure")
	}
}
