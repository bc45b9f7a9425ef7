package backend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/modules"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/pipeline"
)

func runPipeline(source string, b Backend) *pipeline.PipelineContext {
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		NewExecutionProcessor(b),
	)
	return p.Run(pipeline.NewPipelineContext(source))
}

func TestPipelineRunsProgram(t *testing.T) {
	ctx := runPipeline("let x = 6\nx * 7", NewTreeWalk())
	if len(ctx.Errors) > 0 {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	result, ok := ctx.Result.(evaluator.Object)
	if !ok {
		t.Fatalf("result is %T", ctx.Result)
	}
	if result.Inspect() != "42" {
		t.Errorf("got %s", result.Inspect())
	}
}

func TestPipelineUsesDefaultEngine(t *testing.T) {
	ctx := runPipeline("sum([1, 2, 3])", NewTreeWalk())
	if len(ctx.Errors) > 0 {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	if ctx.Result.(evaluator.Object).Inspect() != "6" {
		t.Errorf("got %s", ctx.Result.(evaluator.Object).Inspect())
	}
}

func TestRuntimeErrorBecomesDiagnostic(t *testing.T) {
	ctx := runPipeline("10 / 0", NewTreeWalk())
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(ctx.Errors))
	}
	diag := ctx.Errors[0]
	if diag.Code != diagnostics.ErrR001 {
		t.Errorf("code = %s", diag.Code)
	}
	if !strings.Contains(diag.Message, "division by zero") {
		t.Errorf("message = %q", diag.Message)
	}
	if ctx.Result != nil {
		t.Error("result must stay unset on failure")
	}
}

func TestParseErrorStopsBeforeExecution(t *testing.T) {
	ctx := runPipeline("let x =", NewTreeWalk())
	if len(ctx.Errors) == 0 {
		t.Fatal("expected a parse diagnostic")
	}
	if ctx.Result != nil {
		t.Error("execution ran despite a parse failure")
	}
}

func TestImportsInstallPublicFunctions(t *testing.T) {
	dir := t.TempDir()
	lib := `
pub fn triple(n: Int) -> Int: n * 3
fn hidden(n: Int) -> Int: n
`
	if err := os.WriteFile(filepath.Join(dir, "mathlib.vx"), []byte(lib), 0o644); err != nil {
		t.Fatal(err)
	}

	resolver, err := modules.NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer resolver.Close()

	b := &TreeWalkBackend{Resolver: resolver}
	ctx := runPipeline(`
import "mathlib"
triple(14)
`, b)
	if len(ctx.Errors) > 0 {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	if ctx.Result.(evaluator.Object).Inspect() != "42" {
		t.Errorf("got %s", ctx.Result.(evaluator.Object).Inspect())
	}
}

func TestImportedPrivateFunctionStaysHidden(t *testing.T) {
	dir := t.TempDir()
	lib := "fn hidden(n: Int) -> Int: n"
	if err := os.WriteFile(filepath.Join(dir, "privlib.vx"), []byte(lib), 0o644); err != nil {
		t.Fatal(err)
	}

	resolver, err := modules.NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer resolver.Close()

	ctx := runPipeline(`
import "privlib"
hidden(1)
`, &TreeWalkBackend{Resolver: resolver})
	if len(ctx.Errors) == 0 {
		t.Fatal("expected a failure")
	}
	if !strings.Contains(ctx.Errors[0].Message, "undefined function: hidden") {
		t.Errorf("got %q", ctx.Errors[0].Message)
	}
}

func TestRunProgramDirect(t *testing.T) {
	program, diag := parser.Parse("2 + 3")
	if diag != nil {
		t.Fatal(diag)
	}
	result, err := NewTreeWalk().RunProgram(program)
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "5" {
		t.Errorf("got %s", result.Inspect())
	}
}

func TestBackendName(t *testing.T) {
	if NewTreeWalk().Name() != "tree-walk" {
		t.Error("unexpected backend name")
	}
}
