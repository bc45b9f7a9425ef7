package backend

import (
	"fmt"
	"path/filepath"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/engine"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/modules"
	"github.com/vexlang/vex/internal/pipeline"
)

// TreeWalkBackend wraps the tree-walk interpreter
type TreeWalkBackend struct {
	Resolver *modules.Resolver
}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{}
}

// Run executes the program using tree-walk interpretation
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (evaluator.Object, error) {
	if ctx.AstRoot == nil {
		return nil, fmt.Errorf("no AST to execute")
	}
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("unexpected AST root %T", ctx.AstRoot)
	}

	eng, _ := ctx.Engine.(evaluator.Engine)
	if eng == nil {
		eng = engine.New()
	}
	specialist, _ := ctx.Specialist.(evaluator.Specialist)

	eval := evaluator.New(eng, specialist)

	if err := b.registerImports(eval, program, ctx.FilePath); err != nil {
		return nil, err
	}

	result := eval.Eval(program, evaluator.NewEnvironment())
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, fmt.Errorf("%s", errObj.Inspect())
	}
	return result, nil
}

// registerImports resolves every import statement and installs the target
// modules' public functions into the evaluator's function table.
func (b *TreeWalkBackend) registerImports(eval *evaluator.Evaluator, program *ast.Program, filePath string) error {
	if b.Resolver == nil {
		return nil
	}
	fromDir := "."
	if filePath != "" {
		fromDir = filepath.Dir(filePath)
	}
	for _, stmt := range program.Statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		mod, err := b.Resolver.Resolve(imp.Path.Value, fromDir)
		if err != nil {
			return err
		}
		for _, fn := range mod.Functions {
			eval.RegisterFunction(fn)
		}
	}
	return nil
}

// Name returns the backend name
func (b *TreeWalkBackend) Name() string {
	return "tree-walk"
}

// RunProgram is a convenience method that takes a Program directly
func (b *TreeWalkBackend) RunProgram(program *ast.Program) (evaluator.Object, error) {
	eval := evaluator.New(engine.New(), nil)
	if err := b.registerImports(eval, program, ""); err != nil {
		return nil, err
	}
	result := eval.Eval(program, evaluator.NewEnvironment())
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, fmt.Errorf("%s", errObj.Inspect())
	}
	return result, nil
}
