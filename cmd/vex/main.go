package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/vexlang/vex/internal/analyzer"
	"github.com/vexlang/vex/internal/backend"
	"github.com/vexlang/vex/internal/bridge"
	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/engine"
	"github.com/vexlang/vex/internal/evaluator"
	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/modules"
	"github.com/vexlang/vex/internal/optimizer"
	"github.com/vexlang/vex/internal/parser"
	"github.com/vexlang/vex/internal/pipeline"
	"github.com/vexlang/vex/internal/prettyprinter"
	"github.com/vexlang/vex/internal/repl"
)

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		runREPLOrStdin(cfg)
		return
	}

	switch os.Args[1] {
	case "-help", "--help", "help":
		printUsage()
	case "-e", "--eval":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: -e requires an expression")
			os.Exit(1)
		}
		runSource(cfg, os.Args[2], "")
	case "-check", "--check":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: -check requires a source file")
			os.Exit(1)
		}
		checkFile(os.Args[2])
	case "-fmt", "--fmt":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: -fmt requires a source file")
			os.Exit(1)
		}
		formatFile(os.Args[2])
	default:
		path := os.Args[1]
		if !isSourceFile(path) {
			fmt.Fprintf(os.Stderr, "Error: not a source file: %s\n", path)
			os.Exit(1)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading source file: %s\n", err)
			os.Exit(1)
		}
		runSource(cfg, string(source), path)
	}
}

func printUsage() {
	fmt.Println("Usage: vex [options] [file" + config.SourceFileExt + "]")
	fmt.Println()
	fmt.Println("  vex                 start the interactive shell (or read stdin when piped)")
	fmt.Println("  vex file" + config.SourceFileExt + "         run a source file")
	fmt.Println("  vex -e EXPR         evaluate an expression")
	fmt.Println("  vex -check FILE     type-check without running")
	fmt.Println("  vex -fmt FILE       print the formatted source")
}

func runREPLOrStdin(cfg *config.Config) {
	specialist := buildSpecialist(cfg)
	if isatty.IsTerminal(os.Stdin.Fd()) {
		repl.Start(os.Stdin, os.Stdout, specialist)
		return
	}
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	runSource(cfg, string(source), "<stdin>")
}

// buildSpecialist wires the library specialist from configuration. No
// configuration means lib() calls report the missing collaborator at
// runtime instead of failing startup.
func buildSpecialist(cfg *config.Config) evaluator.Specialist {
	if cfg.Specialist.GRPC != nil {
		g := cfg.Specialist.GRPC
		specialist, err := bridge.NewGRPCSpecialist(g.Target, g.Proto, g.Method, cfg.Specialist.Timeout.Std())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return specialist
	}
	if cfg.Specialist.Command == "" {
		return nil
	}
	b, err := bridge.New(bridge.Config{
		Command:          cfg.Specialist.Command,
		Args:             cfg.Specialist.Args,
		PoolSize:         cfg.Specialist.PoolSize,
		Timeout:          cfg.Specialist.Timeout.Std(),
		Retries:          cfg.Specialist.Retries,
		BreakerThreshold: cfg.Specialist.BreakerThreshold,
		BreakerCooldown:  cfg.Specialist.BreakerCooldown.Std(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return b
}

func runSource(cfg *config.Config, source, filePath string) {
	resolver, err := modules.NewResolver(cfg.Modules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer resolver.Close()

	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = filePath
	ctx.Engine = engine.New()
	ctx.Specialist = buildSpecialist(cfg)

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&optimizer.OptimizerProcessor{},
		backend.NewExecutionProcessor(&backend.TreeWalkBackend{Resolver: resolver}),
	)
	final := p.Run(ctx)

	if len(final.Errors) > 0 {
		for _, e := range final.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}

	if result, ok := final.Result.(evaluator.Object); ok && result.Type() != evaluator.VOID_OBJ {
		fmt.Println(result.Inspect())
	}
}

func checkFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source file: %s\n", err)
		os.Exit(1)
	}

	ctx := pipeline.NewPipelineContext(string(source))
	ctx.FilePath = path

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{},
	)
	final := p.Run(ctx)

	if len(final.Errors) > 0 {
		for _, e := range final.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}
	fmt.Println("ok")
}

func formatFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source file: %s\n", err)
		os.Exit(1)
	}

	program, diag := parser.Parse(string(source))
	if diag != nil {
		diag.File = path
		fmt.Fprintln(os.Stderr, diag.Error())
		os.Exit(1)
	}
	fmt.Println(prettyprinter.Print(program))
}
