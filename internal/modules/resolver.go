// Package modules resolves import statements to parsed source files. An
// import makes the target module's public functions callable; nothing else
// crosses the module boundary.
package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/parser"
)

// Module is one resolved source file and its public surface.
type Module struct {
	Name      string
	Path      string
	Program   *ast.Program
	Functions []*ast.FunctionStatement // public declarations only
}

// Resolver loads modules by name, caching within a run and, when a cache
// path is configured, across runs.
type Resolver struct {
	paths   []string
	cache   *Cache
	loaded  map[string]*Module
	loading map[string]bool
}

func NewResolver(cfg config.ModulesConfig) (*Resolver, error) {
	r := &Resolver{
		paths:   cfg.Paths,
		loaded:  make(map[string]*Module),
		loading: make(map[string]bool),
	}
	if cfg.CachePath != "" {
		cache, err := OpenCache(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

func (r *Resolver) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// Resolve loads the named module, searching fromDir first and then the
// configured module paths. Imports inside the module resolve relative to
// the module's own directory.
func (r *Resolver) Resolve(name, fromDir string) (*Module, error) {
	path, err := r.locate(name, fromDir)
	if err != nil {
		return nil, err
	}

	if mod, ok := r.loaded[path]; ok {
		return mod, nil
	}
	if r.loading[path] {
		return nil, fmt.Errorf("import cycle detected through %s", name)
	}
	r.loading[path] = true
	defer delete(r.loading, path)

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	program, diag := parser.Parse(string(source))
	if diag != nil {
		diag.File = path
		return nil, diag
	}

	mod := &Module{Name: name, Path: path, Program: program}
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionStatement:
			if s.IsPublic {
				mod.Functions = append(mod.Functions, s)
			}
		case *ast.ImportStatement:
			// Transitive imports: public functions propagate one level
			// down only if re-exported, so just resolve for side effects
			// and cycle detection.
			if _, err := r.Resolve(s.Path.Value, filepath.Dir(path)); err != nil {
				return nil, err
			}
		}
	}

	r.loaded[path] = mod
	r.storeInterface(mod, source)
	return mod, nil
}

// Exports answers a module's public interface, from the persistent cache
// when the file is unchanged, otherwise by a full resolve.
func (r *Resolver) Exports(name, fromDir string) ([]Export, error) {
	path, err := r.locate(name, fromDir)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if source, err := os.ReadFile(path); err == nil {
			if exports, ok := r.cache.Lookup(path, contentHash(source)); ok {
				return exports, nil
			}
		}
	}

	mod, err := r.Resolve(name, fromDir)
	if err != nil {
		return nil, err
	}
	return moduleExports(mod), nil
}

func (r *Resolver) storeInterface(mod *Module, source []byte) {
	if r.cache == nil {
		return
	}
	// Cache write failure only costs a re-parse next run.
	_ = r.cache.Store(mod.Path, contentHash(source), moduleExports(mod))
}

func moduleExports(mod *Module) []Export {
	exports := make([]Export, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		params := make([]string, len(fn.Parameters))
		for i, p := range fn.Parameters {
			params[i] = p.Name.Value + ": " + annotationString(p.Type)
		}
		sig := fmt.Sprintf("fn %s(%s) -> %s",
			fn.Name.Value, strings.Join(params, ", "), annotationString(fn.ReturnType))
		exports = append(exports, Export{
			Name:      fn.Name.Value,
			Arity:     len(fn.Parameters),
			Signature: sig,
		})
	}
	return exports
}

func annotationString(t ast.TypeAnnotation) string {
	switch a := t.(type) {
	case *ast.NamedType:
		return a.Name
	case *ast.ArrayType:
		return "[" + annotationString(a.Elem) + "]"
	}
	return "?"
}

func (r *Resolver) locate(name, fromDir string) (string, error) {
	candidates := make([]string, 0, len(r.paths)+1)
	if fromDir != "" {
		candidates = append(candidates, fromDir)
	}
	candidates = append(candidates, r.paths...)

	for _, dir := range candidates {
		for _, ext := range config.SourceFileExtensions {
			path := filepath.Join(dir, name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("module not found: %s", name)
}

func contentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
