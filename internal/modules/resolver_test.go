package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/config"
)

func writeModule(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolvePublicFunctions(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "geometry.vx", `
pub fn area(w: Float, h: Float) -> Float: w * h
fn helper(x: Int) -> Int: x
pub fn perimeter(w: Float, h: Float) -> Float: 2.0 * (w + h)
`)

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	mod, err := r.Resolve("geometry", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Functions) != 2 {
		t.Fatalf("expected 2 public functions, got %d", len(mod.Functions))
	}
	if mod.Functions[0].Name.Value != "area" || mod.Functions[1].Name.Value != "perimeter" {
		t.Errorf("got %s, %s", mod.Functions[0].Name.Value, mod.Functions[1].Name.Value)
	}
}

func TestResolveFromDirBeforePaths(t *testing.T) {
	near := t.TempDir()
	far := t.TempDir()
	writeModule(t, near, "util.vx", "pub fn near() -> Int: 1")
	writeModule(t, far, "util.vx", "pub fn far() -> Int: 2")

	r, err := NewResolver(config.ModulesConfig{Paths: []string{far}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	mod, err := r.Resolve("util", near)
	if err != nil {
		t.Fatal(err)
	}
	if mod.Functions[0].Name.Value != "near" {
		t.Errorf("resolved the wrong file: %s", mod.Path)
	}
}

func TestResolveMissingModule(t *testing.T) {
	r, err := NewResolver(config.ModulesConfig{Paths: []string{t.TempDir()}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = r.Resolve("ghost", "")
	if err == nil || !strings.Contains(err.Error(), "module not found: ghost") {
		t.Fatalf("got %v", err)
	}
}

func TestResolveParseErrorCarriesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "broken.vx", "fn oops(")

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = r.Resolve("broken", "")
	if err == nil || !strings.Contains(err.Error(), filepath.Base(path)) {
		t.Fatalf("got %v", err)
	}
}

func TestResolveTransitiveImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "outer.vx", `
import "inner"
pub fn top() -> Int: 1
`)
	writeModule(t, dir, "inner.vx", "pub fn bottom() -> Int: 2")

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	mod, err := r.Resolve("outer", "")
	if err != nil {
		t.Fatal(err)
	}
	// No re-export: only outer's own public surface.
	if len(mod.Functions) != 1 || mod.Functions[0].Name.Value != "top" {
		t.Fatalf("got %d functions", len(mod.Functions))
	}
}

func TestResolveImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.vx", `
import "b"
pub fn fa() -> Int: 1
`)
	writeModule(t, dir, "b.vx", `
import "a"
pub fn fb() -> Int: 2
`)

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = r.Resolve("a", "")
	if err == nil || !strings.Contains(err.Error(), "import cycle detected") {
		t.Fatalf("got %v", err)
	}
}

func TestResolveCachesWithinRun(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "once.vx", "pub fn f() -> Int: 1")

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	first, err := r.Resolve("once", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve("once", "")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the same Module instance on repeat resolves")
	}
}

func TestExportsSignatures(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shapes.vx", "pub fn area(ws: [Float], h: Float) -> Float: h")

	r, err := NewResolver(config.ModulesConfig{Paths: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	exports, err := r.Exports("shapes", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 1 {
		t.Fatalf("got %d exports", len(exports))
	}
	e := exports[0]
	if e.Name != "area" || e.Arity != 2 {
		t.Errorf("got %+v", e)
	}
	if e.Signature != "fn area(ws: [Float], h: Float) -> Float" {
		t.Errorf("got signature %q", e.Signature)
	}
}

func TestExportsServedFromPersistentCache(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "cached.vx", "pub fn f(x: Int) -> Int: x")
	cachePath := filepath.Join(t.TempDir(), "modules.db")

	r1, err := NewResolver(config.ModulesConfig{Paths: []string{dir}, CachePath: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r1.Exports("cached", ""); err != nil {
		t.Fatal(err)
	}
	r1.Close()

	// A fresh resolver with the same cache file answers without re-parsing.
	r2, err := NewResolver(config.ModulesConfig{Paths: []string{dir}, CachePath: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()

	exports, err := r2.Exports("cached", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 1 || exports[0].Name != "f" {
		t.Fatalf("got %+v", exports)
	}
	if len(r2.loaded) != 0 {
		t.Error("cache hit should not have loaded the module")
	}
}

func TestCacheInvalidatedByEdit(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mut.vx", "pub fn old() -> Int: 1")
	cachePath := filepath.Join(t.TempDir(), "modules.db")

	r1, err := NewResolver(config.ModulesConfig{Paths: []string{dir}, CachePath: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r1.Exports("mut", ""); err != nil {
		t.Fatal(err)
	}
	r1.Close()

	writeModule(t, dir, "mut.vx", "pub fn renamed() -> Int: 1")

	r2, err := NewResolver(config.ModulesConfig{Paths: []string{dir}, CachePath: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()

	exports, err := r2.Exports("mut", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 1 || exports[0].Name != "renamed" {
		t.Fatalf("stale cache served: %+v", exports)
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	exports := []Export{{Name: "f", Arity: 1, Signature: "fn f(x: Int) -> Int"}}
	if err := cache.Store("/src/m.vx", "hash1", exports); err != nil {
		t.Fatal(err)
	}

	got, ok := cache.Lookup("/src/m.vx", "hash1")
	if !ok || len(got) != 1 || got[0] != exports[0] {
		t.Fatalf("got %+v (ok=%t)", got, ok)
	}

	if _, ok := cache.Lookup("/src/m.vx", "hash2"); ok {
		t.Error("lookup with a different hash must miss")
	}

	// Storing a new hash drops the old row for the path.
	if err := cache.Store("/src/m.vx", "hash2", exports); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup("/src/m.vx", "hash1"); ok {
		t.Error("stale hash survived a store")
	}
}
