// Package typesystem implements the types and the unification algorithm used
// by the optional Hindley-Milner check pass. The set is closed: atomic
// constants, type variables, applied constructors (Array and other poly
// types) and function types.
package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Atomic type constants.
var (
	IntType    = TCon{Name: "Int"}
	FloatType  = TCon{Name: "Float"}
	BoolType   = TCon{Name: "Bool"}
	StringType = TCon{Name: "String"}
	VoidType   = TCon{Name: "Void"}
)

// ArrayOf builds the Array<elem> application.
func ArrayOf(elem Type) TApp {
	return TApp{Constructor: TCon{Name: "Array"}, Args: []Type{elem}}
}

// TVar represents a type variable (e.g. 't1', 't2').
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	if replacement, ok := s[t.Name]; ok {
		// Guard against direct self-reference in a malformed substitution.
		if tv, isVar := replacement.(TVar); isVar && tv.Name == t.Name {
			return t
		}
		return replacement.Apply(s)
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon represents a type constant/constructor (e.g. Int, Bool, Array).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(Subst) Type { return t }

func (t TCon) FreeTypeVariables() []TVar { return []TVar{} }

// TApp represents a type application (e.g. Array Int).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	if tCon, ok := t.Constructor.(TCon); ok && tCon.Name == "Array" && len(t.Args) == 1 {
		return fmt.Sprintf("[%s]", t.Args[0])
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s<%s>", t.Constructor, strings.Join(args, ", "))
}

func (t TApp) Apply(s Subst) Type {
	newArgs := make([]Type, len(t.Args))
	for i, arg := range t.Args {
		newArgs[i] = arg.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: newArgs}
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := t.Constructor.FreeTypeVariables()
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc represents a function type (e.g. (Int, Int) -> Bool).
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.ReturnType)
}

func (t TFunc) Apply(s Subst) Type {
	newParams := make([]Type, len(t.Params))
	for i, p := range t.Params {
		newParams[i] = p.Apply(s)
	}
	return TFunc{Params: newParams, ReturnType: t.ReturnType.Apply(s)}
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// Subst is a mapping from type variables to types. It is only ever extended
// during unification, never rolled back.
type Subst map[string]Type

// Compose combines two substitutions: applying the result is equivalent to
// applying s2, then s1.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := Subst{}
	for k, v := range s2 {
		subst[k] = v
	}
	for k, v := range s1 {
		subst[k] = v.Apply(s2)
	}
	return subst
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}
