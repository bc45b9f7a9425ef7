package evaluator

import (
	"github.com/vexlang/vex/internal/ast"
)

// evalMatchExpression tries clauses top to bottom. A clause fires when its
// pattern matches and its guard, if present, is true. Bindings made by the
// pattern are visible to both the guard and the result, and are discarded
// when the clause does not fire.
func (e *Evaluator) evalMatchExpression(node *ast.MatchExpression, env *Environment) Object {
	subject := e.Eval(node.Subject, env)
	if isError(subject) {
		return subject
	}

	for _, clause := range node.Clauses {
		bindings, matched := matchPattern(clause.Pattern, subject)
		if !matched {
			continue
		}

		clauseEnv := NewEnvironment()
		for name, val := range env.store {
			clauseEnv.Set(name, val)
		}
		for name, val := range bindings {
			clauseEnv.Set(name, val)
		}

		if clause.Guard != nil {
			guard := e.Eval(clause.Guard, clauseEnv)
			if isError(guard) {
				return guard
			}
			g, ok := guard.(*Boolean)
			if !ok {
				return newErrorAt(clause.Guard, "match guard must be a boolean, got %s", guard.Type())
			}
			if !g.Value {
				continue
			}
		}

		return e.Eval(clause.Result, clauseEnv)
	}

	return newErrorAt(node, "no pattern matched value %s", subject.Inspect())
}

// matchPattern reports whether value matches pattern, and the names the
// pattern binds when it does.
func matchPattern(pattern ast.Pattern, value Object) (map[string]Object, bool) {
	switch pat := pattern.(type) {
	case *ast.WildcardPattern:
		return nil, true

	case *ast.IdentifierPattern:
		return map[string]Object{pat.Value: value}, true

	case *ast.LiteralPattern:
		if objectsEqual(literalObject(pat), value) {
			return nil, true
		}
		return nil, false

	case *ast.ArrayPattern:
		arr, ok := value.(*Array)
		if !ok || len(arr.Elements) != len(pat.Elements) {
			return nil, false
		}
		bindings := make(map[string]Object)
		for i, sub := range pat.Elements {
			subBindings, matched := matchPattern(sub, arr.Elements[i])
			if !matched {
				return nil, false
			}
			for name, val := range subBindings {
				bindings[name] = val
			}
		}
		return bindings, true
	}

	return nil, false
}

func literalObject(pat *ast.LiteralPattern) Object {
	switch v := pat.Value.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: v.Value}
	case *ast.FloatLiteral:
		return &Float{Value: v.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(v.Value)
	case *ast.StringLiteral:
		return &String{Value: v.Value}
	}
	return VOID
}
