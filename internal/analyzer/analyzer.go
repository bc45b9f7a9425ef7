// Package analyzer implements the optional Hindley-Milner type check pass.
//
// The pass is a read-only walk over the parser's AST: it assigns a fresh type
// variable to every unresolved binding site, computes a type for each
// subexpression bottom-up and unifies types at every site where two types
// must agree. It never affects evaluation; unchecked programs still execute
// with the runtime numeric-promotion rules.
package analyzer

import (
	"fmt"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/typesystem"
)

// TypeError is the third error channel, produced only by this pass.
type TypeError struct {
	Message  string
	Line     int
	Column   int
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	msg := e.Message
	if e.Expected != "" || e.Actual != "" {
		msg = fmt.Sprintf("%s (expected %s, got %s)", msg, e.Expected, e.Actual)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, msg)
	}
	return msg
}

// InferenceContext holds the state for one inference pass. Using a context
// instead of global state keeps type variable names predictable and lets
// many programs be checked concurrently.
type InferenceContext struct {
	counter int
	subst   typesystem.Subst

	// TypeMap records the inferred type of every expression node.
	TypeMap map[ast.Node]typesystem.Type

	// functions holds the declared signature of every top-level function,
	// collected before any body is checked so forward and mutual recursion
	// infer cleanly.
	functions map[string]typesystem.TFunc
}

func NewInferenceContext() *InferenceContext {
	return &InferenceContext{
		subst:     make(typesystem.Subst),
		TypeMap:   make(map[ast.Node]typesystem.Type),
		functions: make(map[string]typesystem.TFunc),
	}
}

func (c *InferenceContext) freshTVar() typesystem.TVar {
	c.counter++
	return typesystem.TVar{Name: fmt.Sprintf("t%d", c.counter)}
}

// resolve applies the accumulated substitution to t.
func (c *InferenceContext) resolve(t typesystem.Type) typesystem.Type {
	return t.Apply(c.subst)
}

// unify unifies two types at node's location, extending the global
// substitution on success.
func (c *InferenceContext) unify(expected, actual typesystem.Type, node ast.Node) *TypeError {
	s, err := typesystem.Unify(c.resolve(expected), c.resolve(actual))
	if err != nil {
		tok := node.GetToken()
		return &TypeError{
			Message:  err.Error(),
			Line:     tok.Line,
			Column:   tok.Column,
			Expected: c.resolve(expected).String(),
			Actual:   c.resolve(actual).String(),
		}
	}
	c.subst = c.subst.Compose(s)
	return nil
}

// Infer type-checks a whole program. On success the returned context's
// TypeMap annotates every expression node.
func Infer(program *ast.Program) (*InferenceContext, *TypeError) {
	c := NewInferenceContext()

	// First pass: collect function signatures from their mandatory
	// annotations, mirroring the evaluator's whole-program hoisting.
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*ast.FunctionStatement); ok {
			sig, err := c.signatureOf(fn)
			if err != nil {
				return nil, err
			}
			c.functions[fn.Name.Value] = sig
		}
	}

	// Second pass: check statements in source order against a single scope.
	env := make(map[string]typesystem.Type)
	for _, stmt := range program.Statements {
		if err := c.inferStatement(stmt, env); err != nil {
			return nil, err
		}
	}

	// Ground the recorded types through the final substitution.
	for node, t := range c.TypeMap {
		c.TypeMap[node] = c.resolve(t)
	}
	return c, nil
}

func (c *InferenceContext) signatureOf(fn *ast.FunctionStatement) (typesystem.TFunc, *TypeError) {
	params := make([]typesystem.Type, len(fn.Parameters))
	for i, p := range fn.Parameters {
		t, err := c.annotationType(p.Type)
		if err != nil {
			return typesystem.TFunc{}, err
		}
		params[i] = t
	}
	ret, err := c.annotationType(fn.ReturnType)
	if err != nil {
		return typesystem.TFunc{}, err
	}
	return typesystem.TFunc{Params: params, ReturnType: ret}, nil
}

// annotationType converts a source type annotation into a typesystem type.
func (c *InferenceContext) annotationType(ann ast.TypeAnnotation) (typesystem.Type, *TypeError) {
	switch a := ann.(type) {
	case *ast.NamedType:
		switch a.Name {
		case "Int":
			return typesystem.IntType, nil
		case "Float":
			return typesystem.FloatType, nil
		case "Bool":
			return typesystem.BoolType, nil
		case "String":
			return typesystem.StringType, nil
		case "Void":
			return typesystem.VoidType, nil
		default:
			tok := a.GetToken()
			return nil, &TypeError{
				Message: fmt.Sprintf("unknown type name: %s", a.Name),
				Line:    tok.Line,
				Column:  tok.Column,
			}
		}
	case *ast.ArrayType:
		elem, err := c.annotationType(a.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.ArrayOf(elem), nil
	default:
		tok := ann.GetToken()
		return nil, &TypeError{
			Message: fmt.Sprintf("unsupported type annotation %T", ann),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}

func (c *InferenceContext) inferStatement(stmt ast.Statement, env map[string]typesystem.Type) *TypeError {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		t, err := c.inferExpression(s.Value, env)
		if err != nil {
			return err
		}
		env[s.Name.Value] = t
		c.TypeMap[s.Name] = t
		return nil
	case *ast.FunctionStatement:
		return c.inferFunctionBody(s)
	case *ast.ImportStatement:
		// Resolution happens outside the core; nothing to check here.
		return nil
	case *ast.ExpressionStatement:
		_, err := c.inferExpression(s.Expression, env)
		return err
	default:
		tok := stmt.GetToken()
		return &TypeError{
			Message: fmt.Sprintf("unsupported statement %T", stmt),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}

// inferFunctionBody checks a function body in a scope built from its
// parameters alone, then unifies the body type with the declared return
// type. The outer scope is invisible: no closures.
func (c *InferenceContext) inferFunctionBody(fn *ast.FunctionStatement) *TypeError {
	sig := c.functions[fn.Name.Value]

	bodyEnv := make(map[string]typesystem.Type, len(fn.Parameters))
	for i, p := range fn.Parameters {
		bodyEnv[p.Name.Value] = sig.Params[i]
	}

	bodyType, err := c.inferExpression(fn.Body, bodyEnv)
	if err != nil {
		return err
	}
	if err := c.unifyReturn(sig.ReturnType, bodyType, fn.Body); err != nil {
		return err
	}
	c.TypeMap[fn.Name] = sig
	return nil
}

// unifyReturn unifies a function body type against the declared return,
// accepting the Int -> Float promotion the runtime applies.
func (c *InferenceContext) unifyReturn(declared, body typesystem.Type, node ast.Node) *TypeError {
	if isFloat(c.resolve(declared)) && isInt(c.resolve(body)) {
		return nil
	}
	return c.unify(declared, body, node)
}

func isInt(t typesystem.Type) bool {
	tc, ok := t.(typesystem.TCon)
	return ok && tc.Name == "Int"
}

func isFloat(t typesystem.Type) bool {
	tc, ok := t.(typesystem.TCon)
	return ok && tc.Name == "Float"
}
