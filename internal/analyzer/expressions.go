package analyzer

import (
	"fmt"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/typesystem"
)

func (c *InferenceContext) inferExpression(expr ast.Expression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	t, err := c.inferExpressionInner(expr, env)
	if err != nil {
		return nil, err
	}
	c.TypeMap[expr] = t
	return t, nil
}

func (c *InferenceContext) inferExpressionInner(expr ast.Expression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return typesystem.IntType, nil
	case *ast.FloatLiteral:
		return typesystem.FloatType, nil
	case *ast.BooleanLiteral:
		return typesystem.BoolType, nil
	case *ast.StringLiteral:
		return typesystem.StringType, nil

	case *ast.Identifier:
		if t, ok := env[e.Value]; ok {
			return c.resolve(t), nil
		}
		// Unresolved binding site: assign a fresh type variable. Whether the
		// name exists is the evaluator's concern, not the checker's.
		tv := c.freshTVar()
		env[e.Value] = tv
		return tv, nil

	case *ast.ArrayLiteral:
		elem := typesystem.Type(c.freshTVar())
		for _, el := range e.Elements {
			et, err := c.inferExpression(el, env)
			if err != nil {
				return nil, err
			}
			if uerr := c.unify(elem, et, el); uerr != nil {
				return nil, uerr
			}
			elem = c.resolve(elem)
		}
		return typesystem.ArrayOf(c.resolve(elem)), nil

	case *ast.IndexExpression:
		leftType, err := c.inferExpression(e.Left, env)
		if err != nil {
			return nil, err
		}
		elem := c.freshTVar()
		if uerr := c.unify(typesystem.ArrayOf(elem), leftType, e.Left); uerr != nil {
			return nil, uerr
		}
		idxType, err := c.inferExpression(e.Index, env)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(typesystem.IntType, idxType, e.Index); uerr != nil {
			return nil, uerr
		}
		return c.resolve(elem), nil

	case *ast.PrefixExpression:
		return c.inferPrefix(e, env)

	case *ast.InfixExpression:
		return c.inferInfix(e, env)

	case *ast.CallExpression:
		return c.inferCall(e, env)

	case *ast.IfExpression:
		return c.inferIf(e, env)

	case *ast.BlockExpression:
		var t typesystem.Type = typesystem.VoidType
		for _, stmt := range e.Statements {
			if err := c.inferStatement(stmt, env); err != nil {
				return nil, err
			}
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				t = c.TypeMap[es.Expression]
			} else {
				t = typesystem.VoidType
			}
		}
		return t, nil

	case *ast.MatchExpression:
		return c.inferMatch(e, env)

	default:
		tok := expr.GetToken()
		return nil, &TypeError{
			Message: fmt.Sprintf("unsupported expression %T", expr),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}

func (c *InferenceContext) inferPrefix(e *ast.PrefixExpression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	rightType, err := c.inferExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "!":
		if uerr := c.unify(typesystem.BoolType, rightType, e.Right); uerr != nil {
			return nil, uerr
		}
		return typesystem.BoolType, nil
	case "-":
		return c.numericOperand(rightType, e.Right)
	default:
		tok := e.GetToken()
		return nil, &TypeError{
			Message: fmt.Sprintf("unknown prefix operator: %s", e.Operator),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}

func (c *InferenceContext) inferInfix(e *ast.InfixExpression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	leftType, err := c.inferExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	rightType, err := c.inferExpression(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "+", "-", "*", "/":
		lt, uerr := c.numericOperand(leftType, e.Left)
		if uerr != nil {
			return nil, uerr
		}
		rt, uerr := c.numericOperand(rightType, e.Right)
		if uerr != nil {
			return nil, uerr
		}
		// Promotion rule: / always yields Float; any Float operand promotes
		// the result; Int op Int stays Int.
		if e.Operator == "/" {
			return typesystem.FloatType, nil
		}
		if isFloat(lt) || isFloat(rt) {
			return typesystem.FloatType, nil
		}
		return typesystem.IntType, nil

	case "<", "<=", ">", ">=":
		if _, uerr := c.numericOperand(leftType, e.Left); uerr != nil {
			return nil, uerr
		}
		if _, uerr := c.numericOperand(rightType, e.Right); uerr != nil {
			return nil, uerr
		}
		return typesystem.BoolType, nil

	case "==", "!=":
		// Equality is defined over numbers, strings and booleans; mixed
		// Int/Float compares after promotion.
		lt := c.resolve(leftType)
		rt := c.resolve(rightType)
		if (isInt(lt) && isFloat(rt)) || (isFloat(lt) && isInt(rt)) {
			return typesystem.BoolType, nil
		}
		if uerr := c.unify(leftType, rightType, e); uerr != nil {
			return nil, uerr
		}
		return typesystem.BoolType, nil

	case "&&", "||":
		if uerr := c.unify(typesystem.BoolType, leftType, e.Left); uerr != nil {
			return nil, uerr
		}
		if uerr := c.unify(typesystem.BoolType, rightType, e.Right); uerr != nil {
			return nil, uerr
		}
		return typesystem.BoolType, nil

	default:
		tok := e.GetToken()
		return nil, &TypeError{
			Message: fmt.Sprintf("unknown operator: %s", e.Operator),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}

// numericOperand constrains t to Int or Float. An unconstrained type
// variable defaults to Int; the promotion rule decides the result type.
func (c *InferenceContext) numericOperand(t typesystem.Type, node ast.Node) (typesystem.Type, *TypeError) {
	resolved := c.resolve(t)
	switch rt := resolved.(type) {
	case typesystem.TCon:
		if rt.Name == "Int" || rt.Name == "Float" {
			return resolved, nil
		}
	case typesystem.TVar:
		if uerr := c.unify(resolved, typesystem.IntType, node); uerr != nil {
			return nil, uerr
		}
		return typesystem.IntType, nil
	}
	tok := node.GetToken()
	return nil, &TypeError{
		Message:  "operand is not numeric",
		Line:     tok.Line,
		Column:   tok.Column,
		Expected: "Int or Float",
		Actual:   resolved.String(),
	}
}

func (c *InferenceContext) inferCall(e *ast.CallExpression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	argTypes := make([]typesystem.Type, len(e.Arguments))
	for i, arg := range e.Arguments {
		t, err := c.inferExpression(arg, env)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}

	sig, ok := c.functions[e.Function.Value]
	if !ok {
		// External collaborator site (numeric engine or library specialist):
		// its result is opaque to the checker.
		return c.freshTVar(), nil
	}

	if len(argTypes) != len(sig.Params) {
		tok := e.GetToken()
		return nil, &TypeError{
			Message:  fmt.Sprintf("function %s expects %d arguments, got %d", e.Function.Value, len(sig.Params), len(argTypes)),
			Line:     tok.Line,
			Column:   tok.Column,
			Expected: fmt.Sprintf("%d arguments", len(sig.Params)),
			Actual:   fmt.Sprintf("%d arguments", len(argTypes)),
		}
	}
	for i, at := range argTypes {
		// Int arguments are accepted where Float is declared, matching the
		// runtime promotion.
		if isFloat(c.resolve(sig.Params[i])) && isInt(c.resolve(at)) {
			continue
		}
		if uerr := c.unify(sig.Params[i], at, e.Arguments[i]); uerr != nil {
			return nil, uerr
		}
	}
	return sig.ReturnType, nil
}

func (c *InferenceContext) inferIf(e *ast.IfExpression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	condType, err := c.inferExpression(e.Condition, env)
	if err != nil {
		return nil, err
	}
	if uerr := c.unify(typesystem.BoolType, condType, e.Condition); uerr != nil {
		return nil, uerr
	}

	thenType, err := c.inferExpression(e.Consequence, env)
	if err != nil {
		return nil, err
	}

	if e.Alternative == nil {
		// A false condition with no else yields void; the then-branch type
		// is not constrained further.
		return typesystem.VoidType, nil
	}

	elseType, err := c.inferExpression(e.Alternative, env)
	if err != nil {
		return nil, err
	}
	lt, rt := c.resolve(thenType), c.resolve(elseType)
	if (isInt(lt) && isFloat(rt)) || (isFloat(lt) && isInt(rt)) {
		return typesystem.FloatType, nil
	}
	if uerr := c.unify(thenType, elseType, e.Alternative); uerr != nil {
		return nil, uerr
	}
	return c.resolve(thenType), nil
}

func (c *InferenceContext) inferMatch(e *ast.MatchExpression, env map[string]typesystem.Type) (typesystem.Type, *TypeError) {
	subjectType, err := c.inferExpression(e.Subject, env)
	if err != nil {
		return nil, err
	}

	result := typesystem.Type(c.freshTVar())
	for _, clause := range e.Clauses {
		// Bind patterns introduce clause-local names; give each clause its
		// own view of the scope.
		clauseEnv := make(map[string]typesystem.Type, len(env)+2)
		for k, v := range env {
			clauseEnv[k] = v
		}
		if perr := c.inferPattern(clause.Pattern, subjectType, clauseEnv); perr != nil {
			return nil, perr
		}
		if clause.Guard != nil {
			guardType, err := c.inferExpression(clause.Guard, clauseEnv)
			if err != nil {
				return nil, err
			}
			if uerr := c.unify(typesystem.BoolType, guardType, clause.Guard); uerr != nil {
				return nil, uerr
			}
		}
		resultType, err := c.inferExpression(clause.Result, clauseEnv)
		if err != nil {
			return nil, err
		}
		// Clauses unify like if branches: a mixed Int/Float result promotes
		// to Float.
		lt, rt := c.resolve(result), c.resolve(resultType)
		if (isInt(lt) && isFloat(rt)) || (isFloat(lt) && isInt(rt)) {
			result = typesystem.FloatType
			continue
		}
		if uerr := c.unify(result, resultType, clause.Result); uerr != nil {
			return nil, uerr
		}
		result = c.resolve(result)
	}
	return c.resolve(result), nil
}

// inferPattern unifies a pattern's shape against the subject type and binds
// any names the pattern introduces into env.
func (c *InferenceContext) inferPattern(pat ast.Pattern, subject typesystem.Type, env map[string]typesystem.Type) *TypeError {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return nil
	case *ast.IdentifierPattern:
		env[p.Value] = c.resolve(subject)
		return nil
	case *ast.LiteralPattern:
		litType, err := c.inferExpression(p.Value, env)
		if err != nil {
			return err
		}
		ls, rs := c.resolve(litType), c.resolve(subject)
		if (isInt(ls) && isFloat(rs)) || (isFloat(ls) && isInt(rs)) {
			return nil
		}
		return c.unify(subject, litType, p)
	case *ast.ArrayPattern:
		elem := c.freshTVar()
		if uerr := c.unify(typesystem.ArrayOf(elem), subject, p); uerr != nil {
			return uerr
		}
		for _, sub := range p.Elements {
			if err := c.inferPattern(sub, c.resolve(elem), env); err != nil {
				return err
			}
		}
		return nil
	default:
		tok := pat.GetToken()
		return &TypeError{
			Message: fmt.Sprintf("unsupported pattern %T", pat),
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}
}
