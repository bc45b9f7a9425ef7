package evaluator

import (
	"github.com/vexlang/vex/internal/ast"
)

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, right Object) Object {
	switch node.Operator {
	case "!":
		b, ok := right.(*Boolean)
		if !ok {
			return newErrorAt(node, "operator ! requires a boolean, got %s", right.Type())
		}
		return nativeBoolToBooleanObject(!b.Value)
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		}
		return newErrorAt(node, "operator - requires a number, got %s", right.Type())
	}
	return newErrorAt(node, "unknown prefix operator: %s", node.Operator)
}

// evalInfixDispatch short-circuits && and ||; every other operator
// evaluates both sides first.
func (e *Evaluator) evalInfixDispatch(node *ast.InfixExpression, env *Environment) Object {
	if node.Operator == "&&" || node.Operator == "||" {
		return e.evalLogicalExpression(node, env)
	}

	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return e.evalInfixExpression(node, left, right)
}

func (e *Evaluator) evalLogicalExpression(node *ast.InfixExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	lb, ok := left.(*Boolean)
	if !ok {
		return newErrorAt(node.Left, "operator %s requires booleans, got %s", node.Operator, left.Type())
	}

	if node.Operator == "&&" && !lb.Value {
		return FALSE
	}
	if node.Operator == "||" && lb.Value {
		return TRUE
	}

	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	rb, ok := right.(*Boolean)
	if !ok {
		return newErrorAt(node.Right, "operator %s requires booleans, got %s", node.Operator, right.Type())
	}
	return nativeBoolToBooleanObject(rb.Value)
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, left, right Object) Object {
	op := node.Operator

	switch op {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return e.evalIntegerInfix(node, left.(*Integer), right.(*Integer))
	case isNumeric(left) && isNumeric(right):
		return e.evalFloatInfix(node, toFloat(left), toFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return e.evalStringInfix(node, left.(*String), right.(*String))
	}

	return newErrorAt(node, "type mismatch: %s %s %s", left.Type(), op, right.Type())
}

func (e *Evaluator) evalIntegerInfix(node *ast.InfixExpression, left, right *Integer) Object {
	switch node.Operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		// Division always lands in Float.
		if right.Value == 0 {
			return newErrorAt(node, "division by zero")
		}
		return &Float{Value: float64(left.Value) / float64(right.Value)}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return newErrorAt(node, "unknown operator: INTEGER %s INTEGER", node.Operator)
}

func (e *Evaluator) evalFloatInfix(node *ast.InfixExpression, left, right float64) Object {
	switch node.Operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return newErrorAt(node, "division by zero")
		}
		return &Float{Value: left / right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return newErrorAt(node, "unknown operator: FLOAT %s FLOAT", node.Operator)
}

func (e *Evaluator) evalStringInfix(node *ast.InfixExpression, left, right *String) Object {
	switch node.Operator {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return newErrorAt(node, "unknown operator: STRING %s STRING", node.Operator)
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}

	arr, ok := left.(*Array)
	if !ok {
		return newErrorAt(node, "index operator requires an array, got %s", left.Type())
	}
	idx, ok := index.(*Integer)
	if !ok {
		return newErrorAt(node.Index, "array index must be an integer, got %s", index.Type())
	}
	if idx.Value < 0 || idx.Value >= int64(len(arr.Elements)) {
		return newErrorAt(node, "index out of bounds: %d (length %d)", idx.Value, len(arr.Elements))
	}
	return arr.Elements[idx.Value]
}

func isNumeric(obj Object) bool {
	return obj.Type() == INTEGER_OBJ || obj.Type() == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value)
	case *Float:
		return o.Value
	}
	return 0
}
