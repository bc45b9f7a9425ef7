package evaluator

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/config"
)

// MaxCallDepth bounds user-function recursion.
const MaxCallDepth = 1000

// Engine executes bulk numeric and string operations on behalf of the
// interpreter. The interpreter never reimplements an operation the engine
// advertises.
type Engine interface {
	Has(name string) bool
	Call(name string, args []Object) (Object, error)
}

// Specialist provides access to external library functions through the
// lib(module, function, args...) form. A call has two outcomes: a value or
// a failure reason. The transport error (process down, timeout) is the
// second return.
type Specialist interface {
	Call(module, function string, args []Object) (Object, error)
}

// Evaluator walks the tree. Function declarations are hoisted into a flat
// table before any statement runs, so call order never matters.
type Evaluator struct {
	engine     Engine
	specialist Specialist
	functions  map[string]*ast.FunctionStatement
	depth      int
}

func New(engine Engine, specialist Specialist) *Evaluator {
	return &Evaluator{
		engine:     engine,
		specialist: specialist,
		functions:  make(map[string]*ast.FunctionStatement),
	}
}

// RegisterFunction installs a function into the table ahead of evaluation.
// Import resolution uses this to expose another module's public functions.
func (e *Evaluator) RegisterFunction(fn *ast.FunctionStatement) {
	e.functions[fn.Name.Value] = fn
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, env)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)

	case *ast.LetStatement:
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Set(node.Name.Value, val)
		return VOID

	case *ast.FunctionStatement:
		// Hoisted in evalProgram; reaching one during execution is a no-op.
		return VOID

	case *ast.ImportStatement:
		return VOID

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.Identifier:
		return e.evalIdentifier(node, env)

	case *ast.ArrayLiteral:
		elements := e.evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &Array{Elements: elements}

	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node, right)

	case *ast.InfixExpression:
		return e.evalInfixDispatch(node, env)

	case *ast.IfExpression:
		return e.evalIfExpression(node, env)

	case *ast.BlockExpression:
		return e.evalBlockExpression(node, env)

	case *ast.MatchExpression:
		return e.evalMatchExpression(node, env)

	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}

	return newErrorAt(node, "unhandled node: %T", node)
}

// evalProgram runs in two passes. The first hoists every function
// declaration into the table, the second executes the remaining statements
// in order. The program's value is the value of its last statement.
func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*ast.FunctionStatement); ok {
			e.functions[fn.Name.Value] = fn
		}
	}

	var result Object = VOID
	for _, stmt := range program.Statements {
		if _, ok := stmt.(*ast.FunctionStatement); ok {
			continue
		}
		result = e.Eval(stmt, env)
		if isError(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return newErrorAt(node, "undefined variable: %s", node.Value)
}

func (e *Evaluator) evalExpressions(exps []ast.Expression, env *Environment) []Object {
	result := make([]Object, 0, len(exps))
	for _, exp := range exps {
		evaluated := e.Eval(exp, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}

func (e *Evaluator) evalBlockExpression(block *ast.BlockExpression, env *Environment) Object {
	var result Object = VOID
	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if isError(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) evalIfExpression(node *ast.IfExpression, env *Environment) Object {
	condition := e.Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}
	cond, ok := condition.(*Boolean)
	if !ok {
		return newErrorAt(node.Condition, "if condition must be a boolean, got %s", condition.Type())
	}
	if cond.Value {
		return e.Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return VOID
}

// evalCallExpression resolves a call site in order: the lib form, then the
// user function table, then the engine catalog.
func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	name := node.Function.Value

	if name == config.LibFuncName {
		return e.evalLibCall(node, env)
	}

	if fn, ok := e.functions[name]; ok {
		args := e.evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return e.applyFunction(node, fn, args)
	}

	if e.engine != nil && e.engine.Has(name) {
		args := e.evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		result, err := e.engine.Call(name, args)
		if err != nil {
			return newErrorAt(node, "%s", err.Error())
		}
		return result
	}

	return newErrorAt(node, "undefined function: %s", name)
}

func (e *Evaluator) applyFunction(site ast.Node, fn *ast.FunctionStatement, args []Object) Object {
	if len(args) != len(fn.Parameters) {
		return newErrorAt(site, "Function %s expects %d arguments, got %d",
			fn.Name.Value, len(fn.Parameters), len(args))
	}
	if e.depth >= MaxCallDepth {
		return newErrorAt(site, "call depth limit exceeded in %s", fn.Name.Value)
	}

	// A fresh environment holding only the parameters. Nothing from the
	// caller's scope leaks in.
	fnEnv := NewEnvironment()
	for i, param := range fn.Parameters {
		fnEnv.Set(param.Name.Value, args[i])
	}

	e.depth++
	result := e.Eval(fn.Body, fnEnv)
	e.depth--
	return result
}

// evalLibCall handles lib(module, function, args...). The two outcomes are
// surfaced to the language as ["ok", value] and ["error", reason] so user
// code can match on them.
func (e *Evaluator) evalLibCall(node *ast.CallExpression, env *Environment) Object {
	if len(node.Arguments) < 2 {
		return newErrorAt(node, "lib expects at least a module and a function name")
	}
	if e.specialist == nil {
		return newErrorAt(node, "no library specialist attached")
	}

	args := e.evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	module, ok := args[0].(*String)
	if !ok {
		return newErrorAt(node.Arguments[0], "lib module name must be a string, got %s", args[0].Type())
	}
	function, ok := args[1].(*String)
	if !ok {
		return newErrorAt(node.Arguments[1], "lib function name must be a string, got %s", args[1].Type())
	}

	result, err := e.specialist.Call(module.Value, function.Value, args[2:])
	if err != nil {
		return &Array{Elements: []Object{&String{Value: "error"}, &String{Value: err.Error()}}}
	}
	return &Array{Elements: []Object{&String{Value: "ok"}, result}}
}
