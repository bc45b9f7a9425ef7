package optimizer

import (
	"github.com/vexlang/vex/internal/ast"
)

// ConstantFolding collapses integer literal arithmetic at compile time.
// Division is left alone so a literal division by zero still fails at
// runtime with the runtime message, and float folding is skipped to keep
// evaluation the single place where rounding happens. The pass never
// mutates its input: the parsed AST stays shareable with the check path,
// so rewritten nodes are fresh copies.
type ConstantFolding struct{}

func (cf *ConstantFolding) Name() string { return "constant-folding" }

func (cf *ConstantFolding) Run(program *ast.Program) *ast.Program {
	out := &ast.Program{Statements: make([]ast.Statement, len(program.Statements))}
	for i, stmt := range program.Statements {
		out.Statements[i] = cf.foldStatement(stmt)
	}
	return out
}

func (cf *ConstantFolding) foldStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		folded := *s
		folded.Value = cf.foldExpression(s.Value)
		return &folded
	case *ast.ExpressionStatement:
		folded := *s
		folded.Expression = cf.foldExpression(s.Expression)
		return &folded
	case *ast.FunctionStatement:
		folded := *s
		folded.Body = cf.foldExpression(s.Body)
		return &folded
	}
	return stmt
}

func (cf *ConstantFolding) foldExpression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.InfixExpression:
		folded := *e
		folded.Left = cf.foldExpression(e.Left)
		folded.Right = cf.foldExpression(e.Right)
		return cf.foldInfix(&folded)
	case *ast.PrefixExpression:
		folded := *e
		folded.Right = cf.foldExpression(e.Right)
		if folded.Operator == "-" {
			if lit, ok := folded.Right.(*ast.IntegerLiteral); ok {
				return &ast.IntegerLiteral{Token: e.Token, Value: -lit.Value}
			}
		}
		return &folded
	case *ast.ArrayLiteral:
		folded := *e
		folded.Elements = make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			folded.Elements[i] = cf.foldExpression(el)
		}
		return &folded
	case *ast.IndexExpression:
		folded := *e
		folded.Left = cf.foldExpression(e.Left)
		folded.Index = cf.foldExpression(e.Index)
		return &folded
	case *ast.CallExpression:
		folded := *e
		folded.Arguments = make([]ast.Expression, len(e.Arguments))
		for i, arg := range e.Arguments {
			folded.Arguments[i] = cf.foldExpression(arg)
		}
		return &folded
	case *ast.IfExpression:
		folded := *e
		folded.Condition = cf.foldExpression(e.Condition)
		folded.Consequence = cf.foldExpression(e.Consequence)
		if e.Alternative != nil {
			folded.Alternative = cf.foldExpression(e.Alternative)
		}
		return &folded
	case *ast.BlockExpression:
		folded := *e
		folded.Statements = make([]ast.Statement, len(e.Statements))
		for i, stmt := range e.Statements {
			folded.Statements[i] = cf.foldStatement(stmt)
		}
		return &folded
	case *ast.MatchExpression:
		folded := *e
		folded.Subject = cf.foldExpression(e.Subject)
		folded.Clauses = make([]ast.MatchClause, len(e.Clauses))
		for i, clause := range e.Clauses {
			folded.Clauses[i] = clause
			if clause.Guard != nil {
				folded.Clauses[i].Guard = cf.foldExpression(clause.Guard)
			}
			folded.Clauses[i].Result = cf.foldExpression(clause.Result)
		}
		return &folded
	}
	return expr
}

func (cf *ConstantFolding) foldInfix(e *ast.InfixExpression) ast.Expression {
	left, ok := e.Left.(*ast.IntegerLiteral)
	if !ok {
		return e
	}
	right, ok := e.Right.(*ast.IntegerLiteral)
	if !ok {
		return e
	}

	switch e.Operator {
	case "+":
		return &ast.IntegerLiteral{Token: left.Token, Value: left.Value + right.Value}
	case "-":
		return &ast.IntegerLiteral{Token: left.Token, Value: left.Value - right.Value}
	case "*":
		return &ast.IntegerLiteral{Token: left.Token, Value: left.Value * right.Value}
	}
	return e
}
