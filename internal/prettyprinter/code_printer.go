// Package prettyprinter renders an AST back to source text. Printing then
// re-parsing yields an equal AST up to location metadata; tooling relies on
// that round trip.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/vexlang/vex/internal/ast"
)

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3,
	"!=": 3,
	"<":  4,
	">":  4,
	"<=": 4,
	">=": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
}

// Unary operators bind tighter than every binary operator.
const unaryPrec = 7

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return unaryPrec
}

type CodePrinter struct {
	buf bytes.Buffer
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) Print(program *ast.Program) string {
	p.buf.Reset()
	for i, stmt := range program.Statements {
		if i > 0 {
			p.buf.WriteString("\n")
		}
		p.printStatement(stmt)
	}
	return p.buf.String()
}

func (p *CodePrinter) printStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		p.buf.WriteString("let " + s.Name.Value + " = ")
		p.printExpression(s.Value, 0)
	case *ast.FunctionStatement:
		if s.IsPublic {
			p.buf.WriteString("pub ")
		}
		p.buf.WriteString("fn " + s.Name.Value + "(")
		for i, param := range s.Parameters {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(param.Name.Value + ": " + annotation(param.Type))
		}
		p.buf.WriteString(") -> " + annotation(s.ReturnType) + ": ")
		p.printExpression(s.Body, 0)
	case *ast.ImportStatement:
		p.buf.WriteString("import " + strconv.Quote(s.Path.Value))
	case *ast.ExpressionStatement:
		p.printExpression(s.Expression, 0)
	}
}

func (p *CodePrinter) printExpression(expr ast.Expression, parentPrec int) {
	switch e := expr.(type) {
	case *ast.Identifier:
		p.buf.WriteString(e.Value)
	case *ast.IntegerLiteral:
		p.buf.WriteString(strconv.FormatInt(e.Value, 10))
	case *ast.FloatLiteral:
		s := strconv.FormatFloat(e.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		p.buf.WriteString(s)
	case *ast.BooleanLiteral:
		p.buf.WriteString(strconv.FormatBool(e.Value))
	case *ast.StringLiteral:
		p.buf.WriteString(strconv.Quote(e.Value))
	case *ast.PrefixExpression:
		wrap := parentPrec > unaryPrec
		if wrap {
			p.buf.WriteString("(")
		}
		p.buf.WriteString(e.Operator)
		p.printExpression(e.Right, unaryPrec+1)
		if wrap {
			p.buf.WriteString(")")
		}
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		if prec < parentPrec {
			p.buf.WriteString("(")
		}
		p.printExpression(e.Left, prec)
		p.buf.WriteString(" " + e.Operator + " ")
		p.printExpression(e.Right, prec+1)
		if prec < parentPrec {
			p.buf.WriteString(")")
		}
	case *ast.ArrayLiteral:
		p.buf.WriteString("[")
		for i, el := range e.Elements {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printExpression(el, 0)
		}
		p.buf.WriteString("]")
	case *ast.IndexExpression:
		p.printExpression(e.Left, unaryPrec+1)
		p.buf.WriteString("[")
		p.printExpression(e.Index, 0)
		p.buf.WriteString("]")
	case *ast.CallExpression:
		p.buf.WriteString(e.Function.Value + "(")
		for i, arg := range e.Arguments {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printExpression(arg, 0)
		}
		p.buf.WriteString(")")
	case *ast.IfExpression:
		// An unparenthesized if in an operand slot would let a reparse pull
		// trailing operators into its branches.
		wrap := parentPrec > 0
		if wrap {
			p.buf.WriteString("(")
		}
		p.buf.WriteString("if ")
		p.printExpression(e.Condition, 0)
		p.buf.WriteString(": ")
		if inner, ok := e.Consequence.(*ast.IfExpression); ok && e.Alternative != nil && inner.Alternative == nil {
			// An else-less if in this slot would capture the outer else.
			p.buf.WriteString("(")
			p.printExpression(e.Consequence, 0)
			p.buf.WriteString(")")
		} else {
			p.printExpression(e.Consequence, 0)
		}
		if e.Alternative != nil {
			p.buf.WriteString(" else: ")
			p.printExpression(e.Alternative, 0)
		}
		if wrap {
			p.buf.WriteString(")")
		}
	case *ast.BlockExpression:
		// Statements in a block are newline-separated; the grammar has no
		// statement terminator.
		p.buf.WriteString("{\n")
		for _, stmt := range e.Statements {
			p.printStatement(stmt)
			p.buf.WriteString("\n")
		}
		p.buf.WriteString("}")
	case *ast.MatchExpression:
		wrap := parentPrec > 0
		if wrap {
			p.buf.WriteString("(")
		}
		p.buf.WriteString("match ")
		p.printExpression(e.Subject, 0)
		p.buf.WriteString(" { ")
		for i, clause := range e.Clauses {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printPattern(clause.Pattern)
			if clause.Guard != nil {
				p.buf.WriteString(" if ")
				p.printExpression(clause.Guard, 0)
			}
			p.buf.WriteString(" => ")
			p.printExpression(clause.Result, 0)
		}
		p.buf.WriteString(" }")
		if wrap {
			p.buf.WriteString(")")
		}
	}
}

func (p *CodePrinter) printPattern(pattern ast.Pattern) {
	switch pat := pattern.(type) {
	case *ast.WildcardPattern:
		p.buf.WriteString("_")
	case *ast.IdentifierPattern:
		p.buf.WriteString(pat.Value)
	case *ast.LiteralPattern:
		p.printExpression(pat.Value, 0)
	case *ast.ArrayPattern:
		p.buf.WriteString("[")
		for i, sub := range pat.Elements {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.printPattern(sub)
		}
		p.buf.WriteString("]")
	}
}

func annotation(t ast.TypeAnnotation) string {
	switch a := t.(type) {
	case *ast.NamedType:
		return a.Name
	case *ast.ArrayType:
		return "[" + annotation(a.Elem) + "]"
	}
	return "?"
}

// Print is the package-level convenience used by tooling.
func Print(program *ast.Program) string {
	return NewCodePrinter().Print(program)
}
