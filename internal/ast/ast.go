// Package ast defines the syntax tree produced by the parser.
//
// Location metadata is normalized: every node carries its primary token, so
// tooling can rely on GetToken() returning a meaningful line/column for any
// node. Nodes built from sub-expressions (infix, call, block) carry the token
// of their leftmost lexeme.
package ast

import (
	"github.com/vexlang/vex/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a Node usable on the left side of a match clause.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Statements) == 0 {
		return token.Token{}
	}
	return p.Statements[0].GetToken()
}

// LetStatement represents a binding: let x = expr.
// A repeated let for the same name overwrites the binding.
type LetStatement struct {
	Token token.Token // the 'let' token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// Parameter is a function parameter with its mandatory type annotation.
type Parameter struct {
	Name *Identifier
	Type TypeAnnotation
}

// FunctionStatement represents a top-level function declaration:
//
//	fn name(p: Type, ...) -> Type: body
//
// Parameter and return annotations are mandatory; inference, when requested,
// runs as a separate pass and never relaxes this.
type FunctionStatement struct {
	Token      token.Token // the 'fn' token (or 'pub')
	Name       *Identifier
	Parameters []Parameter
	ReturnType TypeAnnotation
	Body       Expression
	IsPublic   bool
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// ImportStatement names a module to resolve before evaluation:
//
//	import "vec/stats"
//
// Resolution and caching happen outside the core (internal/modules).
type ImportStatement struct {
	Token token.Token // the 'import' token
	Path  *StringLiteral
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// ExpressionStatement is an expression evaluated for its value. The last
// statement's value is the program's result.
type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// Identifier represents a variable reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// FloatLiteral represents a floating point literal.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// BooleanLiteral represents true/false.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// ArrayLiteral represents an array literal, e.g. [1, 2, 3]. Empty is legal.
type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token {
	if al == nil {
		return token.Token{}
	}
	return al.Token
}

// IndexExpression represents arr[i].
type IndexExpression struct {
	Token token.Token // token of the indexed expression
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// PrefixExpression represents !expr or -expr.
type PrefixExpression struct {
	Token    token.Token // the operator token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// InfixExpression represents a binary operation. Its token is the token of
// the left operand, keeping location lookup uniform across nodes.
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// CallExpression represents callee(args...). The callee is always a name:
// the language has no function values, so calls resolve through the function
// table or an external collaborator.
type CallExpression struct {
	Token     token.Token // token of the callee
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// IfExpression represents if cond: then [else: alt]. With no else branch a
// false condition yields void.
type IfExpression struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence Expression
	Alternative Expression // may be nil
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// BlockExpression is a braced statement sequence whose value is the value of
// its last statement. Its token is the opening brace.
type BlockExpression struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// MatchClause is one arm of a match expression.
type MatchClause struct {
	Pattern Pattern
	Guard   Expression // may be nil
	Result  Expression
}

// MatchExpression represents match subject { pattern [if guard] => result, ... }.
// Clauses are tried top to bottom; the first structural+guard match wins.
type MatchExpression struct {
	Token   token.Token // the 'match' token
	Subject Expression
	Clauses []MatchClause
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}
