package ast

import (
	"github.com/vexlang/vex/internal/token"
)

// LiteralPattern matches when the subject equals the literal value.
type LiteralPattern struct {
	Token token.Token
	Value Expression // IntegerLiteral, FloatLiteral, StringLiteral or BooleanLiteral
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// IdentifierPattern always matches and binds the subject to the name for the
// clause's guard and result expressions.
type IdentifierPattern struct {
	Token token.Token
	Value string
}

func (ip *IdentifierPattern) patternNode()         {}
func (ip *IdentifierPattern) TokenLiteral() string { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token {
	if ip == nil {
		return token.Token{}
	}
	return ip.Token
}

// WildcardPattern (_) always matches and binds nothing.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// ArrayPattern destructures an array of exactly len(Elements) elements,
// matching each sub-pattern recursively.
type ArrayPattern struct {
	Token    token.Token // the '[' token
	Elements []Pattern
}

func (ap *ArrayPattern) patternNode()         {}
func (ap *ArrayPattern) TokenLiteral() string { return ap.Token.Lexeme }
func (ap *ArrayPattern) GetToken() token.Token {
	if ap == nil {
		return token.Token{}
	}
	return ap.Token
}
