package ast

import (
	"github.com/vexlang/vex/internal/token"
)

// TypeAnnotation is a parsed type written in source: a named type (Int,
// Float, Bool, String, Void) or an array type [T].
type TypeAnnotation interface {
	Node
	typeNode()
}

// NamedType is a bare type name.
type NamedType struct {
	Token token.Token
	Name  string
}

func (nt *NamedType) typeNode()            {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// ArrayType is [Elem].
type ArrayType struct {
	Token token.Token // the '[' token
	Elem  TypeAnnotation
}

func (at *ArrayType) typeNode()            {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token {
	if at == nil {
		return token.Token{}
	}
	return at.Token
}
