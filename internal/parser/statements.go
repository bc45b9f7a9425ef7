package parser

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FN:
		return p.parseFunctionStatement(false)
	case token.PUB:
		if !p.expectPeek(token.FN) {
			return nil
		}
		return p.parseFunctionStatement(true)
	case token.IMPORT:
		return p.parseImportStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseFunctionStatement parses
//
//	fn name(p1: T1, p2: T2) -> R: body
//
// Annotations are mandatory for every parameter and the return type.
func (p *Parser) parseFunctionStatement(isPublic bool) *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken, IsPublic: isPublic}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseFunctionParameters()
	if p.failed() {
		return nil
	}

	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	stmt.ReturnType = p.parseTypeAnnotation()
	if stmt.ReturnType == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()

	stmt.Body = p.parseExpression(LOWEST)
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionParameters() []ast.Parameter {
	params := []ast.Parameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}

		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		typ := p.parseTypeAnnotation()
		if typ == nil {
			return nil
		}
		params = append(params, ast.Parameter{Name: name, Type: typ})

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

// parseTypeAnnotation parses a type written in source: a bare name or [T].
func (p *Parser) parseTypeAnnotation() ast.TypeAnnotation {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.NamedType{Token: p.curToken, Name: p.curToken.Literal.(string)}
	case token.LBRACKET:
		at := &ast.ArrayType{Token: p.curToken}
		p.nextToken()
		at.Elem = p.parseTypeAnnotation()
		if at.Elem == nil {
			return nil
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return at
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001,
			p.curToken,
			"expected a type, got %s", describeToken(p.curToken),
		))
		return nil
	}
}

func (p *Parser) parseImportStatement() *ast.ImportStatement {
	stmt := &ast.ImportStatement{Token: p.curToken}

	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}
