package parser

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP002,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		))
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		nextExp := infix(leftExp)
		if nextExp == nil {
			return nil
		}
		leftExp = nextExp
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return &ast.IntegerLiteral{Token: p.curToken, Value: p.curToken.Literal.(int64)}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return &ast.FloatLiteral{Token: p.curToken, Value: p.curToken.Literal.(float64)}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    left.GetToken(),
		Left:     left,
		Operator: p.curToken.Lexeme,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken, Elements: []ast.Expression{}}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return array
	}

	for {
		p.nextToken()
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		array.Elements = append(array.Elements, elem)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return array
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: left.GetToken(), Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

// parseCallExpression requires the callee to be a bare name: the language
// has no function values, so anything else cannot resolve.
func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001,
			function.GetToken(),
			"call target must be a function name",
		))
		return nil
	}

	exp := &ast.CallExpression{Token: ident.Token, Function: ident}
	exp.Arguments = p.parseCallArguments()
	if p.failed() {
		return nil
	}
	return exp
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseBlockExpression() ast.Expression {
	block := &ast.BlockExpression{Token: p.curToken, Statements: []ast.Statement{}}

	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP003,
				block.Token,
				"unterminated block: missing '}'",
			))
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)
	if expression.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		expression.Alternative = p.parseExpression(LOWEST)
		if expression.Alternative == nil {
			return nil
		}
	}

	return expression
}

func (p *Parser) parseMatchExpression() ast.Expression {
	expression := &ast.MatchExpression{Token: p.curToken}

	p.nextToken()
	expression.Subject = p.parseExpression(LOWEST)
	if expression.Subject == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.EOF) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP003,
				expression.Token,
				"unterminated match: missing '}'",
			))
			return nil
		}

		clause := p.parseMatchClause()
		if p.failed() {
			return nil
		}
		expression.Clauses = append(expression.Clauses, clause)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'

	if len(expression.Clauses) == 0 {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001,
			expression.Token,
			"match expression has no clauses",
		))
		return nil
	}

	return expression
}

func (p *Parser) parseMatchClause() ast.MatchClause {
	var clause ast.MatchClause

	p.nextToken()
	clause.Pattern = p.parsePattern()
	if clause.Pattern == nil {
		return clause
	}

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		p.nextToken()
		clause.Guard = p.parseExpression(LOWEST)
		if clause.Guard == nil {
			return clause
		}
	}

	if !p.expectPeek(token.FAT_ARROW) {
		return clause
	}
	p.nextToken()
	clause.Result = p.parseExpression(LOWEST)
	return clause
}

func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}
	case token.IDENT:
		return &ast.IdentifierPattern{Token: p.curToken, Value: p.curToken.Literal.(string)}
	case token.INT:
		return &ast.LiteralPattern{Token: p.curToken, Value: &ast.IntegerLiteral{Token: p.curToken, Value: p.curToken.Literal.(int64)}}
	case token.FLOAT:
		return &ast.LiteralPattern{Token: p.curToken, Value: &ast.FloatLiteral{Token: p.curToken, Value: p.curToken.Literal.(float64)}}
	case token.STRING:
		return &ast.LiteralPattern{Token: p.curToken, Value: &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: p.curToken, Value: &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}}
	case token.MINUS:
		// Negative numeric literal pattern.
		tok := p.curToken
		p.nextToken()
		switch p.curToken.Type {
		case token.INT:
			return &ast.LiteralPattern{Token: tok, Value: &ast.IntegerLiteral{Token: tok, Value: -p.curToken.Literal.(int64)}}
		case token.FLOAT:
			return &ast.LiteralPattern{Token: tok, Value: &ast.FloatLiteral{Token: tok, Value: -p.curToken.Literal.(float64)}}
		default:
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP001,
				p.curToken,
				"expected numeric literal after '-' in pattern",
			))
			return nil
		}
	case token.LBRACKET:
		return p.parseArrayPattern()
	default:
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001,
			p.curToken,
			"unexpected %s in pattern", describeToken(p.curToken),
		))
		return nil
	}
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	pattern := &ast.ArrayPattern{Token: p.curToken, Elements: []ast.Pattern{}}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return pattern
	}

	for {
		p.nextToken()
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		pattern.Elements = append(pattern.Elements, sub)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return pattern
}
