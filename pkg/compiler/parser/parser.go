// Package parser turns a PArL token stream into an AST.
//
// Expressions are parsed Pratt-style with the precedence ladder
// cast < relational < additive < multiplicative < unary/primary.
// Parsing stops at the first syntax error.
package parser

import (
	"fmt"
	"strconv"

	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/lexer"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	CAST        // x as T
	LESSGREATER // < > <= >= == !=
	SUM         // + - or
	PRODUCT     // * / and
	PREFIX      // -X or not X
)

var precedences = map[lexer.TokenType]int{
	lexer.TOKEN_AS:       CAST,
	lexer.TOKEN_EQ:       LESSGREATER,
	lexer.TOKEN_NEQ:      LESSGREATER,
	lexer.TOKEN_LT:       LESSGREATER,
	lexer.TOKEN_LTE:      LESSGREATER,
	lexer.TOKEN_GT:       LESSGREATER,
	lexer.TOKEN_GTE:      LESSGREATER,
	lexer.TOKEN_PLUS:     SUM,
	lexer.TOKEN_MINUS:    SUM,
	lexer.TOKEN_OR:       SUM,
	lexer.TOKEN_ASTERISK: PRODUCT,
	lexer.TOKEN_SLASH:    PRODUCT,
	lexer.TOKEN_AND:      PRODUCT,
}

// Parser parses PArL source code into an AST.
type Parser struct {
	l   *lexer.Lexer
	err *diag.Error

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.TOKEN_IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.TOKEN_INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.TOKEN_FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.TOKEN_TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.TOKEN_FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.TOKEN_COLOUR, p.parseColourLiteral)
	p.registerPrefix(lexer.TOKEN_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.TOKEN_MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TOKEN_LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.TOKEN_WIDTH, p.parseWidth)
	p.registerPrefix(lexer.TOKEN_HEIGHT, p.parseHeight)
	p.registerPrefix(lexer.TOKEN_READ, p.parseRead)
	p.registerPrefix(lexer.TOKEN_RANDOM_INT, p.parseRandomInt)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.TOKEN_PLUS, lexer.TOKEN_MINUS, lexer.TOKEN_ASTERISK, lexer.TOKEN_SLASH,
		lexer.TOKEN_AND, lexer.TOKEN_OR,
		lexer.TOKEN_EQ, lexer.TOKEN_NEQ, lexer.TOKEN_LT, lexer.TOKEN_LTE, lexer.TOKEN_GT, lexer.TOKEN_GTE,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.TOKEN_AS, p.parseCastExpression)

	// Prime peekToken so the first nextToken never sees the zero token
	p.peekToken = p.readToken()
	p.nextToken()

	return p
}

// Err returns the syntax error that stopped parsing, if any.
func (p *Parser) Err() *diag.Error {
	return p.err
}

// ParseProgram parses the entire program. On error the returned program is
// nil and the error is a *diag.Error.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.curTokenIs(lexer.TOKEN_EOF) && p.err == nil {
		stmt := p.parseStatement()
		if p.err != nil {
			break
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}

	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// parseStatement leaves curToken on the statement's last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.TOKEN_LET:
		return p.terminated(p.parseDeclaration())
	case lexer.TOKEN_IDENT:
		return p.terminated(p.parseAssignStatement())
	case lexer.TOKEN_PRINT:
		tok := p.curToken
		return p.terminated(&ast.PrintStatement{Token: tok, Value: p.parseOperand()})
	case lexer.TOKEN_DELAY:
		tok := p.curToken
		return p.terminated(&ast.DelayStatement{Token: tok, Value: p.parseOperand()})
	case lexer.TOKEN_CLEAR:
		tok := p.curToken
		return p.terminated(&ast.ClearStatement{Token: tok, Value: p.parseOperand()})
	case lexer.TOKEN_WRITE:
		return p.terminated(p.parseWriteStatement())
	case lexer.TOKEN_WRITE_BOX:
		return p.terminated(p.parseWriteBoxStatement())
	case lexer.TOKEN_RETURN:
		tok := p.curToken
		return p.terminated(&ast.ReturnStatement{Token: tok, Value: p.parseOperand()})
	case lexer.TOKEN_IF:
		return p.parseIfStatement()
	case lexer.TOKEN_WHILE:
		return p.parseWhileStatement()
	case lexer.TOKEN_FOR:
		return p.parseForStatement()
	case lexer.TOKEN_FUN:
		return p.parseFunctionStatement()
	case lexer.TOKEN_LBRACE:
		return p.parseBlockStatement()
	default:
		p.failAt(p.curToken, "unexpected %s at start of statement", describe(p.curToken))
		return nil
	}
}

// terminated consumes the ';' that ends a simple statement.
func (p *Parser) terminated(stmt ast.Statement) ast.Statement {
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_SEMICOLON) {
		return nil
	}
	return stmt
}

// parseOperand advances past a statement keyword and parses one expression.
func (p *Parser) parseOperand() ast.Expression {
	p.nextToken()
	return p.parseExpression(LOWEST)
}

// parseDeclaration parses "let name : T = e" or an array declaration.
func (p *Parser) parseDeclaration() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(lexer.TOKEN_COLON) {
		return nil
	}
	typeName, ok := p.expectTypeName()
	if !ok {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_LBRACKET) {
		return p.parseArrayDeclaration(tok, name, typeName)
	}

	if !p.expectPeek(lexer.TOKEN_ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	return &ast.VarDeclaration{Token: tok, Name: name, Type: typeName, Value: value}
}

func (p *Parser) parseArrayDeclaration(tok lexer.Token, name, elemType string) ast.Statement {
	p.nextToken() // '['
	decl := &ast.ArrayDeclaration{Token: tok, Name: name, Type: elemType + "[]"}

	if !p.peekTokenIs(lexer.TOKEN_RBRACKET) {
		p.nextToken()
		decl.Size = p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.TOKEN_RBRACKET) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_ASSIGN) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACKET) {
		return nil
	}
	if p.peekTokenIs(lexer.TOKEN_RBRACKET) {
		p.failAt(p.peekToken, "array '%s' needs at least one initial value", name)
		return nil
	}
	decl.Values = p.parseExpressionList(lexer.TOKEN_RBRACKET)
	if p.err != nil {
		return nil
	}
	return decl
}

func (p *Parser) parseAssignStatement() *ast.AssignStatement {
	tok := p.curToken
	target, ok := p.parseIdentifier().(*ast.Identifier)
	if !ok || p.err != nil {
		if p.err == nil {
			p.failAt(tok, "cannot assign to call of '%s'", tok.Literal)
		}
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	return &ast.AssignStatement{Token: tok, Target: target, Value: value}
}

func (p *Parser) parseWriteStatement() ast.Statement {
	tok := p.curToken
	args := p.parseBuiltinArgs(3)
	if args == nil {
		return nil
	}
	return &ast.WriteStatement{Token: tok, X: args[0], Y: args[1], Colour: args[2]}
}

func (p *Parser) parseWriteBoxStatement() ast.Statement {
	tok := p.curToken
	args := p.parseBuiltinArgs(5)
	if args == nil {
		return nil
	}
	return &ast.WriteBoxStatement{Token: tok, X: args[0], Y: args[1], Width: args[2], Height: args[3], Colour: args[4]}
}

// parseBuiltinArgs parses n comma-separated expressions after a built-in keyword.
func (p *Parser) parseBuiltinArgs(n int) []ast.Expression {
	args := make([]ast.Expression, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && !p.expectPeek(lexer.TOKEN_COMMA) {
			return nil
		}
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		args = append(args, arg)
	}
	return args
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	stmt.Condition = p.parseCondition()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()
	if p.err != nil {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_ELSE) {
		p.nextToken()
		if !p.expectPeek(lexer.TOKEN_LBRACE) {
			return nil
		}
		stmt.Alternative = p.parseBlockStatement()
		if p.err != nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	stmt.Condition = p.parseCondition()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	return stmt
}

// parseCondition parses "( expr )" following if/while.
func (p *Parser) parseCondition() ast.Expression {
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	return cond
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_LET) {
		p.nextToken()
		initTok := p.curToken
		decl := p.parseDeclaration()
		if p.err != nil {
			return nil
		}
		varDecl, ok := decl.(*ast.VarDeclaration)
		if !ok {
			p.failAt(initTok, "for-loop initializer must declare a scalar variable")
			return nil
		}
		stmt.Init = varDecl
	}
	if !p.expectPeek(lexer.TOKEN_SEMICOLON) {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_SEMICOLON) {
		p.failAt(p.peekToken, "for-loop requires a condition")
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_SEMICOLON) {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_IDENT) {
		p.nextToken()
		stmt.Update = p.parseAssignStatement()
		if p.err != nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}

	stmt.Parameters = []*ast.Parameter{}
	for !p.peekTokenIs(lexer.TOKEN_RPAREN) {
		if len(stmt.Parameters) > 0 && !p.expectPeek(lexer.TOKEN_COMMA) {
			return nil
		}
		param := p.parseParameter()
		if p.err != nil {
			return nil
		}
		stmt.Parameters = append(stmt.Parameters, param)
	}
	p.nextToken() // ')'

	if !p.expectPeek(lexer.TOKEN_ARROW) {
		return nil
	}
	returnType, ok := p.expectTypeName()
	if !ok {
		return nil
	}
	stmt.ReturnType = returnType

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if p.err != nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseParameter() *ast.Parameter {
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	param := &ast.Parameter{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(lexer.TOKEN_COLON) {
		return nil
	}
	typeName, ok := p.expectTypeName()
	if !ok {
		return nil
	}
	param.Type = typeName

	if p.peekTokenIs(lexer.TOKEN_LBRACKET) {
		p.nextToken()
		param.Type = typeName + "[]"
		if !p.peekTokenIs(lexer.TOKEN_RBRACKET) {
			p.nextToken()
			param.Size = p.parseExpression(LOWEST)
			if p.err != nil {
				return nil
			}
		}
		if !p.expectPeek(lexer.TOKEN_RBRACKET) {
			return nil
		}
	}
	return param
}

// parseBlockStatement expects curToken to be '{' and leaves it on '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken, Statements: []ast.Statement{}}
	p.nextToken()

	for !p.curTokenIs(lexer.TOKEN_RBRACE) {
		if p.curTokenIs(lexer.TOKEN_EOF) {
			p.failAt(p.curToken, "expected '}' to close block opened at line %d", block.Token.Line)
			return nil
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if p.err != nil {
		return nil
	}
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for p.err == nil && !p.peekTokenIs(lexer.TOKEN_SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	if p.err != nil {
		return nil
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.curToken

	switch {
	case p.peekTokenIs(lexer.TOKEN_LBRACKET):
		p.nextToken()
		p.nextToken()
		index := p.parseExpression(LOWEST)
		if p.err != nil || !p.expectPeek(lexer.TOKEN_RBRACKET) {
			return nil
		}
		return &ast.Identifier{Token: tok, Value: tok.Literal, Index: index}
	case p.peekTokenIs(lexer.TOKEN_LPAREN):
		p.nextToken()
		args := []ast.Expression{}
		if p.peekTokenIs(lexer.TOKEN_RPAREN) {
			p.nextToken()
		} else {
			args = p.parseExpressionList(lexer.TOKEN_RPAREN)
			if p.err != nil {
				return nil
			}
		}
		return &ast.CallExpression{Token: tok, Function: tok.Literal, Arguments: args}
	default:
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.failAt(p.curToken, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.failAt(p.curToken, "could not parse %q as float", p.curToken.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseColourLiteral() ast.Expression {
	return &ast.ColourLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.UnaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	expression.Operand = p.parseExpression(PREFIX)
	if p.err != nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if p.err != nil {
		return nil
	}

	if precedence == LESSGREATER && p.peekPrecedence() == LESSGREATER {
		p.failAt(p.peekToken, "relational operators cannot be chained")
		return nil
	}
	return expression
}

func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	target, ok := p.expectTypeName()
	if !ok {
		return nil
	}
	return &ast.CastExpression{Token: tok, Value: left, Target: target}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if p.err != nil || !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseWidth() ast.Expression {
	return &ast.WidthExpression{Token: p.curToken}
}

func (p *Parser) parseHeight() ast.Expression {
	return &ast.HeightExpression{Token: p.curToken}
}

func (p *Parser) parseRead() ast.Expression {
	tok := p.curToken
	args := p.parseBuiltinArgs(2)
	if args == nil {
		return nil
	}
	return &ast.ReadExpression{Token: tok, X: args[0], Y: args[1]}
}

func (p *Parser) parseRandomInt() ast.Expression {
	tok := p.curToken
	p.nextToken()
	bound := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	return &ast.RandomIntExpression{Token: tok, Bound: bound}
}

// parseExpressionList parses "e, e, ..." and consumes the closing token.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.err == nil && p.peekTokenIs(lexer.TOKEN_COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if p.err != nil || !p.expectPeek(end) {
		return nil
	}
	return list
}

// expectTypeName advances onto a scalar type name and returns it.
func (p *Parser) expectTypeName() (string, bool) {
	if !p.peekToken.Type.IsTypeName() {
		p.failAt(p.peekToken, "expected a type name, got %s", describe(p.peekToken))
		return "", false
	}
	p.nextToken()
	return p.curToken.Literal, true
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.readToken()

	if p.curToken.Type == lexer.TOKEN_ILLEGAL {
		p.failAt(p.curToken, "illegal token %q", p.curToken.Literal)
	}
}

// readToken returns the next token that is not a comment.
func (p *Parser) readToken() lexer.Token {
	tok := p.l.NextToken()
	for tok.Type == lexer.TOKEN_COMMENT {
		tok = p.l.NextToken()
	}
	return tok
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekToken.Type == lexer.TOKEN_ILLEGAL {
		p.failAt(p.peekToken, "illegal token %q", p.peekToken.Literal)
		return
	}
	p.failAt(p.peekToken, "expected '%s', got %s", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	p.failAt(tok, "unexpected %s in expression", describe(tok))
}

// failAt records the first syntax error; later ones are dropped.
func (p *Parser) failAt(tok lexer.Token, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = diag.New(diag.Syntax, ast.Position{Line: tok.Line, Column: tok.Column}, format, args...)
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TOKEN_EOF:
		return "end of input"
	case lexer.TOKEN_IDENT, lexer.TOKEN_INT, lexer.TOKEN_FLOAT, lexer.TOKEN_COLOUR, lexer.TOKEN_ILLEGAL:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Literal)
	}
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
