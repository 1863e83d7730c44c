// Package parser implements the syntactic analyzer for the Waveguide
// programming language.
//
// The parser takes a stream of tokens from the lexer and constructs an
// Abstract Syntax Tree (AST) that represents the structure of the program.
// Waveguide has no operator precedence: a chain of binary operators is
// parsed left to right into a single flat [ast.OperatorList], leaving the
// grouping-by-built-in and join decisions to the lowerer.
//
// The main entry point is [Parse], which lexes and parses a complete
// program and returns its AST along with any syntax errors encountered.
package parser

import (
	"fmt"
	"strconv"

	"github.com/waveguide-lang/waveguide/ast"
	"github.com/waveguide-lang/waveguide/lexer"
	"github.com/waveguide-lang/waveguide/token"
)

// operatorTokens marks every token type that can appear as an operator
// inside an [ast.OperatorList].
var operatorTokens = map[token.Type]bool{
	token.PLUS: true,
	token.MINUS: true,
	token.ASTERISK: true,
	token.SLASH: true,
	token.PERCENT: true,
	token.BAND: true,
	token.BOR: true,
	token.BXOR: true,
	token.AND: true,
	token.OR: true,
	token.XOR: true,
	token.EQ: true,
	token.NOT_EQ: true,
	token.LT: true,
	token.LTE: true,
	token.GT: true,
	token.GTE: true,
}

// Parser represents a Waveguide parser.
type Parser struct {
	l *lexer.Lexer
	errors []string

	currentToken token.Token
	peekToken token.Token
}

// New creates a new [Parser] with the given [lexer.Lexer].
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse lexes and parses source into a complete program AST.
// Check the returned error slice for syntax errors.
func Parse(source string) (*ast.Program, []string) {
	p := New(lexer.New(source))
	program := p.ParseProgram()
	return program, p.Errors()
}

// Errors returns the list of errors encountered during parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) currentTokenIs(t token.Type) bool { return p.currentToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

// ParseProgram parses a complete Waveguide program and returns its AST.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.currentTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.currentToken.Type {
	case token.DEF:
		return p.parseFunctionDec()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseBranch()
	case token.FOR:
		return p.parseForEach()
	case token.WHILE:
		return p.parseWhile()
	case token.IDENT:
		return p.parseIdentifierLedStatement()
	default:
		p.errorf("unexpected token %s at start of statement", p.currentToken.Type)
		return nil
	}
}

// parseIdentifierLedStatement disambiguates the statement forms that
// start with an identifier: a type name starting a [ast.VarDec], a call
// used as a statement, or an l-value starting an [ast.Assign].
func (p *Parser) parseIdentifierLedStatement() ast.Statement {
	name := p.currentToken.Literal

	switch p.peekToken.Type {
	case token.IDENT:
		// "Type name ...": a variable declaration.
		return p.parseVarDec()
	case token.ASSIGN:
		return p.parseAssign(&ast.VariableRef{Token: p.currentToken, Name: name})
	case token.LPAREN:
		return p.parseFunctionCallStatement()
	}

	// "Type[size] name ..." (a declaration) and "name[...] = expr;" (an
	// assignment to an array element) share the prefix "name[...]"; the
	// token after the brackets decides which one this is.
	tok := p.currentToken
	left := p.parseIndexOrRef()
	if ie, ok := left.(*ast.IndexExpression); ok && p.peekTokenIs(token.IDENT) {
		return p.parseVarDecRest(&ast.VarDec{Token: tok, Type: &ast.DataType{Name: name, ArraySizes: ie.Indices}})
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	return p.parseAssignRHS(left)
}

func (p *Parser) parseDataType() *ast.DataType {
	dt := &ast.DataType{Name: p.currentToken.Literal}
	for p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // consume '['
		p.nextToken() // move to the size expression
		dt.ArraySizes = append(dt.ArraySizes, p.parseExpression())
		if !p.expectPeek(token.RBRACKET) {
			return dt
		}
	}
	return dt
}

func (p *Parser) parseVarDec() *ast.VarDec {
	vd := &ast.VarDec{Token: p.currentToken}
	vd.Type = p.parseDataType()
	return p.parseVarDecRest(vd)
}

// parseVarDecRest parses the name and optional initializer of a
// declaration whose type has already been parsed into vd.Type.
func (p *Parser) parseVarDecRest(vd *ast.VarDec) *ast.VarDec {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	vd.Name = p.currentToken.Literal

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // consume '='
		p.nextToken() // move to initializer
		vd.Initializer = p.parseExpression()
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return vd
}

func (p *Parser) parseAssign(left ast.Expression) *ast.Assign {
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	return p.parseAssignRHS(left)
}

func (p *Parser) parseAssignRHS(left ast.Expression) *ast.Assign {
	tok := p.currentToken
	p.nextToken()
	value := p.parseExpression()

	a := &ast.Assign{Token: tok, Left: left, Value: value}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return a
}

func (p *Parser) parseReturn() *ast.Return {
	r := &ast.Return{Token: p.currentToken}
	p.nextToken()
	r.Value = p.parseExpression()

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return r
}

func (p *Parser) parseFunctionCallStatement() *ast.FunctionCall {
	call := p.parseFunctionCall(p.currentToken.Literal).(*ast.FunctionCall)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return call
}

func (p *Parser) parseFunctionCall(name string) ast.Expression {
	call := &ast.FunctionCall{Token: p.currentToken, Function: name}
	if !p.expectPeek(token.LPAREN) {
		return call
	}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression())

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression())
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, p.parseParam())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParam())
	}

	if !p.expectPeek(token.RPAREN) {
		return params
	}
	return params
}

func (p *Parser) parseParam() ast.Param {
	dt := p.parseDataType()
	if !p.expectPeek(token.IDENT) {
		return ast.Param{Type: dt}
	}
	return ast.Param{Type: dt, Name: p.currentToken.Literal}
}

func (p *Parser) parseFunctionDec() *ast.FunctionDec {
	fd := &ast.FunctionDec{Token: p.currentToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fd.Name = p.currentToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fd.Inputs = p.parseParamList()

	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fd.Outputs = p.parseParamList()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fd.Body = p.parseBlock()

	for _, stmt := range fd.Body {
		if nested, ok := stmt.(*ast.FunctionDec); ok {
			fd.NestedLambdas = append(fd.NestedLambdas, nested)
		}
	}
	return fd
}

// parseBlock parses statements up to (and consuming) the closing '}'. The
// opening '{' must already be the current token.
func (p *Parser) parseBlock() []ast.Statement {
	var stmts []ast.Statement
	p.nextToken()

	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

func (p *Parser) parseBranch() *ast.Branch {
	b := &ast.Branch{Token: p.currentToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	b.Condition = p.parseExpression()

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	b.Consequent = p.parseBlock()

	switch p.peekToken.Type {
	case token.ELIF:
		p.nextToken()
		// An elif desugars to a nested branch inside the else clause.
		b.Else = []ast.Statement{p.parseBranch()}
	case token.ELSE:
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		b.Else = p.parseBlock()
	}
	return b
}

func (p *Parser) parseForEach() *ast.ForEach {
	fe := &ast.ForEach{Token: p.currentToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fe.Counter = p.currentToken.Literal

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	fe.Iterable = p.parseExpression()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fe.Body = p.parseBlock()
	return fe
}

func (p *Parser) parseWhile() *ast.While {
	w := &ast.While{Token: p.currentToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	w.Condition = p.parseExpression()

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	w.Body = p.parseBlock()
	return w
}

// parseExpression parses one operand, then (operator operand)* pairs,
// collapsing to a bare expression when there is only one operand or to an
// [ast.OperatorList] otherwise — no precedence climbing.
func (p *Parser) parseExpression() ast.Expression {
	first := p.parseOperand()
	if first == nil {
		return nil
	}

	ol := &ast.OperatorList{Token: p.currentToken, Operands: []ast.Expression{first}}
	for operatorTokens[p.peekToken.Type] {
		p.nextToken()
		op := p.currentToken.Literal
		p.nextToken()
		operand := p.parseOperand()
		if operand == nil {
			break
		}
		ol.Operators = append(ol.Operators, op)
		ol.Operands = append(ol.Operands, operand)
	}

	if len(ol.Operators) == 0 {
		return first
	}
	return ol
}

// parseOperand parses one primary/unary expression: a literal, identifier
// reference, call, index, parenthesized expression, array literal, range
// literal, or signed expression.
func (p *Parser) parseOperand() ast.Expression {
	switch p.currentToken.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.TRUE, token.FALSE:
		return &ast.BoolLiteral{Token: p.currentToken, Value: p.currentTokenIs(token.TRUE)}
	case token.MINUS, token.PLUS:
		return p.parseSigned()
	case token.LPAREN:
		return p.parseGrouped()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseRange()
	case token.IDENT:
		return p.parseIdentifierOperand()
	default:
		p.errorf("no expression starts with token %s", p.currentToken.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	lit := &ast.IntLiteral{Token: p.currentToken}
	v, err := strconv.ParseInt(p.currentToken.Literal, 10, 64)
	if err != nil {
		p.errorf("could not parse %q as integer", p.currentToken.Literal)
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.currentToken}
	v, err := strconv.ParseFloat(p.currentToken.Literal, 64)
	if err != nil {
		p.errorf("could not parse %q as float", p.currentToken.Literal)
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseSigned() ast.Expression {
	s := &ast.Signed{Token: p.currentToken, Operator: p.currentToken.Literal}
	p.nextToken()
	s.Right = p.parseOperand()
	return s
}

func (p *Parser) parseGrouped() ast.Expression {
	p.nextToken()
	exp := p.parseExpression()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	al := &ast.ArrayLiteral{Token: p.currentToken}
	al.Elements = p.parseExpressionList(token.RBRACKET)
	return al
}

func (p *Parser) parseRange() ast.Expression {
	r := &ast.Range{Token: p.currentToken}

	p.nextToken()
	r.Start = p.parseExpression()
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	r.End = p.parseExpression()

	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		r.Step = p.parseExpression()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return r
}

// parseIdentifierOperand disambiguates a bare variable reference, a
// function call, and an array-index chain, all of which start with IDENT.
func (p *Parser) parseIdentifierOperand() ast.Expression {
	name := p.currentToken.Literal
	if p.peekTokenIs(token.LPAREN) {
		return p.parseFunctionCall(name)
	}
	if p.peekTokenIs(token.LBRACKET) {
		return p.parseIndexOrRef()
	}
	return &ast.VariableRef{Token: p.currentToken, Name: name}
}

// parseIndexOrRef parses "name[i1][i2]..." starting with the current token
// on the root identifier. If no '[' follows, it returns a plain
// [ast.VariableRef].
func (p *Parser) parseIndexOrRef() ast.Expression {
	root := &ast.VariableRef{Token: p.currentToken, Name: p.currentToken.Literal}
	if !p.peekTokenIs(token.LBRACKET) {
		return root
	}

	ie := &ast.IndexExpression{Token: p.currentToken, Root: root}
	for p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // consume '['
		p.nextToken() // move to index expression
		ie.Indices = append(ie.Indices, p.parseExpression())
		if !p.expectPeek(token.RBRACKET) {
			return ie
		}
	}
	return ie
}
