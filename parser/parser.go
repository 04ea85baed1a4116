// Pratt (operator-precedence) parser.
// https://en.wikipedia.org/wiki/Operator-precedence_parser
//
// Unlike a recursive-descent grammar with one production per precedence
// level, a Pratt parser associates each token with a prefix and/or infix
// parsing function and climbs precedence by comparing a bound "right
// binding power" against the precedence of the next operator.
package parser

import (
	"fmt"
	"monkey/ast"
	"monkey/token"
)

const (
	_ int = iota
	LOWEST
	EQUALS      // ==, !=
	LESSGREATER // >, <
	SUM         // +, -
	PRODUCT     // *, /
	PREFIX      // -X, !X
	CALL        // myFunction(X)
	INDEX       // myArray[X]
)

var precedences = map[token.TokenType]int{
	token.EQUAL_EQUAL: EQUALS,
	token.NOT_EQUAL:   EQUALS,
	token.LESS:        LESSGREATER,
	token.LARGER:      LESSGREATER,
	token.ADD:         SUM,
	token.SUB:         SUM,
	token.DIV:         PRODUCT,
	token.MULT:        PRODUCT,
	token.LPA:         CALL,
	token.LBRACKET:    INDEX,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error)
)

// Parser turns a token stream produced by the lexer into an ast.Program,
// using one prefix or infix parsing function per token type.
type Parser struct {
	tokens   []token.Token
	position int // index of curToken within tokens

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// Make initializes and returns a new Parser instance over the given tokens.
//
// Parameters:
//   - tokens: []token.Token
//     The tokens produced by the lexer.
//
// Returns:
//   - *Parser: A pointer to a newly created Parser instance.
func Make(tokens []token.Token) *Parser {
	parser := &Parser{
		tokens:   tokens,
		position: 0,
	}

	parser.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENTIFIER: parser.parseIdentifier,
		token.INT:        parser.parseIntegerLiteral,
		token.STRING:     parser.parseStringLiteral,
		token.TRUE:       parser.parseBooleanLiteral,
		token.FALSE:      parser.parseBooleanLiteral,
		token.BANG:       parser.parsePrefixExpression,
		token.SUB:        parser.parsePrefixExpression,
		token.LPA:        parser.parseGroupedExpression,
		token.IF:         parser.parseIfExpression,
		token.FUNC:       parser.parseFunctionLiteral,
		token.LBRACKET:   parser.parseArrayLiteral,
		token.LCUR:       parser.parseHashLiteral,
	}

	parser.infixParseFns = map[token.TokenType]infixParseFn{
		token.ADD:         parser.parseInfixExpression,
		token.SUB:         parser.parseInfixExpression,
		token.DIV:         parser.parseInfixExpression,
		token.MULT:        parser.parseInfixExpression,
		token.EQUAL_EQUAL: parser.parseInfixExpression,
		token.NOT_EQUAL:   parser.parseInfixExpression,
		token.LESS:        parser.parseInfixExpression,
		token.LARGER:      parser.parseInfixExpression,
		token.LPA:         parser.parseCallExpression,
		token.LBRACKET:    parser.parseIndexExpression,
	}

	return parser
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(program ast.Program) {
	_, err := PrintASTJSON(program)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided program to a .json file at the given path.
func (parser *Parser) PrintToFile(program ast.Program, path string) error {
	return WriteASTJSONToFile(program, path)
}

// curToken returns the token currently being examined.
func (parser *Parser) curToken() token.Token {
	return parser.tokens[parser.position]
}

// peekToken returns the token that follows curToken, without consuming it.
func (parser *Parser) peekToken() token.Token {
	if parser.position+1 >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1] // EOF
	}
	return parser.tokens[parser.position+1]
}

// nextToken advances the parser by one token.
func (parser *Parser) nextToken() {
	if parser.position < len(parser.tokens)-1 {
		parser.position++
	}
}

func (parser *Parser) isFinished() bool {
	return parser.curToken().TokenType == token.EOF
}

func (parser *Parser) peekTokenIs(t token.TokenType) bool {
	return parser.peekToken().TokenType == t
}

func (parser *Parser) curTokenIs(t token.TokenType) bool {
	return parser.curToken().TokenType == t
}

// expectPeek checks that the next token has the expected type. If it does,
// it advances the parser past it; otherwise it returns a ParseError.
func (parser *Parser) expectPeek(t token.TokenType) error {
	if parser.peekTokenIs(t) {
		parser.nextToken()
		return nil
	}
	peek := parser.peekToken()
	return CreateParseError(peek.Line, peek.Column,
		fmt.Sprintf("expected next token to be %s, got %s instead", t, peek.TokenType))
}

func (parser *Parser) peekPrecedence() int {
	if p, ok := precedences[parser.peekToken().TokenType]; ok {
		return p
	}
	return LOWEST
}

func (parser *Parser) curPrecedence() int {
	if p, ok := precedences[parser.curToken().TokenType]; ok {
		return p
	}
	return LOWEST
}

// Parse parses the entire token stream into an ast.Program, continuing
// until the end of input. Errors during parsing are collected but parsing
// continues at the next statement boundary so multiple errors can be
// reported from a single pass.
//
// Returns:
//   - ast.Program: the successfully parsed program.
//   - []error: all errors that occurred during parsing.
func (parser *Parser) Parse() (ast.Program, []error) {
	program := ast.Program{Statements: []ast.Stmt{}}
	errors := []error{}

	for !parser.isFinished() {
		stmt, err := parser.parseStatement()
		if err != nil {
			errors = append(errors, err)
			parser.advanceToNextStatement()
			continue
		}
		program.Statements = append(program.Statements, stmt)
		parser.nextToken()
	}

	return program, errors
}

// advanceToNextStatement skips tokens until the next statement boundary
// (a semicolon) or end of input, so that a single malformed statement
// doesn't cascade into spurious follow-on errors.
func (parser *Parser) advanceToNextStatement() {
	for !parser.curTokenIs(token.SEMICOLON) && !parser.isFinished() {
		parser.nextToken()
	}
	if parser.curTokenIs(token.SEMICOLON) {
		parser.nextToken()
	}
}

// parseStatement dispatches to the statement parser matching curToken.
func (parser *Parser) parseStatement() (ast.Stmt, error) {
	switch parser.curToken().TokenType {
	case token.LET:
		return parser.parseLetStatement()
	case token.RETURN:
		return parser.parseReturnStatement()
	default:
		return parser.parseExpressionStatement()
	}
}

// parseLetStatement parses "let <identifier> = <expression>;".
func (parser *Parser) parseLetStatement() (ast.Stmt, error) {
	stmt := ast.LetStatement{Token: parser.curToken()}

	if err := parser.expectPeek(token.IDENTIFIER); err != nil {
		return nil, err
	}
	stmt.Name = ast.Identifier{Token: parser.curToken(), Value: parser.curToken().Lexeme}

	if err := parser.expectPeek(token.ASSIGN); err != nil {
		return nil, err
	}
	parser.nextToken()

	value, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value

	if fl, ok := value.(ast.FunctionLiteral); ok {
		fl.Name = stmt.Name.Value
		stmt.Value = fl
	}

	if parser.peekTokenIs(token.SEMICOLON) {
		parser.nextToken()
	}
	return stmt, nil
}

// parseReturnStatement parses "return <expression>;".
func (parser *Parser) parseReturnStatement() (ast.Stmt, error) {
	stmt := ast.ReturnStatement{Token: parser.curToken()}
	parser.nextToken()

	value, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.ReturnValue = value

	if parser.peekTokenIs(token.SEMICOLON) {
		parser.nextToken()
	}
	return stmt, nil
}

// parseExpressionStatement parses a bare expression used as a statement.
func (parser *Parser) parseExpressionStatement() (ast.Stmt, error) {
	stmt := ast.ExpressionStatement{Token: parser.curToken()}

	expr, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Expression = expr

	if parser.peekTokenIs(token.SEMICOLON) {
		parser.nextToken()
	}
	return stmt, nil
}

// parseBlockStatement parses a brace-delimited sequence of statements.
// curToken must be the opening '{' when this is called; it returns with
// curToken on the matching '}'.
func (parser *Parser) parseBlockStatement() (ast.BlockStatement, error) {
	block := ast.BlockStatement{Token: parser.curToken(), Statements: []ast.Stmt{}}
	parser.nextToken()

	for !parser.curTokenIs(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.parseStatement()
		if err != nil {
			return block, err
		}
		block.Statements = append(block.Statements, stmt)
		parser.nextToken()
	}

	if !parser.curTokenIs(token.RCUR) {
		cur := parser.curToken()
		return block, CreateParseError(cur.Line, cur.Column, "expected '}' to close block")
	}
	return block, nil
}

// parseExpression is the heart of the Pratt algorithm: it parses a prefix
// expression, then repeatedly folds in infix operators whose precedence
// exceeds the caller's binding power.
func (parser *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := parser.prefixParseFns[parser.curToken().TokenType]
	if !ok {
		cur := parser.curToken()
		return nil, CreateParseError(cur.Line, cur.Column,
			fmt.Sprintf("no prefix parse function for %s found", cur.TokenType))
	}

	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for !parser.peekTokenIs(token.SEMICOLON) && precedence < parser.peekPrecedence() {
		infix, ok := parser.infixParseFns[parser.peekToken().TokenType]
		if !ok {
			return left, nil
		}
		parser.nextToken()

		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

func (parser *Parser) parseIdentifier() (ast.Expression, error) {
	tok := parser.curToken()
	return ast.Identifier{Token: tok, Value: tok.Lexeme}, nil
}

func (parser *Parser) parseIntegerLiteral() (ast.Expression, error) {
	tok := parser.curToken()
	value, ok := tok.Literal.(int64)
	if !ok {
		return nil, CreateParseError(tok.Line, tok.Column, fmt.Sprintf("could not parse %q as integer", tok.Lexeme))
	}
	return ast.IntegerLiteral{Token: tok, Value: value}, nil
}

func (parser *Parser) parseStringLiteral() (ast.Expression, error) {
	tok := parser.curToken()
	value, _ := tok.Literal.(string)
	return ast.StringLiteral{Token: tok, Value: value}, nil
}

func (parser *Parser) parseBooleanLiteral() (ast.Expression, error) {
	tok := parser.curToken()
	return ast.BooleanLiteral{Token: tok, Value: parser.curTokenIs(token.TRUE)}, nil
}

func (parser *Parser) parsePrefixExpression() (ast.Expression, error) {
	tok := parser.curToken()
	parser.nextToken()

	right, err := parser.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: right}, nil
}

func (parser *Parser) parseInfixExpression(left ast.Expression) (ast.Expression, error) {
	tok := parser.curToken()
	precedence := parser.curPrecedence()
	parser.nextToken()

	right, err := parser.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	return ast.InfixExpression{Token: tok, Left: left, Operator: tok.Lexeme, Right: right}, nil
}

func (parser *Parser) parseGroupedExpression() (ast.Expression, error) {
	parser.nextToken()

	expr, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := parser.expectPeek(token.RPA); err != nil {
		return nil, err
	}
	return expr, nil
}

func (parser *Parser) parseIfExpression() (ast.Expression, error) {
	tok := parser.curToken()

	if err := parser.expectPeek(token.LPA); err != nil {
		return nil, err
	}
	parser.nextToken()

	condition, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if err := parser.expectPeek(token.RPA); err != nil {
		return nil, err
	}
	if err := parser.expectPeek(token.LCUR); err != nil {
		return nil, err
	}

	consequence, err := parser.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	expr := ast.IfExpression{Token: tok, Condition: condition, Consequence: consequence}

	if parser.peekTokenIs(token.ELSE) {
		parser.nextToken()
		if err := parser.expectPeek(token.LCUR); err != nil {
			return nil, err
		}
		alternative, err := parser.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		expr.Alternative = &alternative
	}

	return expr, nil
}

func (parser *Parser) parseFunctionLiteral() (ast.Expression, error) {
	tok := parser.curToken()

	if err := parser.expectPeek(token.LPA); err != nil {
		return nil, err
	}

	params, err := parser.parseFunctionParameters()
	if err != nil {
		return nil, err
	}

	if err := parser.expectPeek(token.LCUR); err != nil {
		return nil, err
	}
	body, err := parser.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	return ast.FunctionLiteral{Token: tok, Parameters: params, Body: body}, nil
}

func (parser *Parser) parseFunctionParameters() ([]ast.Identifier, error) {
	identifiers := []ast.Identifier{}

	if parser.peekTokenIs(token.RPA) {
		parser.nextToken()
		return identifiers, nil
	}

	parser.nextToken()
	identifiers = append(identifiers, ast.Identifier{Token: parser.curToken(), Value: parser.curToken().Lexeme})

	for parser.peekTokenIs(token.COMMA) {
		parser.nextToken()
		parser.nextToken()
		identifiers = append(identifiers, ast.Identifier{Token: parser.curToken(), Value: parser.curToken().Lexeme})
	}

	if err := parser.expectPeek(token.RPA); err != nil {
		return nil, err
	}
	return identifiers, nil
}

func (parser *Parser) parseCallExpression(function ast.Expression) (ast.Expression, error) {
	tok := parser.curToken()
	args, err := parser.parseExpressionList(token.RPA)
	if err != nil {
		return nil, err
	}
	return ast.CallExpression{Token: tok, Function: function, Arguments: args}, nil
}

func (parser *Parser) parseArrayLiteral() (ast.Expression, error) {
	tok := parser.curToken()
	elements, err := parser.parseExpressionList(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	return ast.ArrayLiteral{Token: tok, Elements: elements}, nil
}

// parseExpressionList parses a comma-separated list of expressions,
// terminated by `end`. curToken must be the opening delimiter ('(' or
// '[') when this is called.
func (parser *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, error) {
	list := []ast.Expression{}

	if parser.peekTokenIs(end) {
		parser.nextToken()
		return list, nil
	}

	parser.nextToken()
	expr, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	list = append(list, expr)

	for parser.peekTokenIs(token.COMMA) {
		parser.nextToken()
		parser.nextToken()
		expr, err := parser.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
	}

	if err := parser.expectPeek(end); err != nil {
		return nil, err
	}
	return list, nil
}

func (parser *Parser) parseIndexExpression(left ast.Expression) (ast.Expression, error) {
	tok := parser.curToken()
	parser.nextToken()

	index, err := parser.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if err := parser.expectPeek(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.IndexExpression{Token: tok, Left: left, Index: index}, nil
}

func (parser *Parser) parseHashLiteral() (ast.Expression, error) {
	tok := parser.curToken()
	hash := ast.HashLiteral{Token: tok, Keys: []ast.Expression{}, Values: []ast.Expression{}}

	for !parser.peekTokenIs(token.RCUR) {
		parser.nextToken()
		key, err := parser.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}

		if err := parser.expectPeek(token.COLON); err != nil {
			return nil, err
		}
		parser.nextToken()

		value, err := parser.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}

		hash.Keys = append(hash.Keys, key)
		hash.Values = append(hash.Values, value)

		if !parser.peekTokenIs(token.RCUR) {
			if err := parser.expectPeek(token.COMMA); err != nil {
				return nil, err
			}
		}
	}

	if err := parser.expectPeek(token.RCUR); err != nil {
		return nil, err
	}
	return hash, nil
}
