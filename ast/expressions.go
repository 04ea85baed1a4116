// expressions.go contains all the expression AST nodes. An expression node always evaluates to a value.

package ast

import (
	"monkey/token"
)

// Identifier represents a reference to a previously bound name.
// Example: "x" in "let y = x + 1;"
type Identifier struct {
	Token token.Token // the IDENTIFIER token
	Value string
}

func (i Identifier) Accept(v ExpressionVisitor) any { return v.VisitIdentifier(i) }
func (i Identifier) TokenLiteral() string           { return i.Token.Lexeme }

// IntegerLiteral represents an integer literal, e.g. "5".
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il IntegerLiteral) Accept(v ExpressionVisitor) any { return v.VisitIntegerLiteral(il) }
func (il IntegerLiteral) TokenLiteral() string           { return il.Token.Lexeme }

// BooleanLiteral represents a boolean literal, e.g. "true" or "false".
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl BooleanLiteral) Accept(v ExpressionVisitor) any { return v.VisitBooleanLiteral(bl) }
func (bl BooleanLiteral) TokenLiteral() string           { return bl.Token.Lexeme }

// StringLiteral represents a string literal, e.g. "\"hello\"".
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl StringLiteral) Accept(v ExpressionVisitor) any { return v.VisitStringLiteral(sl) }
func (sl StringLiteral) TokenLiteral() string           { return sl.Token.Lexeme }

// ArrayLiteral represents an array literal, e.g. "[1, 2, 3]".
type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al ArrayLiteral) Accept(v ExpressionVisitor) any { return v.VisitArrayLiteral(al) }
func (al ArrayLiteral) TokenLiteral() string           { return al.Token.Lexeme }

// HashLiteral represents a hash literal, e.g. `{"one": 1, "two": 2}`.
// Pairs preserve the source order so printers and tests can rely on it,
// even though hash iteration order at runtime is unspecified.
type HashLiteral struct {
	Token token.Token // the '{' token
	Keys  []Expression
	Values []Expression
}

func (hl HashLiteral) Accept(v ExpressionVisitor) any { return v.VisitHashLiteral(hl) }
func (hl HashLiteral) TokenLiteral() string           { return hl.Token.Lexeme }

// PrefixExpression represents a unary prefix operation, e.g. "!a" or "-b".
type PrefixExpression struct {
	Token    token.Token // the prefix token, e.g. "!"
	Operator string
	Right    Expression
}

func (pe PrefixExpression) Accept(v ExpressionVisitor) any { return v.VisitPrefixExpression(pe) }
func (pe PrefixExpression) TokenLiteral() string           { return pe.Token.Lexeme }

// InfixExpression represents a binary operation, e.g. "a + b".
type InfixExpression struct {
	Token    token.Token // the operator token, e.g. "+"
	Left     Expression
	Operator string
	Right    Expression
}

func (ie InfixExpression) Accept(v ExpressionVisitor) any { return v.VisitInfixExpression(ie) }
func (ie InfixExpression) TokenLiteral() string           { return ie.Token.Lexeme }

// IfExpression represents a conditional expression. The value of an
// if-expression is the value of whichever branch ran, or null if the
// condition was false and there was no alternative.
type IfExpression struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence BlockStatement
	Alternative *BlockStatement // nil when there is no else-branch
}

func (ie IfExpression) Accept(v ExpressionVisitor) any { return v.VisitIfExpression(ie) }
func (ie IfExpression) TokenLiteral() string           { return ie.Token.Lexeme }

// FunctionLiteral represents a function definition,
// e.g. "fn(x, y) { x + y; }".
type FunctionLiteral struct {
	Token      token.Token // the 'fn' token
	Parameters []Identifier
	Body       BlockStatement
	Name       string // set when bound via "let name = fn...", lets the compiled body refer to itself
}

func (fl FunctionLiteral) Accept(v ExpressionVisitor) any { return v.VisitFunctionLiteral(fl) }
func (fl FunctionLiteral) TokenLiteral() string           { return fl.Token.Lexeme }

// CallExpression represents a function call, e.g. "add(1, 2)".
type CallExpression struct {
	Token     token.Token // the '(' token
	Function  Expression  // any expression, e.g. an Identifier, FunctionLiteral or another call
	Arguments []Expression
}

func (ce CallExpression) Accept(v ExpressionVisitor) any { return v.VisitCallExpression(ce) }
func (ce CallExpression) TokenLiteral() string           { return ce.Token.Lexeme }

// IndexExpression represents an index operation, e.g. "myArray[0]".
type IndexExpression struct {
	Token token.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie IndexExpression) Accept(v ExpressionVisitor) any { return v.VisitIndexExpression(ie) }
func (ie IndexExpression) TokenLiteral() string           { return ie.Token.Lexeme }
