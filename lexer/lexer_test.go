package lexer

import (
	"monkey/token"
	"testing"
)

func tokenTypes(t *testing.T, toks []token.Token) []token.TokenType {
	t.Helper()
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.TokenType
	}
	return types
}

func assertTypes(t *testing.T, got []token.TokenType, want []token.TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOperatorsSuccess(t *testing.T) {
	scanner := New("==/=*+>-<!=!")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.EQUAL_EQUAL,
		token.DIV,
		token.ASSIGN,
		token.MULT,
		token.ADD,
		token.LARGER,
		token.SUB,
		token.LESS,
		token.NOT_EQUAL,
		token.BANG,
		token.EOF,
	}
	assertTypes(t, tokenTypes(t, got), want)
}

func TestScanSuccess(t *testing.T) {
	scanner := New("(){}[]**;:+!=")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.LPA,
		token.RPA,
		token.LCUR,
		token.RCUR,
		token.LBRACKET,
		token.RBRACKET,
		token.MULT,
		token.MULT,
		token.SEMICOLON,
		token.COLON,
		token.ADD,
		token.NOT_EQUAL,
		token.EOF,
	}
	assertTypes(t, tokenTypes(t, got), want)
}

func TestLetStatementTokens(t *testing.T) {
	input := `let five = 5;
let ten = 10;

let add = fn(x, y) {
  x + y;
};

let result = add(five, ten);
`
	scanner := New(input)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.LET, token.IDENTIFIER, token.ASSIGN, token.INT, token.SEMICOLON,
		token.LET, token.IDENTIFIER, token.ASSIGN, token.INT, token.SEMICOLON,
		token.LET, token.IDENTIFIER, token.ASSIGN, token.FUNC, token.LPA, token.IDENTIFIER, token.COMMA, token.IDENTIFIER, token.RPA, token.LCUR,
		token.IDENTIFIER, token.ADD, token.IDENTIFIER, token.SEMICOLON,
		token.RCUR, token.SEMICOLON,
		token.LET, token.IDENTIFIER, token.ASSIGN, token.IDENTIFIER, token.LPA, token.IDENTIFIER, token.COMMA, token.IDENTIFIER, token.RPA, token.SEMICOLON,
		token.EOF,
	}
	assertTypes(t, tokenTypes(t, got), want)
}

func TestStringLiteral(t *testing.T) {
	scanner := New(`"foobar"; "foo bar";`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if got[0].TokenType != token.STRING || got[0].Literal.(string) != "foobar" {
		t.Errorf("first string literal = %+v, want foobar", got[0])
	}
	if got[2].TokenType != token.STRING || got[2].Literal.(string) != "foo bar" {
		t.Errorf("second string literal = %+v, want 'foo bar'", got[2])
	}
}

func TestUnclosedStringLiteralError(t *testing.T) {
	scanner := New(`"unterminated`)
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected an error for an unclosed string literal, got nil")
	}
}

func TestIntegerLiteral(t *testing.T) {
	scanner := New("12345")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if got[0].TokenType != token.INT {
		t.Fatalf("TokenType = %v, want INT", got[0].TokenType)
	}
	if got[0].Literal.(int64) != 12345 {
		t.Errorf("Literal = %v, want 12345", got[0].Literal)
	}
}

func TestFloatLiteralIsRejected(t *testing.T) {
	scanner := New("3.14")
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected an error scanning a float literal, Monkey only supports integers")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	scanner := New("# this is a comment\nlet x = 5;")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{token.LET, token.IDENTIFIER, token.ASSIGN, token.INT, token.SEMICOLON, token.EOF}
	assertTypes(t, tokenTypes(t, got), want)
}

func TestArrayAndHashTokens(t *testing.T) {
	scanner := New(`[1, 2]; {"one": 1}`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.LBRACKET, token.INT, token.COMMA, token.INT, token.RBRACKET, token.SEMICOLON,
		token.LCUR, token.STRING, token.COLON, token.INT, token.RCUR,
		token.EOF,
	}
	assertTypes(t, tokenTypes(t, got), want)
}

func TestIllegalCharacterError(t *testing.T) {
	scanner := New("@")
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected an error for an illegal character, got nil")
	}
}
