package lexer

import (
	"testing"

	"github.com/vexlang/vex/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5
let pi = 3.14
fn add(a: Int, b: Int) -> Int: a + b
match xs { [a, b] => a, _ => 0 }
!x && y || z
a <= b >= c == d != e
"hi\n"
# a comment
[1, 2][0]`

	tests := []struct {
		wantType   token.TokenType
		wantLexeme string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.LET, "let"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.IDENT, "Int"},
		{token.COLON, ":"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.MATCH, "match"},
		{token.IDENT, "xs"},
		{token.LBRACE, "{"},
		{token.LBRACKET, "["},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RBRACKET, "]"},
		{token.FAT_ARROW, "=>"},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.UNDERSCORE, "_"},
		{token.FAT_ARROW, "=>"},
		{token.INT, "0"},
		{token.RBRACE, "}"},
		{token.BANG, "!"},
		{token.IDENT, "x"},
		{token.AND, "&&"},
		{token.IDENT, "y"},
		{token.OR, "||"},
		{token.IDENT, "z"},
		{token.IDENT, "a"},
		{token.LTE, "<="},
		{token.IDENT, "b"},
		{token.GTE, ">="},
		{token.IDENT, "c"},
		{token.EQ, "=="},
		{token.IDENT, "d"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "e"},
		{token.STRING, `"hi\n"`},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.wantType {
			t.Fatalf("tests[%d]: wrong type. want=%q, got=%q (lexeme %q)", i, tt.wantType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.wantLexeme {
			t.Fatalf("tests[%d]: wrong lexeme. want=%q, got=%q", i, tt.wantLexeme, tok.Lexeme)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\tb\"c\\d"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	want := "a\tb\"c\\d"
	if tok.Literal.(string) != want {
		t.Errorf("wrong literal. want=%q, got=%q", want, tok.Literal)
	}
}

func TestNumericLiteralValues(t *testing.T) {
	l := New("42 3.5 7.")
	if tok := l.NextToken(); tok.Literal.(int64) != 42 {
		t.Errorf("expected int64 42, got %v", tok.Literal)
	}
	if tok := l.NextToken(); tok.Literal.(float64) != 3.5 {
		t.Errorf("expected float64 3.5, got %v", tok.Literal)
	}
	// "7." is the integer 7 followed by a dot: a trailing dot without a
	// digit never starts a float.
	if tok := l.NextToken(); tok.Type != token.INT || tok.Literal.(int64) != 7 {
		t.Errorf("expected INT 7, got %q %v", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != token.DOT {
		t.Errorf("expected DOT, got %q", tok.Type)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("let x = 1\nlet y = 2")
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", tokens[0].Line, tokens[0].Column)
	}
	// "let" on the second line
	if tokens[4].Line != 2 || tokens[4].Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", tokens[4].Line, tokens[4].Column)
	}
}

func TestTokenizeEmptyAndCommentOnly(t *testing.T) {
	for _, input := range []string{"", "   \n\t  ", "# just a comment\n# another"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("Tokenize(%q) returned error: %v", input, err)
		}
		if len(tokens) != 1 || tokens[0].Type != token.EOF {
			t.Errorf("Tokenize(%q) = %d tokens, want just EOF", input, len(tokens))
		}
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`let s = "oops`)
	if err == nil {
		t.Fatal("expected diagnostic for unterminated string")
	}
	if err.Code != "L001" {
		t.Errorf("wrong code: %s", err.Code)
	}
	if err.Line != 1 || err.Column == 0 {
		t.Errorf("diagnostic missing location: %d:%d", err.Line, err.Column)
	}
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	_, err := Tokenize("let x = 1 @")
	if err == nil {
		t.Fatal("expected diagnostic for illegal character")
	}
	if err.Code != "L002" {
		t.Errorf("wrong code: %s", err.Code)
	}
}
