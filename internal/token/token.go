package token

// TokenType identifies the lexical class of a token.
type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	BANG     = "!"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	LTE    = "<="
	GT     = ">"
	GTE    = ">="

	AND = "&&"
	OR  = "||"

	ARROW     = "->"
	FAT_ARROW = "=>"

	// Delimiters
	COMMA    = ","
	COLON    = ":"
	DOT      = "."
	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	LET        = "LET"
	FN         = "FN"
	PUB        = "PUB"
	IF         = "IF"
	ELSE       = "ELSE"
	MATCH      = "MATCH"
	TRUE       = "TRUE"
	FALSE      = "FALSE"
	UNDERSCORE = "_"
	IMPORT     = "IMPORT"
)

// Token is a single lexical unit with its source location.
// Literal holds the parsed value for INT/FLOAT/STRING tokens
// (int64, float64, string respectively), the lexeme otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"let":    LET,
	"fn":     FN,
	"pub":    PUB,
	"if":     IF,
	"else":   ELSE,
	"match":  MATCH,
	"true":   TRUE,
	"false":  FALSE,
	"_":      UNDERSCORE,
	"import": IMPORT,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
