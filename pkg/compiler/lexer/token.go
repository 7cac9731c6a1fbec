// Package lexer provides lexical analysis for PArL source files.
package lexer

// TokenType represents the type of a token.
type TokenType int

// Token types
const (
	// Special tokens
	TOKEN_ILLEGAL TokenType = iota
	TOKEN_EOF
	TOKEN_COMMENT

	// Literals
	TOKEN_IDENT  // identifier
	TOKEN_INT    // integer literal
	TOKEN_FLOAT  // floating point literal
	TOKEN_COLOUR // #rrggbb
	TOKEN_TRUE   // true
	TOKEN_FALSE  // false

	// Operators
	TOKEN_PLUS     // +
	TOKEN_MINUS    // -
	TOKEN_ASTERISK // *
	TOKEN_SLASH    // /
	TOKEN_ASSIGN   // =
	TOKEN_EQ       // ==
	TOKEN_NEQ      // !=
	TOKEN_LT       // <
	TOKEN_GT       // >
	TOKEN_LTE      // <=
	TOKEN_GTE      // >=
	TOKEN_ARROW    // ->

	// Delimiters
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_COLON     // :

	// Keywords
	TOKEN_LET    // let
	TOKEN_FUN    // fun
	TOKEN_IF     // if
	TOKEN_ELSE   // else
	TOKEN_FOR    // for
	TOKEN_WHILE  // while
	TOKEN_RETURN // return
	TOKEN_AS     // as
	TOKEN_NOT    // not
	TOKEN_AND    // and
	TOKEN_OR     // or

	// Type names
	TOKEN_TYPE_INT    // int
	TOKEN_TYPE_FLOAT  // float
	TOKEN_TYPE_BOOL   // bool
	TOKEN_TYPE_COLOUR // colour

	// Built-ins
	TOKEN_PRINT      // __print
	TOKEN_DELAY      // __delay
	TOKEN_CLEAR      // __clear
	TOKEN_WRITE      // __write
	TOKEN_WRITE_BOX  // __write_box
	TOKEN_RANDOM_INT // __random_int
	TOKEN_READ       // __read
	TOKEN_WIDTH      // __width
	TOKEN_HEIGHT     // __height
)

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// tokenTypeNames maps TokenType to its string representation.
var tokenTypeNames = map[TokenType]string{
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_EOF:     "EOF",
	TOKEN_COMMENT: "COMMENT",

	TOKEN_IDENT:  "IDENT",
	TOKEN_INT:    "INT",
	TOKEN_FLOAT:  "FLOAT",
	TOKEN_COLOUR: "COLOUR",
	TOKEN_TRUE:   "true",
	TOKEN_FALSE:  "false",

	TOKEN_PLUS:     "+",
	TOKEN_MINUS:    "-",
	TOKEN_ASTERISK: "*",
	TOKEN_SLASH:    "/",
	TOKEN_ASSIGN:   "=",
	TOKEN_EQ:       "==",
	TOKEN_NEQ:      "!=",
	TOKEN_LT:       "<",
	TOKEN_GT:       ">",
	TOKEN_LTE:      "<=",
	TOKEN_GTE:      ">=",
	TOKEN_ARROW:    "->",

	TOKEN_LPAREN:    "(",
	TOKEN_RPAREN:    ")",
	TOKEN_LBRACE:    "{",
	TOKEN_RBRACE:    "}",
	TOKEN_LBRACKET:  "[",
	TOKEN_RBRACKET:  "]",
	TOKEN_COMMA:     ",",
	TOKEN_SEMICOLON: ";",
	TOKEN_COLON:     ":",

	TOKEN_LET:    "let",
	TOKEN_FUN:    "fun",
	TOKEN_IF:     "if",
	TOKEN_ELSE:   "else",
	TOKEN_FOR:    "for",
	TOKEN_WHILE:  "while",
	TOKEN_RETURN: "return",
	TOKEN_AS:     "as",
	TOKEN_NOT:    "not",
	TOKEN_AND:    "and",
	TOKEN_OR:     "or",

	TOKEN_TYPE_INT:    "int",
	TOKEN_TYPE_FLOAT:  "float",
	TOKEN_TYPE_BOOL:   "bool",
	TOKEN_TYPE_COLOUR: "colour",

	TOKEN_PRINT:      "__print",
	TOKEN_DELAY:      "__delay",
	TOKEN_CLEAR:      "__clear",
	TOKEN_WRITE:      "__write",
	TOKEN_WRITE_BOX:  "__write_box",
	TOKEN_RANDOM_INT: "__random_int",
	TOKEN_READ:       "__read",
	TOKEN_WIDTH:      "__width",
	TOKEN_HEIGHT:     "__height",
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword returns true if the token type is a keyword or type name.
func (t TokenType) IsKeyword() bool {
	return t >= TOKEN_LET && t <= TOKEN_TYPE_COLOUR
}

// IsBuiltin returns true if the token type names a display built-in.
func (t TokenType) IsBuiltin() bool {
	return t >= TOKEN_PRINT && t <= TOKEN_HEIGHT
}

// IsTypeName returns true for int, float, bool and colour.
func (t TokenType) IsTypeName() bool {
	return t >= TOKEN_TYPE_INT && t <= TOKEN_TYPE_COLOUR
}

// keywords maps reserved words to their TokenType. PArL is case-sensitive.
var keywords = map[string]TokenType{
	"let":    TOKEN_LET,
	"fun":    TOKEN_FUN,
	"if":     TOKEN_IF,
	"else":   TOKEN_ELSE,
	"for":    TOKEN_FOR,
	"while":  TOKEN_WHILE,
	"return": TOKEN_RETURN,
	"as":     TOKEN_AS,
	"not":    TOKEN_NOT,
	"and":    TOKEN_AND,
	"or":     TOKEN_OR,
	"true":   TOKEN_TRUE,
	"false":  TOKEN_FALSE,
	"int":    TOKEN_TYPE_INT,
	"float":  TOKEN_TYPE_FLOAT,
	"bool":   TOKEN_TYPE_BOOL,
	"colour": TOKEN_TYPE_COLOUR,

	"__print":      TOKEN_PRINT,
	"__delay":      TOKEN_DELAY,
	"__clear":      TOKEN_CLEAR,
	"__write":      TOKEN_WRITE,
	"__write_box":  TOKEN_WRITE_BOX,
	"__random_int": TOKEN_RANDOM_INT,
	"__read":       TOKEN_READ,
	"__width":      TOKEN_WIDTH,
	"__height":     TOKEN_HEIGHT,
}

// LookupIdent checks if an identifier is a keyword or built-in.
// Names starting with "__" that are not built-ins are illegal.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if len(ident) >= 2 && ident[0] == '_' && ident[1] == '_' {
		return TOKEN_ILLEGAL
	}
	return TOKEN_IDENT
}
