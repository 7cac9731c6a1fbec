package lexer

// Lexer tokenizes PArL source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token, including COMMENT tokens.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.twoCharToken('=', TOKEN_EQ, TOKEN_ASSIGN)
	case '!':
		tok = l.twoCharToken('=', TOKEN_NEQ, TOKEN_ILLEGAL)
	case '<':
		tok = l.twoCharToken('=', TOKEN_LTE, TOKEN_LT)
	case '>':
		tok = l.twoCharToken('=', TOKEN_GTE, TOKEN_GT)
	case '-':
		tok = l.twoCharToken('>', TOKEN_ARROW, TOKEN_MINUS)
	case '+':
		tok = l.newToken(TOKEN_PLUS, l.ch)
	case '*':
		tok = l.newToken(TOKEN_ASTERISK, l.ch)
	case '/':
		if l.peekChar() == '/' {
			tok.Type = TOKEN_COMMENT
			tok.Literal = l.readComment()
			return tok
		} else if l.peekChar() == '*' {
			literal, ok := l.readMultiLineComment()
			tok.Type = TOKEN_COMMENT
			if !ok {
				tok.Type = TOKEN_ILLEGAL
			}
			tok.Literal = literal
			return tok
		}
		tok = l.newToken(TOKEN_SLASH, l.ch)
	case '(':
		tok = l.newToken(TOKEN_LPAREN, l.ch)
	case ')':
		tok = l.newToken(TOKEN_RPAREN, l.ch)
	case '{':
		tok = l.newToken(TOKEN_LBRACE, l.ch)
	case '}':
		tok = l.newToken(TOKEN_RBRACE, l.ch)
	case '[':
		tok = l.newToken(TOKEN_LBRACKET, l.ch)
	case ']':
		tok = l.newToken(TOKEN_RBRACKET, l.ch)
	case ',':
		tok = l.newToken(TOKEN_COMMA, l.ch)
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, l.ch)
	case ':':
		tok = l.newToken(TOKEN_COLON, l.ch)
	case '#':
		return l.readColour(tok.Line, tok.Column)
	case 0:
		tok.Literal = ""
		tok.Type = TOKEN_EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber(tok.Line, tok.Column)
		} else {
			tok = l.newToken(TOKEN_ILLEGAL, l.ch)
		}
	}

	l.readChar()
	return tok
}

// Tokenize returns every non-comment token up to and including EOF,
// stopping early at the first ILLEGAL token.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TOKEN_COMMENT {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF || tok.Type == TOKEN_ILLEGAL {
			return tokens
		}
	}
}

// twoCharToken emits double when the next character is second, single otherwise.
func (l *Lexer) twoCharToken(second byte, double, single TokenType) Token {
	line, column := l.line, l.column
	if l.peekChar() == second {
		ch := l.ch
		l.readChar()
		return Token{Type: double, Literal: string(ch) + string(l.ch), Line: line, Column: column}
	}
	return l.newToken(single, l.ch)
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier, keyword or built-in name.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or a float of the form digits.digits.
func (l *Lexer) readNumber(line, column int) Token {
	position := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	literal := l.input[position:l.position]
	if isFloat {
		return Token{Type: TOKEN_FLOAT, Literal: literal, Line: line, Column: column}
	}
	return Token{Type: TOKEN_INT, Literal: literal, Line: line, Column: column}
}

// readColour reads '#' followed by exactly six hex digits.
func (l *Lexer) readColour(line, column int) Token {
	position := l.position
	l.readChar() // consume '#'
	digits := 0
	for isHexDigit(l.ch) {
		digits++
		l.readChar()
	}
	literal := l.input[position:l.position]
	if digits != 6 || isLetter(l.ch) {
		return Token{Type: TOKEN_ILLEGAL, Literal: literal, Line: line, Column: column}
	}
	return Token{Type: TOKEN_COLOUR, Literal: literal, Line: line, Column: column}
}

// readComment reads a single-line comment.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readMultiLineComment reads a /* ... */ comment. ok is false when EOF
// is reached before the closing delimiter.
func (l *Lexer) readMultiLineComment() (string, bool) {
	position := l.position
	l.readChar() // consume /
	l.readChar() // consume *

	for {
		if l.ch == 0 {
			return l.input[position:l.position], false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			return l.input[position:l.position], true
		}
		l.readChar()
	}
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// isLetter checks if a character is a letter.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if a character is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// GetSource returns the source code as a string
func (l *Lexer) GetSource() string {
	return l.input
}
