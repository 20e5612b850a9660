// Package lexer implements the tokenizer for the Java teaching subset.
package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokPublic TokenType = iota
	TokClass
	TokStatic
	TokVoid
	TokInt
	TokDouble
	TokString
	TokChar
	TokBoolean
	TokByte
	TokShort
	TokLong
	TokFloat
	TokFinal
	TokNew
	TokTrue
	TokFalse
	TokNull

	// Literals
	TokIntLit
	TokFloatLit
	TokStringLit
	TokCharLit

	// Identifiers
	TokIdent

	// Compound assignment
	TokPlusEq    // +=
	TokMinusEq   // -=
	TokStarEq    // *=
	TokSlashEq   // /=
	TokPercentEq // %=

	// Increment / decrement
	TokPlusPlus   // ++
	TokMinusMinus // --

	// Comparison and logic
	TokEqEq   // ==
	TokBangEq // !=
	TokLtEq   // <=
	TokGtEq   // >=
	TokAndAnd // &&
	TokOrOr   // ||
	TokLt     // <
	TokGt     // >
	TokBang   // !

	// Arithmetic and assignment
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %
	TokEquals  // =

	// Delimiters
	TokLParen   // (
	TokRParen   // )
	TokLBrace   // {
	TokRBrace   // }
	TokLBracket // [
	TokRBracket // ]
	TokSemi     // ;
	TokComma    // ,
	TokDot      // .

	// Special
	TokEOF
)

// Token represents a single lexer token. Value is the exact source text,
// quotes and suffixes included.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span

	// Unterminated marks a string or char literal cut off by a line end or
	// end of input. Its diagnostic has already been reported.
	Unterminated bool
}

var keywords = map[string]TokenType{
	"public":  TokPublic,
	"class":   TokClass,
	"static":  TokStatic,
	"void":    TokVoid,
	"int":     TokInt,
	"double":  TokDouble,
	"String":  TokString,
	"char":    TokChar,
	"boolean": TokBoolean,
	"byte":    TokByte,
	"short":   TokShort,
	"long":    TokLong,
	"float":   TokFloat,
	"final":   TokFinal,
	"new":     TokNew,
	"true":    TokTrue,
	"false":   TokFalse,
	"null":    TokNull,
}

// Two-character operators are matched before any single-character prefix.
var twoCharOps = map[string]TokenType{
	"+=": TokPlusEq,
	"-=": TokMinusEq,
	"*=": TokStarEq,
	"/=": TokSlashEq,
	"%=": TokPercentEq,
	"++": TokPlusPlus,
	"--": TokMinusMinus,
	"==": TokEqEq,
	"!=": TokBangEq,
	"<=": TokLtEq,
	">=": TokGtEq,
	"&&": TokAndAnd,
	"||": TokOrOr,
}

var oneCharOps = map[byte]TokenType{
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'%': TokPercent,
	'=': TokEquals,
	'<': TokLt,
	'>': TokGt,
	'!': TokBang,
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	'[': TokLBracket,
	']': TokRBracket,
	';': TokSemi,
	',': TokComma,
	'.': TokDot,
}

// IsKeyword reports whether t is a reserved word.
func IsKeyword(t TokenType) bool {
	return t >= TokPublic && t <= TokNull
}

// IsPrimitiveType reports whether t names a primitive type. String is not
// primitive.
func IsPrimitiveType(t TokenType) bool {
	switch t {
	case TokInt, TokDouble, TokChar, TokBoolean, TokByte, TokShort, TokLong, TokFloat:
		return true
	}
	return false
}

// IsTypeKeyword reports whether t can start a type specification.
func IsTypeKeyword(t TokenType) bool {
	return t == TokString || IsPrimitiveType(t)
}

type scanner struct {
	source string
	pos    int
	line   int
	col    int
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		pos:    0,
		line:   1,
		col:    1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

// advance consumes one character. Columns count characters, not bytes.
func (s *scanner) advance() {
	ch := s.source[s.pos]
	if ch < utf8.RuneSelf {
		s.pos++
	} else {
		_, size := utf8.DecodeRuneInString(s.source[s.pos:])
		s.pos += size
	}
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) lexError(span ast.Span, msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.GeneralSyntax, msg, span))
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			startLine, startCol := s.line, s.col
			s.advance()
			s.advance()
			closed := false
			for !s.atEnd() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.lexError(ast.Span{StartLine: startLine, StartCol: startCol, EndLine: startLine, EndCol: startCol + 2},
					"unterminated block comment: missing closing */")
			}
		default:
			return
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanNumber scans an integer or floating literal. A '.' or exponent marker
// makes the literal floating even when no digits follow it.
func (s *scanner) scanNumber() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	isFloat := false

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' {
		isFloat = true
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	if s.peek() == 'e' || s.peek() == 'E' {
		isFloat = true
		s.advance()
		if s.peek() == '+' || s.peek() == '-' {
			s.advance()
		}
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	switch s.peek() {
	case 'f', 'F', 'd', 'D':
		isFloat = true
		s.advance()
	case 'l', 'L':
		if !isFloat {
			s.advance()
		}
	}

	tokType := TokIntLit
	if isFloat {
		tokType = TokFloatLit
	}
	return Token{
		Type:  tokType,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

// scanQuoted scans a string or char literal up to the matching unescaped
// quote. An unterminated literal is reported but its partial text is kept.
func (s *scanner) scanQuoted(quote byte) Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	s.advance() // opening quote

	tokType := TokStringLit
	kind := "string"
	if quote == '\'' {
		tokType = TokCharLit
		kind = "character"
	}

	chars := 0
	for {
		if s.atEnd() || s.peek() == '\n' || s.peek() == '\r' {
			tok := Token{Type: tokType, Value: s.source[startPos:s.pos], Span: s.span(startLine, startCol), Unterminated: true}
			s.lexError(tok.Span, fmt.Sprintf("unterminated %s literal %s: missing closing %c", kind, tok.Value, quote))
			return tok
		}
		ch := s.peek()
		if ch == quote {
			s.advance()
			break
		}
		if ch == '\\' {
			escLine, escCol := s.line, s.col
			s.advance()
			if s.atEnd() || s.peek() == '\n' {
				continue // reported as unterminated on the next iteration
			}
			s.scanEscape(escLine, escCol)
			chars++
			continue
		}
		s.advance()
		chars++
	}

	tok := Token{Type: tokType, Value: s.source[startPos:s.pos], Span: s.span(startLine, startCol)}
	if tokType == TokCharLit && chars != 1 {
		s.lexError(tok.Span, fmt.Sprintf("character literal %s must contain exactly one character", tok.Value))
	}
	return tok
}

// scanEscape consumes the character(s) after a backslash.
func (s *scanner) scanEscape(line, col int) {
	esc := s.peek()
	switch esc {
	case 'b', 't', 'n', 'f', 'r', '"', '\'', '\\':
		s.advance()
	case 'u':
		for s.peek() == 'u' {
			s.advance()
		}
		for i := 0; i < 4; i++ {
			if !isHexDigit(s.peek()) {
				s.lexError(s.span(line, col), "invalid unicode escape: expected four hex digits after \\u")
				return
			}
			s.advance()
		}
	default:
		if esc >= '0' && esc <= '7' {
			for i := 0; i < 3 && s.peek() >= '0' && s.peek() <= '7'; i++ {
				s.advance()
			}
			return
		}
		s.advance()
		s.lexError(s.span(line, col), fmt.Sprintf("invalid escape sequence '\\%c'", esc))
	}
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// scanIdentOrKeyword scans the longest identifier span and only then checks
// for a keyword, so a keyword prefix such as `intValue` stays an identifier.
func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if tokType, ok := keywords[text]; ok {
		return Token{Type: tokType, Value: text, Span: s.span(startLine, startCol)}
	}
	return Token{Type: TokIdent, Value: text, Span: s.span(startLine, startCol)}
}

// nextToken returns the next token, or ok=false when an unrecognized
// character was reported and skipped.
func (s *scanner) nextToken() (Token, bool) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{Type: TokEOF, Value: "", Span: s.span(s.line, s.col)}, true
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch {
	case isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))):
		return s.scanNumber(), true
	case ch == '"' || ch == '\'':
		return s.scanQuoted(ch), true
	case isAlpha(ch):
		return s.scanIdentOrKeyword(), true
	}

	if s.pos+1 < len(s.source) {
		if tokType, ok := twoCharOps[s.source[s.pos:s.pos+2]]; ok {
			text := s.source[s.pos : s.pos+2]
			s.advance()
			s.advance()
			return Token{Type: tokType, Value: text, Span: s.span(startLine, startCol)}, true
		}
	}
	if tokType, ok := oneCharOps[ch]; ok {
		s.advance()
		return Token{Type: tokType, Value: string(ch), Span: s.span(startLine, startCol)}, true
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	s.advance()
	s.lexError(s.span(startLine, startCol), fmt.Sprintf("Unrecognized character: '%c'", r))
	return Token{}, false
}

// Tokenize breaks source code into tokens ending with TokEOF. Lexical
// problems are returned as general_syntax diagnostics; tokenizing always
// runs to the end of the input.
func Tokenize(source string) ([]Token, []diagnostics.Diagnostic) {
	s := newScanner(source)
	var tokens []Token

	for {
		tok, ok := s.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, s.diags
}
