package lexer

import (
	"strings"
	"testing"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
)

// helper to tokenize and fail on lexical diagnostics
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, diags := Tokenize(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func assertTypes(t *testing.T, tokens []Token, want ...TokenType) {
	t.Helper()
	if len(tokens) != len(want) {
		var got []string
		for _, tok := range tokens {
			got = append(got, tok.Type.String()+"("+tok.Value+")")
		}
		t.Fatalf("expected %d tokens, got %d: %s", len(want), len(tokens), strings.Join(got, " "))
	}
	for i := range want {
		if tokens[i].Type != want[i] {
			t.Errorf("token %d (%q): got %v, want %v", i, tokens[i].Value, tokens[i].Type, want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != TokEOF {
		t.Errorf("expected TokEOF, got %v", tokens[0].Type)
	}
}

// ---------------------------------------------------------------------------
// Test: all keywords
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"public", TokPublic},
		{"class", TokClass},
		{"static", TokStatic},
		{"void", TokVoid},
		{"int", TokInt},
		{"double", TokDouble},
		{"String", TokString},
		{"char", TokChar},
		{"boolean", TokBoolean},
		{"byte", TokByte},
		{"short", TokShort},
		{"long", TokLong},
		{"float", TokFloat},
		{"final", TokFinal},
		{"new", TokNew},
		{"true", TokTrue},
		{"false", TokFalse},
		{"null", TokNull},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			assertTypes(t, tokens, tt.expected)
			if !IsKeyword(tokens[0].Type) {
				t.Errorf("IsKeyword(%v) = false", tokens[0].Type)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: keyword prefixes stay identifiers (longer alternative wins)
// ---------------------------------------------------------------------------
func TestKeywordPrefixedIdentifiers(t *testing.T) {
	for _, src := range []string{"intValue", "newCount", "finalScore", "Strings", "classy", "doubled", "nullable", "$int", "_float"} {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			assertTypes(t, tokens, TokIdent)
			if tokens[0].Value != src {
				t.Errorf("got %q, want %q", tokens[0].Value, src)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: numeric literals
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		want   TokenType
	}{
		{"0", TokIntLit},
		{"42", TokIntLit},
		{"100L", TokIntLit},
		{"3.14", TokFloatLit},
		{"3.", TokFloatLit},
		{".5", TokFloatLit},
		{"1e10", TokFloatLit},
		{"1e", TokFloatLit},
		{"2.5e-3", TokFloatLit},
		{"2.5f", TokFloatLit},
		{"7d", TokFloatLit},
		{"9F", TokFloatLit},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.source)
			assertTypes(t, tokens, tt.want)
			if tokens[0].Value != tt.source {
				t.Errorf("got value %q, want %q", tokens[0].Value, tt.source)
			}
		})
	}
}

func TestFloatNotSplit(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "int y = (int) 3.14;")
	assertTypes(t, tokens, TokInt, TokIdent, TokEquals, TokLParen, TokInt, TokRParen, TokFloatLit, TokSemi)
}

// ---------------------------------------------------------------------------
// Test: operators use longest match
// ---------------------------------------------------------------------------
func TestOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "+= -= *= /= %= ++ -- == != <= >= && || + - * / % = < > !")
	assertTypes(t, tokens,
		TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq, TokPercentEq,
		TokPlusPlus, TokMinusMinus,
		TokEqEq, TokBangEq, TokLtEq, TokGtEq, TokAndAnd, TokOrOr,
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent, TokEquals, TokLt, TokGt, TokBang,
	)
}

func TestOperatorsWithoutSpaces(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x+=y++-z")
	assertTypes(t, tokens, TokIdent, TokPlusEq, TokIdent, TokPlusPlus, TokMinus, TokIdent)
}

func TestDelimiters(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "( ) { } [ ] ; , .")
	assertTypes(t, tokens, TokLParen, TokRParen, TokLBrace, TokRBrace, TokLBracket, TokRBracket, TokSemi, TokComma, TokDot)
}

// ---------------------------------------------------------------------------
// Test: string and char literals
// ---------------------------------------------------------------------------
func TestStringLiterals(t *testing.T) {
	tests := []string{
		`"hello"`,
		`""`,
		`"with \"quotes\""`,
		`"tab\tnewline\n"`,
		`"unicode A"`,
		`"slash \\"`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			assertTypes(t, tokens, TokStringLit)
			if tokens[0].Value != src {
				t.Errorf("got %q, want %q", tokens[0].Value, src)
			}
		})
	}
}

func TestCharLiterals(t *testing.T) {
	for _, src := range []string{`'A'`, `'\n'`, `'\''`, `'A'`, `'"'`} {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			assertTypes(t, tokens, TokCharLit)
		})
	}
}

func TestUnterminatedStringKeepsText(t *testing.T) {
	tokens, diags := Tokenize("String s = \"abc\nint x = 1;")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Category != diagnostics.GeneralSyntax {
		t.Errorf("got category %q, want general_syntax", d.Category)
	}
	if d.Line != 1 || d.Column != 12 {
		t.Errorf("got position %d:%d, want 1:12", d.Line, d.Column)
	}
	if !strings.Contains(d.Message, `"abc`) {
		t.Errorf("message should cite partial literal, got %q", d.Message)
	}
	// The pass continues past the bad literal.
	var sawInt bool
	for _, tok := range tokens {
		if tok.Type == TokStringLit {
			if tok.Value != `"abc` {
				t.Errorf("partial literal = %q, want %q", tok.Value, `"abc`)
			}
			if !tok.Unterminated {
				t.Error("partial literal should be marked unterminated")
			}
		}
		if tok.Type == TokInt {
			sawInt = true
		}
	}
	if !sawInt {
		t.Error("tokenizing stopped at the unterminated literal")
	}
}

func TestTerminatedLiteralNotMarked(t *testing.T) {
	tokens := mustTokenize(t, `"abc" 'x'`)
	for _, tok := range tokens {
		if tok.Unterminated {
			t.Errorf("%s marked unterminated", tok.Value)
		}
	}
}

func TestUnterminatedAtEOF(t *testing.T) {
	_, diags := Tokenize(`char c = 'x`)
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "unterminated character literal") {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestBadCharLiteral(t *testing.T) {
	for _, src := range []string{`'ab'`, `''`} {
		_, diags := Tokenize(src)
		if len(diags) != 1 {
			t.Errorf("%s: expected 1 diagnostic, got %v", src, diags)
		}
	}
}

func TestInvalidEscape(t *testing.T) {
	tokens, diags := Tokenize(`"bad \q escape"`)
	if len(diags) != 1 || !strings.Contains(diags[0].Message, `\q`) {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tokens[0].Type != TokStringLit {
		t.Errorf("got %v, want StringLiteral", tokens[0].Type)
	}
}

// ---------------------------------------------------------------------------
// Test: comments and whitespace are skipped
// ---------------------------------------------------------------------------
func TestComments(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "int x = 1; // trailing\n/* block\n comment */ x++;")
	assertTypes(t, tokens, TokInt, TokIdent, TokEquals, TokIntLit, TokSemi, TokIdent, TokPlusPlus, TokSemi)
	if tokens[5].Span.StartLine != 3 {
		t.Errorf("x++ should be on line 3, got %d", tokens[5].Span.StartLine)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	tokens, diags := Tokenize("int x; /* never closed")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Error("expected EOF token")
	}
}

// ---------------------------------------------------------------------------
// Test: unrecognized characters are reported and skipped
// ---------------------------------------------------------------------------
func TestUnrecognizedCharacter(t *testing.T) {
	tokens, diags := Tokenize("int x = 5 # 3;")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != diagnostics.GeneralSyntax {
		t.Errorf("got %q, want general_syntax", diags[0].Category)
	}
	if diags[0].Line != 1 || diags[0].Column != 11 {
		t.Errorf("got %d:%d, want 1:11", diags[0].Line, diags[0].Column)
	}
	assertTypes(t, tokens, TokInt, TokIdent, TokEquals, TokIntLit, TokIntLit, TokSemi, TokEOF)
}

func TestMultipleUnrecognized(t *testing.T) {
	_, diags := Tokenize("a @ b & c")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
}

// ---------------------------------------------------------------------------
// Test: positions are 1-based and count characters
// ---------------------------------------------------------------------------
func TestSpans(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "int x\n  = 10;")
	want := []ast.Span{
		{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 4},
		{StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 6},
		{StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 4},
		{StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 7},
		{StartLine: 2, StartCol: 7, EndLine: 2, EndCol: 8},
	}
	for i, w := range want {
		if tokens[i].Span != w {
			t.Errorf("token %d (%q): got %+v, want %+v", i, tokens[i].Value, tokens[i].Span, w)
		}
	}
}

func TestSpansCountRunes(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `"héllo" x`)
	if tokens[1].Span.StartCol != 9 {
		t.Errorf("got col %d, want 9", tokens[1].Span.StartCol)
	}
}

func TestSpelling(t *testing.T) {
	tests := map[TokenType]string{
		TokSemi:     ";",
		TokRBrace:   "}",
		TokPlusEq:   "+=",
		TokString:   "String",
		TokIdent:    "identifier",
		TokEOF:      "end of input",
		TokFloatLit: "floating-point literal",
	}
	for tt, want := range tests {
		if got := Spelling(tt); got != want {
			t.Errorf("Spelling(%v) = %q, want %q", tt, got, want)
		}
	}
}

func TestTypePredicates(t *testing.T) {
	if IsPrimitiveType(TokString) {
		t.Error("String is not primitive")
	}
	if !IsTypeKeyword(TokString) || !IsPrimitiveType(TokBoolean) {
		t.Error("type keyword predicates disagree")
	}
	if IsTypeKeyword(TokVoid) {
		t.Error("void is not a value type")
	}
}
