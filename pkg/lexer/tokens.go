package lexer

import "fmt"

var tokenNames = [...]string{
	TokPublic:     "Public",
	TokClass:      "Class",
	TokStatic:     "Static",
	TokVoid:       "Void",
	TokInt:        "Int",
	TokDouble:     "Double",
	TokString:     "StringType",
	TokChar:       "Char",
	TokBoolean:    "Boolean",
	TokByte:       "Byte",
	TokShort:      "Short",
	TokLong:       "Long",
	TokFloat:      "Float",
	TokFinal:      "Final",
	TokNew:        "New",
	TokTrue:       "True",
	TokFalse:      "False",
	TokNull:       "Null",
	TokIntLit:     "IntegerLiteral",
	TokFloatLit:   "DoubleLiteral",
	TokStringLit:  "StringLiteral",
	TokCharLit:    "CharLiteral",
	TokIdent:      "Identifier",
	TokPlusEq:     "PlusEquals",
	TokMinusEq:    "MinusEquals",
	TokStarEq:     "StarEquals",
	TokSlashEq:    "SlashEquals",
	TokPercentEq:  "PercentEquals",
	TokPlusPlus:   "PlusPlus",
	TokMinusMinus: "MinusMinus",
	TokEqEq:       "EqualEqual",
	TokBangEq:     "NotEqual",
	TokLtEq:       "LessEqual",
	TokGtEq:       "GreaterEqual",
	TokAndAnd:     "And",
	TokOrOr:       "Or",
	TokLt:         "LessThan",
	TokGt:         "GreaterThan",
	TokBang:       "Bang",
	TokPlus:       "Plus",
	TokMinus:      "Minus",
	TokStar:       "Star",
	TokSlash:      "Slash",
	TokPercent:    "Percent",
	TokEquals:     "Equals",
	TokLParen:     "LParen",
	TokRParen:     "RParen",
	TokLBrace:     "LBrace",
	TokRBrace:     "RBrace",
	TokLBracket:   "LBracket",
	TokRBracket:   "RBracket",
	TokSemi:       "Semicolon",
	TokComma:      "Comma",
	TokDot:        "Dot",
	TokEOF:        "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Spelling returns how a token of type t is written in source, for use in
// messages. Classes of tokens get a descriptive word instead.
func Spelling(t TokenType) string {
	for kw, kt := range keywords {
		if kt == t {
			return kw
		}
	}
	for op, ot := range twoCharOps {
		if ot == t {
			return op
		}
	}
	for ch, ct := range oneCharOps {
		if ct == t {
			return string(ch)
		}
	}
	switch t {
	case TokIntLit:
		return "integer literal"
	case TokFloatLit:
		return "floating-point literal"
	case TokStringLit:
		return "string literal"
	case TokCharLit:
		return "character literal"
	case TokIdent:
		return "identifier"
	case TokEOF:
		return "end of input"
	}
	return t.String()
}

// Describe renders a token for a diagnostic message.
func (tok Token) Describe() string {
	if tok.Type == TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}
