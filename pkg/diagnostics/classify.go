package diagnostics

import "strings"

// Placeholder spellings used in SyntaxError.Expected for things that are not
// a single token.
const (
	ExpectType       = "type"
	ExpectIdentifier = "identifier"
	ExpectExpression = "expression"
)

// SyntaxError is a raw grammar failure before it is classified.
type SyntaxError struct {
	// Expected holds the spellings of what would have been accepted at the
	// failure point: token text such as ";" or one of the Expect* names.
	// It is empty when nothing could have started at that point.
	Expected []string
	// Found is the offending token's text, empty at end of input.
	Found   string
	Message string
}

// Classify maps a raw syntax failure to a category by inspecting what the
// parser expected.
func Classify(err SyntaxError) Category {
	switch {
	case expects(err, ";"):
		return MissingSemicolon
	case expects(err, "}"):
		return UnclosedBrace
	case expects(err, ")"):
		return UnclosedParen
	case expects(err, ExpectType):
		return MissingType
	}

	msg := strings.ToLower(err.Message)
	if strings.Contains(msg, "left") && strings.Contains(msg, "assignment") {
		return InvalidLHSAssignment
	}
	if len(err.Expected) == 0 {
		return UnexpectedToken
	}
	return GeneralSyntax
}

func expects(err SyntaxError, spelling string) bool {
	for _, e := range err.Expected {
		if e == spelling {
			return true
		}
	}
	return false
}
