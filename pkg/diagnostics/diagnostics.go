// Package diagnostics defines the diagnostic record, its closed category set
// and the learner-facing hint attached to every category.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codequest/javacheck/pkg/ast"
)

// Category classifies a diagnostic. The set is closed.
type Category string

const (
	MissingSemicolon     Category = "missing_semicolon"
	UnclosedBrace        Category = "unclosed_brace"
	UnclosedParen        Category = "unclosed_paren"
	InvalidLHSAssignment Category = "invalid_lhs_assignment"
	UndeclaredVariable   Category = "undeclared_variable"
	TypeMismatch         Category = "type_mismatch" // reserved
	DuplicateDeclaration Category = "duplicate_declaration"
	AssignToFinal        Category = "assign_to_final"
	MissingType          Category = "missing_type"
	UnexpectedToken      Category = "unexpected_token"
	GeneralSyntax        Category = "general_syntax"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	MissingSemicolon,
	UnclosedBrace,
	UnclosedParen,
	InvalidLHSAssignment,
	UndeclaredVariable,
	TypeMismatch,
	DuplicateDeclaration,
	AssignToFinal,
	MissingType,
	UnexpectedToken,
	GeneralSyntax,
}

var hints = map[Category]string{
	MissingSemicolon:     "In Java, every statement must end with a semicolon (;). This is different from some other languages.",
	UnclosedBrace:        "Every opening brace { must have a matching closing brace }. Check your class and method definitions.",
	UnclosedParen:        "Every opening parenthesis ( must have a matching closing parenthesis ).",
	InvalidLHSAssignment: "The left side of an assignment (=) must be a single variable name. Expressions like x + 1 cannot be assigned to.",
	UndeclaredVariable:   "You must declare a variable with its type (e.g., int x;) before you can use or assign to it.",
	TypeMismatch:         "Java is strongly typed. You cannot assign a value of one type to a variable of an incompatible type without casting.",
	DuplicateDeclaration: "This variable name is already declared in this scope. Each variable can only be declared once.",
	AssignToFinal:        "Variables declared with the final keyword are constants and cannot be reassigned after initialization.",
	MissingType:          "Variable declarations in Java require a type (int, double, String, char, etc.) before the variable name.",
	UnexpectedToken:      "The parser encountered something it did not expect at this position. Check for typos or missing syntax.",
	GeneralSyntax:        "There is a syntax error in this code. Review Java syntax rules for statements and expressions.",
}

// Hint returns the fixed explanation for a category. Unknown categories get
// the general_syntax hint.
func Hint(c Category) string {
	if h, ok := hints[c]; ok {
		return h
	}
	return hints[GeneralSyntax]
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := hints[c]
	return ok
}

// Diagnostic is a single finding, positioned with 1-based line and column.
type Diagnostic struct {
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"endLine,omitempty"`
	EndColumn int      `json:"endColumn,omitempty"`
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Hint      string   `json:"hint"`
}

// MakeDiag creates a Diagnostic anchored at span, with the category's hint.
// Categories outside the closed set are recorded as general_syntax.
func MakeDiag(category Category, message string, span ast.Span) Diagnostic {
	if !category.Valid() {
		category = GeneralSyntax
	}
	return Diagnostic{
		Line:      span.StartLine,
		Column:    span.StartCol,
		EndLine:   span.EndLine,
		EndColumn: span.EndCol,
		Category:  category,
		Message:   message,
		Hint:      Hint(category),
	}
}

// Span returns the source range the diagnostic covers.
func (d Diagnostic) Span() ast.Span {
	return ast.Span{StartLine: d.Line, StartCol: d.Column, EndLine: d.EndLine, EndCol: d.EndColumn}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, filename string, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	if filename == "" {
		filename = "<input>"
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s:%d:%d", d.Category, d.Message, filename, d.Line, d.Column)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, filename string, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, filename, true)
	}
	return strings.Join(parts, "\n\n")
}
