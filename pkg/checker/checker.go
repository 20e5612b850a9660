// Package checker is the entry point for checking Java teaching-subset
// source: it tokenizes, parses and, when the syntax is clean, scope-checks.
package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
	"github.com/codequest/javacheck/pkg/formatter"
	"github.com/codequest/javacheck/pkg/lexer"
	"github.com/codequest/javacheck/pkg/parser"
	"github.com/codequest/javacheck/pkg/validator"
)

// Mode selects the parse entry point.
type Mode string

const (
	// ModeFull requires one or more class declarations.
	ModeFull Mode = "full"
	// ModeStatements accepts bare statements, for short fragments.
	ModeStatements Mode = "statements"
)

// ParseMode validates a mode name given on a command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeStatements:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeFull, ModeStatements)
}

// ParseResult is the outcome of a check. CST is populated as far as error
// recovery allowed even when Errors is non-empty.
type ParseResult struct {
	Success bool                     `json:"success"`
	CST     ast.Root                 `json:"-"`
	Errors  []diagnostics.Diagnostic `json:"errors"`
}

// Checker holds per-application configuration. It is immutable after New
// and safe for concurrent use; every call builds its own state.
type Checker struct {
	builtins []string
	filename string
}

// Option is a functional option for configuring the Checker.
type Option func(*Checker)

// WithBuiltins adds names that resolve without a declaration, on top of
// validator.Builtins.
func WithBuiltins(names ...string) Option {
	return func(c *Checker) {
		c.builtins = append(c.builtins, names...)
	}
}

// WithFilename sets the name used when formatting diagnostics.
func WithFilename(name string) Option {
	return func(c *Checker) {
		c.filename = name
	}
}

// New creates a Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{filename: "<input>"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultChecker = New()

// Parse checks source with the default configuration.
func Parse(source string, mode Mode) *ParseResult {
	return defaultChecker.Parse(source, mode)
}

// HasSyntaxErrors reports whether source has lexical or syntax errors, using
// the default configuration.
func HasSyntaxErrors(source string, mode Mode) bool {
	return defaultChecker.HasSyntaxErrors(source, mode)
}

// Filename returns the name used when formatting diagnostics.
func (c *Checker) Filename() string {
	return c.filename
}

// Parse tokenizes and parses source, then runs scope checking when the
// parser reported no syntax diagnostics. Lexical diagnostics do not block
// scope checking. Unknown modes are treated as ModeFull.
// Parse never panics; an internal failure becomes a general_syntax
// diagnostic.
func (c *Checker) Parse(source string, mode Mode) (result *ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = internalFailure(r)
		}
	}()

	root, lexDiags, synDiags := c.syntax(source, mode)
	diags := append(lexDiags, synDiags...)
	if len(synDiags) == 0 {
		diags = append(diags, validator.Validate(root, validator.WithBuiltins(c.builtins...))...)
	}
	sortByPosition(diags)
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	return &ParseResult{Success: len(diags) == 0, CST: root, Errors: diags}
}

// HasSyntaxErrors runs only the tokenizer and parser.
func (c *Checker) HasSyntaxErrors(source string, mode Mode) (bad bool) {
	defer func() {
		if r := recover(); r != nil {
			bad = true
		}
	}()
	_, lexDiags, synDiags := c.syntax(source, mode)
	return len(lexDiags) > 0 || len(synDiags) > 0
}

// Tokens returns the token stream for source, EOF included.
func (c *Checker) Tokens(source string) ([]lexer.Token, []diagnostics.Diagnostic) {
	return lexer.Tokenize(source)
}

// Format parses source and renders it canonically. Source with syntax
// errors is refused with a *DiagnosticError.
func (c *Checker) Format(source string, mode Mode) (string, error) {
	root, lexDiags, synDiags := c.syntax(source, mode)
	if diags := append(lexDiags, synDiags...); len(diags) > 0 {
		sortByPosition(diags)
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(root), nil
}

// syntax returns the tree with the lexical and syntax diagnostics kept
// apart.
func (c *Checker) syntax(source string, mode Mode) (ast.Root, []diagnostics.Diagnostic, []diagnostics.Diagnostic) {
	tokens, lexDiags := lexer.Tokenize(source)
	if mode == ModeStatements {
		root, synDiags := parser.ParseStatements(tokens)
		return root, lexDiags, synDiags
	}
	root, synDiags := parser.ParseProgram(tokens)
	return root, lexDiags, synDiags
}

func sortByPosition(diags []diagnostics.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
}

func internalFailure(r any) *ParseResult {
	d := diagnostics.MakeDiag(diagnostics.GeneralSyntax,
		fmt.Sprintf("internal checker error: %v", r),
		ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1})
	return &ParseResult{Errors: []diagnostics.Diagnostic{d}}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%d:%d %s: %s", d.Line, d.Column, d.Category, d.Message)
	}
	return strings.Join(msgs, "; ")
}
