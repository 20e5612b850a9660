// Package parser builds the concrete syntax tree for the Java teaching
// subset. Choice points are predicted from the validated rule table in
// grammar.go; errors are recovered so one pass reports every independent
// problem.
package parser

import (
	"fmt"
	"strings"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
	"github.com/codequest/javacheck/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
	// panicking is set after a syntax error and cleared once the parser has
	// resynchronised. Errors raised while it is set are dropped.
	panicking bool
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		eof := lexer.Token{Type: lexer.TokEOF, Span: ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}}
		if len(tokens) > 0 {
			end := tokens[len(tokens)-1].Span
			eof.Span = ast.Span{StartLine: end.EndLine, StartCol: end.EndCol, EndLine: end.EndLine, EndCol: end.EndCol}
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	return &parser{tokens: tokens}
}

// ParseProgram parses a token stream as a sequence of class declarations.
// The returned tree is populated as far as recovery allowed, even when
// diagnostics are returned.
func ParseProgram(tokens []lexer.Token) (*ast.Program, []diagnostics.Diagnostic) {
	p := newParser(tokens)
	prog := p.parseProgram()
	return prog, p.diags
}

// ParseStatements parses a token stream as bare statements with no class or
// method wrapper.
func ParseStatements(tokens []lexer.Token) (*ast.Statements, []diagnostics.Diagnostic) {
	p := newParser(tokens)
	stmts := p.parseStatements()
	return stmts, p.diags
}

// DefaultGrammar returns the validated rule table the parser predicts with.
func DefaultGrammar() *Grammar {
	return java.grammar
}

// --- Token access ---

func (p *parser) current() lexer.Token {
	return p.la(0)
}

func (p *parser) la(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[idx]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// previous returns the last consumed token.
func (p *parser) previous() (lexer.Token, bool) {
	if p.pos == 0 {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos-1], true
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	prev, ok := p.previous()
	if !ok || before(prev.Span, start) {
		return start
	}
	return start.To(prev.Span)
}

func before(a, b ast.Span) bool {
	return a.StartLine < b.StartLine || (a.StartLine == b.StartLine && a.StartCol < b.StartCol)
}

// choose predicts an alternative of a rule from the upcoming tokens and
// returns its name, or "" when no alternative can start here.
func (p *parser) choose(rule string) string {
	c := java.choices[rule]
	i := c.predict(p.la)
	if i < 0 {
		return ""
	}
	return c.rule.Alts[i].Name
}

// startsRule reports whether the current token can begin rule.
func (p *parser) startsRule(rule string) bool {
	return java.choices[rule].starts(p.current())
}

// --- Errors ---

// fail records an expectation failure at the current token and enters panic
// mode. Missing closers are anchored just after the previous token when the
// current one is at end of input or on a later line. A failure right after an
// unterminated literal only enters panic mode: the literal swallowed the rest
// of its line and the lexer has reported it.
func (p *parser) fail(expected []string, msg string) {
	if p.panicking {
		return
	}
	p.panicking = true
	if prev, ok := p.previous(); ok && prev.Unterminated {
		return
	}

	tok := p.current()
	err := diagnostics.SyntaxError{Expected: expected, Found: tok.Value, Message: msg}
	category := diagnostics.Classify(err)

	span := tok.Span
	switch category {
	case diagnostics.MissingSemicolon, diagnostics.UnclosedBrace, diagnostics.UnclosedParen:
		if prev, ok := p.previous(); ok && (tok.Type == lexer.TokEOF || tok.Span.StartLine > prev.Span.EndLine) {
			end := prev.Span
			span = ast.Span{StartLine: end.EndLine, StartCol: end.EndCol, EndLine: end.EndLine, EndCol: end.EndCol}
		}
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(category, msg, span))
}

// report records a diagnostic that needs no resynchronisation.
func (p *parser) report(category diagnostics.Category, msg string, span ast.Span) {
	if p.panicking {
		return
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(category, msg, span))
}

func describeExpected(t lexer.TokenType) string {
	switch t {
	case lexer.TokIdent, lexer.TokIntLit, lexer.TokFloatLit, lexer.TokStringLit, lexer.TokCharLit, lexer.TokEOF:
		return lexer.Spelling(t)
	}
	return "'" + lexer.Spelling(t) + "'"
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.fail([]string{lexer.Spelling(typ)},
			fmt.Sprintf("expected %s but found %s", describeExpected(typ), tok.Describe()))
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) expectIdent() (ast.Ident, bool) {
	tok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return ast.Ident{Span: tok.Span}, false
	}
	return ast.Ident{Span: tok.Span, Name: tok.Value}, true
}

func (p *parser) expectWord(words ...string) (ast.Ident, bool) {
	tok := p.current()
	if tok.Type == lexer.TokIdent {
		for _, w := range words {
			if tok.Value == w {
				p.advance()
				return ast.Ident{Span: tok.Span, Name: tok.Value}, true
			}
		}
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + w + "'"
	}
	p.fail(words, fmt.Sprintf("expected %s but found %s", strings.Join(quoted, " or "), tok.Describe()))
	return ast.Ident{Span: tok.Span}, false
}

// --- Resynchronisation ---

// atDeclarationStart reports whether the current token begins a
// declaration or a print statement, which are safe places to resume.
func (p *parser) atDeclarationStart() bool {
	if p.startsRule("varDecl") {
		return true
	}
	return p.current().Type == lexer.TokIdent && p.current().Value == "System" && p.la(1).Type == lexer.TokDot
}

// syncStatement skips to the end of the broken statement that began at
// start: through the next ';', or up to a '}', a token that starts a new
// declaration, or a statement starting on a fresh line.
func (p *parser) syncStatement(start int) {
	defer func() { p.panicking = false }()
	if prev, ok := p.previous(); ok && p.pos > start && prev.Type == lexer.TokSemi {
		return
	}
	for {
		switch p.peek() {
		case lexer.TokEOF, lexer.TokRBrace:
			return
		case lexer.TokSemi:
			p.advance()
			return
		}
		if p.pos > start && (p.atDeclarationStart() || p.atLineStart() && p.startsRule("statement")) {
			return
		}
		p.advance()
	}
}

// atLineStart reports whether the current token is the first on its line.
func (p *parser) atLineStart() bool {
	prev, ok := p.previous()
	return ok && p.current().Span.StartLine > prev.Span.EndLine
}

// syncMember skips the rest of a broken class member. A brace-delimited body
// is skipped as a whole.
func (p *parser) syncMember(start int) {
	defer func() { p.panicking = false }()
	if prev, ok := p.previous(); ok && p.pos > start && (prev.Type == lexer.TokSemi || prev.Type == lexer.TokRBrace) {
		return
	}
	for {
		switch p.peek() {
		case lexer.TokEOF, lexer.TokRBrace:
			return
		case lexer.TokSemi:
			p.advance()
			return
		case lexer.TokLBrace:
			p.skipBraces()
			return
		}
		if p.pos > start && p.startsRule("classMember") {
			return
		}
		p.advance()
	}
}

func (p *parser) skipBraces() {
	depth := 0
	for p.peek() != lexer.TokEOF {
		switch p.advance().Type {
		case lexer.TokLBrace:
			depth++
		case lexer.TokRBrace:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// syncClass skips to the next `public class`.
func (p *parser) syncClass(start int) {
	defer func() { p.panicking = false }()
	for p.peek() != lexer.TokEOF {
		if p.pos > start && p.peek() == lexer.TokPublic && p.la(1).Type == lexer.TokClass {
			return
		}
		p.advance()
	}
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span
	prog := &ast.Program{}

	for p.peek() != lexer.TokEOF {
		start := p.pos
		if p.peek() != lexer.TokPublic || p.la(1).Type != lexer.TokClass {
			p.fail([]string{"class declaration"},
				fmt.Sprintf("expected a class declaration ('public class Name { ... }') but found %s", p.current().Describe()))
			p.syncClass(start)
			continue
		}
		cls := p.parseClassDecl()
		prog.Classes = append(prog.Classes, cls)
		if p.panicking {
			p.syncClass(start)
		}
	}

	if len(prog.Classes) == 0 && len(p.diags) == 0 {
		p.fail([]string{"class declaration"}, "expected a class declaration but found end of input")
		p.panicking = false
	}
	prog.Span = p.spanFrom(startSpan)
	return prog
}

func (p *parser) parseStatements() *ast.Statements {
	startSpan := p.current().Span
	stmts := &ast.Statements{}
	for p.peek() != lexer.TokEOF {
		if stmt := p.parseStatementRecovering(); stmt != nil {
			stmts.Stmts = append(stmts.Stmts, stmt)
		}
	}
	stmts.Span = p.spanFrom(startSpan)
	return stmts
}

// --- Class level ---

func (p *parser) parseClassDecl() *ast.ClassDecl {
	startTok := p.advance() // 'public'
	p.advance()             // 'class'
	cls := &ast.ClassDecl{}

	name, ok := p.expectIdent()
	cls.Name = name
	if !ok {
		cls.Span = p.spanFrom(startTok.Span)
		return cls
	}
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		cls.Span = p.spanFrom(startTok.Span)
		return cls
	}

	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		start := p.pos
		if m := p.parseClassMember(); m != nil {
			cls.Members = append(cls.Members, m)
		}
		if p.panicking {
			p.syncMember(start)
		}
		if p.pos == start {
			p.advance()
		}
	}
	p.expect(lexer.TokRBrace)
	cls.Span = p.spanFrom(startTok.Span)
	return cls
}

func (p *parser) parseClassMember() ast.Member {
	switch p.choose("classMember") {
	case "mainMethod":
		return p.parseMainMethod()
	default:
		return p.parseFieldDecl()
	}
}

func (p *parser) parseMainMethod() ast.Member {
	startTok := p.advance() // 'public'
	p.advance()             // 'static'
	p.advance()             // 'void'
	m := &ast.MainMethod{}
	defer func() { m.Span = p.spanFrom(startTok.Span) }()

	var ok bool
	if m.Name, ok = p.expectIdent(); !ok {
		return m
	}
	for _, typ := range []lexer.TokenType{lexer.TokLParen, lexer.TokString, lexer.TokLBracket, lexer.TokRBracket} {
		if _, ok := p.expect(typ); !ok {
			return m
		}
	}
	if m.Param, ok = p.expectIdent(); !ok {
		return m
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return m
	}
	if p.peek() != lexer.TokLBrace {
		p.expect(lexer.TokLBrace)
		return m
	}
	m.Body = p.parseBlock()
	return m
}

func (p *parser) parseFieldDecl() ast.Member {
	startSpan := p.current().Span
	f := &ast.FieldDecl{}
	defer func() { f.Span = p.spanFrom(startSpan) }()

	for {
		switch p.peek() {
		case lexer.TokPublic, lexer.TokStatic, lexer.TokFinal:
			tok := p.advance()
			f.Modifiers = append(f.Modifiers, tok.Value)
			if tok.Type == lexer.TokFinal {
				f.Final = true
			}
			continue
		}
		break
	}

	if f.Type = p.parseTypeSpec(); f.Type == nil {
		return f
	}
	var ok bool
	if f.Name, ok = p.expectIdent(); !ok {
		return f
	}
	if p.peek() == lexer.TokEquals {
		p.advance()
		f.Init = p.parseExpression()
		if p.panicking {
			return f
		}
	}
	p.expect(lexer.TokSemi)
	return f
}

// --- Types ---

func (p *parser) parseTypeSpec() *ast.TypeSpec {
	tok := p.current()
	if !p.startsRule("typeSpec") {
		p.fail([]string{diagnostics.ExpectType},
			fmt.Sprintf("expected a type (int, double, String, char, boolean, ...) but found %s", tok.Describe()))
		return nil
	}
	p.advance()
	ts := &ast.TypeSpec{Name: tok.Value}
	if p.peek() == lexer.TokLBracket {
		p.advance()
		if _, ok := p.expect(lexer.TokRBracket); !ok {
			ts.Span = p.spanFrom(tok.Span)
			return ts
		}
		ts.Array = true
	}
	ts.Span = p.spanFrom(tok.Span)
	return ts
}

// --- Statements ---

// parseStatementRecovering parses one statement and resynchronises after a
// syntax error, always consuming at least one token.
func (p *parser) parseStatementRecovering() ast.Stmt {
	start := p.pos
	stmt := p.parseStatement()
	if p.panicking {
		p.syncStatement(start)
	}
	if p.pos == start {
		p.advance()
	}
	return stmt
}

func (p *parser) parseStatement() ast.Stmt {
	// `string s = ...;` names a type that does not exist.
	if p.peek() == lexer.TokIdent && p.la(1).Type == lexer.TokIdent {
		tok := p.current()
		p.fail([]string{diagnostics.ExpectType}, fmt.Sprintf("'%s' is not a known type", tok.Value))
		return nil
	}

	switch p.choose("statement") {
	case "varDecl":
		return p.parseVarDecl()
	case "printStmt":
		return p.parsePrintStmt()
	case "exprStmt":
		return p.parseExprStmt()
	case "block":
		return p.parseBlock()
	default:
		p.fail(nil, fmt.Sprintf("unexpected %s: a statement cannot start here", p.current().Describe()))
		return nil
	}
}

func (p *parser) parseBlock() *ast.Block {
	startTok := p.advance() // '{'
	b := &ast.Block{}
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		if stmt := p.parseStatementRecovering(); stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
	}
	p.expect(lexer.TokRBrace)
	b.Span = p.spanFrom(startTok.Span)
	return b
}

func (p *parser) parseVarDecl() ast.Stmt {
	startSpan := p.current().Span
	d := &ast.VarDecl{}
	defer func() { d.Span = p.spanFrom(startSpan) }()

	if p.peek() == lexer.TokFinal {
		p.advance()
		d.Final = true
	}
	if d.Type = p.parseTypeSpec(); d.Type == nil {
		return d
	}
	var ok bool
	if d.Name, ok = p.expectIdent(); !ok {
		return d
	}
	if p.peek() == lexer.TokEquals {
		p.advance()
		d.Init = p.parseExpression()
		if p.panicking {
			return d
		}
	}
	p.expect(lexer.TokSemi)
	return d
}

func (p *parser) parsePrintStmt() ast.Stmt {
	startTok := p.advance() // System
	p.advance()             // .
	p.advance()             // out
	p.advance()             // .
	s := &ast.PrintStmt{}
	defer func() { s.Span = p.spanFrom(startTok.Span) }()

	var ok bool
	if s.Method, ok = p.expectWord("println", "print"); !ok {
		return s
	}
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return s
	}
	if p.startsRule("expression") {
		s.Arg = p.parseExpression()
		if p.panicking {
			return s
		}
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return s
	}
	p.expect(lexer.TokSemi)
	return s
}

var assignOps = map[lexer.TokenType]ast.AssignOp{
	lexer.TokEquals:    ast.Assign,
	lexer.TokPlusEq:    ast.AssignAdd,
	lexer.TokMinusEq:   ast.AssignSub,
	lexer.TokStarEq:    ast.AssignMul,
	lexer.TokSlashEq:   ast.AssignDiv,
	lexer.TokPercentEq: ast.AssignMod,
}

func (p *parser) parseExprStmt() ast.Stmt {
	startSpan := p.current().Span
	s := &ast.ExprStmt{}
	defer func() { s.Span = p.spanFrom(startSpan) }()

	s.Expr = p.parseExpression()
	if p.panicking {
		return s
	}
	if op, ok := assignOps[p.peek()]; ok {
		opTok := p.advance()
		s.Op = op
		s.OpSpan = opTok.Span
		if !assignable(s.Expr) {
			p.report(diagnostics.InvalidLHSAssignment,
				fmt.Sprintf("the left side of an assignment must be a variable, not %s", describeExpr(s.Expr)),
				s.Expr.NodeSpan())
		}
		s.Value = p.parseExpression()
		if p.panicking {
			return s
		}
	}
	p.expect(lexer.TokSemi)
	return s
}

// assignable reports whether e can appear on the left of an assignment: a
// name, optionally qualified, that does not end in a call.
func assignable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Name:
		if len(e.Selectors) == 0 {
			return true
		}
		_, isField := e.Selectors[len(e.Selectors)-1].(*ast.FieldAccess)
		return isField
	case *ast.ParenExpr:
		return assignable(e.Inner)
	case *ast.BadExpr:
		return true
	}
	return false
}

func describeExpr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Literal:
		return "a literal"
	case *ast.BinaryExpr:
		return fmt.Sprintf("an expression using '%s'", e.Op)
	case *ast.Name:
		return "a method call"
	case *ast.UnaryExpr, *ast.PostfixExpr:
		return "an increment or unary expression"
	case *ast.CastExpr:
		return "a cast"
	case *ast.NewExpr:
		return "a new object"
	}
	return "an expression"
}

// --- Expressions ---

type binaryLevel struct {
	level ast.Precedence
	ops   map[lexer.TokenType]ast.BinaryOp
}

// binaryLevels runs loosest to tightest binding.
var binaryLevels = []binaryLevel{
	{ast.LevelLogicalOr, map[lexer.TokenType]ast.BinaryOp{lexer.TokOrOr: ast.OpOr}},
	{ast.LevelLogicalAnd, map[lexer.TokenType]ast.BinaryOp{lexer.TokAndAnd: ast.OpAnd}},
	{ast.LevelEquality, map[lexer.TokenType]ast.BinaryOp{lexer.TokEqEq: ast.OpEqEq, lexer.TokBangEq: ast.OpNeq}},
	{ast.LevelRelational, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokLt: ast.OpLt, lexer.TokGt: ast.OpGt, lexer.TokLtEq: ast.OpLtEq, lexer.TokGtEq: ast.OpGtEq,
	}},
	{ast.LevelAdditive, map[lexer.TokenType]ast.BinaryOp{lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub}},
	{ast.LevelMultiplicative, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar: ast.OpMul, lexer.TokSlash: ast.OpDiv, lexer.TokPercent: ast.OpMod,
	}},
}

func (p *parser) parseExpression() ast.Expr {
	return p.parseBinary(0)
}

// parseBinary is precedence climbing over binaryLevels; every level is left
// associative.
func (p *parser) parseBinary(level int) ast.Expr {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	lvl := binaryLevels[level]
	left := p.parseBinary(level + 1)
	for !p.panicking {
		op, ok := lvl.ops[p.peek()]
		if !ok {
			break
		}
		opTok := p.advance()
		right := p.parseBinary(level + 1)
		left = &ast.BinaryExpr{
			Span:   left.NodeSpan().To(right.NodeSpan()),
			Level:  lvl.level,
			Op:     op,
			OpSpan: opTok.Span,
			Left:   left,
			Right:  right,
		}
	}
	return left
}

var prefixOps = map[lexer.TokenType]ast.UnaryOp{
	lexer.TokMinus:      ast.OpNeg,
	lexer.TokPlus:       ast.OpPos,
	lexer.TokBang:       ast.OpNot,
	lexer.TokPlusPlus:   ast.OpInc,
	lexer.TokMinusMinus: ast.OpDec,
}

func (p *parser) parseUnary() ast.Expr {
	switch p.choose("unary") {
	case "prefix":
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Span:    opTok.Span.To(operand.NodeSpan()),
			Op:      prefixOps[opTok.Type],
			Operand: operand,
		}
	case "castOrPrimary":
		return p.parseCastOrPrimary()
	default:
		return p.expressionExpected()
	}
}

func (p *parser) expressionExpected() ast.Expr {
	tok := p.current()
	p.fail([]string{diagnostics.ExpectExpression}, fmt.Sprintf("expected an expression but found %s", tok.Describe()))
	return &ast.BadExpr{Span: tok.Span}
}

// parseCastOrPrimary commits to a cast only when '(' is followed by a
// primitive type keyword, so `(x)` and `(a + b)` stay grouped expressions.
func (p *parser) parseCastOrPrimary() ast.Expr {
	if p.choose("castOrPrimary") != "cast" {
		return p.parsePostfix()
	}
	startTok := p.advance() // '('
	typeTok := p.advance()
	ts := &ast.TypeSpec{Span: typeTok.Span, Name: typeTok.Value}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return &ast.CastExpr{Span: p.spanFrom(startTok.Span), Type: ts, Operand: &ast.BadExpr{Span: p.current().Span}}
	}
	operand := p.parseUnary()
	return &ast.CastExpr{
		Span:    startTok.Span.To(operand.NodeSpan()),
		Type:    ts,
		Operand: operand,
	}
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if p.panicking {
		return expr
	}
	switch p.peek() {
	case lexer.TokPlusPlus, lexer.TokMinusMinus:
		opTok := p.advance()
		op := ast.OpInc
		if opTok.Type == lexer.TokMinusMinus {
			op = ast.OpDec
		}
		return &ast.PostfixExpr{Span: expr.NodeSpan().To(opTok.Span), Op: op, Operand: expr}
	}
	return expr
}

var literalKinds = map[lexer.TokenType]ast.LiteralKind{
	lexer.TokIntLit:    ast.LitInt,
	lexer.TokFloatLit:  ast.LitFloat,
	lexer.TokStringLit: ast.LitString,
	lexer.TokCharLit:   ast.LitChar,
	lexer.TokTrue:      ast.LitBool,
	lexer.TokFalse:     ast.LitBool,
	lexer.TokNull:      ast.LitNull,
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.choose("primary") {
	case "literal":
		tok := p.advance()
		return &ast.Literal{Span: tok.Span, LitKind: literalKinds[tok.Type], Raw: tok.Value}
	case "name":
		return p.parseName()
	case "paren":
		startTok := p.advance()
		inner := p.parseExpression()
		if p.panicking {
			return &ast.ParenExpr{Span: p.spanFrom(startTok.Span), Inner: inner}
		}
		p.expect(lexer.TokRParen)
		return &ast.ParenExpr{Span: p.spanFrom(startTok.Span), Inner: inner}
	case "new":
		return p.parseNew()
	default:
		return p.expressionExpected()
	}
}

func (p *parser) parseName() ast.Expr {
	head := p.advance()
	n := &ast.Name{Head: ast.Ident{Span: head.Span, Name: head.Value}}
	defer func() { n.Span = p.spanFrom(head.Span) }()

	for !p.panicking {
		switch p.choose("selector") {
		case "field":
			dot := p.advance()
			name, ok := p.expectIdent()
			if !ok {
				return n
			}
			n.Selectors = append(n.Selectors, &ast.FieldAccess{Span: dot.Span.To(name.Span), Name: name})
		case "call":
			open := p.advance()
			args := p.parseArguments()
			if p.panicking {
				return n
			}
			if _, ok := p.expect(lexer.TokRParen); !ok {
				return n
			}
			n.Selectors = append(n.Selectors, &ast.Call{Span: p.spanFrom(open.Span), Args: args})
		default:
			return n
		}
	}
	return n
}

func (p *parser) parseNew() ast.Expr {
	startTok := p.advance() // 'new'
	n := &ast.NewExpr{}
	defer func() { n.Span = p.spanFrom(startTok.Span) }()

	var ok bool
	if n.Class, ok = p.expectIdent(); !ok {
		return n
	}
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return n
	}
	n.Args = p.parseArguments()
	if p.panicking {
		return n
	}
	p.expect(lexer.TokRParen)
	return n
}

// parseArguments parses an optional comma-separated argument list.
func (p *parser) parseArguments() []ast.Expr {
	if !p.startsRule("arguments") {
		return nil
	}
	args := []ast.Expr{p.parseExpression()}
	for !p.panicking && p.peek() == lexer.TokComma {
		p.advance()
		args = append(args, p.parseExpression())
	}
	return args
}
