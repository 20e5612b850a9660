// Package validator implements scope checking over a parsed Java subset
// tree: duplicate declarations, undeclared names and writes to constants.
package validator

import (
	"fmt"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
)

// Builtins are names that resolve without a declaration: library classes,
// their members and common method names. Only the head of a dotted chain is
// ever looked up, so member names only matter when written bare.
var Builtins = []string{
	"System", "out", "println", "print",
	"Math", "pow", "sqrt", "abs", "round", "ceil", "floor", "min", "max",
	"Random", "Scanner", "nextInt", "nextDouble", "nextLine",
	"Integer", "Double", "parseInt", "parseDouble",
	"length", "charAt", "substring", "toLowerCase", "toUpperCase", "equals", "compareTo",
}

// VarInfo records what is known about a declared name.
type VarInfo struct {
	Type     ast.Type
	Constant bool
	Line     int
}

type scope struct {
	vars   map[string]VarInfo
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]VarInfo), parent: parent}
}

func (s *scope) lookup(name string) (VarInfo, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if info, ok := cur.vars[name]; ok {
			return info, true
		}
	}
	return VarInfo{}, false
}

func (s *scope) lookupLocal(name string) (VarInfo, bool) {
	info, ok := s.vars[name]
	return info, ok
}

// Option configures a validation run.
type Option func(*validator)

// WithBuiltins adds names that resolve without a declaration.
func WithBuiltins(names ...string) Option {
	return func(v *validator) {
		for _, n := range names {
			v.builtins[n] = true
		}
	}
}

type validator struct {
	diags    []diagnostics.Diagnostic
	scope    *scope
	builtins map[string]bool
}

// Validate checks a tree produced by the parser and returns semantic
// diagnostics in source order of discovery. The tree should be free of
// syntax errors; placeholder nodes are skipped.
func Validate(root ast.Root, opts ...Option) []diagnostics.Diagnostic {
	v := &validator{builtins: make(map[string]bool, len(Builtins))}
	for _, n := range Builtins {
		v.builtins[n] = true
	}
	for _, opt := range opts {
		opt(v)
	}

	switch root := root.(type) {
	case *ast.Program:
		v.validateProgram(root)
	case *ast.Statements:
		v.withScope(func() { v.validateStmts(root.Stmts) })
	}
	return v.diags
}

func (v *validator) addDiag(category diagnostics.Category, msg string, span ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(category, msg, span))
}

func (v *validator) withScope(fn func()) {
	v.scope = newScope(v.scope)
	defer func() { v.scope = v.scope.parent }()
	fn()
}

// declare binds name in the current scope unless it is already bound there,
// in which case the original binding is kept.
func (v *validator) declare(name ast.Ident, info VarInfo) {
	if prev, ok := v.scope.lookupLocal(name.Name); ok {
		v.addDiag(diagnostics.DuplicateDeclaration,
			fmt.Sprintf("Variable '%s' is already declared in this scope (first declared on line %d)", name.Name, prev.Line),
			name.Span)
		return
	}
	v.scope.vars[name.Name] = info
}

// --- Program ---

// validateProgram puts every field in the program scope before any method
// body is checked, so methods may use fields declared below them.
func (v *validator) validateProgram(prog *ast.Program) {
	v.withScope(func() {
		for _, cls := range prog.Classes {
			for _, m := range cls.Members {
				if f, ok := m.(*ast.FieldDecl); ok {
					v.validateField(f)
				}
			}
		}
		for _, cls := range prog.Classes {
			for _, m := range cls.Members {
				if mm, ok := m.(*ast.MainMethod); ok {
					v.validateMain(mm)
				}
			}
		}
	})
}

func (v *validator) validateField(f *ast.FieldDecl) {
	if f.Type == nil {
		return
	}
	v.declare(f.Name, VarInfo{Type: f.Type.Type(), Constant: f.Final, Line: f.Name.Span.StartLine})
	v.validateExpr(f.Init)
}

func (v *validator) validateMain(m *ast.MainMethod) {
	v.withScope(func() {
		if m.Param.Name != "" {
			v.declare(m.Param, VarInfo{
				Type: ast.ArrayOf(ast.Type{Kind: ast.TypeString}),
				Line: m.Param.Span.StartLine,
			})
		}
		if m.Body != nil {
			v.validateStmts(m.Body.Stmts)
		}
	})
}

// --- Statements ---

func (v *validator) validateStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		v.validateStmt(s)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		v.withScope(func() { v.validateStmts(s.Stmts) })
	case *ast.VarDecl:
		if s.Type == nil {
			return
		}
		v.declare(s.Name, VarInfo{Type: s.Type.Type(), Constant: s.Final, Line: s.Name.Span.StartLine})
		v.validateExpr(s.Init)
	case *ast.PrintStmt:
		v.validateExpr(s.Arg)
	case *ast.ExprStmt:
		if s.IsAssignment() {
			v.validateAssignTarget(s.Expr)
			v.validateExpr(s.Value)
			return
		}
		v.validateExpr(s.Expr)
	}
}

// validateAssignTarget checks the left side of an assignment. Only a bare
// name is resolved; a qualified target such as obj.field is not checked.
func (v *validator) validateAssignTarget(lhs ast.Expr) {
	n, ok := lhs.(*ast.Name)
	if !ok || !n.IsSimple() {
		v.validateExpr(lhs)
		return
	}
	info, found := v.scope.lookup(n.Head.Name)
	if !found {
		v.addDiag(diagnostics.UndeclaredVariable,
			fmt.Sprintf("Variable '%s' has not been declared", n.Head.Name), n.Head.Span)
		return
	}
	if info.Constant {
		v.finalWrite(n.Head)
	}
}

func (v *validator) finalWrite(name ast.Ident) {
	v.addDiag(diagnostics.AssignToFinal,
		fmt.Sprintf("Cannot assign to '%s' because it was declared final", name.Name), name.Span)
}

// --- Expressions ---

func (v *validator) validateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil:
	case *ast.Name:
		v.resolve(e.Head)
		for _, sel := range e.Selectors {
			if call, ok := sel.(*ast.Call); ok {
				v.validateExprs(call.Args)
			}
		}
	case *ast.BinaryExpr:
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)
	case *ast.UnaryExpr:
		if e.Op == ast.OpInc || e.Op == ast.OpDec {
			v.checkIncrement(e.Operand)
		}
		v.validateExpr(e.Operand)
	case *ast.PostfixExpr:
		v.checkIncrement(e.Operand)
		v.validateExpr(e.Operand)
	case *ast.CastExpr:
		v.validateExpr(e.Operand)
	case *ast.ParenExpr:
		v.validateExpr(e.Inner)
	case *ast.NewExpr:
		v.validateExprs(e.Args)
	}
}

func (v *validator) validateExprs(exprs []ast.Expr) {
	for _, e := range exprs {
		v.validateExpr(e)
	}
}

func (v *validator) resolve(name ast.Ident) {
	if _, ok := v.scope.lookup(name.Name); ok {
		return
	}
	if v.builtins[name.Name] {
		return
	}
	v.addDiag(diagnostics.UndeclaredVariable,
		fmt.Sprintf("Variable '%s' has not been declared", name.Name), name.Span)
}

// checkIncrement flags ++ and -- applied to a bare constant.
func (v *validator) checkIncrement(operand ast.Expr) {
	n, ok := operand.(*ast.Name)
	if !ok || !n.IsSimple() {
		return
	}
	if info, found := v.scope.lookup(n.Head.Name); found && info.Constant {
		v.finalWrite(n.Head)
	}
}
