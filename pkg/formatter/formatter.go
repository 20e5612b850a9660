// Package formatter renders a Java subset tree back to canonical source.
package formatter

import (
	"strings"

	"github.com/codequest/javacheck/pkg/ast"
)

const indent = "    "

func needsParens(child ast.Expr, parent ast.Precedence, isRight bool) bool {
	bin, ok := child.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	if bin.Level < parent {
		return true
	}
	// Every level is left associative, so a same-level right operand was
	// grouped explicitly.
	return bin.Level == parent && isRight
}

// Format pretty-prints a tree. Program output lists classes separated by a
// blank line; statement output lists one statement per line.
func Format(root ast.Root) string {
	var lines []string
	switch r := root.(type) {
	case *ast.Program:
		for i, cls := range r.Classes {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, formatClass(cls))
		}
	case *ast.Statements:
		for _, s := range r.Stmts {
			lines = append(lines, formatStmt(s, 0))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a // or /* comment outside
// string and char literals. Comments are not kept by Format.
func HasComments(source string) bool {
	var quote byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote || ch == '\n' {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*'):
			return true
		}
	}
	return false
}

func formatClass(cls *ast.ClassDecl) string {
	var b strings.Builder
	b.WriteString("public class " + cls.Name.Name + " {\n")
	for i, m := range cls.Members {
		if _, isMain := m.(*ast.MainMethod); isMain && i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatMember(m, 1))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func formatMember(m ast.Member, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch m := m.(type) {
	case *ast.FieldDecl:
		var parts []string
		parts = append(parts, m.Modifiers...)
		parts = append(parts, formatType(m.Type), m.Name.Name)
		out := prefix + strings.Join(parts, " ")
		if m.Init != nil {
			out += " = " + formatExpr(m.Init)
		}
		return out + ";"
	case *ast.MainMethod:
		header := prefix + "public static void " + m.Name.Name + "(String[] " + m.Param.Name + ") "
		return header + formatBlock(m.Body, depth)
	}
	return ""
}

func formatType(t *ast.TypeSpec) string {
	if t == nil {
		return ""
	}
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

// formatBlock renders braces whose closing brace sits at depth.
func formatBlock(b *ast.Block, depth int) string {
	if b == nil || len(b.Stmts) == 0 {
		return "{\n" + strings.Repeat(indent, depth) + "}"
	}
	lines := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch s := s.(type) {
	case *ast.Block:
		return prefix + formatBlock(s, depth)
	case *ast.VarDecl:
		out := prefix
		if s.Final {
			out += "final "
		}
		out += formatType(s.Type) + " " + s.Name.Name
		if s.Init != nil {
			out += " = " + formatExpr(s.Init)
		}
		return out + ";"
	case *ast.PrintStmt:
		arg := ""
		if s.Arg != nil {
			arg = formatExpr(s.Arg)
		}
		return prefix + "System.out." + s.Method.Name + "(" + arg + ");"
	case *ast.ExprStmt:
		out := prefix + formatExpr(s.Expr)
		if s.IsAssignment() {
			out += " " + string(s.Op) + " " + formatExpr(s.Value)
		}
		return out + ";"
	}
	return prefix
}

func formatExpr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Literal:
		return e.Raw
	case *ast.Name:
		var b strings.Builder
		b.WriteString(e.Head.Name)
		for _, sel := range e.Selectors {
			switch sel := sel.(type) {
			case *ast.FieldAccess:
				b.WriteString("." + sel.Name.Name)
			case *ast.Call:
				b.WriteString("(" + formatArgs(sel.Args) + ")")
			}
		}
		return b.String()
	case *ast.BinaryExpr:
		left := formatExpr(e.Left)
		if needsParens(e.Left, e.Level, false) {
			left = "(" + left + ")"
		}
		right := formatExpr(e.Right)
		if needsParens(e.Right, e.Level, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(e.Op) + " " + right
	case *ast.UnaryExpr:
		operand := formatExpr(e.Operand)
		if _, isBin := e.Operand.(*ast.BinaryExpr); isBin {
			operand = "(" + operand + ")"
		}
		op := string(e.Op)
		// `- -x` must not collapse into a decrement.
		if operand != "" && (op[len(op)-1] == '-' || op[len(op)-1] == '+') && operand[0] == op[len(op)-1] {
			return op + " " + operand
		}
		return op + operand
	case *ast.PostfixExpr:
		return formatExpr(e.Operand) + string(e.Op)
	case *ast.CastExpr:
		operand := formatExpr(e.Operand)
		if _, isBin := e.Operand.(*ast.BinaryExpr); isBin {
			operand = "(" + operand + ")"
		}
		return "(" + formatType(e.Type) + ") " + operand
	case *ast.ParenExpr:
		return "(" + formatExpr(e.Inner) + ")"
	case *ast.NewExpr:
		return "new " + e.Class.Name + "(" + formatArgs(e.Args) + ")"
	}
	return ""
}

func formatArgs(args []ast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatExpr(a)
	}
	return strings.Join(parts, ", ")
}
