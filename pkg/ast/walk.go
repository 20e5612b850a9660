package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node before its children. If f returns false the children of that
// node are skipped. Nil children are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, c := range n.Classes {
			Inspect(c, f)
		}
	case *Statements:
		inspectStmts(n.Stmts, f)
	case *ClassDecl:
		for _, m := range n.Members {
			Inspect(m, f)
		}
	case *MainMethod:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *FieldDecl:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
		inspectExpr(n.Init, f)
	case *Block:
		inspectStmts(n.Stmts, f)
	case *VarDecl:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
		inspectExpr(n.Init, f)
	case *PrintStmt:
		inspectExpr(n.Arg, f)
	case *ExprStmt:
		inspectExpr(n.Expr, f)
		inspectExpr(n.Value, f)
	case *BinaryExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *UnaryExpr:
		inspectExpr(n.Operand, f)
	case *CastExpr:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
		inspectExpr(n.Operand, f)
	case *PostfixExpr:
		inspectExpr(n.Operand, f)
	case *ParenExpr:
		inspectExpr(n.Inner, f)
	case *Name:
		for _, s := range n.Selectors {
			Inspect(s, f)
		}
	case *Call:
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *NewExpr:
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	}
}

func inspectStmts(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		if s != nil {
			Inspect(s, f)
		}
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}
