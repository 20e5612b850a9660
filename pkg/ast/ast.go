// Package ast defines the concrete syntax tree for the Java teaching subset.
package ast

// Span represents a source location range. Lines and columns are 1-based;
// EndCol points one past the last character.
type Span struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

// To returns a span that starts at s and ends where end ends.
func (s Span) To(end Span) Span {
	return Span{
		StartLine: s.StartLine,
		StartCol:  s.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Node is the interface implemented by all CST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Root is the interface for the two parse entry shapes ---

type Root interface {
	Node
	rootNode() // sealed marker
}

// --- Member is the interface for class members ---

type Member interface {
	Node
	memberNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// Ident is an identifier together with the span of the token it came from.
type Ident struct {
	Span Span
	Name string
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpOr   BinaryOp = "||"
	OpAnd  BinaryOp = "&&"
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpLt   BinaryOp = "<"
	OpGt   BinaryOp = ">"
	OpLtEq BinaryOp = "<="
	OpGtEq BinaryOp = ">="
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
)

// UnaryOp represents a prefix or postfix operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpPos UnaryOp = "+"
	OpNot UnaryOp = "!"
	OpInc UnaryOp = "++"
	OpDec UnaryOp = "--"
)

// AssignOp represents an assignment operator in an expression statement.
type AssignOp string

const (
	AssignNone AssignOp = ""
	Assign     AssignOp = "="
	AssignAdd  AssignOp = "+="
	AssignSub  AssignOp = "-="
	AssignMul  AssignOp = "*="
	AssignDiv  AssignOp = "/="
	AssignMod  AssignOp = "%="
)

// Precedence identifies the binary precedence tier a BinaryExpr was built by,
// loosest first.
type Precedence int

const (
	LevelLogicalOr Precedence = iota
	LevelLogicalAnd
	LevelEquality
	LevelRelational
	LevelAdditive
	LevelMultiplicative
)

func (p Precedence) String() string {
	switch p {
	case LevelLogicalOr:
		return "logicalOr"
	case LevelLogicalAnd:
		return "logicalAnd"
	case LevelEquality:
		return "equality"
	case LevelRelational:
		return "relational"
	case LevelAdditive:
		return "additive"
	case LevelMultiplicative:
		return "multiplicative"
	default:
		return "unknown"
	}
}

// --- Types ---

// TypeSpec is a written type such as `int` or `String[]`.
type TypeSpec struct {
	Span  Span
	Name  string
	Array bool
}

func (n *TypeSpec) Kind() string   { return "TypeSpec" }
func (n *TypeSpec) NodeSpan() Span { return n.Span }

// Type resolves the written type to its tracked form.
func (n *TypeSpec) Type() Type {
	t := Type{Kind: TypeKindOf(n.Name)}
	if n.Array {
		return ArrayOf(t)
	}
	return t
}

// --- Roots ---

// Program is the root of a full parse: one or more class declarations.
type Program struct {
	Span    Span
	Classes []*ClassDecl
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
func (n *Program) rootNode()      {}

// Statements is the root of a snippet parse: bare statements.
type Statements struct {
	Span  Span
	Stmts []Stmt
}

func (n *Statements) Kind() string   { return "Statements" }
func (n *Statements) NodeSpan() Span { return n.Span }
func (n *Statements) rootNode()      {}

// --- Class level ---

type ClassDecl struct {
	Span    Span
	Name    Ident
	Members []Member
}

func (n *ClassDecl) Kind() string   { return "ClassDecl" }
func (n *ClassDecl) NodeSpan() Span { return n.Span }

// MainMethod is `public static void NAME(String[] PARAM) { ... }`.
type MainMethod struct {
	Span  Span
	Name  Ident
	Param Ident
	Body  *Block
}

func (n *MainMethod) Kind() string   { return "MainMethod" }
func (n *MainMethod) NodeSpan() Span { return n.Span }
func (n *MainMethod) memberNode()    {}

type FieldDecl struct {
	Span      Span
	Modifiers []string
	Final     bool
	Type      *TypeSpec
	Name      Ident
	Init      Expr // nil when absent
}

func (n *FieldDecl) Kind() string   { return "FieldDecl" }
func (n *FieldDecl) NodeSpan() Span { return n.Span }
func (n *FieldDecl) memberNode()    {}

// --- Statements ---

type Block struct {
	Span  Span
	Stmts []Stmt
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) stmtNode()      {}

type VarDecl struct {
	Span  Span
	Final bool
	Type  *TypeSpec
	Name  Ident
	Init  Expr // nil when absent
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

// PrintStmt is `System.out.println(...)` or `System.out.print(...)`.
type PrintStmt struct {
	Span   Span
	Method Ident
	Arg    Expr // nil for an empty argument list
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

// ExprStmt is an expression statement, optionally an assignment.
type ExprStmt struct {
	Span   Span
	Expr   Expr
	Op     AssignOp
	OpSpan Span
	Value  Expr // nil unless Op != AssignNone
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// IsAssignment reports whether the statement carries an assignment operator.
func (n *ExprStmt) IsAssignment() bool { return n.Op != AssignNone }

// --- Expressions ---

type BinaryExpr struct {
	Span   Span
	Level  Precedence
	Op     BinaryOp
	OpSpan Span
	Left   Expr
	Right  Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

// CastExpr is `(type) operand`.
type CastExpr struct {
	Span    Span
	Type    *TypeSpec
	Operand Expr
}

func (n *CastExpr) Kind() string   { return "CastExpr" }
func (n *CastExpr) NodeSpan() Span { return n.Span }
func (n *CastExpr) exprNode()      {}

type PostfixExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *PostfixExpr) Kind() string   { return "PostfixExpr" }
func (n *PostfixExpr) NodeSpan() Span { return n.Span }
func (n *PostfixExpr) exprNode()      {}

type ParenExpr struct {
	Span  Span
	Inner Expr
}

func (n *ParenExpr) Kind() string   { return "ParenExpr" }
func (n *ParenExpr) NodeSpan() Span { return n.Span }
func (n *ParenExpr) exprNode()      {}

// LiteralKind classifies a literal token.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitNull
)

// Literal keeps the raw token text, quotes and suffixes included.
type Literal struct {
	Span    Span
	LitKind LiteralKind
	Raw     string
}

func (n *Literal) Kind() string   { return "Literal" }
func (n *Literal) NodeSpan() Span { return n.Span }
func (n *Literal) exprNode()      {}

// Selector is a `.name` or `(args)` suffix applied to a Name.
type Selector interface {
	Node
	selectorNode() // sealed marker
}

type FieldAccess struct {
	Span Span
	Name Ident
}

func (n *FieldAccess) Kind() string   { return "FieldAccess" }
func (n *FieldAccess) NodeSpan() Span { return n.Span }
func (n *FieldAccess) selectorNode()  {}

type Call struct {
	Span Span
	Args []Expr
}

func (n *Call) Kind() string   { return "Call" }
func (n *Call) NodeSpan() Span { return n.Span }
func (n *Call) selectorNode()  {}

// Name is an identifier followed by any number of selectors, e.g.
// `x`, `Math.pow(2, 3)` or `name.length()`.
type Name struct {
	Span      Span
	Head      Ident
	Selectors []Selector
}

func (n *Name) Kind() string   { return "Name" }
func (n *Name) NodeSpan() Span { return n.Span }
func (n *Name) exprNode()      {}

// IsSimple reports whether the name is a bare identifier.
func (n *Name) IsSimple() bool { return len(n.Selectors) == 0 }

type NewExpr struct {
	Span  Span
	Class Ident
	Args  []Expr
}

func (n *NewExpr) Kind() string   { return "NewExpr" }
func (n *NewExpr) NodeSpan() Span { return n.Span }
func (n *NewExpr) exprNode()      {}

// BadExpr stands in for an expression that could not be parsed.
type BadExpr struct {
	Span Span
}

func (n *BadExpr) Kind() string   { return "BadExpr" }
func (n *BadExpr) NodeSpan() Span { return n.Span }
func (n *BadExpr) exprNode()      {}
