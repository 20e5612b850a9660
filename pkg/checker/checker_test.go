package checker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/codequest/javacheck/pkg/ast"
	"github.com/codequest/javacheck/pkg/diagnostics"
)

const helloWorld = `public class Main {
    public static void main(String[] args) {
        int count = 3;
        double rate = 0.5;
        String name = "Ada";
        System.out.println("Hello, " + name);
        System.out.println(count * rate);
    }
}`

func assertClean(t *testing.T, res *ParseResult) {
	t.Helper()
	if !res.Success || len(res.Errors) != 0 {
		t.Fatalf("expected success, got %+v", res.Errors)
	}
}

func hasCategory(res *ParseResult, c diagnostics.Category) bool {
	for _, d := range res.Errors {
		if d.Category == c {
			return true
		}
	}
	return false
}

// ---- 1. Valid input ----

func TestValidStatements(t *testing.T) {
	sources := []string{
		"int x = 1;",
		"int x = 1; System.out.println(x);",
		"double d = Math.sqrt(16.0);",
		"String s = \"hi\"; int n = s.length();",
		"int a = 1; int b = 2; a += b; b--; ++a;",
		"boolean ok = !(1 < 2) || 3 >= 4 && true;",
		"char c = 'x'; System.out.print(c);",
		"final double PI = 3.14; double area = PI * 2 * 2;",
		"int[] nums; String[] words;",
		"{ int inner = 1; } { int inner = 2; }",
		"int r = (int) Math.round(2.5) % 3;",
		"long big = 10; float f = 1.5f; short s = 1; byte b = 2;",
		"System.out.println();",
		"",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			assertClean(t, Parse(src, ModeStatements))
			if HasSyntaxErrors(src, ModeStatements) {
				t.Error("HasSyntaxErrors reported errors on valid input")
			}
		})
	}
}

func TestFullProgram(t *testing.T) {
	res := Parse(helloWorld, ModeFull)
	assertClean(t, res)
	prog, ok := res.CST.(*ast.Program)
	if !ok {
		t.Fatalf("expected *ast.Program, got %T", res.CST)
	}
	if len(prog.Classes) != 1 || prog.Classes[0].Name.Name != "Main" {
		t.Fatalf("unexpected classes: %+v", prog.Classes)
	}
}

func TestFieldsVisibleInMain(t *testing.T) {
	src := `public class Counter {
    public static void main(String[] args) {
        total = total + STEP;
    }
    static int total = 0;
    static final int STEP = 2;
}`
	assertClean(t, Parse(src, ModeFull))
}

// ---- 2. Syntax errors ----

func TestMissingSemicolon(t *testing.T) {
	res := Parse("int x = 5", ModeStatements)
	if res.Success {
		t.Fatal("expected failure")
	}
	if !hasCategory(res, diagnostics.MissingSemicolon) {
		t.Errorf("expected missing_semicolon, got %+v", res.Errors)
	}
	if !HasSyntaxErrors("int x = 5", ModeStatements) {
		t.Error("HasSyntaxErrors = false")
	}
}

func TestIncompleteInitializer(t *testing.T) {
	if !HasSyntaxErrors("int x = ", ModeStatements) {
		t.Error("HasSyntaxErrors = false")
	}
}

func TestSyntaxErrorsSkipScopeChecking(t *testing.T) {
	res := Parse("System.out.println(undeclared)", ModeStatements)
	for _, d := range res.Errors {
		if d.Category == diagnostics.UndeclaredVariable {
			t.Errorf("scope checking ran despite syntax errors: %+v", res.Errors)
		}
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected a syntax diagnostic")
	}
}

func TestLexicalErrorsAreGeneralSyntax(t *testing.T) {
	res := Parse("int x = 5 # 2;", ModeStatements)
	if !hasCategory(res, diagnostics.GeneralSyntax) {
		t.Errorf("expected general_syntax, got %+v", res.Errors)
	}
}

func TestDiagnosticsSortedByPosition(t *testing.T) {
	res := Parse("int x = @;\nint y = 2\nint z = 3;", ModeStatements)
	if len(res.Errors) < 2 {
		t.Fatalf("expected several diagnostics, got %+v", res.Errors)
	}
	for i := 1; i < len(res.Errors); i++ {
		a, b := res.Errors[i-1], res.Errors[i]
		if a.Line > b.Line || (a.Line == b.Line && a.Column > b.Column) {
			t.Errorf("diagnostics out of order: %+v before %+v", a, b)
		}
	}
}

func TestLexicalErrorsDoNotSkipScopeChecking(t *testing.T) {
	res := Parse("int x = 5; @ System.out.println(y);", ModeStatements)
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", res.Errors)
	}
	lexical, semantic := res.Errors[0], res.Errors[1]
	if lexical.Category != diagnostics.GeneralSyntax || lexical.Line != 1 || lexical.Column != 12 {
		t.Errorf("unexpected lexical diagnostic %+v", lexical)
	}
	if semantic.Category != diagnostics.UndeclaredVariable || semantic.Line != 1 || semantic.Column != 33 {
		t.Errorf("unexpected scope diagnostic %+v", semantic)
	}
	if !HasSyntaxErrors("int x = 5; @ System.out.println(y);", ModeStatements) {
		t.Error("HasSyntaxErrors should count lexical diagnostics")
	}
}

func TestLexicalAndScopeDiagnosticsMerged(t *testing.T) {
	res := Parse("int a = 1;\n#\nint a = 2;", ModeStatements)
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", res.Errors)
	}
	if res.Errors[0].Category != diagnostics.GeneralSyntax || res.Errors[0].Line != 2 {
		t.Errorf("unexpected first diagnostic %+v", res.Errors[0])
	}
	if res.Errors[1].Category != diagnostics.DuplicateDeclaration || res.Errors[1].Line != 3 || res.Errors[1].Column != 5 {
		t.Errorf("unexpected second diagnostic %+v", res.Errors[1])
	}
}

func TestUnterminatedLiteralReportedOnce(t *testing.T) {
	res := Parse("String s = \"abc;\nint y = 2;", ModeStatements)
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", res.Errors)
	}
	d := res.Errors[0]
	if d.Category != diagnostics.GeneralSyntax || d.Line != 1 || d.Column != 12 {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestUnknownModeIsFull(t *testing.T) {
	res := Parse("int x = 1;", Mode("bogus"))
	if res.Success {
		t.Fatal("bare statements should fail outside statements mode")
	}
	if _, ok := res.CST.(*ast.Program); !ok {
		t.Errorf("expected *ast.Program, got %T", res.CST)
	}
	assertClean(t, Parse(helloWorld, Mode("")))
}

// ---- 3. Semantic errors ----

func TestUndeclaredVariable(t *testing.T) {
	res := Parse("System.out.println(undeclaredVar);", ModeStatements)
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", res.Errors)
	}
	d := res.Errors[0]
	if d.Category != diagnostics.UndeclaredVariable || d.Line != 1 || d.Column != 20 {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Hint != diagnostics.Hint(diagnostics.UndeclaredVariable) {
		t.Errorf("hint = %q", d.Hint)
	}
	assertClean(t, Parse("int x = 1; System.out.println(x);", ModeStatements))
}

func TestDuplicateDeclaration(t *testing.T) {
	res := Parse("int x = 1; int x = 2;", ModeStatements)
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", res.Errors)
	}
	d := res.Errors[0]
	if d.Category != diagnostics.DuplicateDeclaration || d.Line != 1 || d.Column != 16 {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if !strings.Contains(d.Message, "line 1") {
		t.Errorf("message should name the first declaration: %q", d.Message)
	}
}

func TestAssignToFinal(t *testing.T) {
	res := Parse("final int MAX = 100;\nMAX = 200;", ModeStatements)
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", res.Errors)
	}
	d := res.Errors[0]
	if d.Category != diagnostics.AssignToFinal || d.Line != 2 || d.Column != 1 {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestWithBuiltins(t *testing.T) {
	src := "int n = Helper.count();"
	if res := Parse(src, ModeStatements); !hasCategory(res, diagnostics.UndeclaredVariable) {
		t.Fatalf("expected undeclared_variable without the builtin, got %+v", res.Errors)
	}
	c := New(WithBuiltins("Helper"))
	assertClean(t, c.Parse(src, ModeStatements))
	// The default checker is unaffected.
	if res := Parse(src, ModeStatements); res.Success {
		t.Error("WithBuiltins leaked into the default checker")
	}
}

// ---- 4. Cast disambiguation ----

func TestCastOperandIsLiteral(t *testing.T) {
	res := Parse("int y = (int) 3.7;", ModeStatements)
	assertClean(t, res)
	decl := res.CST.(*ast.Statements).Stmts[0].(*ast.VarDecl)
	cast, ok := decl.Init.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected *ast.CastExpr, got %T", decl.Init)
	}
	if cast.Type.Name != "int" {
		t.Errorf("cast type = %q", cast.Type.Name)
	}
	lit, ok := cast.Operand.(*ast.Literal)
	if !ok || lit.Raw != "3.7" || lit.LitKind != ast.LitFloat {
		t.Errorf("cast operand = %#v", cast.Operand)
	}
}

func TestGroupingIsNotCast(t *testing.T) {
	src := "int a = 1; int b = 2; int c = 3; int d = 4;\nint z = (a + b) * (c - d);"
	res := Parse(src, ModeStatements)
	assertClean(t, res)
	ast.Inspect(res.CST, func(n ast.Node) bool {
		if _, isCast := n.(*ast.CastExpr); isCast {
			t.Errorf("grouping misread as cast at %+v", n.NodeSpan())
		}
		return true
	})
}

// ---- 5. Robustness ----

func TestConcurrentCalls(t *testing.T) {
	inputs := []struct {
		src  string
		want bool
	}{
		{"int x = 1;", true},
		{"int x = 1", false},
		{"System.out.println(y);", false},
		{"final int K = 1; K++;", false},
	}
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		in := inputs[i%len(inputs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Parse(in.src, ModeStatements).Success; got != in.want {
				errs <- fmt.Errorf("%q: success = %v, want %v", in.src, got, in.want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestErrorsNeverNil(t *testing.T) {
	res := Parse("int x = 1;", ModeStatements)
	if res.Errors == nil {
		t.Error("Errors should be an empty slice, not nil")
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"full", "statements"} {
		if m, err := ParseMode(s); err != nil || string(m) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMode("expr"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

// ---- 6. Formatting ----

func TestFormat(t *testing.T) {
	out, err := New().Format("int x=1+2;", ModeStatements)
	if err != nil {
		t.Fatal(err)
	}
	if out != "int x = 1 + 2;\n" {
		t.Errorf("got %q", out)
	}
}

func TestFormatRefusesSyntaxErrors(t *testing.T) {
	_, err := New().Format("int x = 1", ModeStatements)
	var de *DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DiagnosticError, got %v", err)
	}
	if de.Diagnostics[0].Category != diagnostics.MissingSemicolon {
		t.Errorf("unexpected diagnostics %+v", de.Diagnostics)
	}
	if !strings.Contains(err.Error(), "missing_semicolon") {
		t.Errorf("Error() = %q", err.Error())
	}
}
