package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; it reports diagnostics for invalid input.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		`public class static void`,
		`int double String char boolean byte short long float`,
		`final new true false null`,
		`42 3.14 3. .5 1e10 1e 2.5f 100L`,
		`"hello" "with\nescape" "quote\""`,
		`'a' '\n' 'A'`,
		`+= -= *= /= %= ++ -- == != <= >= && ||`,
		`( ) { } [ ] ; , .`,
		`x intValue _y $z`,
		`// comment`,
		`/* block */`,
		`/* open`,
		`int x = 5;`,
		`System.out.println("hi");`,
		``,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`"\`,
		`@#^&|~`,
		"\xff\xfe",
		`é`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens, _ := Tokenize(input)
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
			t.Fatalf("Tokenize(%q) did not end with EOF", input)
		}
	})
}
