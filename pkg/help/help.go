// Package help holds the learner-facing reference printed by `javacheck help`.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codequest/javacheck/pkg/diagnostics"
	"github.com/codequest/javacheck/pkg/validator"
)

// QUICKREF is printed by `javacheck help` with no topic.
const QUICKREF = `javacheck v1.0 - checks Java teaching-subset programs

Usage:
  javacheck check <file|-> [--mode full|statements] [--pretty]
  javacheck tokens <file|->
  javacheck fmt <file|-> [--mode full|statements] [--write]
  javacheck repl [--mode full|statements]
  javacheck grammar
  javacheck help [topic]

Exit codes: 0 no findings, 1 usage or I/O error, 2 diagnostics reported.

Topics:
  categories   every diagnostic category and its hint
  grammar      the supported subset of Java
  modes        full programs versus bare statements
  builtins     names that never need a declaration
`

// TopicList is the display order of the help topics.
var TopicList = []string{"categories", "grammar", "modes", "builtins"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"categories": categoriesTopic(),
	"grammar":    grammarTopic,
	"modes":      modesTopic,
	"builtins":   builtinsTopic(),
}

const grammarTopic = `Supported Java subset

Programs
  public class Name { members }
  members: fields and one shape of method:
    public static void main(String[] args) { statements }
  fields: [public] [static] [final] type name [= expression];

Types
  String, int, double, boolean, char, long, float, short, byte
  and one-dimensional arrays of them (int[], String[]).

Statements
  type name [= expression];          final type name = expression;
  System.out.println(expression);   System.out.print(expression);
  target = expression;               also += -= *= /= %=
  name++;  name--;  ++name;  --name;  method calls such as Math.pow(2, 3);
  { statements }

Expressions, loosest to tightest
  ||   &&   == !=   < > <= >=   + -   * / %
  unary - + ! ++ --, casts such as (int) 3.7, postfix ++ --
  literals, names, calls, field access, (grouping), new Name(args)

Not supported: if, loops, other methods, generics, array literals.
`

const modesTopic = `Modes

full        the source must be one or more public classes. This is the
            default, and unknown mode names fall back to it.
statements  the source is a list of bare statements, as typed into a short
            exercise box. Class declarations are not accepted here.

Scope checking only runs when there are no syntax errors.
`

func builtinsTopic() string {
	names := append([]string(nil), validator.Builtins...)
	sort.Strings(names)
	return "Names that resolve without a declaration\n\n  " +
		strings.Join(names, "\n  ") + "\n\nOnly the first name of a dotted chain is checked.\n"
}

func categoriesTopic() string {
	var b strings.Builder
	b.WriteString("Diagnostic categories\n\n")
	for _, c := range diagnostics.Categories {
		fmt.Fprintf(&b, "%s\n  %s\n\n", c, diagnostics.Hint(c))
	}
	return b.String()
}

// MatchTopic resolves an exact topic name or an unambiguous prefix.
func MatchTopic(query string) (name, content string, err error) {
	if c, ok := Topics[query]; ok {
		return query, c, nil
	}
	var matches []string
	for _, t := range TopicList {
		if query != "" && strings.HasPrefix(t, query) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic: %s", query)
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous help topic %q matches %s", query, strings.Join(matches, ", "))
}
