package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/codequest/javacheck/pkg/lexer"
)

// MaxLookahead is the largest lookahead budget a choice point or gate may use.
const MaxLookahead = 4

// Term matches a single token. A non-empty Image additionally requires the
// token text, which is how identifier spellings such as System are named.
type Term struct {
	Type  lexer.TokenType
	Image string
}

// Tok returns a term matching any token of type t.
func Tok(t lexer.TokenType) Term { return Term{Type: t} }

// Word returns a term matching an identifier spelled image.
func Word(image string) Term { return Term{Type: lexer.TokIdent, Image: image} }

func (t Term) matches(tok lexer.Token) bool {
	return tok.Type == t.Type && (t.Image == "" || tok.Value == t.Image)
}

func (t Term) overlaps(o Term) bool {
	return t.Type == o.Type && (t.Image == "" || o.Image == "" || t.Image == o.Image)
}

func (t Term) String() string {
	if t.Image != "" {
		return "'" + t.Image + "'"
	}
	switch t.Type {
	case lexer.TokIdent:
		return "IDENT"
	case lexer.TokIntLit:
		return "INT_LITERAL"
	case lexer.TokFloatLit:
		return "FLOAT_LITERAL"
	case lexer.TokStringLit:
		return "STRING_LITERAL"
	case lexer.TokCharLit:
		return "CHAR_LITERAL"
	case lexer.TokEOF:
		return "EOF"
	}
	return "'" + lexer.Spelling(t.Type) + "'"
}

// --- Grammar elements ---

type elemKind int

const (
	elemTerm elemKind = iota
	elemRef
	elemSeq
	elemOpt
	elemMany
	elemOneOf
)

// Elem is one element of an alternative's body.
type Elem struct {
	kind  elemKind
	term  Term
	ref   string
	items []Elem
}

// T matches one token of the given type, or any one of several types.
func T(types ...lexer.TokenType) Elem {
	if len(types) == 1 {
		return Elem{kind: elemTerm, term: Tok(types[0])}
	}
	items := make([]Elem, len(types))
	for i, typ := range types {
		items[i] = Elem{kind: elemTerm, term: Tok(typ)}
	}
	return Elem{kind: elemOneOf, items: items}
}

// W matches an identifier with a fixed spelling.
func W(image string) Elem { return Elem{kind: elemTerm, term: Word(image)} }

// Ref refers to another rule by name.
func Ref(name string) Elem { return Elem{kind: elemRef, ref: name} }

func Seq(items ...Elem) Elem { return Elem{kind: elemSeq, items: items} }
func Opt(items ...Elem) Elem { return Elem{kind: elemOpt, items: items} }
func Many(items ...Elem) Elem { return Elem{kind: elemMany, items: items} }
func OneOf(items ...Elem) Elem { return Elem{kind: elemOneOf, items: items} }

func (e Elem) String() string {
	switch e.kind {
	case elemTerm:
		return e.term.String()
	case elemRef:
		return e.ref
	case elemSeq:
		return "(" + joinElems(e.items, " ") + ")"
	case elemOpt:
		return "(" + joinElems(e.items, " ") + ")?"
	case elemMany:
		return "(" + joinElems(e.items, " ") + ")*"
	case elemOneOf:
		return "(" + joinElems(e.items, " | ") + ")"
	}
	return "?"
}

func joinElems(items []Elem, sep string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, sep)
}

// --- Rules ---

// Alt is one alternative of a rule. A gated alternative is tried, in order,
// before ungated prediction and is chosen when the upcoming tokens match its
// gate exactly.
type Alt struct {
	Name string
	Gate []Term
	Body []Elem
}

// A builds an ungated alternative.
func A(name string, body ...Elem) Alt {
	return Alt{Name: name, Body: body}
}

// WithGate returns a copy of the alternative guarded by the given sequence.
func (a Alt) WithGate(gate ...Term) Alt {
	a.Gate = gate
	return a
}

// Rule is a named choice point. K is the lookahead budget used to predict
// among its ungated alternatives.
type Rule struct {
	Name string
	K    int
	Alts []Alt
}

func NewRule(name string, k int, alts ...Alt) *Rule {
	return &Rule{Name: name, K: k, Alts: alts}
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.K > 1 {
		fmt.Fprintf(&b, " [k=%d]", r.K)
	}
	b.WriteString(" :=")
	for i, alt := range r.Alts {
		if i > 0 {
			b.WriteString("\n    |")
		}
		b.WriteString(" " + joinElems(alt.Body, " "))
		if len(alt.Gate) > 0 {
			fmt.Fprintf(&b, "   (gate: %s)", seqString(alt.Gate))
		}
		if len(r.Alts) > 1 {
			fmt.Fprintf(&b, "   #%s", alt.Name)
		}
	}
	return b.String()
}

// Grammar is an ordered rule table.
type Grammar struct {
	rules  []*Rule
	byName map[string]*Rule
}

func NewGrammar(rules ...*Rule) *Grammar {
	g := &Grammar{rules: rules, byName: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if _, dup := g.byName[r.Name]; !dup {
			g.byName[r.Name] = r
		}
	}
	return g
}

func (g *Grammar) Rules() []*Rule { return g.rules }

func (g *Grammar) Lookup(name string) *Rule { return g.byName[name] }

func (g *Grammar) String() string {
	parts := make([]string, len(g.rules))
	for i, r := range g.rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\n")
}

// JavaGrammar returns the rule table for the Java teaching subset. The
// expression rules run loosest to tightest binding.
func JavaGrammar() *Grammar {
	const (
		ident = lexer.TokIdent
		semi  = lexer.TokSemi
	)
	primTypes := []lexer.TokenType{
		lexer.TokInt, lexer.TokDouble, lexer.TokChar, lexer.TokBoolean,
		lexer.TokByte, lexer.TokShort, lexer.TokLong, lexer.TokFloat,
	}
	valueTypes := append([]lexer.TokenType{lexer.TokString}, primTypes...)

	return NewGrammar(
		NewRule("program", 1,
			A("program", Many(Ref("classDecl")), T(lexer.TokEOF))),
		NewRule("statements", 1,
			A("statements", Many(Ref("statement")), T(lexer.TokEOF))),
		NewRule("classDecl", 1,
			A("classDecl", T(lexer.TokPublic), T(lexer.TokClass), T(ident),
				T(lexer.TokLBrace), Many(Ref("classMember")), T(lexer.TokRBrace))),
		NewRule("classMember", 1,
			A("mainMethod", Ref("mainMethod")).
				WithGate(Tok(lexer.TokPublic), Tok(lexer.TokStatic), Tok(lexer.TokVoid)),
			A("fieldDecl", Ref("fieldDecl"))),
		NewRule("mainMethod", 1,
			A("mainMethod", T(lexer.TokPublic), T(lexer.TokStatic), T(lexer.TokVoid), T(ident),
				T(lexer.TokLParen), T(lexer.TokString), T(lexer.TokLBracket), T(lexer.TokRBracket), T(ident),
				T(lexer.TokRParen), Ref("block"))),
		NewRule("fieldDecl", 1,
			A("fieldDecl", Many(T(lexer.TokPublic, lexer.TokStatic, lexer.TokFinal)), Ref("typeSpec"), T(ident),
				Opt(T(lexer.TokEquals), Ref("expression")), T(semi))),
		NewRule("typeSpec", 1,
			A("typeSpec", T(valueTypes...), Opt(T(lexer.TokLBracket), T(lexer.TokRBracket)))),
		NewRule("castType", 1,
			A("castType", T(primTypes...))),
		NewRule("block", 1,
			A("block", T(lexer.TokLBrace), Many(Ref("statement")), T(lexer.TokRBrace))),
		NewRule("statement", 1,
			A("varDecl", Ref("varDecl")),
			A("printStmt", Ref("printStmt")).
				WithGate(Word("System"), Tok(lexer.TokDot), Word("out"), Tok(lexer.TokDot)),
			A("exprStmt", Ref("exprStmt")),
			A("block", Ref("block"))),
		NewRule("varDecl", 1,
			A("varDecl", Opt(T(lexer.TokFinal)), Ref("typeSpec"), T(ident),
				Opt(T(lexer.TokEquals), Ref("expression")), T(semi))),
		NewRule("printStmt", 1,
			A("printStmt", W("System"), T(lexer.TokDot), W("out"), T(lexer.TokDot),
				OneOf(W("println"), W("print")),
				T(lexer.TokLParen), Opt(Ref("expression")), T(lexer.TokRParen), T(semi))),
		NewRule("exprStmt", 1,
			A("exprStmt", Ref("expression"),
				Opt(T(lexer.TokEquals, lexer.TokPlusEq, lexer.TokMinusEq, lexer.TokStarEq, lexer.TokSlashEq, lexer.TokPercentEq),
					Ref("expression")),
				T(semi))),
		NewRule("expression", 1,
			A("expression", Ref("logicalOr"))),
		NewRule("logicalOr", 1,
			A("logicalOr", Ref("logicalAnd"), Many(T(lexer.TokOrOr), Ref("logicalAnd")))),
		NewRule("logicalAnd", 1,
			A("logicalAnd", Ref("equality"), Many(T(lexer.TokAndAnd), Ref("equality")))),
		NewRule("equality", 1,
			A("equality", Ref("relational"), Many(T(lexer.TokEqEq, lexer.TokBangEq), Ref("relational")))),
		NewRule("relational", 1,
			A("relational", Ref("additive"),
				Many(T(lexer.TokLt, lexer.TokGt, lexer.TokLtEq, lexer.TokGtEq), Ref("additive")))),
		NewRule("additive", 1,
			A("additive", Ref("multiplicative"), Many(T(lexer.TokPlus, lexer.TokMinus), Ref("multiplicative")))),
		NewRule("multiplicative", 1,
			A("multiplicative", Ref("unary"),
				Many(T(lexer.TokStar, lexer.TokSlash, lexer.TokPercent), Ref("unary")))),
		NewRule("unary", 1,
			A("prefix", T(lexer.TokMinus, lexer.TokPlus, lexer.TokBang, lexer.TokPlusPlus, lexer.TokMinusMinus), Ref("unary")),
			A("castOrPrimary", Ref("castOrPrimary"))),
		NewRule("castOrPrimary", 2,
			A("cast", T(lexer.TokLParen), Ref("castType"), T(lexer.TokRParen), Ref("unary")),
			A("postfix", Ref("postfix"))),
		NewRule("postfix", 1,
			A("postfix", Ref("primary"), Opt(T(lexer.TokPlusPlus, lexer.TokMinusMinus)))),
		NewRule("primary", 1,
			A("literal", T(lexer.TokIntLit, lexer.TokFloatLit, lexer.TokStringLit, lexer.TokCharLit,
				lexer.TokTrue, lexer.TokFalse, lexer.TokNull)),
			A("name", T(ident), Many(Ref("selector"))),
			A("paren", T(lexer.TokLParen), Ref("expression"), T(lexer.TokRParen)),
			A("new", T(lexer.TokNew), T(ident), T(lexer.TokLParen), Opt(Ref("arguments")), T(lexer.TokRParen))),
		NewRule("selector", 1,
			A("call", T(lexer.TokLParen), Opt(Ref("arguments")), T(lexer.TokRParen)),
			A("field", T(lexer.TokDot), T(ident))),
		NewRule("arguments", 1,
			A("arguments", Ref("expression"), Many(T(lexer.TokComma), Ref("expression")))),
	)
}

// --- Lookahead sets ---

type seq []Term

func (s seq) key() string {
	var b strings.Builder
	for _, t := range s {
		b.WriteString(strconv.Itoa(int(t.Type)))
		b.WriteByte(':')
		b.WriteString(t.Image)
		b.WriteByte('|')
	}
	return b.String()
}

func seqString(s []Term) string {
	if len(s) == 0 {
		return "<empty>"
	}
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// seqOverlap reports whether two lookahead sequences can match the same
// input. A sequence shorter than the budget may be followed by anything, so
// only the common prefix is compared.
func seqOverlap(a, b seq) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !a[i].overlaps(b[i]) {
			return false
		}
	}
	return true
}

type seqSet struct {
	keys map[string]bool
	seqs []seq
}

func newSeqSet() *seqSet {
	return &seqSet{keys: make(map[string]bool)}
}

func (s *seqSet) add(q seq) {
	k := q.key()
	if s.keys[k] {
		return
	}
	s.keys[k] = true
	s.seqs = append(s.seqs, q)
}

func (s *seqSet) addAll(o *seqSet) {
	for _, q := range o.seqs {
		s.add(q)
	}
}

func concat(a, b seq) seq {
	out := make(seq, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

type memoKey struct {
	rule string
	k    int
}

// firstSets computes FIRST_k sets: every token sequence of length at most k
// an element list can begin with. A sequence shorter than k means the list
// can end after it.
type firstSets struct {
	g        *Grammar
	memo     map[memoKey]*seqSet
	active   map[memoKey]bool
	problems []error
}

func newFirstSets(g *Grammar) *firstSets {
	return &firstSets{
		g:      g,
		memo:   make(map[memoKey]*seqSet),
		active: make(map[memoKey]bool),
	}
}

func (f *firstSets) ofSeq(elems []Elem, k int) *seqSet {
	out := newSeqSet()
	if k == 0 || len(elems) == 0 {
		out.add(nil)
		return out
	}
	head := f.ofElem(elems[0], k)
	for _, h := range head.seqs {
		if len(h) == k {
			out.add(h)
			continue
		}
		for _, t := range f.ofSeq(elems[1:], k-len(h)).seqs {
			out.add(concat(h, t))
		}
	}
	return out
}

func (f *firstSets) ofElem(e Elem, k int) *seqSet {
	switch e.kind {
	case elemTerm:
		out := newSeqSet()
		out.add(seq{e.term})
		return out
	case elemRef:
		return f.ofRule(e.ref, k)
	case elemSeq:
		return f.ofSeq(e.items, k)
	case elemOpt:
		out := f.ofSeq(e.items, k)
		out.add(nil)
		return out
	case elemMany:
		return f.ofMany(e.items, k)
	case elemOneOf:
		out := newSeqSet()
		for _, it := range e.items {
			out.addAll(f.ofElem(it, k))
		}
		return out
	}
	return newSeqSet()
}

func (f *firstSets) ofMany(items []Elem, k int) *seqSet {
	out := newSeqSet()
	out.add(nil)
	if k == 0 {
		return out
	}
	for _, b := range f.ofSeq(items, k).seqs {
		switch {
		case len(b) == 0:
			// a nullable body adds nothing beyond the empty sequence
		case len(b) == k:
			out.add(b)
		default:
			for _, rest := range f.ofMany(items, k-len(b)).seqs {
				out.add(concat(b, rest))
			}
		}
	}
	return out
}

func (f *firstSets) ofRule(name string, k int) *seqSet {
	key := memoKey{name, k}
	if s, ok := f.memo[key]; ok {
		return s
	}
	r := f.g.Lookup(name)
	if r == nil {
		return newSeqSet()
	}
	if f.active[key] {
		f.problems = append(f.problems, fmt.Errorf("rule %q is left-recursive", name))
		return newSeqSet()
	}
	f.active[key] = true
	out := newSeqSet()
	for _, alt := range r.Alts {
		out.addAll(f.ofSeq(alt.Body, k))
	}
	delete(f.active, key)
	f.memo[key] = out
	return out
}

// --- Validation and prediction tables ---

type prediction struct {
	alt int
	seq seq
}

type choice struct {
	rule   *Rule
	gates  []prediction
	byTok  map[lexer.TokenType][]prediction
	always []prediction
	first1 map[lexer.TokenType][]Term
}

type table struct {
	grammar *Grammar
	choices map[string]*choice
}

// ValidateGrammar checks a rule table for problems that would make parsing
// ambiguous or impossible:
//   - two ungated alternatives of one rule sharing a lookahead sequence
//     within the rule's budget;
//   - overlapping gates within one rule;
//   - a gate that can never match its own alternative;
//   - references to undefined rules, duplicate rule names, left recursion
//     and budgets outside 1..MaxLookahead.
func ValidateGrammar(g *Grammar) error {
	_, err := compile(g)
	return err
}

func compile(g *Grammar) (*table, error) {
	var problems []error
	seen := make(map[string]bool)
	for _, r := range g.rules {
		if seen[r.Name] {
			problems = append(problems, fmt.Errorf("rule %q is defined twice", r.Name))
		}
		seen[r.Name] = true
		if r.K < 1 || r.K > MaxLookahead {
			problems = append(problems, fmt.Errorf("rule %q: lookahead budget %d outside 1..%d", r.Name, r.K, MaxLookahead))
		}
		if len(r.Alts) == 0 {
			problems = append(problems, fmt.Errorf("rule %q has no alternatives", r.Name))
		}
		for _, alt := range r.Alts {
			if len(alt.Gate) > MaxLookahead {
				problems = append(problems, fmt.Errorf("rule %q: gate of %q is longer than %d tokens", r.Name, alt.Name, MaxLookahead))
			}
			for _, ref := range collectRefs(alt.Body, nil) {
				if g.Lookup(ref) == nil {
					problems = append(problems, fmt.Errorf("rule %q: reference to undefined rule %q", r.Name, ref))
				}
			}
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	fs := newFirstSets(g)
	t := &table{grammar: g, choices: make(map[string]*choice, len(g.rules))}
	for _, r := range g.rules {
		c := &choice{
			rule:   r,
			byTok:  make(map[lexer.TokenType][]prediction),
			first1: make(map[lexer.TokenType][]Term),
		}
		var ungated []prediction
		for i, alt := range r.Alts {
			if len(alt.Gate) > 0 {
				if !gateReachable(alt.Gate, fs.ofSeq(alt.Body, len(alt.Gate))) {
					problems = append(problems, fmt.Errorf("rule %q: gate %s of %q can never match",
						r.Name, seqString(alt.Gate), alt.Name))
				}
				for _, prev := range c.gates {
					if seqOverlap(prev.seq, alt.Gate) {
						problems = append(problems, fmt.Errorf("rule %q: gates of %q and %q overlap on %s",
							r.Name, r.Alts[prev.alt].Name, alt.Name, seqString(alt.Gate)))
					}
				}
				c.gates = append(c.gates, prediction{alt: i, seq: alt.Gate})
				continue
			}
			for _, q := range fs.ofSeq(alt.Body, r.K).seqs {
				for _, prev := range ungated {
					if prev.alt != i && seqOverlap(prev.seq, q) {
						problems = append(problems, fmt.Errorf("rule %q: alternatives %q and %q both start with %s (k=%d)",
							r.Name, r.Alts[prev.alt].Name, alt.Name, seqString(q), r.K))
					}
				}
				ungated = append(ungated, prediction{alt: i, seq: q})
			}
		}
		for _, pr := range ungated {
			if len(pr.seq) == 0 {
				c.always = append(c.always, pr)
				continue
			}
			typ := pr.seq[0].Type
			c.byTok[typ] = append(c.byTok[typ], pr)
		}
		for _, q := range fs.ofRule(r.Name, 1).seqs {
			if len(q) == 1 {
				c.first1[q[0].Type] = append(c.first1[q[0].Type], q[0])
			}
		}
		t.choices[r.Name] = c
	}
	problems = append(problems, fs.problems...)
	if len(problems) > 0 {
		return nil, errors.Join(dedupe(problems)...)
	}
	return t, nil
}

func collectRefs(elems []Elem, out []string) []string {
	for _, e := range elems {
		if e.kind == elemRef {
			out = append(out, e.ref)
		}
		out = collectRefs(e.items, out)
	}
	return out
}

func gateReachable(gate seq, firsts *seqSet) bool {
	for _, q := range firsts.seqs {
		if len(q) == len(gate) && seqOverlap(q, gate) {
			return true
		}
	}
	return false
}

func dedupe(errs []error) []error {
	seen := make(map[string]bool, len(errs))
	out := errs[:0]
	for _, err := range errs {
		if seen[err.Error()] {
			continue
		}
		seen[err.Error()] = true
		out = append(out, err)
	}
	return out
}

// predict returns the index of the alternative the upcoming tokens select,
// or -1. la(i) returns the i-th upcoming token.
func (c *choice) predict(la func(int) lexer.Token) int {
	for _, g := range c.gates {
		if matchSeq(g.seq, la) {
			return g.alt
		}
	}
	for _, pr := range c.byTok[la(0).Type] {
		if matchSeq(pr.seq, la) {
			return pr.alt
		}
	}
	if len(c.always) > 0 {
		return c.always[0].alt
	}
	return -1
}

// starts reports whether tok can begin the rule.
func (c *choice) starts(tok lexer.Token) bool {
	for _, term := range c.first1[tok.Type] {
		if term.matches(tok) {
			return true
		}
	}
	return false
}

func matchSeq(s seq, la func(int) lexer.Token) bool {
	for i, term := range s {
		if !term.matches(la(i)) {
			return false
		}
	}
	return true
}

var java *table

func init() {
	t, err := compile(JavaGrammar())
	if err != nil {
		panic("parser: invalid grammar table: " + err.Error())
	}
	java = t
}
