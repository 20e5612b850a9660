// Command javacheck checks Java teaching-subset source from the command line.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/codequest/javacheck/pkg/checker"
	"github.com/codequest/javacheck/pkg/diagnostics"
	"github.com/codequest/javacheck/pkg/formatter"
	"github.com/codequest/javacheck/pkg/help"
	"github.com/codequest/javacheck/pkg/lexer"
	"github.com/codequest/javacheck/pkg/parser"
)

const (
	historyFile = ".javacheck_history"
	promptMain  = "java> "
	promptCont  = "  ... "
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: javacheck <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: check, tokens, fmt, repl, grammar, help")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "tokens":
		os.Exit(cmdTokens(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "grammar":
		fmt.Print(parser.DefaultGrammar().String())
		os.Exit(0)
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

// options holds the flags shared by the subcommands.
type options struct {
	file   string
	mode   checker.Mode
	pretty bool
	write  bool
}

func parseArgs(args []string) (options, error) {
	opts := options{mode: checker.ModeFull}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--pretty":
			opts.pretty = true
		case arg == "--write":
			opts.write = true
		case arg == "--mode" || strings.HasPrefix(arg, "--mode="):
			value := strings.TrimPrefix(arg, "--mode=")
			if arg == "--mode" {
				if i+1 >= len(args) {
					return opts, errors.New("--mode needs a value")
				}
				i++
				value = args[i]
			}
			mode, err := checker.ParseMode(value)
			if err != nil {
				return opts, err
			}
			opts.mode = mode
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			opts.file = arg
		default:
			return opts, fmt.Errorf("unknown flag %s", arg)
		}
	}
	return opts, nil
}

func cmdCheck(args []string) int {
	opts, err := parseArgs(args)
	if err != nil || opts.file == "" {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		fmt.Fprintln(os.Stderr, "usage: javacheck check <file|-> [--mode full|statements] [--pretty]")
		return 1
	}

	source, filename, err := readSource(opts.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	c := checker.New(checker.WithFilename(filename))
	res := c.Parse(source, opts.mode)
	if !res.Success {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(res.Errors, c.Filename(), opts.pretty))
		return 2
	}

	if opts.pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

type tokenJSON struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func cmdTokens(args []string) int {
	opts, err := parseArgs(args)
	if err != nil || opts.file == "" {
		fmt.Fprintln(os.Stderr, "usage: javacheck tokens <file|->")
		return 1
	}
	source, filename, err := readSource(opts.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tokens, diags := checker.New().Tokens(source)
	out := make([]tokenJSON, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenJSON{Type: tok.Type.String(), Value: tok.Value, Line: tok.Span.StartLine, Column: tok.Span.StartCol}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error serializing tokens: %s\n", err)
		return 1
	}
	fmt.Println(string(b))

	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, filename, opts.pretty))
		return 2
	}
	return 0
}

func cmdFmt(args []string) int {
	opts, err := parseArgs(args)
	if err != nil || opts.file == "" {
		fmt.Fprintln(os.Stderr, "usage: javacheck fmt <file|-> [--mode full|statements] [--write]")
		return 1
	}
	source, filename, err := readSource(opts.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	formatted, err := checker.New().Format(source, opts.mode)
	if err != nil {
		var diagErr *checker.DiagnosticError
		if errors.As(err, &diagErr) {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, filename, opts.pretty))
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}

	if opts.write && opts.file != "-" {
		if err := os.WriteFile(opts.file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return 1
		}
		return 0
	}
	fmt.Print(formatted)
	return 0
}

func cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}
	if topic == "" {
		fmt.Print(help.QUICKREF)
		return 0
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return 1
	}
	fmt.Print(content)
	return 0
}

// --- REPL ---

func cmdRepl(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: javacheck repl [--mode full|statements]")
		return 1
	}
	if !hasModeFlag(args) {
		opts.mode = checker.ModeStatements
	}

	fmt.Printf("javacheck repl (mode %s). Type :mode full|statements or :quit.\n", opts.mode)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	c := checker.New(checker.WithFilename("<repl>"))
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			fields := strings.Fields(trimmed)
			switch fields[0] {
			case ":quit", ":q":
				return 0
			case ":mode":
				if len(fields) < 2 {
					fmt.Printf("mode is %s\n", opts.mode)
					continue
				}
				mode, err := checker.ParseMode(fields[1])
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				opts.mode = mode
			default:
				fmt.Println("unknown command. Type :mode or :quit.")
			}
			continue
		}

		res := c.Parse(src, opts.mode)
		if res.Success {
			fmt.Println("ok")
			continue
		}
		fmt.Println(diagnostics.FormatDiagnostics(res.Errors, c.Filename(), true))
	}
}

func hasModeFlag(args []string) bool {
	for _, a := range args {
		if a == "--mode" || strings.HasPrefix(a, "--mode=") {
			return true
		}
	}
	return false
}

// readEntry reads lines until every brace and parenthesis opened so far has
// been closed.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if openDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// openDepth counts unclosed braces and parentheses.
func openDepth(src string) int {
	tokens, _ := lexer.Tokenize(src)
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokLBrace, lexer.TokLParen:
			depth++
		case lexer.TokRBrace, lexer.TokRParen:
			depth--
		}
	}
	return depth
}

// readSource reads a file, or stdin when path is "-".
func readSource(path string) (source, filename string, err error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("cannot read file %s: %w", path, err)
	}
	return string(data), path, nil
}
