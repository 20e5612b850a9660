package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codequest/javacheck/internal/testutil"
	"github.com/codequest/javacheck/pkg/checker"
	"github.com/codequest/javacheck/pkg/diagnostics"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, scenarioDir := range dirs {
		scenarioDir := scenarioDir
		t.Run(filepath.Base(scenarioDir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(scenarioDir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}

			source, filename, err := testutil.ReadProgramFile(scenarioDir, scenario.Cmd)
			if err != nil {
				t.Fatalf("failed to read program file: %v", err)
			}

			mode := checker.ModeFull
			if m := testutil.Flag(scenario.Cmd, "--mode"); m != "" {
				if mode, err = checker.ParseMode(m); err != nil {
					t.Fatal(err)
				}
			}
			pretty := testutil.HasFlag(scenario.Cmd, "--pretty")
			c := checker.New(checker.WithFilename(filename))

			switch scenario.Cmd[0] {
			case "check":
				runCheckScenario(t, c, source, mode, scenario, pretty)
			case "fmt":
				runFmtScenario(t, c, source, mode, scenario, pretty)
			default:
				t.Skipf("unsupported command: %s", scenario.Cmd[0])
			}
		})
	}
}

func runCheckScenario(t *testing.T, c *checker.Checker, source string, mode checker.Mode, scenario *testutil.Scenario, pretty bool) {
	t.Helper()

	res := c.Parse(source, mode)
	if !res.Success {
		checkDiagExpectations(t, c, res.Errors, scenario, pretty, 2)
		return
	}

	actualExitCode := 0
	if scenario.Expect.ExitCode != actualExitCode {
		t.Errorf("exit code: got %d, want %d", actualExitCode, scenario.Expect.ExitCode)
	}

	if scenario.Expect.StdoutJSON != nil {
		expected := normalizeJSON(t, scenario.Expect.StdoutJSON)
		actual := "[]"
		if expected != actual {
			t.Errorf("stdout: got %s, want %s", actual, expected)
		}
	}
}

func runFmtScenario(t *testing.T, c *checker.Checker, source string, mode checker.Mode, scenario *testutil.Scenario, pretty bool) {
	t.Helper()

	formatted, err := c.Format(source, mode)
	if err != nil {
		var diagErr *checker.DiagnosticError
		if !errors.As(err, &diagErr) {
			t.Fatalf("unexpected error type: %v", err)
		}
		checkDiagExpectations(t, c, diagErr.Diagnostics, scenario, pretty, 2)
		return
	}

	if scenario.Expect.ExitCode != 0 {
		t.Errorf("exit code: got 0, want %d", scenario.Expect.ExitCode)
	}
	if scenario.Expect.StdoutText != "" && formatted != scenario.Expect.StdoutText {
		t.Errorf("stdout:\n  got:  %q\n  want: %q", formatted, scenario.Expect.StdoutText)
	}
}

func checkDiagExpectations(t *testing.T, c *checker.Checker, diags []diagnostics.Diagnostic, scenario *testutil.Scenario, pretty bool, exitCode int) {
	t.Helper()

	if scenario.Expect.ExitCode != exitCode {
		t.Errorf("exit code: got %d, want %d", exitCode, scenario.Expect.ExitCode)
	}

	stderrOutput := diagnostics.FormatDiagnostics(diags, c.Filename(), pretty)
	checkStderrExpectations(t, stderrOutput, diags, scenario)
}

func checkStderrExpectations(t *testing.T, stderrOutput string, diags []diagnostics.Diagnostic, scenario *testutil.Scenario) {
	t.Helper()

	if scenario.Expect.StderrContains != "" {
		if !strings.Contains(stderrOutput, scenario.Expect.StderrContains) {
			t.Errorf("stderr should contain '%s', got: %s", scenario.Expect.StderrContains, stderrOutput)
		}
	}

	if scenario.Expect.StderrJSONSubset != nil {
		var expectedSubset []map[string]any
		if err := json.Unmarshal(scenario.Expect.StderrJSONSubset, &expectedSubset); err != nil {
			t.Fatalf("failed to parse expected stderr JSON subset: %v", err)
		}

		diagsJSON, _ := json.Marshal(diags)
		var actualDiags []map[string]any
		if err := json.Unmarshal(diagsJSON, &actualDiags); err != nil {
			t.Fatalf("failed to parse actual diagnostics: %v", err)
		}

		for _, expected := range expectedSubset {
			found := false
			for _, actual := range actualDiags {
				if isSubset(expected, actual) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("stderr JSON subset not found: %v", expected)
			}
		}
	}
}

func normalizeJSON(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to parse JSON: %v (raw: %s)", err, string(raw))
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to re-marshal JSON: %v", err)
	}
	return string(b)
}

// isSubset checks if expected is a subset of actual (for JSON comparison).
func isSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !isSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok {
			return false
		}
		if len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !isSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		if af, ok := actual.(float64); ok {
			return e == af
		}
		return false

	case string:
		if as, ok := actual.(string); ok {
			return e == as
		}
		return false

	case bool:
		if ab, ok := actual.(bool); ok {
			return e == ab
		}
		return false

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}

// Verify scenarios directory exists
func TestScenariosExist(t *testing.T) {
	root := testutil.ScenariosDir
	info, err := os.Stat(root)
	if err != nil {
		t.Skipf("scenarios directory not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("scenarios path is not a directory: %s", root)
	}
}
