// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/tslint/lint"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"a.ts": "UTF.Assert.True(ok);",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "no-utf-assert",
		Message:  "Use chai.assert.isTrue instead of UTF.Assert.True",
		Spans:    []Span{{File: "a.ts", Line: 1, Col: 1, EndCol: 19, Label: "call"}},
	})
	assertContains(t, got, "error[no-utf-assert]: Use chai.assert.isTrue instead of UTF.Assert.True")
	assertContains(t, got, "--> a.ts:1:1")
	assertContains(t, got, " 1 |  UTF.Assert.True(ok);")
	assertContains(t, got, strings.Repeat("^", 19)+" call")
}

func TestRenderWarningWithTabs(t *testing.T) {
	r := testRenderer(map[string]string{
		"a.ts": "let a;\n\tlet b = {x: 1};",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "Object literals should be padded with whitespace.",
		Spans:    []Span{{File: "a.ts", Line: 2, Col: 10, EndCol: 10}},
	})
	assertContains(t, got, "warning: Object literals")
	assertContains(t, got, "    let b = {x: 1};")
	// 4 columns for the tab plus "let b = " before the brace.
	assertContains(t, got, "  "+strings.Repeat(" ", 12)+"^\n")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "<stdin>", Line: 5, Col: 3}},
	})
	assertContains(t, got, "error: some error")
	assertContains(t, got, "--> <stdin>:5:3")
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderNotesAndHelp(t *testing.T) {
	r := testRenderer(map[string]string{"a.ts": "foo();"})
	got := render(t, r, Diagnostic{
		Severity: SeverityNote,
		Message:  "m",
		Spans:    []Span{{File: "a.ts", Line: 1, Col: 1}},
		Notes:    []string{"first note"},
		Help:     []string{"a fix is available"},
	})
	assertContains(t, got, "note: m")
	assertContains(t, got, "= note: first note")
	assertContains(t, got, "= help: a fix is available")
	// "foo" is detected as the token at column 1.
	assertContains(t, got, "|  ^^^\n")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{"a.ts": "a;\nb;"})
	diags := []Diagnostic{
		{Message: "first", Spans: []Span{{File: "a.ts", Line: 1, Col: 1}}},
		{Message: "second", Spans: []Span{{File: "a.ts", Line: 2, Col: 1}}},
	}
	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if parts := strings.Split(got, "\n\n"); len(parts) != 2 {
		t.Errorf("expected diagnostics separated by a blank line, got:\n%s", got)
	}
	assertContains(t, got, "first")
	assertContains(t, got, "second")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{Message: "config error"})
	assertContains(t, got, "error: config error")
	assertNotContains(t, got, "-->")
}

func TestFromFailure(t *testing.T) {
	fix, err := lint.NewFix(lint.DeleteFromTo(9, 11))
	if err != nil {
		t.Fatal(err)
	}
	d := FromFailure(lint.Failure{
		File:     "a.ts",
		RuleName: "no-trailing-whitespace",
		Message:  "trailing whitespace",
		Severity: lint.SeverityWarning,
		Start:    lint.Position{Pos: 9, Line: 2, Character: 9},
		End:      lint.Position{Pos: 11, Line: 2, Character: 11},
		Fix:      fix,
	})
	if d.Severity != SeverityWarning || d.Code != "no-trailing-whitespace" {
		t.Errorf("unexpected header fields: %+v", d)
	}
	want := Span{File: "a.ts", Line: 3, Col: 10, EndCol: 11}
	if len(d.Spans) != 1 || d.Spans[0] != want {
		t.Errorf("spans = %+v, want %+v", d.Spans, want)
	}
	if len(d.Help) != 1 {
		t.Errorf("expected a fix hint, got %v", d.Help)
	}

	multi := FromFailure(lint.Failure{
		Start: lint.Position{Line: 0, Character: 2},
		End:   lint.Position{Line: 3, Character: 1},
	})
	if multi.Severity != SeverityError || multi.Spans[0].EndCol <= multi.Spans[0].Col {
		t.Errorf("multi-line failure should underline to the end of the line: %+v", multi.Spans[0])
	}
	if len(FromFailures([]lint.Failure{{}, {}})) != 2 {
		t.Error("FromFailures dropped failures")
	}
}

func TestParseColorMode(t *testing.T) {
	if ParseColorMode("always") != ColorAlways || ParseColorMode("never") != ColorNever || ParseColorMode("auto") != ColorAuto {
		t.Error("unexpected color mode")
	}
	var buf bytes.Buffer
	if ColorAuto.Enabled(&buf) {
		t.Error("a buffer is not a terminal")
	}
	if !ColorAlways.Enabled(&buf) {
		t.Error("always enables color")
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
